package arsrc

import (
	"bytes"
	"fmt"
	"testing"
)

func header(name string, size int) []byte {
	b := make([]byte, headerSize)
	for i := range b {
		b[i] = ' '
	}
	copy(b, name)
	copy(b[16:], "0           ") // mtime
	copy(b[28:], "0     ")      // uid
	copy(b[34:], "0     ")      // gid
	copy(b[40:], "100644  ")    // mode
	sizeStr := fmt.Sprintf("%-10d", size)
	copy(b[48:], sizeStr)
	b[58] = '`'
	b[59] = '\n'
	return b
}

func buildArchive(members map[string][]byte, order []string) []byte {
	var buf bytes.Buffer
	buf.WriteString(globalMagic)
	for _, name := range order {
		data := members[name]
		buf.Write(header(name+"/", len(data)))
		buf.Write(data)
		if len(data)%2 != 0 {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}

func TestMembersSimple(t *testing.T) {
	data := buildArchive(map[string][]byte{
		"a.o": []byte("hello"),
		"b.o": []byte("worldx"),
	}, []string{"a.o", "b.o"})

	members, err := Members(data)
	if err != nil {
		t.Fatalf("Members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("got %d members, want 2", len(members))
	}
	if members[0].Name != "a.o" || members[0].Size != 5 {
		t.Errorf("member 0 = %+v", members[0])
	}
	if members[1].Name != "b.o" || members[1].Size != 6 {
		t.Errorf("member 1 = %+v", members[1])
	}
}

func TestMembersOddSizePadding(t *testing.T) {
	data := buildArchive(map[string][]byte{"a.o": []byte("odd")}, []string{"a.o"})
	if len(data)%2 != 0 {
		t.Fatalf("archive should end on an even boundary, got length %d", len(data))
	}
	members, err := Members(data)
	if err != nil {
		t.Fatalf("Members: %v", err)
	}
	if len(members) != 1 || members[0].Size != 3 {
		t.Fatalf("members = %+v", members)
	}
}

func TestIsArchive(t *testing.T) {
	if !IsArchive([]byte(globalMagic + "trailing")) {
		t.Error("expected true for well-formed magic")
	}
	if IsArchive([]byte("not an archive")) {
		t.Error("expected false for non-archive data")
	}
}

func TestMembersRejectsNonArchive(t *testing.T) {
	if _, err := Members([]byte("garbage")); err == nil {
		t.Error("expected error for non-archive input")
	}
}
