// Package arsrc walks Unix ar archives (.a static libraries) member by
// member. There is no ar-format library anywhere in the example pack (nor
// in the Go standard library), and bloaty's own ArFile (elf.cc) is
// hand-rolled byte parsing too — so, like bloaty, this is built directly
// against the format rather than reached for as a dependency.
package arsrc

import (
	"strconv"
	"strings"

	"github.com/gobinsize/gobinsize/internal/bloatyerr"
)

const (
	globalMagic = "!<arch>\n"
	headerSize  = 60
)

// Member is one entry of a Unix ar archive.
type Member struct {
	Name          string
	HeaderOffset  uint64 // start of this member's 60-byte header
	Offset        uint64 // start of this member's data, after the header
	Size          uint64 // data length, unpadded
	IsSymbolTable bool   // GNU "/" or "/SYM64/" special member
}

// IsArchive reports whether data begins with the ar global header.
func IsArchive(data []byte) bool {
	return len(data) >= len(globalMagic) && string(data[:len(globalMagic)]) == globalMagic
}

// Members walks data's header chain in file order. The GNU "//" long-name
// table is consumed internally to resolve "/<offset>" name references and
// is not itself reported as a member, matching what a reader actually
// cares about: real archive contents plus the symbol table.
func Members(data []byte) ([]Member, error) {
	if !IsArchive(data) {
		return nil, bloatyerr.Throw(bloatyerr.Malformed, "not a Unix ar archive")
	}

	var longNames []byte
	var members []Member
	off := uint64(len(globalMagic))

	for off+headerSize <= uint64(len(data)) {
		hdr := data[off : off+headerSize]
		if string(hdr[58:60]) != "`\n" {
			return nil, bloatyerr.Throw(bloatyerr.Malformed, "corrupt ar header at offset %d", off)
		}
		name := strings.TrimRight(string(hdr[0:16]), " ")
		sizeStr := strings.TrimSpace(string(hdr[48:58]))
		size, err := strconv.ParseUint(sizeStr, 10, 64)
		if err != nil {
			return nil, bloatyerr.Throw(bloatyerr.Malformed, "bad ar member size %q: %v", sizeStr, err)
		}

		dataOff := off + headerSize
		if dataOff+size > uint64(len(data)) {
			return nil, bloatyerr.Throw(bloatyerr.Truncated, "ar member %q extends past end of file", name)
		}

		switch {
		case name == "//":
			longNames = data[dataOff : dataOff+size]
		case name == "/" || name == "/SYM64/":
			members = append(members, Member{
				Name: "[AR Symbol Table]", HeaderOffset: off, Offset: dataOff, Size: size, IsSymbolTable: true,
			})
		case strings.HasPrefix(name, "/"):
			if idx, err := strconv.ParseUint(name[1:], 10, 64); err == nil && idx < uint64(len(longNames)) {
				name = cStringAt(longNames, idx)
			}
			members = append(members, Member{Name: name, HeaderOffset: off, Offset: dataOff, Size: size})
		case strings.HasSuffix(name, "/"):
			members = append(members, Member{
				Name: strings.TrimSuffix(name, "/"), HeaderOffset: off, Offset: dataOff, Size: size,
			})
		default:
			members = append(members, Member{Name: name, HeaderOffset: off, Offset: dataOff, Size: size})
		}

		next := dataOff + size
		if size%2 != 0 {
			next++ // ar pads member data to an even boundary
		}
		off = next
	}
	return members, nil
}

func cStringAt(b []byte, start uint64) string {
	end := start
	for end < uint64(len(b)) && b[end] != '\n' && b[end] != 0 {
		end++
	}
	return strings.TrimRight(string(b[start:end]), "/")
}
