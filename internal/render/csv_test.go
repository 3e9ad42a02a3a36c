package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gobinsize/gobinsize/internal/rollup"
)

func TestWriteCSVLeafRowsCarryFullAncestorPath(t *testing.T) {
	root := &rollup.Row{
		Name: "TOTAL", VMSize: 140, FileSize: 140,
		SortedChildren: []*rollup.Row{
			{
				Name: ".text", VMSize: 140, FileSize: 140,
				SortedChildren: []*rollup.Row{
					{Name: "foo", VMSize: 100, FileSize: 100},
					{Name: `say "hi"`, VMSize: 40, FileSize: 40},
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, root, []string{"sections", "symbols"}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	if lines[0] != "sections,symbols,vmsize,filesize" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != ".text,foo,100,100" {
		t.Errorf("row 1 = %q, want .text,foo,100,100", lines[1])
	}
	// E6: a label containing `"` is quoted with `""` escaping.
	if lines[2] != `.text,"say ""hi""",40,40` {
		t.Errorf("row 2 = %q, want quoted label", lines[2])
	}
}

func TestWriteCSVCommaInLabelIsQuoted(t *testing.T) {
	root := &rollup.Row{
		Name: "TOTAL",
		SortedChildren: []*rollup.Row{
			{Name: "hello,world", VMSize: 10, FileSize: 10},
		},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, root, []string{"sections"}); err != nil {
		t.Fatal(err)
	}
	got := strings.TrimRight(buf.String(), "\n")
	want := "sections,vmsize,filesize\n\"hello,world\",10,10"
	if got != want {
		t.Errorf("WriteCSV =\n%q\nwant\n%q", got, want)
	}
}
