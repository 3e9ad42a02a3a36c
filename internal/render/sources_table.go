package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// SourceDescription is one row of the --list-sources table: a data-source
// name and a one-line description of what it reports.
type SourceDescription struct {
	Name        string
	Description string
}

// WriteSourcesTable prints sources as a table.StyleLight table (name,
// description), matching go-pretty's own "header, rows, footer" idiom used
// elsewhere in the pack for tabular CLI output.
func WriteSourcesTable(w io.Writer, sources []SourceDescription) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Name", "Description"})
	for _, s := range sources {
		tbl.AppendRow(table.Row{s.Name, s.Description})
	}
	tbl.AppendFooter(table.Row{"Total", fmt.Sprintf("%d sources", len(sources))})
	tbl.Render()
}
