package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/gobinsize/gobinsize/internal/rollup"
)

// WriteCSV writes root's display tree as CSV: a header row of sourceNames
// followed by vmsize,filesize, then one row per leaf with its full ancestor
// label path. sourceNames is the ordered list of data-source names that
// produced root's label tuples (spec §6).
func WriteCSV(w io.Writer, root *rollup.Row, sourceNames []string) error {
	header := append(append([]string{}, sourceNames...), "vmsize", "filesize")
	fmt.Fprintln(w, strings.Join(header, ","))

	for _, bucket := range [][]*rollup.Row{root.SortedChildren, root.Shrinking, root.Mixed} {
		for _, child := range bucket {
			writeTreeCSV(w, child, "")
		}
	}
	return nil
}

func writeTreeCSV(w io.Writer, row *rollup.Row, parentLabels string) {
	hasChildren := len(row.SortedChildren) > 0 || len(row.Shrinking) > 0 || len(row.Mixed) > 0
	if !hasChildren {
		writeRowCSV(w, row, parentLabels)
		return
	}

	labels := csvEscape(row.Name)
	if parentLabels != "" {
		labels = parentLabels + "," + labels
	}
	for _, bucket := range [][]*rollup.Row{row.SortedChildren, row.Shrinking, row.Mixed} {
		for _, child := range bucket {
			writeTreeCSV(w, child, labels)
		}
	}
}

func writeRowCSV(w io.Writer, row *rollup.Row, parentLabels string) {
	prefix := ""
	if parentLabels != "" {
		prefix = parentLabels + ","
	}
	fmt.Fprintf(w, "%s%s,%d,%d\n", prefix, csvEscape(row.Name), row.VMSize, row.FileSize)
}
