package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/gobinsize/gobinsize/internal/rollup"
)

// MaxLabelLen is spec §6's default label-truncation width; -w disables it
// by passing math.MaxInt64-equivalent via PrettyPrintOptions.NoTruncate.
const MaxLabelLen = 80

// PrettyPrintOptions controls the fixed-width tabular renderer.
type PrettyPrintOptions struct {
	NoTruncate bool // -w: disable label truncation
	Color      bool // colorize [Other] rows and diff-mode growing/shrinking rows; gated on TTY by the caller
}

// PrettyPrint renders root in bloaty's fixed-width column format: a header,
// the growing rows, then (diff mode only) a SHRINKING and MIXED section,
// then the TOTAL row last.
func PrettyPrint(w io.Writer, root *rollup.Row, opts PrettyPrintOptions) error {
	longest := len(root.Name)
	for _, bucket := range [][]*rollup.Row{root.SortedChildren, root.Shrinking, root.Mixed} {
		for _, child := range bucket {
			longest = max(longest, longestLabel(child, 0))
		}
	}
	maxLabelLen := MaxLabelLen
	if opts.NoTruncate {
		maxLabelLen = longest
	}
	longest = min(longest, maxLabelLen)

	fmt.Fprintf(w, "     VM SIZE    %s    FILE SIZE\n", spaces(longest))

	if root.DiffMode {
		fmt.Fprintf(w, " ++++++++++++++ %s ++++++++++++++\n", fixedWidth("GROWING", longest))
	} else {
		fmt.Fprintf(w, " -------------- %s --------------\n", spaces(longest))
	}

	for _, child := range root.SortedChildren {
		printTree(w, child, 0, longest, opts)
	}

	if root.DiffMode {
		if len(root.Shrinking) > 0 {
			fmt.Fprintln(w)
			fmt.Fprintf(w, " -------------- %s --------------\n", fixedWidth("SHRINKING", longest))
			for _, child := range root.Shrinking {
				printTree(w, child, 0, longest, opts)
			}
		}
		if len(root.Mixed) > 0 {
			fmt.Fprintln(w)
			fmt.Fprintf(w, " -+-+-+-+-+-+-+ %s +-+-+-+-+-+-+-\n", fixedWidth("MIXED", longest))
			for _, child := range root.Mixed {
				printTree(w, child, 0, longest, opts)
			}
		}
		fmt.Fprintln(w)
	}

	printRow(w, root, 0, longest, opts)
	return nil
}

func printTree(w io.Writer, row *rollup.Row, indent, longest int, opts PrettyPrintOptions) {
	printRow(w, row, indent, longest, opts)

	// "Confounding" sub-entries (a growing section with a shrinking symbol
	// inside it, or vice versa) are never printed, matching bloaty's own
	// PrettyPrintTree: only recurse into the bucket that agrees with this
	// row's own sign.
	if row.VMSize > 0 || row.FileSize > 0 {
		for _, child := range row.SortedChildren {
			printTree(w, child, indent+4, longest, opts)
		}
	}
	if row.VMSize < 0 || row.FileSize < 0 {
		for _, child := range row.Shrinking {
			printTree(w, child, indent+4, longest, opts)
		}
	}
	if (row.VMSize < 0) != (row.FileSize < 0) {
		for _, child := range row.Mixed {
			printTree(w, child, indent+4, longest, opts)
		}
	}
}

func printRow(w io.Writer, row *rollup.Row, indent, longest int, opts PrettyPrintOptions) {
	line := fmt.Sprintf("%s %s %s %s %s %s\n",
		spaces(indent),
		percentString(row.VMPercent, row.DiffMode),
		siSize(row.VMSize, row.DiffMode),
		fixedWidth(row.Name, longest),
		siSize(row.FileSize, row.DiffMode),
		percentString(row.FilePercent, row.DiffMode))

	if !opts.Color {
		fmt.Fprint(w, line)
		return
	}
	c := rowColor(row)
	if c == nil {
		fmt.Fprint(w, line)
		return
	}
	c.Fprint(w, line)
}

func rowColor(row *rollup.Row) *color.Color {
	if row.Name == rollup.OthersLabel {
		return color.New(color.FgYellow)
	}
	if row.DiffMode {
		switch {
		case row.VMSize < 0 && row.FileSize < 0:
			return color.New(color.FgRed)
		case row.VMSize > 0 && row.FileSize > 0:
			return color.New(color.FgGreen)
		}
	}
	return nil
}

func longestLabel(row *rollup.Row, indent int) int {
	ret := indent + len(row.Name)
	for _, bucket := range [][]*rollup.Row{row.SortedChildren, row.Shrinking, row.Mixed} {
		for _, child := range bucket {
			ret = max(ret, longestLabel(child, indent+4))
		}
	}
	return ret
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
