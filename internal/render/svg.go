package render

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/gobinsize/gobinsize/internal/rollup"
)

const svgRowHeight = 20

// RenderSVG draws root as an icicle chart: each row is a horizontal band
// whose width is proportional to |VMSize| within its parent's span, rows
// stacked top to bottom by depth. This is a supplementary output format
// with no spec.md equivalent (the teacher's own unused ajstarks/svgo
// dependency); --svg is additive and never changes exit-code or
// stdout/stderr behavior defined by spec §6.
func RenderSVG(w io.Writer, root *rollup.Row, width, maxDepth int) {
	canvas := svg.New(w)
	height := maxDepth * svgRowHeight
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:white")
	drawRow(canvas, root, 0, width, 0, maxDepth)
	canvas.End()
}

func drawRow(canvas *svg.SVG, row *rollup.Row, x, w, depth, maxDepth int) {
	if depth >= maxDepth || w <= 0 {
		return
	}
	canvas.Rect(x, depth*svgRowHeight, w, svgRowHeight,
		fmt.Sprintf("fill:%s;stroke:black;stroke-width:1", rowFill(row)))
	if w > 40 {
		canvas.Text(x+4, depth*svgRowHeight+14, row.Name, "font-size:11px;font-family:monospace")
	}

	var children []*rollup.Row
	children = append(children, row.SortedChildren...)
	children = append(children, row.Shrinking...)
	children = append(children, row.Mixed...)

	var total int64
	for _, c := range children {
		total += absSize(c)
	}
	if total == 0 {
		return
	}

	childX := x
	for _, c := range children {
		childW := int(int64(w) * absSize(c) / total)
		drawRow(canvas, c, childX, childW, depth+1, maxDepth)
		childX += childW
	}
}

func rowFill(row *rollup.Row) string {
	switch {
	case row.Name == rollup.OthersLabel:
		return "#cccccc"
	case row.DiffMode && row.VMSize < 0:
		return "#e57373"
	case row.DiffMode && row.VMSize > 0:
		return "#81c784"
	default:
		return "#64b5f6"
	}
}

func absSize(row *rollup.Row) int64 {
	if row.VMSize < 0 {
		return -row.VMSize
	}
	return row.VMSize
}
