// Package render turns a shaped rollup.Row tree into the three output
// formats the CLI supports: fixed-width pretty-print, CSV, and an SVG
// treemap. Value shaping (sorting, bucketing, percent computation) happens
// upstream in internal/rollup; this package is presentation only.
package render

import (
	"fmt"
	"math"
	"strings"
)

// fixedWidth right-pads s to size with spaces, or truncates it to size.
func fixedWidth(s string, size int) string {
	if len(s) < size {
		return s + strings.Repeat(" ", size-len(s))
	}
	return s[:size]
}

func leftPad(s string, size int) string {
	for len(s) < size {
		s = " " + s
	}
	return s
}

// siSize renders a signed byte count using binary SI prefixes (Ki/Mi/Gi/Ti),
// after bloaty's SiPrint: scale down while the magnitude exceeds 1024,
// stopping at the last prefix, then pick a
// precision based on the scaled magnitude so the result stays readable
// whether it's 3 bytes or 3 terabytes. forceSign prints a leading "+" on
// positive values, used in diff mode.
func siSize(size int64, forceSign bool) string {
	prefixes := []string{"", "Ki", "Mi", "Gi", "Ti"}
	n := 0
	sizeF := float64(size)
	for math.Abs(sizeF) > 1024 && n < len(prefixes)-1 {
		sizeF /= 1024
		n++
	}

	var s string
	switch {
	case math.Abs(sizeF) > 100 || n == 0:
		s = fmt.Sprintf("%d%s", int64(sizeF), prefixes[n])
		if forceSign && size > 0 {
			s = "+" + s
		}
	case math.Abs(sizeF) > 10:
		if forceSign {
			s = fmt.Sprintf("%+0.1f%s", sizeF, prefixes[n])
		} else {
			s = fmt.Sprintf("%0.1f%s", sizeF, prefixes[n])
		}
	default:
		if forceSign {
			s = fmt.Sprintf("%+0.2f%s", sizeF, prefixes[n])
		} else {
			s = fmt.Sprintf("%0.2f%s", sizeF, prefixes[n])
		}
	}
	return leftPad(s, 7)
}

// percentString renders a percentage the way bloaty does: in diff mode,
// the special markers [=]/[DEL]/[NEW] replace degenerate or undefined
// values (no change, total removal, brand new) before falling back to a
// fixed-width signed percentage; outside diff mode it's a plain percentage.
func percentString(pct float64, diffMode bool) string {
	if !diffMode {
		return fmt.Sprintf("%5.1f%%", pct)
	}
	switch {
	case pct == 0 || math.IsNaN(pct):
		return " [ = ]"
	case pct == -100:
		return " [DEL]"
	case math.IsInf(pct, 0):
		return " [NEW]"
	case pct > 1000:
		digits := int(math.Log10(pct)) - 1
		return leftPad(fmt.Sprintf("%+2.0fe%d%%", pct/math.Pow(10, float64(digits)), digits), 6)
	case pct > 10:
		return leftPad(fmt.Sprintf("%+4.0f%%", pct), 6)
	default:
		return leftPad(fmt.Sprintf("%+5.1f%%", pct), 6)
	}
}

// csvEscape quotes a field if it contains a comma or double quote,
// doubling any embedded quotes, matching spec §6/E6 exactly.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, `",`) {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
