package rangemap

import "log/slog"

// DualMap pairs a VM-space and a file-space RangeMap for a single logical
// labeling of one binary (e.g. "the section layout", "the symbol table").
// Entries added as a dual range appear in both maps, each pointing at the
// other's start, so the pair acts as a bijection on its covered
// sub-intervals.
type DualMap struct {
	VM   *RangeMap
	File *RangeMap
}

// NewDualMap returns an empty DualMap.
func NewDualMap(l *slog.Logger) *DualMap {
	return &DualMap{VM: New(l), File: New(l)}
}
