package rollup

import (
	"fmt"
	"sort"

	"github.com/gobinsize/gobinsize/internal/checked"
)

// SortBy selects which size a Row is ranked by when choosing sort order and
// the top-K cutoff for collapsing into "[Other]".
type SortBy int

const (
	SortByVM SortBy = iota
	SortByFile
	SortByBoth
)

// Options controls output shaping. It has nothing to do with how a Row is
// rendered to text; that's internal/render's job.
type Options struct {
	SortBy          SortBy
	MaxRowsPerLevel int
}

// OthersLabel is the reserved name for the synthetic row that absorbs
// everything beyond Options.MaxRowsPerLevel at one level.
const OthersLabel = "[Other]"

// Row is one line of shaped output: a label, its signed sizes, its percent
// of its enclosing total (parent in non-diff mode, its own baseline
// counterpart in diff mode), and its children partitioned by growth
// direction.
type Row struct {
	Name                   string
	VMSize, FileSize       int64
	VMPercent, FilePercent float64
	DiffMode               bool

	// Populated by CreateRows's own pass over this row's size signs before
	// recursing; unused by leaves.
	SortedChildren []*Row
	Shrinking      []*Row
	Mixed          []*Row
}

func signOf(v int64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func percent(part, whole int64) float64 {
	return float64(part) / float64(whole) * 100
}

// CreateRollupOutput shapes a non-diff Rollup tree into its root Row.
func CreateRollupOutput(total *Rollup, opts Options) (*Row, error) {
	root := &Row{Name: "TOTAL", VMSize: total.vmTotal, FileSize: total.fileTotal}
	if err := createRows(root, total, nil, opts, true); err != nil {
		return nil, err
	}
	return root, nil
}

// CreateDiffModeRollupOutput shapes cur-after-Subtract against base into a
// diff-mode root Row, with percents expressed relative to each node's own
// baseline counterpart.
func CreateDiffModeRollupOutput(cur, base *Rollup, opts Options) (*Row, error) {
	root := &Row{
		Name: "TOTAL", VMSize: cur.vmTotal, FileSize: cur.fileTotal,
		DiffMode:  true,
		VMPercent: percent(cur.vmTotal, base.vmTotal), FilePercent: percent(cur.fileTotal, base.fileTotal),
	}
	if err := createRows(root, cur, base, opts, true); err != nil {
		return nil, err
	}
	return root, nil
}

// createRows is bloaty's Rollup::CreateRows: bucket cur's children by sign,
// then ComputeRows each bucket (rank, collapse, percent, recurse).
func createRows(row *Row, cur *Rollup, base *Rollup, opts Options, isToplevel bool) error {
	for name, child := range cur.children {
		if child.vmTotal == 0 && child.fileTotal == 0 {
			continue
		}
		vmSign, fileSign := signOf(child.vmTotal), signOf(child.fileTotal)

		childRow := &Row{Name: name, VMSize: child.vmTotal, FileSize: child.fileTotal, DiffMode: row.DiffMode}

		var bucket *[]*Row
		switch {
		case vmSign+fileSign < 0:
			bucket = &row.Shrinking
		case vmSign != fileSign && vmSign+fileSign == 0:
			bucket = &row.Mixed
		default:
			bucket = &row.SortedChildren
		}
		*bucket = append(*bucket, childRow)
	}

	if err := computeRows(row, &row.SortedChildren, cur, base, opts, isToplevel); err != nil {
		return err
	}
	if err := computeRows(row, &row.Shrinking, cur, base, opts, isToplevel); err != nil {
		return err
	}
	if err := computeRows(row, &row.Mixed, cur, base, opts, isToplevel); err != nil {
		return err
	}
	return nil
}

// rankKey is the (numericRank, name) tuple bloaty sorts rows by: numeric
// part descending (achieved by storing its negation so plain ascending sort
// works), name ascending as tiebreaker.
type rankKey struct {
	negMagnitude int64
	name         string
}

func less(a, b rankKey) bool {
	if a.negMagnitude != b.negMagnitude {
		return a.negMagnitude < b.negMagnitude
	}
	return a.name < b.name
}

func rankValue(r *Row, sortBy SortBy) int64 {
	abs := func(v int64) int64 {
		if v < 0 {
			return -v
		}
		return v
	}
	switch sortBy {
	case SortByVM:
		return abs(r.VMSize)
	case SortByFile:
		return abs(r.FileSize)
	default:
		v, f := abs(r.VMSize), abs(r.FileSize)
		if v > f {
			return v
		}
		return f
	}
}

func rank(r *Row, sortBy SortBy) rankKey {
	return rankKey{negMagnitude: -rankValue(r, sortBy), name: r.Name}
}

// computeRows is bloaty's Rollup::ComputeRows: cosmetic suppression, rank
// sort for the collapse pass (with [None] sunk to the bottom), top-K
// collapse into [Other], final rank sort, percent computation, recursion.
func computeRows(row *Row, children *[]*Row, cur, base *Rollup, opts Options, isToplevel bool) error {
	rows := *children

	if !isToplevel && len(rows) == 1 && (rows[0].Name == "[None]" || rows[0].Name == "[Unmapped]") {
		rows = nil
	}
	if len(rows) == 1 && rows[0].Name == row.Name {
		rows = nil
	}
	if len(rows) == 0 {
		*children = rows
		return nil
	}

	sort.SliceStable(rows, func(i, j int) bool {
		// collapse_rank: rows not named "[None]" always rank above those that are.
		iTop, jTop := rows[i].Name != "[None]", rows[j].Name != "[None]"
		if iTop != jTop {
			return iTop
		}
		return less(rank(rows[i], opts.SortBy), rank(rows[j], opts.SortBy))
	})

	var others Row
	var othersCur, othersBase Rollup
	othersCur.children = map[string]*Rollup{}
	othersBase.children = map[string]*Rollup{}

	for len(rows) > opts.MaxRowsPerLevel {
		last := rows[len(rows)-1]
		rows = rows[:len(rows)-1]

		var err error
		others.VMSize, err = checked.AddI64(others.VMSize, last.VMSize)
		if err != nil {
			return err
		}
		others.FileSize, err = checked.AddI64(others.FileSize, last.FileSize)
		if err != nil {
			return err
		}
		if base != nil {
			if bc, ok := base.children[last.Name]; ok {
				othersBase.vmTotal, err = checked.AddI64(othersBase.vmTotal, bc.vmTotal)
				if err != nil {
					return err
				}
				othersBase.fileTotal, err = checked.AddI64(othersBase.fileTotal, bc.fileTotal)
				if err != nil {
					return err
				}
			}
		}
	}

	if absI64(others.VMSize) > 0 || absI64(others.FileSize) > 0 {
		others.Name = OthersLabel
		others.DiffMode = row.DiffMode
		rows = append(rows, &others)
		othersCur.vmTotal, othersCur.fileTotal = others.VMSize, others.FileSize
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return less(rank(rows[i], opts.SortBy), rank(rows[j], opts.SortBy))
	})

	if base == nil {
		for _, r := range rows {
			r.VMPercent = percent(r.VMSize, row.VMSize)
			r.FilePercent = percent(r.FileSize, row.FileSize)
		}
	}

	for _, r := range rows {
		var childCur, childBase *Rollup
		if r.Name == OthersLabel {
			childCur = &othersCur
			if base != nil {
				childBase = &othersBase
			}
		} else {
			childCur = cur.children[r.Name]
			if childCur == nil {
				return fmt.Errorf("rollup: internal error, no child named %q", r.Name)
			}
			if base != nil {
				if bc, ok := base.children[r.Name]; ok {
					childBase = bc
				} else {
					childBase = New()
				}
			}
		}
		if base != nil {
			r.VMPercent = percent(childCur.vmTotal, childBase.vmTotal)
			r.FilePercent = percent(childCur.fileTotal, childBase.fileTotal)
		}
		if err := createRows(r, childCur, childBase, opts, false); err != nil {
			return err
		}
	}

	*children = rows
	return nil
}

func absI64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
