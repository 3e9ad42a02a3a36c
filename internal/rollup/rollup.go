// Package rollup implements the hierarchical tally tree that sits on top of
// the N-way overlay: every (labels, start, end) tuple rangemap.ComputeRollup
// emits is folded in here as a signed size at every level of the label
// tuple, and output shaping (sign-based bucketing, ranked sort, [Other]
// collapse, percent computation, cosmetic suppression) turns the tree into
// the rows a renderer actually prints.
package rollup

import "github.com/gobinsize/gobinsize/internal/checked"

// Rollup is one node of the multi-level tally tree, keyed by label tuples.
// The root represents the grand total ("TOTAL"); each level below it
// corresponds to one position in the label tuple passed to AddSizes.
type Rollup struct {
	vmTotal, fileTotal int64
	children           map[string]*Rollup
}

// New returns an empty Rollup node.
func New() *Rollup {
	return &Rollup{children: map[string]*Rollup{}}
}

// VMTotal returns the accumulated signed VM-space size at this node.
func (r *Rollup) VMTotal() int64 { return r.vmTotal }

// FileTotal returns the accumulated signed file-space size at this node.
func (r *Rollup) FileTotal() int64 { return r.fileTotal }

// Child returns the named child, or nil if absent.
func (r *Rollup) Child(name string) *Rollup { return r.children[name] }

// AddSizes adds size bytes to this node and to the chain of descendants
// named by labels, in order. isVM selects whether size lands in vmTotal or
// fileTotal at every level traversed; a driver calls this once per overlay
// tuple for the VM side and once for the file side.
func (r *Rollup) AddSizes(labels []string, size int64, isVM bool) error {
	return r.addInternal(labels, 0, size, isVM)
}

func (r *Rollup) addInternal(labels []string, i int, size int64, isVM bool) error {
	var err error
	if isVM {
		r.vmTotal, err = checked.AddI64(r.vmTotal, size)
	} else {
		r.fileTotal, err = checked.AddI64(r.fileTotal, size)
	}
	if err != nil {
		return err
	}
	if i >= len(labels) {
		return nil
	}
	child := r.children[labels[i]]
	if child == nil {
		child = New()
		r.children[labels[i]] = child
	}
	return child.addInternal(labels, i+1, size, isVM)
}

// Subtract subtracts other's totals from this node's, descending into every
// child that exists in either tree. Children present only in other are
// created here with a zero base before subtracting, so they end up with
// negative totals representing "present in the baseline, gone now".
func (r *Rollup) Subtract(other *Rollup) error {
	var err error
	r.vmTotal, err = checked.SubI64(r.vmTotal, other.vmTotal)
	if err != nil {
		return err
	}
	r.fileTotal, err = checked.SubI64(r.fileTotal, other.fileTotal)
	if err != nil {
		return err
	}
	for name, otherChild := range other.children {
		child := r.children[name]
		if child == nil {
			child = New()
			r.children[name] = child
		}
		if err := child.Subtract(otherChild); err != nil {
			return err
		}
	}
	return nil
}
