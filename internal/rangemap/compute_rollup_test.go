package rangemap

import "testing"

// TestComputeRollupSingleSource exercises E1: a single sections map should
// overlay onto itself unchanged, one entry per section.
func TestComputeRollupSingleSource(t *testing.T) {
	sections := New(nil)
	mustAdd(t, sections, 0x1000, 0x100, ".text")
	mustAdd(t, sections, 0x2000, 0x40, ".data")

	entries := ComputeRollup([]*RangeMap{sections})
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Labels[0] != ".text" || entries[0].Start != 0x1000 || entries[0].End != 0x1100 {
		t.Errorf("entries[0] = %+v, want .text [0x1000,0x1100)", entries[0])
	}
	if entries[1].Labels[0] != ".data" || entries[1].Start != 0x2000 || entries[1].End != 0x2040 {
		t.Errorf("entries[1] = %+v, want .data [0x2000,0x2040)", entries[1])
	}
}

// TestComputeRollupTwoSources exercises E3: sections + symbols overlaid
// produces (.text, foo) for the symbol's extent and (.text, [None]) for the
// rest of the section.
func TestComputeRollupTwoSources(t *testing.T) {
	sections := New(nil)
	mustAdd(t, sections, 0x1000, 0x100, ".text")

	symbols := New(nil)
	mustAdd(t, symbols, 0x1000, 0x40, "foo")

	entries := ComputeRollup([]*RangeMap{sections, symbols})
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2: %+v", len(entries), entries)
	}
	if got := entries[0]; got.Labels[0] != ".text" || got.Labels[1] != "foo" || got.End-got.Start != 0x40 {
		t.Errorf("entries[0] = %+v, want (.text, foo) size 0x40", got)
	}
	if got := entries[1]; got.Labels[0] != ".text" || got.Labels[1] != "[None]" || got.End-got.Start != 0xc0 {
		t.Errorf("entries[1] = %+v, want (.text, [None]) size 0xc0", got)
	}
}

// TestComputeRollupGapProducesNone covers a map with a gap the other maps
// don't share: the gap still shows up as [None] for that map alone, and
// overlay completeness holds (every covered coordinate appears in exactly
// one emitted sub-interval).
func TestComputeRollupGapProducesNone(t *testing.T) {
	a := New(nil)
	mustAdd(t, a, 0, 0x100, "a1")
	mustAdd(t, a, 0x200, 0x100, "a2")

	b := New(nil)
	mustAdd(t, b, 0, 0x300, "b1")

	entries := ComputeRollup([]*RangeMap{a, b})
	var covered uint64
	for i, e := range entries {
		if i > 0 && entries[i-1].End != e.Start {
			t.Errorf("gap between entries %d and %d: %+v then %+v", i-1, i, entries[i-1], e)
		}
		covered += e.End - e.Start
	}
	if covered != 0x300 {
		t.Errorf("total covered = %#x, want 0x300", covered)
	}

	// The [0x100,0x200) gap in `a` must appear labeled [None] for a, b1 for b.
	found := false
	for _, e := range entries {
		if e.Start == 0x100 && e.End == 0x200 {
			found = true
			if e.Labels[0] != "[None]" || e.Labels[1] != "b1" {
				t.Errorf("gap entry = %+v, want ([None], b1)", e)
			}
		}
	}
	if !found {
		t.Error("expected an entry over [0x100,0x200)")
	}
}

func mustAdd(t *testing.T, m *RangeMap, addr, size uint64, label string) {
	t.Helper()
	if err := m.AddRange(addr, size, label); err != nil {
		t.Fatalf("AddRange(%#x, %#x, %q): %v", addr, size, label, err)
	}
}
