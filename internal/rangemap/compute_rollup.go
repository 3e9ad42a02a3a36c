package rangemap

// RollupEntry is one maximal sub-interval of the union of several maps'
// domains, together with each map's label over that sub-interval ("[None]"
// where a map has no entry covering it).
type RollupEntry struct {
	Labels     []string
	Start, End uint64
}

// ComputeRollup performs the N-way lockstep overlay: given several
// RangeMaps over the *same* coordinate space (all VM, or all file), it
// walks them together and emits one RollupEntry per maximal sub-interval
// over which every map's label stays constant. This is what turns "the
// segment map" + "the compile-unit map" + "the symbol map" into the single
// partitioned stream the Rollup trie tallies against.
//
// The overlay starts at the lowest Start among all maps' first entries (not
// at 0), and an interval is only emitted when have_data — at least one map
// has a real label, not [None], at current (spec §4.4 step b/d). Every map
// passed in is expected to already be full-coverage over the region its
// caller cares about (callers fill gaps with [Unmapped] beforehand);
// ComputeRollup itself treats every map identically, with no special
// handling for any particular index.
func ComputeRollup(maps []*RangeMap) []RollupEntry {
	n := len(maps)
	idx := make([]int, n)
	var out []RollupEntry
	current := ^uint64(0)
	for _, m := range maps {
		if m.Len() > 0 {
			if s := m.At(0).Start; s < current {
				current = s
			}
		}
	}
	if current == ^uint64(0) {
		current = 0
	}

	for {
		labels := make([]string, n)
		nextBreak := ^uint64(0)
		haveRemaining := false
		haveData := false

		for i, m := range maps {
			if idx[i] >= m.Len() {
				labels[i] = "[None]"
				continue
			}
			e := m.At(idx[i])
			haveRemaining = true
			if current < e.Start {
				labels[i] = "[None]"
				if e.Start < nextBreak {
					nextBreak = e.Start
				}
			} else {
				labels[i] = e.Label
				haveData = true
				if e.End < nextBreak {
					nextBreak = e.End
				}
			}
		}

		if !haveRemaining {
			break
		}

		if haveData && nextBreak > current {
			out = append(out, RollupEntry{Labels: labels, Start: current, End: nextBreak})
		}

		for i, m := range maps {
			if idx[i] >= m.Len() {
				continue
			}
			e := m.At(idx[i])
			if current >= e.Start && e.End == nextBreak {
				idx[i]++
			}
		}
		current = nextBreak
	}

	return out
}
