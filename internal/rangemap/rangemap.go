// Package rangemap implements the dual address-space accounting engine's
// non-overlapping interval maps: RangeMap, DualMap, RangeSink, NameMunger,
// and the N-way overlay (ComputeRollup) that joins several labelings of the
// same coordinate space into one tuple stream.
//
// A RangeMap never overlaps itself: every AddRange/AddDualRange call that
// would collide with an existing entry is truncated to the gap around it
// ("first writer wins; subsequent writers fill gaps only"). This is the
// correctness linchpin that lets a base labeling (segments/sections) be
// laid down first and never get clobbered by a less-authoritative producer
// (symbols, compile units, ...).
package rangemap

import (
	"context"
	"log/slog"
	"sort"

	"github.com/gobinsize/gobinsize/internal/checked"
)

// entry is one non-overlapping [start, end) span with a label and an
// optional translation into a companion coordinate space.
//
// The absence of a translation is tracked with an explicit bool rather than
// a sentinel value for otherStart: a UINT64_MAX sentinel collides with
// genuine addresses at the very top of the 64-bit range (see spec Open
// Question (b)). This is the one place this port deliberately diverges
// from bloaty's C++ representation.
type entry struct {
	start, end     uint64
	label          string
	otherStart     uint64
	hasTranslation bool
}

func (e entry) contains(addr uint64) bool {
	return addr >= e.start && addr < e.end
}

// Entry is a read-only view of one stored interval, returned from query
// methods so callers outside this package can inspect a RangeMap's
// contents without reaching into its internals.
type Entry struct {
	Start, End     uint64
	Label          string
	OtherStart     uint64
	HasTranslation bool
}

func (e entry) export() Entry {
	return Entry{
		Start:          e.start,
		End:            e.end,
		Label:          e.label,
		OtherStart:     e.otherStart,
		HasTranslation: e.hasTranslation,
	}
}

// RangeMap is an ordered, non-overlapping collection of labeled intervals
// in one 64-bit coordinate space.
type RangeMap struct {
	entries []entry
	logger  *slog.Logger
}

// New returns an empty RangeMap. Conflict warnings are logged through l;
// pass nil to use slog.Default().
func New(l *slog.Logger) *RangeMap {
	if l == nil {
		l = slog.Default()
	}
	return &RangeMap{logger: l}
}

// Len reports the number of stored entries.
func (m *RangeMap) Len() int { return len(m.entries) }

// At returns the i'th entry in start order.
func (m *RangeMap) At(i int) Entry { return m.entries[i].export() }

// firstAfter returns the index of the first entry whose start is > addr.
func (m *RangeMap) firstAfter(addr uint64) int {
	return sort.Search(len(m.entries), func(i int) bool {
		return m.entries[i].start > addr
	})
}

// FindContaining returns the entry containing addr, if any.
func (m *RangeMap) FindContaining(addr uint64) (Entry, bool) {
	idx := m.findContainingIdx(addr)
	if idx < 0 {
		return Entry{}, false
	}
	return m.entries[idx].export(), true
}

func (m *RangeMap) findContainingIdx(addr uint64) int {
	after := m.firstAfter(addr)
	if after == 0 {
		return -1
	}
	if m.entries[after-1].contains(addr) {
		return after - 1
	}
	return -1
}

// FindContainingOrAfter returns the entry containing addr, or failing that
// the first entry whose start is after addr. The second return is false
// only when no such entry exists (addr is past every stored interval).
func (m *RangeMap) FindContainingOrAfter(addr uint64) (Entry, bool) {
	idx := m.findContainingOrAfterIdx(addr)
	if idx >= len(m.entries) {
		return Entry{}, false
	}
	return m.entries[idx].export(), true
}

func (m *RangeMap) findContainingOrAfterIdx(addr uint64) int {
	after := m.firstAfter(addr)
	if after > 0 && m.entries[after-1].contains(addr) {
		return after - 1
	}
	return after
}

// AddRange adds [addr, addr+size) labeled val, with no translation into a
// companion space. A size of zero is a no-op.
func (m *RangeMap) AddRange(addr, size uint64, val string) error {
	return m.addDualRange(addr, size, 0, false, val)
}

// AddDualRange adds [addr, addr+size) labeled val, recording that it
// corresponds to the range starting at otherAddr in a companion coordinate
// space. A size of zero is a no-op.
func (m *RangeMap) AddDualRange(addr, size, otherAddr uint64, val string) error {
	return m.addDualRange(addr, size, otherAddr, true, val)
}

func (m *RangeMap) addDualRange(addr, size, otherAddr uint64, hasOther bool, val string) error {
	if size == 0 {
		return nil
	}

	base := addr
	end, err := checked.AddU64(addr, size)
	if err != nil {
		return err
	}

	idx := m.findContainingOrAfterIdx(addr)

	for {
		for idx < len(m.entries) && m.entries[idx].contains(addr) {
			existing := m.entries[idx]
			if m.logger.Enabled(context.Background(), slog.LevelDebug) {
				m.logger.Debug("range conflict: first writer wins",
					slog.Uint64("new_start", addr), slog.Uint64("new_end", end),
					slog.String("new_label", val),
					slog.Uint64("existing_start", existing.start),
					slog.Uint64("existing_end", existing.end),
					slog.String("existing_label", existing.label))
			}
			addr = existing.end
			idx++
		}

		if addr >= end {
			return nil
		}

		thisEnd := end
		if idx < len(m.entries) && end > m.entries[idx].start {
			thisEnd = min(end, m.entries[idx].start)
			if m.logger.Enabled(context.Background(), slog.LevelDebug) {
				m.logger.Debug("range truncated to fill gap",
					slog.Uint64("start", addr), slog.Uint64("requested_end", end),
					slog.Uint64("truncated_end", thisEnd), slog.String("label", val))
			}
		}

		var other uint64
		if hasOther {
			delta, err := checked.SubU64(addr, base)
			if err != nil {
				return err
			}
			other, err = checked.AddU64(delta, otherAddr)
			if err != nil {
				return err
			}
		}

		e := entry{start: addr, end: thisEnd, label: val, otherStart: other, hasTranslation: hasOther}
		m.entries = insertAt(m.entries, idx, e)
		idx++
		addr = thisEnd
	}
}

func insertAt(entries []entry, idx int, e entry) []entry {
	entries = append(entries, entry{})
	copy(entries[idx+1:], entries[idx:])
	entries[idx] = e
	return entries
}

// Translate maps addr into the companion coordinate space, returning false
// if addr isn't covered or its entry has no translation. Translation
// failure is never an error: the caller simply doesn't propagate the range
// into the other space.
func (m *RangeMap) Translate(addr uint64) (translated uint64, ok bool) {
	idx := m.findContainingIdx(addr)
	if idx < 0 || !m.entries[idx].hasTranslation {
		return 0, false
	}
	return translateWithEntry(m.entries[idx], addr), true
}

func translateWithEntry(e entry, addr uint64) uint64 {
	return addr - e.start + e.otherStart
}

// translateAndTrimRange clips [addr, end) to e's domain and translates the
// clipped range, reporting false if the result is empty or e has no
// translation.
func translateAndTrimRange(e entry, addr, end uint64) (outAddr, outSize uint64, ok bool) {
	if addr < e.start {
		addr = e.start
	}
	if end > e.end {
		end = e.end
	}
	if addr >= end || !e.hasTranslation {
		return 0, 0, false
	}
	return translateWithEntry(e, addr), end - addr, true
}

// AddRangeWithTranslation adds [addr, size) to m under val, and for each
// sub-interval of [addr, addr+size) that falls within a translator entry
// carrying a translation, adds the translated sub-interval (same label) to
// other. A single input range may fan out to multiple output ranges if it
// spans several translator entries — e.g. an archive member spanning
// several sections.
func (m *RangeMap) AddRangeWithTranslation(addr, size uint64, val string, translator *RangeMap, other *RangeMap) error {
	if err := m.AddRange(addr, size, val); err != nil {
		return err
	}

	end, err := checked.AddU64(addr, size)
	if err != nil {
		return err
	}

	idx := translator.findContainingOrAfterIdx(addr)
	for idx < len(translator.entries) && translator.entries[idx].start < end {
		if thisAddr, thisSize, ok := translateAndTrimRange(translator.entries[idx], addr, end); ok {
			if err := other.AddRange(thisAddr, thisSize, val); err != nil {
				return err
			}
		}
		idx++
	}
	return nil
}
