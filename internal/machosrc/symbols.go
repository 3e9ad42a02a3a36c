package machosrc

import (
	"sort"

	"github.com/gobinsize/gobinsize/internal/bloatyerr"
	"github.com/gobinsize/gobinsize/internal/rangemap"
)

type nameTransform func(name string) (string, error)

// processSymbols synthesizes every symbol's size: Mach-O's nlist records
// carry no size field at all, unlike ELF's st_size, so sizing is always a
// heuristic here — group symbols by (section, address) and use the gap to
// the next distinct address, capped at the section's own end for the last
// group in each section. Same structure as elfsrc's synthesizeSizes
// (grounded on the same other_examples/aclements-go-obj__size.go source),
// just unconditional since there is never a real size to prefer.
func (h *Handler) processSymbols(sink *rangemap.RangeSink, transform nameTransform) error {
	if h.mf.Symtab == nil {
		return bloatyerr.Throw(bloatyerr.NotFound, "no symbol table")
	}
	syms := h.mf.Symtab.Syms

	idx := make([]int, 0, len(syms))
	for i, s := range syms {
		if s.Sect == 0 || int(s.Sect) > len(h.mf.Sections) {
			continue
		}
		idx = append(idx, i)
	}
	sort.Slice(idx, func(a, b int) bool {
		sa, sb := syms[idx[a]], syms[idx[b]]
		if sa.Sect != sb.Sect {
			return sa.Sect < sb.Sect
		}
		return sa.Value < sb.Value
	})

	size := make([]uint64, len(syms))
	for i := 0; i < len(idx); {
		j := i + 1
		for j < len(idx) && syms[idx[j]].Sect == syms[idx[i]].Sect && syms[idx[j]].Value == syms[idx[i]].Value {
			j++
		}
		sec := h.mf.Sections[syms[idx[i]].Sect-1]
		value := syms[idx[i]].Value
		var s uint64
		if j == len(idx) || syms[idx[j]].Sect != syms[idx[i]].Sect {
			if sec.Addr+sec.Size > value {
				s = sec.Addr + sec.Size - value
			}
		} else {
			s = syms[idx[j]].Value - value
		}
		for k := i; k < j; k++ {
			size[idx[k]] = s
		}
		i = j
	}

	for i, sym := range syms {
		if size[i] == 0 {
			continue
		}
		name := sym.Name
		var err error
		if name == "" {
			name = "[None]"
		} else if transform != nil {
			name, err = transform(name)
			if err != nil {
				return err
			}
		}
		if err := sink.AddVMRangeAllowAlias(sym.Value, size[i], name); err != nil {
			return err
		}
	}
	return nil
}
