package elfsrc

import (
	"debug/elf"
	"sort"
)

// synthesizeSizes fills in sizes for zero-sized symbols, the heuristic
// ported from other_examples/aclements-go-obj__size.go's SynthesizeSizes:
// group same-section symbols by address, and for each group missing a size,
// use the gap to the next distinct address in the same section, or the
// remaining space in the section for the last group.
func synthesizeSizes(syms []elf.Symbol, ef *elf.File) {
	type key struct {
		section elf.SectionIndex
		value   uint64
	}
	var todo []int
	for i, s := range syms {
		if s.Section == elf.SHN_UNDEF || int(s.Section) >= len(ef.Sections) {
			continue
		}
		switch elf.ST_TYPE(s.Info) {
		case elf.STT_SECTION, elf.STT_FILE:
			continue
		}
		todo = append(todo, i)
	}

	sort.Slice(todo, func(a, b int) bool {
		sa, sb := syms[todo[a]], syms[todo[b]]
		if sa.Section != sb.Section {
			return sa.Section < sb.Section
		}
		return sa.Value < sb.Value
	})

	groupKey := func(i int) key { return key{syms[todo[i]].Section, syms[todo[i]].Value} }

	for i := 0; i < len(todo); {
		j := i + 1
		for j < len(todo) && groupKey(j) == groupKey(i) {
			j++
		}

		anyZero := false
		for k := i; k < j; k++ {
			if syms[todo[k]].Size == 0 {
				anyZero = true
				break
			}
		}
		if !anyZero {
			i = j
			continue
		}

		sec := ef.Sections[syms[todo[i]].Section]
		value := syms[todo[i]].Value
		var size uint64
		if j == len(todo) || syms[todo[j]].Section != syms[todo[i]].Section {
			if sec.Addr+sec.Size > value {
				size = sec.Addr + sec.Size - value
			}
		} else {
			size = syms[todo[j]].Value - value
		}

		for k := i; k < j; k++ {
			if syms[todo[k]].Size == 0 {
				syms[todo[k]].Size = size
			}
		}
		i = j
	}
}
