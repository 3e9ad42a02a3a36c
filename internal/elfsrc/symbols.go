package elfsrc

import (
	"debug/elf"

	"github.com/gobinsize/gobinsize/internal/bloatyerr"
	"github.com/gobinsize/gobinsize/internal/rangemap"
)

// nameTransform optionally rewrites a raw symbol name into its label: nil
// for the plain symbols source, c++filt demangling for cppsymbols, and
// demangling followed by StripCppxsyms for cppxsyms.
type nameTransform func(name string) (string, error)

func (h *Handler) processSymbols(sink *rangemap.RangeSink, transform nameTransform) error {
	syms, err := h.ef.Symbols()
	if err != nil {
		syms, err = h.ef.DynamicSymbols()
		if err != nil {
			return bloatyerr.Throw(bloatyerr.NotFound, "no symbol table: %v", err)
		}
	}

	synthesizeSizes(syms, h.ef)

	for _, sym := range syms {
		if sym.Section == elf.SHN_UNDEF || sym.Size == 0 {
			continue
		}
		switch elf.ST_TYPE(sym.Info) {
		case elf.STT_SECTION, elf.STT_FILE:
			continue
		}

		name := sym.Name
		if name == "" {
			name = "[None]"
		} else if transform != nil {
			name, err = transform(name)
			if err != nil {
				return err
			}
		}
		if err := sink.AddVMRangeAllowAlias(sym.Value, sym.Size, name); err != nil {
			return err
		}
	}
	return nil
}
