// Package machosrc implements the Mach-O container FileHandler: segments
// for the base map, plus producers for sections, segments,
// symbols, cppsymbols, cppxsyms, compileunits, and inlines. Mach-O has no
// archive-member or object-file (relocatable) distinction worth carrying —
// every Mach-O input here is a linked image.
package machosrc

import (
	"bytes"
	"debug/dwarf"
	"debug/macho"

	"github.com/gobinsize/gobinsize/internal/binutil"
	"github.com/gobinsize/gobinsize/internal/bloatyerr"
	"github.com/gobinsize/gobinsize/internal/demangle"
	"github.com/gobinsize/gobinsize/internal/dwarfsrc"
	"github.com/gobinsize/gobinsize/internal/rangemap"
)

// Open probes data for the Mach-O magic, returning Unsupported if it
// doesn't match so the caller's format chain can move on.
func Open(input *binutil.InputFile) (binutil.FileHandler, error) {
	mf, err := macho.NewFile(bytes.NewReader(input.Data()))
	if err != nil {
		return nil, bloatyerr.Throw(bloatyerr.Unsupported, "not a Mach-O file: %v", err)
	}
	return &Handler{mf: mf, size: input.Size()}, nil
}

// Handler implements binutil.FileHandler for one Mach-O image.
type Handler struct {
	mf   *macho.File
	size uint64 // full input length, for fillUnmapped's file-space coverage fill
}

// ProcessBaseMap lays down one range per LC_SEGMENT, labeled by its name
// (e.g. "__TEXT", "__DATA"), mirroring elf.cc's approach of using the
// container's own canonical top-level division as the base labeling.
func (h *Handler) ProcessBaseMap(sink *rangemap.RangeSink) error {
	for _, l := range h.mf.Loads {
		seg, ok := l.(*macho.Segment)
		if !ok || seg.Memsz == 0 {
			continue
		}
		if err := sink.AddRange(seg.Name, seg.Addr, seg.Memsz, seg.Offset, seg.Filesz); err != nil {
			return err
		}
	}
	return nil
}

// ProcessFile dispatches each sink to its producer, then labels whatever
// that producer left unclaimed [Unmapped] (fillUnmapped), the same
// coverage-completion fix internal/elfsrc's ProcessFile applies: without
// it, a source's own map only covers what its producer explicitly claimed,
// so unclaimed bytes would surface as a rollup gap instead of [Unmapped]
// and bytes past a source's last claimed range would be dropped from that
// source's totals entirely.
func (h *Handler) ProcessFile(sinks []*rangemap.RangeSink) error {
	var dwarfData *dwarf.Data
	var demangler *demangle.Demangler
	defer func() {
		if demangler != nil {
			_ = demangler.Close()
		}
	}()

	for _, sink := range sinks {
		if err := h.processSink(sink, &dwarfData, &demangler); err != nil {
			return err
		}
		if err := h.fillUnmapped(sink); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) processSink(sink *rangemap.RangeSink, dwarfData **dwarf.Data, demangler **demangle.Demangler) error {
	switch string(sink.DataSource()) {
	case "sections":
		return h.processSections(sink)
	case "segments":
		return h.ProcessBaseMap(sink)
	case "symbols":
		return h.processSymbols(sink, nil)
	case "cppsymbols":
		d, err := demanglerFor(demangler)
		if err != nil {
			return err
		}
		return h.processSymbols(sink, d.Demangle)
	case "cppxsyms":
		d, err := demanglerFor(demangler)
		if err != nil {
			return err
		}
		transform := func(name string) (string, error) {
			demangled, err := d.Demangle(name)
			if err != nil {
				return "", err
			}
			return demangle.StripCppxsyms(demangled), nil
		}
		return h.processSymbols(sink, transform)
	case "compileunits":
		d, err := h.dwarfDataFor(dwarfData)
		if err != nil {
			return err
		}
		return dwarfsrc.CompileUnits(d, sink)
	case "inlines":
		d, err := h.dwarfDataFor(dwarfData)
		if err != nil {
			return err
		}
		return dwarfsrc.Inlines(d, sink, false)
	case "armembers":
		// Mach-O has no archive-member concept; every byte is simply
		// unattributed for this source, so fillUnmapped claims it all below.
		return nil
	default:
		return bloatyerr.Throw(bloatyerr.NotFound, "machosrc: unknown data source %q", sink.DataSource())
	}
}

// fillUnmapped labels every byte of the input this sink hasn't already
// claimed [Unmapped], giving every data source the same full file-space
// coverage the base map has.
func (h *Handler) fillUnmapped(sink *rangemap.RangeSink) error {
	return sink.AddFileRange("[Unmapped]", 0, h.size)
}

func demanglerFor(d **demangle.Demangler) (*demangle.Demangler, error) {
	if *d != nil {
		return *d, nil
	}
	if !demangle.Available() {
		return nil, bloatyerr.Throw(bloatyerr.Unsupported, "c++filt not found on PATH; cppsymbols/cppxsyms require it")
	}
	nd, err := demangle.New()
	if err != nil {
		return nil, err
	}
	*d = nd
	return nd, nil
}

func (h *Handler) dwarfDataFor(cached **dwarf.Data) (*dwarf.Data, error) {
	if *cached != nil {
		return *cached, nil
	}
	d, err := h.mf.DWARF()
	if err != nil {
		return nil, bloatyerr.Throw(bloatyerr.Malformed, "reading DWARF data: %v", err)
	}
	*cached = d
	return d, nil
}

func (h *Handler) processSections(sink *rangemap.RangeSink) error {
	for _, sec := range h.mf.Sections {
		if sec.Size == 0 {
			continue
		}
		fileSize := uint64(sec.Size)
		if sec.Flags&0xff == sectionTypeZerofill {
			fileSize = 0
		}
		if err := sink.AddRange(sec.Name, sec.Addr, sec.Size, uint64(sec.Offset), fileSize); err != nil {
			return err
		}
	}
	return nil
}

// sectionTypeZerofill is S_ZEROFILL (0x1) masked against the low byte of a
// Mach-O section's flags, marking BSS-like sections with no file backing.
const sectionTypeZerofill = 0x1
