// Package elfsrc implements the ELF container FileHandler: base maps built
// from segments (or, for object files, sections), plus producers for every
// ELF-flavored data source (sections, segments, symbols, cppsymbols,
// cppxsyms, compileunits, inlines, armembers). It also recognizes Unix ar
// archives and walks their members as independent ELF inputs.
package elfsrc

import (
	"bytes"
	"debug/dwarf"
	"debug/elf"
	"encoding/binary"

	"github.com/gobinsize/gobinsize/internal/arsrc"
	"github.com/gobinsize/gobinsize/internal/binutil"
	"github.com/gobinsize/gobinsize/internal/bloatyerr"
	"github.com/gobinsize/gobinsize/internal/demangle"
	"github.com/gobinsize/gobinsize/internal/dwarfsrc"
	"github.com/gobinsize/gobinsize/internal/rangemap"
)

// Open probes data for the ELF magic or the ar archive magic and returns
// the matching FileHandler, or an Unsupported error so the caller's format
// chain can try Mach-O next.
func Open(input *binutil.InputFile) (binutil.FileHandler, error) {
	data := input.Data()
	if arsrc.IsArchive(data) {
		return newArchiveHandler(data)
	}
	ef, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, bloatyerr.Throw(bloatyerr.Unsupported, "not an ELF file: %v", err)
	}
	return newHandler(data, ef, 0)
}

// Handler implements binutil.FileHandler for one ELF file, executable or
// relocatable object alike. fileBase is added to every file-space offset
// reported to sinks; it is nonzero only when this Handler is processing one
// member of a Unix ar archive, letting an archive member's own
// member-relative section/program offsets land at their true position in
// the archive file.
type Handler struct {
	data         []byte
	ef           *elf.File
	isObject     bool
	fileBase     uint64
	headerRanges []fileRange // ELF header + program/section header tables, computed once
}

// fileRange is a half-open span starting at off, running for size bytes, in file space.
type fileRange struct {
	off, size uint64
}

func newHandler(data []byte, ef *elf.File, fileBase uint64) (*Handler, error) {
	hr, err := computeHeaderRanges(data, ef, fileBase)
	if err != nil {
		return nil, err
	}
	return &Handler{data: data, ef: ef, isObject: ef.Type == elf.ET_REL, fileBase: fileBase, headerRanges: hr}, nil
}

// ProcessBaseMap lays down the canonical labeling: program segments for
// linked binaries, sections for object files (which have none), then the
// [ELF Headers] bookkeeping over the ELF header, section-header table, and
// program-header table (elf.cc's OnElfFile). First-writer-wins means this
// bookkeeping only claims bytes the real segments/sections left alone.
func (h *Handler) ProcessBaseMap(sink *rangemap.RangeSink) error {
	if h.isObject {
		if err := h.processSectionBaseMap(sink); err != nil {
			return err
		}
	} else {
		if err := h.processSegmentBaseMap(sink); err != nil {
			return err
		}
	}
	return h.addHeaderRanges(sink)
}

func (h *Handler) processSegmentBaseMap(sink *rangemap.RangeSink) error {
	for _, prog := range h.ef.Progs {
		if prog.Type != elf.PT_LOAD || prog.Memsz == 0 {
			continue
		}
		label := loadLabel(prog.Flags)
		if err := sink.AddRange(label, prog.Vaddr, prog.Memsz, h.fileBase+prog.Off, prog.Filesz); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) processSectionBaseMap(sink *rangemap.RangeSink) error {
	for _, sec := range h.ef.Sections {
		if sec.Size == 0 || sec.Type == elf.SHT_NULL {
			continue
		}
		fileSize := sec.Size
		if sec.Type == elf.SHT_NOBITS {
			fileSize = 0
		}
		if err := sink.AddRange(sec.Name, sec.Addr, sec.Size, h.fileBase+sec.Offset, fileSize); err != nil {
			return err
		}
	}
	return nil
}

// computeHeaderRanges locates the ELF header and the section/program header
// tables once per Handler. These have no VM address of their own once
// loaded (the kernel doesn't map them at a predictable vaddr for PIEs), so
// they're recorded as file-only ranges. debug/elf.File doesn't expose the
// raw e_phoff/e_shoff fields, so the header is read directly from the input
// bytes here.
func computeHeaderRanges(data []byte, ef *elf.File, fileBase uint64) ([]fileRange, error) {
	var ehsize, phoff, phentsize, phnum, shoff, shentsize, shnum uint64

	if ef.Class == elf.ELFCLASS64 {
		var hdr elf.Header64
		if err := binary.Read(bytes.NewReader(data), ef.ByteOrder, &hdr); err != nil {
			return nil, bloatyerr.Throw(bloatyerr.Malformed, "reading ELF64 header: %v", err)
		}
		ehsize, phoff, phentsize, phnum = uint64(hdr.Ehsize), uint64(hdr.Phoff), uint64(hdr.Phentsize), uint64(hdr.Phnum)
		shoff, shentsize, shnum = uint64(hdr.Shoff), uint64(hdr.Shentsize), uint64(hdr.Shnum)
	} else {
		var hdr elf.Header32
		if err := binary.Read(bytes.NewReader(data), ef.ByteOrder, &hdr); err != nil {
			return nil, bloatyerr.Throw(bloatyerr.Malformed, "reading ELF32 header: %v", err)
		}
		ehsize, phoff, phentsize, phnum = uint64(hdr.Ehsize), uint64(hdr.Phoff), uint64(hdr.Phentsize), uint64(hdr.Phnum)
		shoff, shentsize, shnum = uint64(hdr.Shoff), uint64(hdr.Shentsize), uint64(hdr.Shnum)
	}

	ranges := []fileRange{{off: fileBase, size: ehsize}}
	if phnum > 0 {
		ranges = append(ranges, fileRange{off: fileBase + phoff, size: phentsize * phnum})
	}
	if shnum > 0 {
		ranges = append(ranges, fileRange{off: fileBase + shoff, size: shentsize * shnum})
	}
	return ranges, nil
}

// addHeaderRanges claims this Handler's precomputed header spans as
// [ELF Headers] on sink. Called once for the base map and again for every
// requested data-source sink (see fillUnmapped), so every source's own map
// carries the same header bookkeeping the base map does.
func (h *Handler) addHeaderRanges(sink *rangemap.RangeSink) error {
	for _, r := range h.headerRanges {
		if err := sink.AddFileRange("[ELF Headers]", r.off, r.size); err != nil {
			return err
		}
	}
	return nil
}

// fillUnmapped claims [ELF Headers] and then labels every remaining byte of
// this file (or archive member) [Unmapped] on sink, mirroring elf.cc's
// OnElfFile calling MaybeAddFileRange for every data-source sink after its
// producer runs (elf.cc:557-562). Without this, a data source's own map
// only covers what its producer explicitly claimed, so unclaimed bytes
// would show up as a rollup gap ([None]) instead of [Unmapped], and bytes
// past a source's last claimed range (e.g. the section header table at
// EOF) would be dropped from that source's totals entirely.
func (h *Handler) fillUnmapped(sink *rangemap.RangeSink) error {
	if err := h.addHeaderRanges(sink); err != nil {
		return err
	}
	return sink.AddFileRange("[Unmapped]", h.fileBase, uint64(len(h.data)))
}

func loadLabel(flags elf.ProgFlag) string {
	s := ""
	if flags&elf.PF_R != 0 {
		s += "R"
	}
	if flags&elf.PF_W != 0 {
		s += "W"
	}
	if flags&elf.PF_X != 0 {
		s += "X"
	}
	return "LOAD [" + s + "]"
}

func sectionFlagLabel(flags elf.SectionFlag) string {
	s := ""
	if flags&elf.SHF_ALLOC != 0 {
		s += "A"
	}
	if flags&elf.SHF_WRITE != 0 {
		s += "W"
	}
	if flags&elf.SHF_EXECINSTR != 0 {
		s += "X"
	}
	return "Section [" + s + "]"
}

// ProcessFile dispatches each sink to the producer matching its data
// source name, then fills whatever that producer left unclaimed with
// [ELF Headers]/[Unmapped] (see fillUnmapped) so every source's map ends up
// full file-coverage, exactly like the base map. compileunits/inlines are
// rejected on object files, matching elf.cc's CheckNotObject: DWARF in a
// .o doesn't carry final addresses.
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
		return h.processSegments(sink)
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
		if h.isObject {
			return bloatyerr.Throw(bloatyerr.Unsupported, "compileunits is not supported on object files")
		}
		d, err := h.dwarfDataFor(dwarfData)
		if err != nil {
			return err
		}
		return dwarfsrc.CompileUnits(d, sink)
	case "inlines":
		if h.isObject {
			return bloatyerr.Throw(bloatyerr.Unsupported, "inlines is not supported on object files")
		}
		d, err := h.dwarfDataFor(dwarfData)
		if err != nil {
			return err
		}
		return dwarfsrc.Inlines(d, sink, false)
	case "armembers":
		// Real ELF files (not archive members) have no member names; every
		// byte is simply unattributed for this source, so fillUnmapped
		// claims it all below.
		return nil
	default:
		return bloatyerr.Throw(bloatyerr.NotFound, "elfsrc: unknown data source %q", sink.DataSource())
	}
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
	d, err := h.ef.DWARF()
	if err != nil {
		return nil, bloatyerr.Throw(bloatyerr.Malformed, "reading DWARF data: %v", err)
	}
	*cached = d
	return d, nil
}

// processSections feeds the sections data source directly from raw section
// headers on linked binaries, but falls back to grouping by SHF_ALLOC /
// SHF_WRITE / SHF_EXECINSTR flags on object files (spec's supplemented
// "Section [AWX…]" reporting): -ffunction-sections/-fdata-sections builds
// produce thousands of near-empty sections, so raw names are too granular
// to be a useful top level.
func (h *Handler) processSections(sink *rangemap.RangeSink) error {
	for _, sec := range h.ef.Sections {
		if sec.Size == 0 || sec.Type == elf.SHT_NULL {
			continue
		}
		label := sec.Name
		if h.isObject {
			label = sectionFlagLabel(sec.Flags)
		}
		fileSize := sec.Size
		if sec.Type == elf.SHT_NOBITS {
			fileSize = 0
		}
		if err := sink.AddRange(label, sec.Addr, sec.Size, h.fileBase+sec.Offset, fileSize); err != nil {
			return err
		}
	}
	return nil
}

// processSegments mirrors the base map's own segment labeling for linked
// binaries; on object files there are no segments, so it groups sections by
// their access flags the same way processSections does.
func (h *Handler) processSegments(sink *rangemap.RangeSink) error {
	if h.isObject {
		return h.processSections(sink)
	}
	for _, prog := range h.ef.Progs {
		if prog.Type != elf.PT_LOAD || prog.Memsz == 0 {
			continue
		}
		label := loadLabel(prog.Flags)
		if err := sink.AddRange(label, prog.Vaddr, prog.Memsz, h.fileBase+prog.Off, prog.Filesz); err != nil {
			return err
		}
	}
	return nil
}
