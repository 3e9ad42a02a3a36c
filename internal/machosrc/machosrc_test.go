package machosrc

import (
	"debug/macho"
	"testing"

	"github.com/gobinsize/gobinsize/internal/rangemap"
)

func newCapturingSink() (*rangemap.RangeSink, *rangemap.DualMap) {
	m := rangemap.NewDualMap(nil)
	sink := rangemap.NewRangeSink("test.macho", "segments", nil, nil)
	sink.AddOutput(m, rangemap.NewNameMunger())
	return sink, m
}

func valueAt(m *rangemap.RangeMap, addr uint64) (string, bool) {
	e, ok := m.FindContaining(addr)
	return e.Label, ok
}

func TestProcessBaseMapLabelsBySegmentName(t *testing.T) {
	h := &Handler{mf: &macho.File{
		Loads: []macho.Load{
			&macho.Segment{SegmentHeader: macho.SegmentHeader{
				Name: "__TEXT", Addr: 0x1000, Memsz: 0x100, Offset: 0, Filesz: 0x100,
			}},
		},
	}}
	sink, m := newCapturingSink()
	if err := h.ProcessBaseMap(sink); err != nil {
		t.Fatal(err)
	}
	label, ok := valueAt(m.VM, 0x1050)
	if !ok || label != "__TEXT" {
		t.Errorf("label = %q, ok = %v, want __TEXT", label, ok)
	}
}

func TestProcessBaseMapSkipsZeroSizedSegments(t *testing.T) {
	h := &Handler{mf: &macho.File{
		Loads: []macho.Load{
			&macho.Segment{SegmentHeader: macho.SegmentHeader{Name: "__PAGEZERO", Addr: 0, Memsz: 0}},
			&macho.Segment{SegmentHeader: macho.SegmentHeader{Name: "__TEXT", Addr: 0x1000, Memsz: 0x10, Offset: 0, Filesz: 0x10}},
		},
	}}
	sink, m := newCapturingSink()
	if err := h.ProcessBaseMap(sink); err != nil {
		t.Fatal(err)
	}
	if _, ok := valueAt(m.VM, 0); ok {
		t.Error("__PAGEZERO has zero memsz and should claim no range")
	}
	if label, ok := valueAt(m.VM, 0x1000); !ok || label != "__TEXT" {
		t.Errorf("label = %q, ok = %v, want __TEXT", label, ok)
	}
}

func TestProcessSectionsZerofillHasNoFileBacking(t *testing.T) {
	h := &Handler{mf: &macho.File{
		Sections: []*macho.Section{
			{SectionHeader: macho.SectionHeader{
				Name: "__bss", Addr: 0x2000, Size: 0x40, Offset: 0x500, Flags: sectionTypeZerofill,
			}},
		},
	}}
	sink, m := newCapturingSink()
	if err := h.processSections(sink); err != nil {
		t.Fatal(err)
	}
	if _, ok := valueAt(m.File, 0x500); ok {
		t.Error("__bss should not claim any file-space bytes")
	}
	if label, ok := valueAt(m.VM, 0x2000); !ok || label != "__bss" {
		t.Errorf("VM label = %q, ok = %v, want __bss", label, ok)
	}
}

func TestProcessFileDispatchesSegmentsThroughProcessBaseMap(t *testing.T) {
	h := &Handler{mf: &macho.File{
		Loads: []macho.Load{
			&macho.Segment{SegmentHeader: macho.SegmentHeader{Name: "__DATA", Addr: 0x3000, Memsz: 0x20, Offset: 0x20, Filesz: 0x20}},
		},
	}}
	sink, m := newCapturingSink()
	if err := h.ProcessFile([]*rangemap.RangeSink{sink}); err != nil {
		t.Fatal(err)
	}
	if label, ok := valueAt(m.VM, 0x3000); !ok || label != "__DATA" {
		t.Errorf("label = %q, ok = %v, want __DATA", label, ok)
	}
}

func TestProcessFileUnknownDataSourceErrors(t *testing.T) {
	h := &Handler{mf: &macho.File{}}
	m := rangemap.NewDualMap(nil)
	sink := rangemap.NewRangeSink("test.macho", "bogus", nil, nil)
	sink.AddOutput(m, rangemap.NewNameMunger())
	if err := h.ProcessFile([]*rangemap.RangeSink{sink}); err == nil {
		t.Error("expected an error for an unrecognized data source")
	}
}
