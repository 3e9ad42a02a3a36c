package rangemap

import "testing"

// TestSinkAddRangeDualAndOverflow exercises E1/E2: a section with equal
// VM/file size adds a dual range both sides; a bss-like section (vm > file)
// adds the remainder VM-only with no translation.
func TestSinkAddRangeDualAndOverflow(t *testing.T) {
	base := NewDualMap(nil)
	baseSink := NewRangeSink("a.out", "base", nil, nil)
	baseSink.AddOutput(base, NewNameMunger())
	if err := baseSink.AddRange(".text", 0x1000, 0x100, 0x400, 0x100); err != nil {
		t.Fatal(err)
	}
	if err := baseSink.AddRange(".bss", 0x3000, 0x80, 0x600, 0); err != nil {
		t.Fatal(err)
	}

	if got := base.VM.Len(); got != 2 {
		t.Fatalf("base.VM.Len() = %d, want 2", got)
	}
	if got := base.File.Len(); got != 1 {
		t.Fatalf("base.File.Len() = %d, want 1 (.bss has no file backing)", got)
	}

	if fileAddr, ok := base.VM.Translate(0x1050); !ok || fileAddr != 0x450 {
		t.Errorf("Translate(0x1050) = %#x, %v, want 0x450, true", fileAddr, ok)
	}
	if _, ok := base.VM.Translate(0x3010); ok {
		t.Error(".bss range should carry no translation")
	}
}

func TestSinkAddVMRangeRequiresTranslator(t *testing.T) {
	dual := NewDualMap(nil)
	sink := NewRangeSink("a.out", "symbols", nil, nil)
	sink.AddOutput(dual, NewNameMunger())
	if err := sink.AddVMRange(0x1000, 0x10, "foo"); err == nil {
		t.Error("AddVMRange without a translator should error")
	}
}

func TestSinkAddVMRangeFansOutThroughBase(t *testing.T) {
	base := NewDualMap(nil)
	baseSink := NewRangeSink("a.out", "base", nil, nil)
	baseSink.AddOutput(base, NewNameMunger())
	if err := baseSink.AddRange(".text", 0x1000, 0x100, 0x400, 0x100); err != nil {
		t.Fatal(err)
	}

	symbols := NewDualMap(nil)
	symSink := NewRangeSink("a.out", "symbols", base, nil)
	symSink.AddOutput(symbols, NewNameMunger())
	if err := symSink.AddVMRange(0x1000, 0x40, "foo"); err != nil {
		t.Fatal(err)
	}

	if got := symbols.VM.Len(); got != 1 {
		t.Fatalf("symbols.VM.Len() = %d, want 1", got)
	}
	if got := symbols.File.Len(); got != 1 {
		t.Fatalf("symbols.File.Len() = %d, want 1 (translated via base)", got)
	}
	if e := symbols.File.At(0); e.Start != 0x400 || e.End != 0x440 {
		t.Errorf("symbols.File entry = %+v, want [0x400,0x440)", e)
	}
}

func TestSinkMungerAppliesPerOutput(t *testing.T) {
	dual := NewDualMap(nil)
	munger := NewNameMunger()
	munger.AddRegex(`^\.text\..*`, ".text")

	sink := NewRangeSink("a.out", "sections", nil, nil)
	sink.AddOutput(dual, munger)
	if err := sink.AddRange(".text.hot", 0x1000, 0x40, 0x400, 0x40); err != nil {
		t.Fatal(err)
	}
	if e := dual.VM.At(0); e.Label != ".text" {
		t.Errorf("label = %q, want .text after munging", e.Label)
	}
}
