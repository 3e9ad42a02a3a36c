package rollup

import "testing"

func TestAddSizesAccumulatesAtEveryLevel(t *testing.T) {
	r := New()
	if err := r.AddSizes([]string{".text", "foo"}, 0x40, true); err != nil {
		t.Fatal(err)
	}
	if err := r.AddSizes([]string{".text", "bar"}, 0x20, true); err != nil {
		t.Fatal(err)
	}
	if got := r.VMTotal(); got != 0x60 {
		t.Errorf("root VMTotal = %#x, want 0x60", got)
	}
	text := r.Child(".text")
	if text == nil || text.VMTotal() != 0x60 {
		t.Fatalf(".text child = %+v, want VMTotal 0x60", text)
	}
	if c := text.Child("foo"); c == nil || c.VMTotal() != 0x40 {
		t.Errorf("foo child VMTotal = %+v, want 0x40", c)
	}
}

func TestSubtractLaw(t *testing.T) {
	a := New()
	mustAddSizes(t, a, []string{".text"}, 100, true)
	mustAddSizes(t, a, []string{".data"}, 30, true)

	b := New()
	mustAddSizes(t, b, []string{".text"}, 40, true)
	mustAddSizes(t, b, []string{".rodata"}, 10, true)

	if err := a.Subtract(b); err != nil {
		t.Fatal(err)
	}
	if got := a.VMTotal(); got != 80 {
		t.Errorf("a.VMTotal() = %d, want 80 (130 - 50)", got)
	}
	if got := a.Child(".text").VMTotal(); got != 60 {
		t.Errorf(".text VMTotal = %d, want 60", got)
	}
	if got := a.Child(".rodata").VMTotal(); got != -10 {
		t.Errorf(".rodata VMTotal = %d, want -10 (present only in baseline)", got)
	}
}

func mustAddSizes(t *testing.T, r *Rollup, labels []string, size int64, isVM bool) {
	t.Helper()
	if err := r.AddSizes(labels, size, isVM); err != nil {
		t.Fatalf("AddSizes(%v, %d): %v", labels, size, err)
	}
}
