package rangemap

import "testing"

func TestNameMungerIdentityWhenEmpty(t *testing.T) {
	m := NewNameMunger()
	if !m.IsEmpty() {
		t.Error("new munger should be empty")
	}
	if got := m.Munge(".text.foo"); got != ".text.foo" {
		t.Errorf("Munge on empty munger = %q, want unchanged", got)
	}
}

func TestNameMungerFirstMatchWins(t *testing.T) {
	m := NewNameMunger()
	m.AddRegex(`^\.text\..*`, ".text")
	m.AddRegex(`^\.(text|data)\..*`, ".$1")

	if got := m.Munge(".text.foo"); got != ".text" {
		t.Errorf("Munge(.text.foo) = %q, want .text from the first rule", got)
	}
	if got := m.Munge(".data.bar"); got != ".data" {
		t.Errorf("Munge(.data.bar) = %q, want .data from the second rule", got)
	}
	if got := m.Munge(".rodata.baz"); got != ".rodata.baz" {
		t.Errorf("Munge(.rodata.baz) = %q, want unchanged (no rule matches)", got)
	}
}

func TestNameMungerSkipsReservedLabels(t *testing.T) {
	m := NewNameMunger()
	m.AddRegex(`.*`, "rewritten")

	if got := m.Munge("[Unmapped]"); got != "[Unmapped]" {
		t.Errorf("Munge([Unmapped]) = %q, reserved labels must never be munged", got)
	}
	if got := m.Munge("anything"); got != "rewritten" {
		t.Errorf("Munge(anything) = %q, want rewritten", got)
	}
}
