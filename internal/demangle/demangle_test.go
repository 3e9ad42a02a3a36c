package demangle

import "testing"

func TestStripCppxsymsRemovesTrailingConst(t *testing.T) {
	if got := StripCppxsyms("Foo::Bar() const"); got != "Foo::Bar" {
		t.Errorf("StripCppxsyms = %q, want Foo::Bar", got)
	}
}

func TestStripCppxsymsRemovesBalancedParamList(t *testing.T) {
	if got := StripCppxsyms("Foo::Bar(int, std::string)"); got != "Foo::Bar" {
		t.Errorf("StripCppxsyms = %q, want Foo::Bar", got)
	}
}

func TestStripCppxsymsHandlesNestedParens(t *testing.T) {
	if got := StripCppxsyms("Foo::Bar(std::vector<std::pair<int, int>>)"); got != "Foo::Bar" {
		t.Errorf("StripCppxsyms = %q, want Foo::Bar", got)
	}
}

func TestStripCppxsymsLeavesNonFunctionNamesAlone(t *testing.T) {
	if got := StripCppxsyms("Foo::kConstant"); got != "Foo::kConstant" {
		t.Errorf("StripCppxsyms = %q, want unchanged", got)
	}
}

func TestStripCppxsymsConstThenParamList(t *testing.T) {
	if got := StripCppxsyms("Foo::Bar(int) const"); got != "Foo::Bar" {
		t.Errorf("StripCppxsyms = %q, want Foo::Bar", got)
	}
}
