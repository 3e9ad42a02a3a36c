package rollup

import "testing"

func findRow(rows []*Row, name string) *Row {
	for _, r := range rows {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// TestCreateRollupOutputCollapsesOther is E4: three children of sizes
// 100, 50, 30 with MaxRowsPerLevel=2 collapse the smallest into [Other],
// sorted descending by magnitude.
func TestCreateRollupOutputCollapsesOther(t *testing.T) {
	total := New()
	mustAddSizes(t, total, []string{"a"}, 100, true)
	mustAddSizes(t, total, []string{"b"}, 50, true)
	mustAddSizes(t, total, []string{"c"}, 30, true)

	root, err := CreateRollupOutput(total, Options{SortBy: SortByVM, MaxRowsPerLevel: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(root.SortedChildren) != 3 {
		t.Fatalf("len(SortedChildren) = %d, want 3 (a, b, [Other])", len(root.SortedChildren))
	}
	names := []string{root.SortedChildren[0].Name, root.SortedChildren[1].Name, root.SortedChildren[2].Name}
	if names[0] != "a" || names[1] != "b" || names[2] != OthersLabel {
		t.Errorf("sorted names = %v, want [a b %s]", names, OthersLabel)
	}
	other := findRow(root.SortedChildren, OthersLabel)
	if other.VMSize != 30 {
		t.Errorf("[Other] VMSize = %d, want 30", other.VMSize)
	}
}

// TestOtherConservesPerLevelTotals is testable property 6: collapsing into
// [Other] must not change the sum of sizes at that level.
func TestOtherConservesPerLevelTotals(t *testing.T) {
	total := New()
	sizes := []int64{100, 50, 30, 20, 15, 9}
	for i, s := range sizes {
		mustAddSizes(t, total, []string{string(rune('a' + i))}, s, true)
	}
	root, err := CreateRollupOutput(total, Options{SortBy: SortByVM, MaxRowsPerLevel: 3})
	if err != nil {
		t.Fatal(err)
	}
	var sum int64
	for _, r := range root.SortedChildren {
		sum += r.VMSize
	}
	var want int64
	for _, s := range sizes {
		want += s
	}
	if sum != want {
		t.Errorf("sum of shaped rows = %d, want %d", sum, want)
	}
}

// TestDiffModeShrinkingAndDeletion is E5: a shrinking section reports the
// percent change relative to its own baseline counterpart, and a section
// gone entirely from current reports -100%.
func TestDiffModeShrinkingAndDeletion(t *testing.T) {
	cur := New()
	mustAddSizes(t, cur, []string{".text"}, -0x100, true)
	mustAddSizes(t, cur, []string{"removed"}, -500, true)

	base := New()
	mustAddSizes(t, base, []string{".text"}, 0x200, true)
	mustAddSizes(t, base, []string{"removed"}, 500, true)

	root, err := CreateDiffModeRollupOutput(cur, base, Options{SortBy: SortByVM, MaxRowsPerLevel: 20})
	if err != nil {
		t.Fatal(err)
	}

	text := findRow(root.Shrinking, ".text")
	if text == nil {
		t.Fatalf(".text not found in Shrinking bucket: %+v", root.Shrinking)
	}
	if text.VMSize != -0x100 {
		t.Errorf(".text VMSize = %d, want -0x100", text.VMSize)
	}
	if text.VMPercent != -50.0 {
		t.Errorf(".text VMPercent = %v, want -50.0", text.VMPercent)
	}

	removed := findRow(root.Shrinking, "removed")
	if removed == nil {
		t.Fatalf("removed not found in Shrinking bucket: %+v", root.Shrinking)
	}
	if removed.VMPercent != -100.0 {
		t.Errorf("removed VMPercent = %v, want -100.0", removed.VMPercent)
	}
}
