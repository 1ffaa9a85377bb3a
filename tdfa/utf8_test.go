package tdfa

import (
	"testing"
	"unicode"
)

func TestUTF8Class_MergesAdjacentAndOverlapping(t *testing.T) {
	c := NewUTF8Class([2]rune{0x100, 0x110}, [2]rune{0x111, 0x120}, [2]rune{0x300, 0x310})
	got := c.Intervals()
	want := [][2]rune{{0x100, 0x120}, {0x300, 0x310}}
	if len(got) != len(want) {
		t.Fatalf("Intervals() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Intervals()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestUTF8Class_Contains(t *testing.T) {
	c := NewUTF8Class([2]rune{0x100, 0x200})
	if !c.Contains(0x150) {
		t.Fatalf("expected 0x150 to be contained")
	}
	if c.Contains(0x99) {
		t.Fatalf("expected 0x99 to be outside the class")
	}
	if c.Contains(0x201) {
		t.Fatalf("expected 0x201 to be outside the class")
	}
}

func TestUTF8Class_UnsortedReversedRange(t *testing.T) {
	c := NewUTF8Class([2]rune{0x200, 0x100})
	if !c.Contains(0x150) {
		t.Fatalf("expected reversed [hi,lo] input to be normalized")
	}
}

func TestFromRangeTable(t *testing.T) {
	c := FromRangeTable(unicode.Greek)
	if !c.Contains('Α') { // U+0391 GREEK CAPITAL LETTER ALPHA
		t.Fatalf("expected Greek range table to contain U+0391")
	}
	if c.Contains('A') {
		t.Fatalf("expected Greek range table to exclude ASCII 'A'")
	}
}
