package register

import "testing"

func TestHandler_SetAndGet(t *testing.T) {
	h := NewHandler()
	reg, err := h.AddRegister(nil)
	if err != nil {
		t.Fatalf("AddRegister: %v", err)
	}
	if err := h.SetRegister(reg, 42); err != nil {
		t.Fatalf("SetRegister: %v", err)
	}
	got, err := h.GetReversedPositions(reg)
	if err != nil {
		t.Fatalf("GetReversedPositions: %v", err)
	}
	if len(got) != 1 || got[0] != 42 {
		t.Fatalf("GetReversedPositions = %v, want [42]", got)
	}
}

func TestHandler_AppendPositionAccumulates(t *testing.T) {
	h := NewHandler()
	reg, _ := h.AddRegister(nil)
	for _, pos := range []int64{1, 2, 3} {
		if err := h.AppendPosition(reg, pos); err != nil {
			t.Fatalf("AppendPosition(%d): %v", pos, err)
		}
	}
	got, err := h.GetReversedPositions(reg)
	if err != nil {
		t.Fatalf("GetReversedPositions: %v", err)
	}
	want := []int64{3, 2, 1}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("GetReversedPositions = %v, want %v", got, want)
		}
	}
}

func TestHandler_CopyRegisterSharesHistory(t *testing.T) {
	h := NewHandler()
	src, _ := h.AddRegister(nil)
	dest, _ := h.AddRegister(nil)
	h.SetRegister(src, 7)
	if err := h.CopyRegister(dest, src); err != nil {
		t.Fatalf("CopyRegister: %v", err)
	}
	got, err := h.GetReversedPositions(dest)
	if err != nil {
		t.Fatalf("GetReversedPositions: %v", err)
	}
	if len(got) != 1 || got[0] != 7 {
		t.Fatalf("CopyRegister did not share src's history: %v", got)
	}

	// Subsequent appends to src must not retroactively alter dest — they
	// only share history *up to* the copy, not identity going forward.
	h.AppendPosition(src, 8)
	got, _ = h.GetReversedPositions(dest)
	if len(got) != 1 || got[0] != 7 {
		t.Fatalf("dest's history changed after a later src append: %v", got)
	}
}

func TestHandler_NegateRecordsUnmatched(t *testing.T) {
	h := NewHandler()
	reg, _ := h.AddRegister(nil)
	h.SetRegister(reg, 3)
	if err := h.Negate(reg); err != nil {
		t.Fatalf("Negate: %v", err)
	}
	got, err := h.GetReversedPositions(reg)
	if err != nil {
		t.Fatalf("GetReversedPositions: %v", err)
	}
	if got[0] != UnmatchedPos {
		t.Fatalf("Negate should record UnmatchedPos, got %d", got[0])
	}
}

func TestHandler_SnapshotRestore(t *testing.T) {
	h := NewHandler()
	reg, _ := h.AddRegister(nil)
	h.SetRegister(reg, 1)
	snap := h.Snapshot()

	h.AppendPosition(reg, 2)
	h.AppendPosition(reg, 3)
	got, _ := h.GetReversedPositions(reg)
	if len(got) != 3 {
		t.Fatalf("expected 3 recorded positions before restore, got %v", got)
	}

	h.Restore(snap)
	got, _ = h.GetReversedPositions(reg)
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("Restore did not roll back to snapshot state, got %v", got)
	}
}

func TestHandler_Reset(t *testing.T) {
	h := NewHandler()
	reg, _ := h.AddRegister(nil)
	h.SetRegister(reg, 5)
	h.Reset()
	got, err := h.GetReversedPositions(reg)
	if err != nil {
		t.Fatalf("GetReversedPositions: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Reset should clear every register back to unmatched, got %v", got)
	}
}

func TestHandler_OutOfRangeRegister(t *testing.T) {
	h := NewHandler()
	if _, err := h.GetReversedPositions(RegisterID(99)); err == nil {
		t.Fatalf("expected error for out-of-range register")
	}
}
