package ocigo

import "testing"

func TestPool_PickIdleLocked_EmptyTagPrefersAny(t *testing.T) {
	p := &Pool{idle: []*Conn{{sessionTag: "a"}, {sessionTag: ""}}}
	if idx := p.pickIdleLocked(""); idx != 0 {
		t.Fatalf("expected index 0, got %d", idx)
	}
}

func TestPool_PickIdleLocked_ExactTagMatchWins(t *testing.T) {
	untagged := &Conn{sessionTag: ""}
	tagged := &Conn{sessionTag: "reporting"}
	p := &Pool{idle: []*Conn{untagged, tagged}}

	idx := p.pickIdleLocked("reporting")
	if idx != 1 || p.idle[idx] != tagged {
		t.Fatalf("expected the tagged connection at index 1, got index %d", idx)
	}
}

func TestPool_PickIdleLocked_FallsBackToFirstWhenNoTagMatches(t *testing.T) {
	only := &Conn{sessionTag: "other"}
	p := &Pool{idle: []*Conn{only}}

	if idx := p.pickIdleLocked("reporting"); idx != 0 {
		t.Fatalf("expected fallback index 0, got %d", idx)
	}
}

func TestPool_PickIdleLocked_NoneIdle(t *testing.T) {
	p := &Pool{}
	if idx := p.pickIdleLocked(""); idx != -1 {
		t.Fatalf("expected -1 for an empty idle set, got %d", idx)
	}
	if idx := p.pickIdleLocked("tag"); idx != -1 {
		t.Fatalf("expected -1 for an empty idle set with a tag, got %d", idx)
	}
}

func TestPool_Stats(t *testing.T) {
	p := &Pool{open: 3, idle: []*Conn{{}, {}}}
	open, idle := p.Stats()
	if open != 3 || idle != 2 {
		t.Fatalf("expected (3, 2), got (%d, %d)", open, idle)
	}
}

func TestPool_DestroyIsIdempotent(t *testing.T) {
	p := &Pool{}
	if err := p.Destroy(); err != nil {
		t.Fatalf("unexpected error destroying an empty pool: %v", err)
	}
	if !p.closed {
		t.Fatalf("expected pool to be marked closed")
	}
	if err := p.Destroy(); err != nil {
		t.Fatalf("second Destroy should be a no-op, got: %v", err)
	}
}

func TestCreatePool_RejectsZeroMax(t *testing.T) {
	_, err := CreatePool(nil, "user/pw@host/svc", "", "", 0, 0, 1, SessionNormal)
	if err == nil {
		t.Fatalf("expected an error for max=0")
	}
}
