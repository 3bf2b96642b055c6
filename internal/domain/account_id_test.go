package domain

import (
	"errors"
	"testing"
)

func TestParseAccountID(t *testing.T) {
	id := NewAccountID()

	parsed, err := ParseAccountID(id.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != id {
		t.Errorf("expected %s, got %s", id, parsed)
	}

	if _, err := ParseAccountID("not-a-uuid"); !errors.Is(err, ErrInvalidAccountID) {
		t.Fatalf("expected ErrInvalidAccountID, got %v", err)
	}
}

func TestAccountID_MapKey(t *testing.T) {
	id := MustParseAccountID("6f1c1f6e-2b8a-4d3e-9a51-0c7d7f2a9b10")
	same := MustParseAccountID("6F1C1F6E-2B8A-4D3E-9A51-0C7D7F2A9B10")

	seen := map[AccountID]bool{id: true}
	if !seen[same] {
		t.Error("expected equal IDs to hash to the same key")
	}
}

func TestAccountID_Compare(t *testing.T) {
	low := MustParseAccountID("00000000-0000-0000-0000-000000000001")
	high := MustParseAccountID("00000000-0000-0000-0000-000000000002")

	if low.Compare(high) >= 0 || high.Compare(low) <= 0 || low.Compare(low) != 0 {
		t.Error("unexpected ordering")
	}

	if !(AccountID{}).IsZero() || low.IsZero() {
		t.Error("unexpected IsZero result")
	}
}
