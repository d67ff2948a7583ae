package rounds

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewRoundID_IsUUIDv4(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewRoundID()
		u, err := uuid.Parse(id)
		if err != nil {
			t.Fatalf("NewRoundID() = %q, not a UUID: %v", id, err)
		}
		if u.Version() != 4 {
			t.Errorf("version = %d, want 4", u.Version())
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestDrawDelay_InRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		d, err := DrawDelay(2000, 5000)
		if err != nil {
			t.Fatalf("DrawDelay() error: %v", err)
		}
		if d < 2000 || d >= 5000 {
			t.Fatalf("DrawDelay() = %d, want [2000, 5000)", d)
		}
	}
}

func TestDrawDelay_SingleValue(t *testing.T) {
	d, err := DrawDelay(3000, 3001)
	if err != nil {
		t.Fatal(err)
	}
	if d != 3000 {
		t.Errorf("DrawDelay(3000, 3001) = %d, want 3000", d)
	}
}

func TestDrawDelay_InvalidRange(t *testing.T) {
	if _, err := DrawDelay(5000, 5000); err == nil {
		t.Error("expected error for empty range")
	}
	if _, err := DrawDelay(5000, 2000); err == nil {
		t.Error("expected error for inverted range")
	}
}
