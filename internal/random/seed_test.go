package random

import "testing"

func TestNewSeed(t *testing.T) {
	seen := make(map[int64]struct{})
	for i := 0; i < 8; i++ {
		seed, err := NewSeed()
		if err != nil {
			t.Fatalf("NewSeed error: %v", err)
		}
		if seed < 0 {
			t.Fatalf("NewSeed = %d, want non-negative", seed)
		}
		seen[seed] = struct{}{}
	}
	if len(seen) < 2 {
		t.Fatalf("NewSeed returned the same value repeatedly")
	}
}
