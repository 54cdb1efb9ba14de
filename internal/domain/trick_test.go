package domain

import "testing"

func TestResolvePass(t *testing.T) {
	tests := []struct {
		name        string
		passCount   int32
		wantCount   int32
		wantCleared bool
	}{
		{name: "First pass", passCount: 0, wantCount: 1, wantCleared: false},
		{name: "Second pass", passCount: 1, wantCount: 2, wantCleared: false},
		{name: "Third pass clears the trick", passCount: 2, wantCount: 0, wantCleared: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, cleared := ResolvePass(tt.passCount)
			if count != tt.wantCount || cleared != tt.wantCleared {
				t.Errorf("ResolvePass(%d) = (%d, %v), want (%d, %v)",
					tt.passCount, count, cleared, tt.wantCount, tt.wantCleared)
			}
		})
	}
}

func TestResolvePassKeepsCountInRange(t *testing.T) {
	count := int32(0)
	for i := 0; i < 12; i++ {
		var cleared bool
		count, cleared = ResolvePass(count)
		if count < 0 || count > 2 {
			t.Fatalf("pass %d: count %d out of range", i, count)
		}
		if cleared && count != 0 {
			t.Fatalf("pass %d: trick cleared but count = %d", i, count)
		}
	}
}
