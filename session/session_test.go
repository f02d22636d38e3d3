package session

import (
	"testing"

	"github.com/clipforge/credits/id"
	"github.com/clipforge/credits/tier"
)

func TestNewDefaults(t *testing.T) {
	s := New()

	if s.Tier != tier.Free {
		t.Errorf("new session tier: got %q, want FREE", s.Tier)
	}
	if s.Used != 0 || s.Bonus != 0 {
		t.Errorf("new session counters: got used=%d bonus=%d, want 0/0", s.Used, s.Bonus)
	}
	if s.ID.IsNil() {
		t.Error("new session should have an ID")
	}
	if s.ID.Prefix() != id.PrefixSession {
		t.Errorf("session ID prefix: got %q", s.ID.Prefix())
	}
	if s.CreatedAt.IsZero() {
		t.Error("new session should carry timestamps")
	}
}

func TestLimitAndRemaining(t *testing.T) {
	tests := []struct {
		name      string
		state     State
		limit     int
		remaining int
		exhausted bool
	}{
		{"fresh free", State{Tier: tier.Free}, 1, 1, false},
		{"free used up", State{Tier: tier.Free, Used: 1}, 1, 0, true},
		{"creator mid-period", State{Tier: tier.Creator, Used: 5}, 15, 10, false},
		{"creator with bonus", State{Tier: tier.Creator, Used: 5, Bonus: 10}, 25, 20, false},
		{"agency fresh", State{Tier: tier.Agency}, 100, 100, false},
		{"overdrawn clamps to zero", State{Tier: tier.Free, Used: 3}, 1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Limit(); got != tt.limit {
				t.Errorf("Limit: got %d, want %d", got, tt.limit)
			}
			if got := tt.state.Remaining(); got != tt.remaining {
				t.Errorf("Remaining: got %d, want %d", got, tt.remaining)
			}
			if got := tt.state.Exhausted(); got != tt.exhausted {
				t.Errorf("Exhausted: got %v, want %v", got, tt.exhausted)
			}
		})
	}
}
