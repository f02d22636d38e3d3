// Package session holds the per-session entitlement state.
//
// State is a plain value mutated only by the engine's consume, tier
// change, bonus purchase, and reset operations. It carries no locking
// of its own: the engine serializes access.
package session

import (
	"github.com/clipforge/credits/id"
	"github.com/clipforge/credits/tier"
	"github.com/clipforge/credits/types"
)

// State is the entitlement state for one user session.
type State struct {
	types.Entity
	ID id.SessionID `json:"id"`

	// Tier is the current subscription level. Changes only via an
	// explicit tier transition.
	Tier tier.Tier `json:"tier"`

	// Used is the number of consumption units spent in the current
	// period. Never negative.
	Used int `json:"used"`

	// Bonus is extra purchased credits, additive to the tier's base
	// allowance. Never expires and survives tier changes; only an
	// explicit reset clears it.
	Bonus int `json:"bonus"`
}

// New returns a fresh session state: FREE tier, nothing used, no bonus.
func New() State {
	return State{
		Entity: types.NewEntity(),
		ID:     id.NewSessionID(),
		Tier:   tier.Free,
		Used:   0,
		Bonus:  0,
	}
}

// Limit is the total units available in the current period:
// base allowance plus bonus.
func (s State) Limit() int {
	return s.Tier.BaseAllowance() + s.Bonus
}

// Remaining is the units left before the next denial. Clamped at zero.
func (s State) Remaining() int {
	r := s.Limit() - s.Used
	if r < 0 {
		return 0
	}
	return r
}

// Exhausted reports whether the next consumption would be denied.
func (s State) Exhausted() bool {
	return s.Used >= s.Limit()
}
