// Package tier defines the subscription tier catalog.
//
// The catalog is static: each tier maps to a fixed base allowance of
// consumption units per period and a monthly price. There is no runtime
// mutation; changing a user's tier is an engine operation, not a
// catalog one.
package tier

import (
	"fmt"

	"github.com/clipforge/credits/types"
)

// Tier is a named subscription level.
type Tier string

const (
	Free    Tier = "FREE"
	Creator Tier = "CREATOR"
	Agency  Tier = "AGENCY"
)

// baseAllowances is the fixed allowance table. Bonus credits are
// additive on top of these and live in the session state, not here.
var baseAllowances = map[Tier]int{
	Free:    1,
	Creator: 15,
	Agency:  100,
}

// monthlyPrices is the fixed subscription price table (USD cents).
var monthlyPrices = map[Tier]types.Money{
	Free:    types.USD(0),
	Creator: types.USD(2900),
	Agency:  types.USD(9900),
}

// All returns the catalog tiers in ascending order of allowance.
func All() []Tier {
	return []Tier{Free, Creator, Agency}
}

// Parse validates an external tier string. This is the rejection
// boundary for unrecognized tier values (e.g., deserialized state).
func Parse(s string) (Tier, error) {
	t := Tier(s)
	if !t.Valid() {
		return "", fmt.Errorf("tier: unknown tier %q", s)
	}
	return t, nil
}

// Valid reports whether t is a catalog tier.
func (t Tier) Valid() bool {
	_, ok := baseAllowances[t]
	return ok
}

// BaseAllowance returns the number of consumption units the tier grants
// before any bonus credits. It panics on a non-catalog tier: all
// external input must pass Parse first, so reaching here with an
// unknown tier is a programming error.
func (t Tier) BaseAllowance() int {
	a, ok := baseAllowances[t]
	if !ok {
		panic(fmt.Sprintf("tier: unknown tier %q", string(t)))
	}
	return a
}

// MonthlyPrice returns the subscription price for the tier.
// Panics on a non-catalog tier, same contract as BaseAllowance.
func (t Tier) MonthlyPrice() types.Money {
	p, ok := monthlyPrices[t]
	if !ok {
		panic(fmt.Sprintf("tier: unknown tier %q", string(t)))
	}
	return p
}

// Paid reports whether the tier requires an external payment
// confirmation before it can be selected.
func (t Tier) Paid() bool {
	return t.Valid() && t != Free
}

func (t Tier) String() string { return string(t) }
