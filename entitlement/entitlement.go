// Package entitlement defines the decision and warning values returned
// by a consumption check.
//
// A deny is a normal control-flow outcome, never an error: callers
// branch on Result.Allowed. Warnings are one-shot, mutually exclusive
// instructions for the notification layer; they carry no state.
package entitlement

// Warning is a one-shot notification instruction raised as a side
// effect of a consumption decision.
type Warning string

const (
	// WarningNone means no notification should be shown.
	WarningNone Warning = ""

	// WarningLowCredit fires when exactly one unit remains and the
	// session's total limit allows more than a single unit.
	WarningLowCredit Warning = "low_credit"

	// WarningLimitReached fires on a denied consumption: the session
	// has no headroom left and the gated action must not proceed.
	WarningLimitReached Warning = "limit_reached"

	// WarningOutOfCredits fires when an admitted consumption spends
	// the last available unit.
	WarningOutOfCredits Warning = "out_of_credits"
)

// WarningFor returns the warning for an admitted consumption, as a pure
// function of the post-consumption remaining balance and the session
// limit.
//
// The limit > 1 guard keeps a single-unit plan from receiving a "low
// credit" notice where "out of credits" is the accurate one.
func WarningFor(remaining, limit int) Warning {
	switch {
	case remaining == 1 && limit > 1:
		return WarningLowCredit
	case remaining == 0:
		return WarningOutOfCredits
	default:
		return WarningNone
	}
}

// Result is the outcome of a consumption check.
type Result struct {
	// Allowed reports whether the unit was consumed. When false the
	// caller must not proceed with the gated action.
	Allowed bool `json:"allowed"`

	// Used is the units spent after this decision (unchanged on deny).
	Used int `json:"used"`

	// Limit is base allowance plus bonus at decision time.
	Limit int `json:"limit"`

	// Remaining is Limit minus Used, never negative.
	Remaining int `json:"remaining"`

	// Warning is the notification to surface, if any. On deny it is
	// always WarningLimitReached.
	Warning Warning `json:"warning,omitempty"`

	// Reason is a human-readable explanation for a deny.
	Reason string `json:"reason,omitempty"`
}

// Denied reports whether the consumption was refused.
func (r *Result) Denied() bool { return !r.Allowed }

// HasWarning reports whether a notification should be surfaced.
func (r *Result) HasWarning() bool { return r.Warning != WarningNone }
