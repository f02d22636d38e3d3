package entitlement

import "testing"

func TestWarningFor(t *testing.T) {
	tests := []struct {
		name      string
		remaining int
		limit     int
		want      Warning
	}{
		{"plenty left", 10, 15, WarningNone},
		{"one left on multi-unit plan", 1, 15, WarningLowCredit},
		{"one left on two-unit plan", 1, 2, WarningLowCredit},
		{"last unit spent", 0, 15, WarningOutOfCredits},
		{"single-unit plan spends its only unit", 0, 1, WarningOutOfCredits},
		{"single-unit plan never warns low", 1, 1, WarningNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WarningFor(tt.remaining, tt.limit); got != tt.want {
				t.Errorf("WarningFor(%d, %d) = %q, want %q", tt.remaining, tt.limit, got, tt.want)
			}
		})
	}
}

func TestWarningForIsExhaustive(t *testing.T) {
	// Every (remaining, limit) pair in a realistic range maps to
	// exactly one of the three defined outcomes.
	for limit := 1; limit <= 120; limit++ {
		for remaining := 0; remaining <= limit; remaining++ {
			w := WarningFor(remaining, limit)
			switch w {
			case WarningNone, WarningLowCredit, WarningOutOfCredits:
			default:
				t.Fatalf("WarningFor(%d, %d) = %q: unexpected kind", remaining, limit, w)
			}
			if w == WarningLimitReached {
				t.Fatalf("WarningFor must never return limit_reached (that is a deny outcome)")
			}
		}
	}
}

func TestResultHelpers(t *testing.T) {
	deny := &Result{Allowed: false, Warning: WarningLimitReached}
	if !deny.Denied() {
		t.Error("deny result should report Denied")
	}
	if !deny.HasWarning() {
		t.Error("deny result should carry a warning")
	}

	admit := &Result{Allowed: true}
	if admit.Denied() {
		t.Error("admit result should not report Denied")
	}
	if admit.HasWarning() {
		t.Error("admit with no warning should not report HasWarning")
	}
}
