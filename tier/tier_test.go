package tier

import (
	"testing"

	"github.com/clipforge/credits/types"
)

func TestBaseAllowances(t *testing.T) {
	tests := []struct {
		tier      Tier
		allowance int
	}{
		{Free, 1},
		{Creator, 15},
		{Agency, 100},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			if got := tt.tier.BaseAllowance(); got != tt.allowance {
				t.Errorf("BaseAllowance: got %d, want %d", got, tt.allowance)
			}
		})
	}
}

func TestMonthlyPrices(t *testing.T) {
	tests := []struct {
		tier  Tier
		price types.Money
	}{
		{Free, types.USD(0)},
		{Creator, types.USD(2900)},
		{Agency, types.USD(9900)},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			if got := tt.tier.MonthlyPrice(); !got.Equal(tt.price) {
				t.Errorf("MonthlyPrice: got %v, want %v", got, tt.price)
			}
		})
	}
}

func TestParse(t *testing.T) {
	for _, tr := range All() {
		parsed, err := Parse(string(tr))
		if err != nil {
			t.Fatalf("Parse(%q): %v", tr, err)
		}
		if parsed != tr {
			t.Errorf("Parse(%q): got %q", tr, parsed)
		}
	}

	invalid := []string{"", "free", "PRO", "ENTERPRISE", "Free "}
	for _, s := range invalid {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q): expected error", s)
		}
	}
}

func TestBaseAllowancePanicsOnUnknown(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for unknown tier")
		}
	}()
	_ = Tier("PLATINUM").BaseAllowance()
}

func TestPaid(t *testing.T) {
	if Free.Paid() {
		t.Error("FREE should not be a paid tier")
	}
	if !Creator.Paid() {
		t.Error("CREATOR should be a paid tier")
	}
	if !Agency.Paid() {
		t.Error("AGENCY should be a paid tier")
	}
	if Tier("PLATINUM").Paid() {
		t.Error("unknown tier should not report as paid")
	}
}

func TestAllOrdered(t *testing.T) {
	all := All()
	for i := 1; i < len(all); i++ {
		if all[i-1].BaseAllowance() >= all[i].BaseAllowance() {
			t.Errorf("catalog not in ascending allowance order: %v", all)
		}
	}
}
