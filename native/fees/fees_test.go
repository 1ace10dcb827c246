package fees

import (
	"errors"
	"math/big"
	"testing"
)

func TestCalculateRateFloorsTowardZero(t *testing.T) {
	cases := []struct {
		name   string
		bps    uint32
		amount int64
		want   int64
	}{
		{"zero rate", 0, 1000, 0},
		{"zero amount", 500, 0, 0},
		{"ten percent", 1000, 100, 10},
		{"floors remainder", 333, 10, 0},
		{"full rate", 10_000, 77, 77},
		{"subsidy example", 300, 500, 15},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculateRate(tc.bps, big.NewInt(tc.amount))
			if got.Int64() != tc.want {
				t.Fatalf("CalculateRate(%d, %d) = %s, want %d", tc.bps, tc.amount, got, tc.want)
			}
		})
	}
}

func TestCalculateRateNeverExceedsAmount(t *testing.T) {
	amount := new(big.Int).Exp(big.NewInt(10), big.NewInt(30), nil)
	for _, bps := range []uint32{1, 250, 5000, 9999, 10_000} {
		got := CalculateRate(bps, amount)
		if got.Cmp(amount) > 0 {
			t.Fatalf("rate %d produced %s exceeding amount %s", bps, got, amount)
		}
	}
}

func TestCalculateRateNilAmount(t *testing.T) {
	if got := CalculateRate(500, nil); got.Sign() != 0 {
		t.Fatalf("expected zero for nil amount, got %s", got)
	}
}

func TestFeesValidate(t *testing.T) {
	valid := Fees{
		ReferralCreditsAmount:   3,
		AffiliatePercentageBps:  2500,
		LongCustomerDiscountBps: 100,
		PlatformSubsidyBps:      300,
		ProcessingFeeBps:        250,
		BuybackBurnBps:          1000,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	invalid := valid
	invalid.ProcessingFeeBps = 10_001
	err := invalid.Validate()
	if !errors.Is(err, ErrBPSTooHigh) {
		t.Fatalf("expected ErrBPSTooHigh, got %v", err)
	}
}
