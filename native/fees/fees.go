package fees

import (
	"errors"
	"fmt"
)

// ErrBPSTooHigh indicates a percentage field exceeded the 10_000 bps bound.
var ErrBPSTooHigh = errors.New("fees: bps value too high")

// Fees is the globally configured fee schedule. All *_Bps fields are parts per
// ten thousand and must not exceed BpsDenominator.
type Fees struct {
	ReferralCreditsAmount   uint64 `json:"referralCreditsAmount"`
	AffiliatePercentageBps  uint32 `json:"affiliatePercentageBps"`
	LongCustomerDiscountBps uint32 `json:"longCustomerDiscountBps"`
	PlatformSubsidyBps      uint32 `json:"platformSubsidyBps"`
	ProcessingFeeBps        uint32 `json:"processingFeeBps"`
	BuybackBurnBps          uint32 `json:"buybackBurnBps"`
}

// Validate checks every bps field against the denominator bound.
func (f Fees) Validate() error {
	fields := []struct {
		name  string
		value uint32
	}{
		{"affiliatePercentageBps", f.AffiliatePercentageBps},
		{"longCustomerDiscountBps", f.LongCustomerDiscountBps},
		{"platformSubsidyBps", f.PlatformSubsidyBps},
		{"processingFeeBps", f.ProcessingFeeBps},
		{"buybackBurnBps", f.BuybackBurnBps},
	}
	for _, field := range fields {
		if field.value > BpsDenominator {
			return fmt.Errorf("%w: %s=%d", ErrBPSTooHigh, field.name, field.value)
		}
	}
	return nil
}
