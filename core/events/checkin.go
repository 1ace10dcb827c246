package events

import (
	"encoding/hex"
	"math/big"

	"checkinchain/core/types"
)

const (
	TypeVenuePaidDeposit            = "checkin.venue.paid_deposit"
	TypeVenueRulesSet               = "checkin.venue.rules_set"
	TypeSwapped                     = "checkin.swapped"
	TypeRevenueBuybackBurn          = "checkin.revenue.buyback_burn"
	TypeBurnedLONGs                 = "checkin.long.burned"
	TypeCustomerPaid                = "checkin.customer.paid"
	TypePromoterPaymentsDistributed = "checkin.promoter.distributed"
	TypePromoterPaymentCancelled    = "checkin.promoter.cancelled"
)

// VenuePaidDeposit is emitted after a venue deposit settles in full.
type VenuePaidDeposit struct {
	Venue        [20]byte
	Amount       *big.Int
	TreasuryFee  *big.Int
	AffiliateFee *big.Int
	ReferralCode string
	URI          string
	CreditUsed   bool
}

func (VenuePaidDeposit) EventType() string { return TypeVenuePaidDeposit }

func (e VenuePaidDeposit) Event() *types.Event {
	return &types.Event{
		Type: TypeVenuePaidDeposit,
		Attributes: map[string]string{
			"venue":        formatAddress(e.Venue),
			"amount":       formatAmount(e.Amount),
			"treasuryFee":  formatAmount(e.TreasuryFee),
			"affiliateFee": formatAmount(e.AffiliateFee),
			"referralCode": e.ReferralCode,
			"uri":          e.URI,
			"creditUsed":   boolToString(e.CreditUsed),
		},
	}
}

// VenueRulesSet is emitted whenever a venue's rules are created or replaced.
// The enum fields are rendered through their string forms by the caller.
type VenueRulesSet struct {
	Venue           [20]byte
	PaymentType     string
	BountyType      string
	BountyAlloc     string
	LongPaymentType string
}

func (VenueRulesSet) EventType() string { return TypeVenueRulesSet }

func (e VenueRulesSet) Event() *types.Event {
	return &types.Event{
		Type: TypeVenueRulesSet,
		Attributes: map[string]string{
			"venue":           formatAddress(e.Venue),
			"paymentType":     e.PaymentType,
			"bountyType":      e.BountyType,
			"bountyAlloc":     e.BountyAlloc,
			"longPaymentType": e.LongPaymentType,
		},
	}
}

// Swapped records a routed conversion between the two settlement currencies.
type Swapped struct {
	To        [20]byte
	AmountIn  *big.Int
	AmountOut *big.Int
}

func (Swapped) EventType() string { return TypeSwapped }

func (e Swapped) Event() *types.Event {
	return &types.Event{
		Type: TypeSwapped,
		Attributes: map[string]string{
			"to":        formatAddress(e.To),
			"amountIn":  formatAmount(e.AmountIn),
			"amountOut": formatAmount(e.AmountOut),
		},
	}
}

// RevenueBuybackBurn records the portion of processing revenue burned under a
// buyback schedule.
type RevenueBuybackBurn struct {
	Amount *big.Int
}

func (RevenueBuybackBurn) EventType() string { return TypeRevenueBuybackBurn }

func (e RevenueBuybackBurn) Event() *types.Event {
	return &types.Event{
		Type:       TypeRevenueBuybackBurn,
		Attributes: map[string]string{"amount": formatAmount(e.Amount)},
	}
}

// BurnedLONGs records LONG destroyed by the engine.
type BurnedLONGs struct {
	Amount *big.Int
}

func (BurnedLONGs) EventType() string { return TypeBurnedLONGs }

func (e BurnedLONGs) Event() *types.Event {
	return &types.Event{
		Type:       TypeBurnedLONGs,
		Attributes: map[string]string{"amount": formatAmount(e.Amount)},
	}
}

// CustomerPaid is the settlement event for a customer payment. Promoter is the
// zero address when no referral applied.
type CustomerPaid struct {
	Customer       [20]byte
	Venue          [20]byte
	Promoter       [20]byte
	Amount         *big.Int
	CustomerBounty *big.Int
	PromoterBounty *big.Int
}

func (CustomerPaid) EventType() string { return TypeCustomerPaid }

func (e CustomerPaid) Event() *types.Event {
	attrs := map[string]string{
		"customer":       formatAddress(e.Customer),
		"venue":          formatAddress(e.Venue),
		"amount":         formatAmount(e.Amount),
		"customerBounty": formatAmount(e.CustomerBounty),
		"promoterBounty": formatAmount(e.PromoterBounty),
	}
	if e.Promoter != ([20]byte{}) {
		attrs["promoter"] = formatAddress(e.Promoter)
	} else {
		attrs["promoter"] = ""
	}
	return &types.Event{Type: TypeCustomerPaid, Attributes: attrs}
}

// PromoterPaymentsDistributed is emitted after a promoter cash-out settles.
type PromoterPaymentsDistributed struct {
	Promoter  [20]byte
	Venue     [20]byte
	Amount    *big.Int
	PaidInUSD bool
}

func (PromoterPaymentsDistributed) EventType() string { return TypePromoterPaymentsDistributed }

func (e PromoterPaymentsDistributed) Event() *types.Event {
	return &types.Event{
		Type: TypePromoterPaymentsDistributed,
		Attributes: map[string]string{
			"promoter":  formatAddress(e.Promoter),
			"venue":     formatAddress(e.Venue),
			"amount":    formatAmount(e.Amount),
			"paidInUSD": boolToString(e.PaidInUSD),
		},
	}
}

// PromoterPaymentCancelled records a manager reversal of a promoter's accrued
// balance back to the venue.
type PromoterPaymentCancelled struct {
	Venue    [20]byte
	Promoter [20]byte
	Amount   *big.Int
}

func (PromoterPaymentCancelled) EventType() string { return TypePromoterPaymentCancelled }

func (e PromoterPaymentCancelled) Event() *types.Event {
	return &types.Event{
		Type: TypePromoterPaymentCancelled,
		Attributes: map[string]string{
			"venue":    formatAddress(e.Venue),
			"promoter": formatAddress(e.Promoter),
			"amount":   formatAmount(e.Amount),
		},
	}
}

// hexHash renders a 32-byte identifier for event attributes.
func hexHash(h [32]byte) string {
	return hex.EncodeToString(h[:])
}
