package checkin

import (
	"fmt"
	"math/big"

	"checkinchain/core/events"
	"checkinchain/native/fees"
)

// DistributePromoterPayments pays out part of a promoter's accrued bounty
// meter for one venue. The meter is denominated in standardized USD; payouts
// settle in USD tokens or, converted through the price feed, in LONG. The
// platform fee side of the split follows the promoter's staking tier and
// depends on the settlement currency.
func (e *Engine) DistributePromoterPayments(intent PromoterIntent) (err error) {
	defer func() { e.metrics.ObserveOperation("distribute_promoter_payments", err) }()

	if err = e.verify(intent.Hash(e.chainID), intent.Signature); err != nil {
		return err
	}
	if intent.ReferralCode == "" {
		return &WrongReferralCodeError{Code: intent.ReferralCode}
	}
	promoter, _, err := e.resolveReferral(intent.ReferralCode)
	if err != nil {
		return err
	}
	amount, err := requirePositive(intent.AmountInUSD, "distribution amount")
	if err != nil {
		return err
	}

	accrued, err := e.st.PromoterAccrued(promoter, intent.Venue)
	if err != nil {
		return err
	}
	if accrued == nil {
		accrued = big.NewInt(0)
	}
	if accrued.Cmp(amount) < 0 {
		return fmt.Errorf("%w: accrued %s, requested %s", ErrNotEnoughBalance, accrued, amount)
	}

	cfg, err := e.parameters()
	if err != nil {
		return err
	}
	schedule, err := e.scheduleFor(cfg, promoter)
	if err != nil {
		return err
	}
	feeBps := schedule.Promoter.USDTokenBps
	if !intent.PayInUSD {
		feeBps = schedule.Promoter.LongBps
	}
	platformFee := fees.CalculateRate(feeBps, amount)
	toPromoter := new(big.Int).Sub(amount, platformFee)

	// Both legs convert before anything moves so a feed failure aborts the
	// whole payout.
	feeUSD, payoutUSD := platformFee, toPromoter
	var feeLONG, payoutLONG *big.Int
	if !intent.PayInUSD {
		pricer := e.pricer(cfg)
		feeLONG, err = pricer.Unstandardize(longAsset(cfg), platformFee)
		if err != nil {
			return err
		}
		payoutLONG, err = pricer.Unstandardize(longAsset(cfg), toPromoter)
		if err != nil {
			return err
		}
		feeUSD, payoutUSD = nil, nil
	}

	// The promoter leg settles first and the meter shrinks with it, so a
	// failed fee leg can never replay the promoter's entitlement.
	if err = e.ledger.PayoutFromPool(e.self, promoter, payoutUSD, payoutLONG); err != nil {
		return err
	}
	if err = e.st.SetPromoterAccrued(promoter, intent.Venue, new(big.Int).Sub(accrued, amount)); err != nil {
		return err
	}
	if e.promoterCredit != nil {
		if err = e.promoterCredit.Burn(promoter, promoterAccrualID(promoter, intent.Venue), amount); err != nil {
			return err
		}
	}
	if platformFee.Sign() > 0 {
		if err = e.ledger.PayoutFromPool(e.self, e.treasury, feeUSD, feeLONG); err != nil {
			return err
		}
	}

	e.metrics.ObservePayout(intent.PayInUSD)
	e.emit(events.PromoterPaymentsDistributed{
		Promoter:  promoter,
		Venue:     intent.Venue,
		Amount:    amount,
		PaidInUSD: intent.PayInUSD,
	})
	return nil
}

// EmergencyCancelPayment reverses a promoter's entire accrued meter for one
// venue, returning the reserved value to the venue's escrow bucket. Restricted
// to the manager role.
func (e *Engine) EmergencyCancelPayment(caller, venueAddr, promoter [20]byte) (err error) {
	defer func() { e.metrics.ObserveOperation("emergency_cancel_payment", err) }()

	if caller != e.manager {
		return ErrUnauthorized
	}
	accrued, err := e.st.PromoterAccrued(promoter, venueAddr)
	if err != nil {
		return err
	}
	if accrued == nil || accrued.Sign() == 0 {
		return nil
	}
	amount := new(big.Int).Set(accrued)

	if err = e.ledger.Credit(venueAddr, amount, nil); err != nil {
		return err
	}
	if e.venueCredit != nil {
		if err = e.venueCredit.Mint(venueAddr, venueCreditID(venueAddr), amount, ""); err != nil {
			return err
		}
	}
	if err = e.st.SetPromoterAccrued(promoter, venueAddr, big.NewInt(0)); err != nil {
		return err
	}
	if e.promoterCredit != nil {
		if err = e.promoterCredit.Burn(promoter, promoterAccrualID(promoter, venueAddr), amount); err != nil {
			return err
		}
	}

	e.emit(events.PromoterPaymentCancelled{
		Venue:    venueAddr,
		Promoter: promoter,
		Amount:   amount,
	})
	return nil
}
