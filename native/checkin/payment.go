package checkin

import (
	"fmt"
	"math/big"

	"checkinchain/core/events"
	"checkinchain/native/escrow"
	"checkinchain/native/fees"
	"checkinchain/native/params"
	"checkinchain/native/venue"
)

// bountyPlan is the precomputed escrow reservation for a promoter bounty.
type bountyPlan struct {
	meterUSD  *big.Int
	allocUSD  *big.Int
	allocLONG *big.Int
}

// PayToVenue settles a customer payment against a registered venue. USD
// payments pass through untouched. LONG payments earn the customer a discount
// and the venue a platform subsidy funded from its escrow bucket, net of a
// processing fee routed to the treasury with an optional buyback-burn slice.
// When the intent carries a promoter code and the venue's rules allow it, a
// visit and/or spend bounty accrues to the promoter against the venue's
// escrow. Escrow sufficiency for every leg is checked before any funds move.
func (e *Engine) PayToVenue(intent CustomerIntent) (err error) {
	defer func() { e.metrics.ObserveOperation("pay_to_venue", err) }()

	if err = e.verify(intent.Hash(e.chainID), intent.Signature); err != nil {
		return err
	}
	amount, err := requirePositive(intent.Amount, "payment amount")
	if err != nil {
		return err
	}
	if !intent.Currency.Valid() {
		return ErrWrongPaymentType
	}
	rules, err := e.registry.Rules(intent.Venue)
	if err != nil {
		return err
	}
	if intent.Currency == PayInUSD && !rules.PaymentType.AllowsUSD() {
		return ErrWrongPaymentType
	}
	if intent.Currency == PayInLONG && !rules.PaymentType.AllowsLONG() {
		return ErrWrongPaymentType
	}

	wantsVisit := intent.VisitBountyAmount != nil && intent.VisitBountyAmount.Sign() > 0
	wantsSpend := intent.SpendBountyBps > 0
	if intent.SpendBountyBps > fees.BpsDenominator {
		return ErrWrongBountyType
	}
	if wantsVisit || wantsSpend {
		if intent.PromoterCode == "" {
			return ErrWrongBountyType
		}
		if wantsVisit && !rules.BountyType.AllowsVisit() {
			return ErrWrongBountyType
		}
		if wantsSpend && !rules.BountyType.AllowsSpend() {
			return ErrWrongBountyType
		}
	}

	cfg, err := e.parameters()
	if err != nil {
		return err
	}
	promoter, hasPromoter, err := e.resolveReferral(intent.PromoterCode)
	if err != nil {
		return err
	}

	var plan *bountyPlan
	if hasPromoter && (wantsVisit || wantsSpend) {
		plan, err = e.planBounty(cfg, rules, intent, amount)
		if err != nil {
			return err
		}
	}
	if err = e.checkEscrowSufficiency(cfg, intent, rules, amount, plan); err != nil {
		return err
	}

	customerBounty := big.NewInt(0)
	switch intent.Currency {
	case PayInUSD:
		if err = e.bank.TransferUSDToken(intent.Customer, intent.Venue, amount); err != nil {
			return fmt.Errorf("%w: %w", ErrNotEnoughBalance, err)
		}
	case PayInLONG:
		customerBounty, err = e.settleLongPayment(cfg, intent.Customer, intent.Venue, rules, amount)
		if err != nil {
			return err
		}
	}

	promoterBounty := big.NewInt(0)
	if plan != nil {
		if err = e.commitBounty(promoter, intent.Venue, plan); err != nil {
			return err
		}
		promoterBounty = plan.meterUSD
	}

	e.emit(events.CustomerPaid{
		Customer:       intent.Customer,
		Venue:          intent.Venue,
		Promoter:       promoter,
		Amount:         amount,
		CustomerBounty: customerBounty,
		PromoterBounty: promoterBounty,
	})
	return nil
}

// planBounty computes the bounty in the payment currency, its standardized
// USD meter value and the escrow allocation to reserve.
func (e *Engine) planBounty(cfg params.Parameters, rules venue.Rules, intent CustomerIntent, amount *big.Int) (*bountyPlan, error) {
	bounty := big.NewInt(0)
	if intent.VisitBountyAmount != nil && intent.VisitBountyAmount.Sign() > 0 {
		bounty.Add(bounty, intent.VisitBountyAmount)
	}
	bounty.Add(bounty, fees.CalculateRate(intent.SpendBountyBps, amount))
	if bounty.Sign() == 0 {
		return nil, nil
	}

	bountyUSD := new(big.Int).Set(bounty)
	if intent.Currency == PayInLONG {
		standardized, err := e.pricer(cfg).Standardize(longAsset(cfg), bounty)
		if err != nil {
			return nil, err
		}
		bountyUSD = standardized
	}

	plan := &bountyPlan{meterUSD: bountyUSD, allocUSD: big.NewInt(0), allocLONG: big.NewInt(0)}
	switch rules.BountyAlloc {
	case venue.AllocateUSD:
		plan.allocUSD = bountyUSD
	case venue.AllocateLONG:
		if intent.Currency == PayInLONG {
			plan.allocLONG = bounty
		} else {
			converted, err := e.pricer(cfg).Unstandardize(longAsset(cfg), bountyUSD)
			if err != nil {
				return nil, err
			}
			plan.allocLONG = converted
		}
	}
	return plan, nil
}

// checkEscrowSufficiency verifies the venue bucket covers every escrow draw
// of this payment before the first transfer happens, so an underfunded venue
// fails the whole operation cleanly.
func (e *Engine) checkEscrowSufficiency(cfg params.Parameters, intent CustomerIntent, rules venue.Rules, amount *big.Int, plan *bountyPlan) error {
	needUSD := big.NewInt(0)
	needLONG := big.NewInt(0)
	if intent.Currency == PayInLONG {
		needLONG.Add(needLONG, fees.CalculateRate(cfg.Fees.PlatformSubsidyBps, amount))
	}
	if plan != nil {
		needUSD.Add(needUSD, plan.allocUSD)
		needLONG.Add(needLONG, plan.allocLONG)
	}
	if needUSD.Sign() == 0 && needLONG.Sign() == 0 {
		return nil
	}
	deposit, err := e.ledger.Balance(intent.Venue)
	if err != nil {
		return err
	}
	if deposit.USDToken.Cmp(needUSD) < 0 {
		return fmt.Errorf("%w: %w", ErrNotEnoughBalance,
			&escrow.NotEnoughUSDTokensError{Have: deposit.USDToken, Want: needUSD})
	}
	if deposit.LONG.Cmp(needLONG) < 0 {
		return fmt.Errorf("%w: %w", ErrNotEnoughBalance,
			&escrow.NotEnoughLONGsError{Have: deposit.LONG, Want: needLONG})
	}
	return nil
}

// settleLongPayment runs the LONG leg of a customer payment and returns the
// discount granted to the customer. The venue's escrow covers a platform
// subsidy; a processing slice of that subsidy flows to the treasury, and a
// buyback slice of the processing fee is burned.
func (e *Engine) settleLongPayment(cfg params.Parameters, customer, venueAddr [20]byte, rules venue.Rules, amount *big.Int) (*big.Int, error) {
	subsidy := fees.CalculateRate(cfg.Fees.PlatformSubsidyBps, amount)
	processing := fees.CalculateRate(cfg.Fees.ProcessingFeeBps, subsidy)
	buyback := fees.CalculateRate(cfg.Fees.BuybackBurnBps, processing)
	discount := fees.CalculateRate(cfg.Fees.LongCustomerDiscountBps, amount)

	// Direct payouts land at the venue wallet; auto-stake and auto-convert
	// route through the engine so the follow-up move is atomic with the
	// payment.
	recipient := venueAddr
	if rules.LongPaymentType != venue.LongDirect {
		recipient = e.self
	}

	// The customer leg has no escrow pre-check backing it, so it settles
	// before the first ledger debit; a customer shortfall aborts the payment
	// with the escrow bucket untouched.
	fromCustomer := new(big.Int).Sub(amount, discount)
	if err := e.bank.TransferLONG(customer, recipient, fromCustomer); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotEnoughBalance, err)
	}

	subsidyToVenue := new(big.Int).Sub(subsidy, processing)
	if subsidyToVenue.Sign() > 0 {
		if err := e.ledger.DebitAsLong(e.self, venueAddr, recipient, subsidyToVenue); err != nil {
			return nil, err
		}
	}

	toTreasury := new(big.Int).Sub(processing, buyback)
	if toTreasury.Sign() > 0 {
		if err := e.ledger.DebitAsLong(e.self, venueAddr, e.treasury, toTreasury); err != nil {
			return nil, err
		}
	}
	if buyback.Sign() > 0 {
		if err := e.ledger.DebitAsLong(e.self, venueAddr, e.self, buyback); err != nil {
			return nil, err
		}
		if err := e.bank.BurnLONG(e.self, buyback); err != nil {
			return nil, err
		}
		e.emit(events.RevenueBuybackBurn{Amount: new(big.Int).Set(buyback)})
		e.emit(events.BurnedLONGs{Amount: new(big.Int).Set(buyback)})
	}

	received := new(big.Int).Add(subsidyToVenue, fromCustomer)
	switch rules.LongPaymentType {
	case venue.LongAutoStake:
		if e.staker == nil {
			return nil, fmt.Errorf("checkin: staker not configured")
		}
		if err := e.staker.Stake(venueAddr, received); err != nil {
			return nil, err
		}
	case venue.LongAutoConvert:
		if _, err := e.swapToUSD(cfg, venueAddr, received); err != nil {
			return nil, err
		}
	}
	return discount, nil
}

// commitBounty reserves the planned amounts against the venue's escrow bucket
// and advances the promoter's accrual meter. The meter is always denominated
// in standardized USD regardless of the settlement currency.
func (e *Engine) commitBounty(promoter, venueAddr [20]byte, plan *bountyPlan) error {
	if err := e.ledger.DebitForAccrual(e.self, venueAddr, plan.allocUSD, plan.allocLONG); err != nil {
		return fmt.Errorf("%w: %w", ErrNotEnoughBalance, err)
	}
	accrued, err := e.st.PromoterAccrued(promoter, venueAddr)
	if err != nil {
		return err
	}
	if accrued == nil {
		accrued = big.NewInt(0)
	}
	if err := e.st.SetPromoterAccrued(promoter, venueAddr, new(big.Int).Add(accrued, plan.meterUSD)); err != nil {
		return err
	}
	if e.promoterCredit != nil {
		if err := e.promoterCredit.Mint(promoter, promoterAccrualID(promoter, venueAddr), plan.meterUSD, ""); err != nil {
			return err
		}
	}
	return nil
}
