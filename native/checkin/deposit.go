package checkin

import (
	"fmt"
	"math/big"

	"checkinchain/core/events"
	"checkinchain/native/fees"
	"checkinchain/native/venue"
)

// VenueDeposit funds a venue's escrow bucket from the venue's wallet,
// registering or refreshing the venue's rules along the way. The deposit
// principal, a tier-scaled convenience fee (swapped to LONG) and, when the
// venue has no free credits left, a tier-scaled deposit fee are pulled in a
// single transfer. A valid referral code redirects a slice of the deposit fee
// to the affiliate, paid in LONG.
func (e *Engine) VenueDeposit(intent VenueIntent) (err error) {
	defer func() { e.metrics.ObserveOperation("venue_deposit", err) }()

	if err = e.verify(intent.Hash(e.chainID), intent.Signature); err != nil {
		return err
	}
	amount, err := requirePositive(intent.Amount, "deposit amount")
	if err != nil {
		return err
	}
	if err = venue.ValidateRules(intent.Rules); err != nil {
		return err
	}
	cfg, err := e.parameters()
	if err != nil {
		return err
	}
	affiliate, hasAffiliate, err := e.resolveReferral(intent.ReferralCode)
	if err != nil {
		return err
	}
	schedule, err := e.scheduleFor(cfg, intent.Venue)
	if err != nil {
		return err
	}
	convenienceFee := cloneAmount(schedule.Venue.ConvenienceFeeAmount)

	// Whether this deposit rides a free credit is decided against the state
	// before the deposit mutates it: an unknown venue gets the configured
	// allowance seeded on registration, so its first deposits are free too.
	account, known, err := e.st.VenueAccountGet(intent.Venue)
	if err != nil {
		return err
	}
	hadCredit := false
	if known {
		hadCredit = account.RemainingCredits > 0
	} else {
		hadCredit = cfg.Fees.ReferralCreditsAmount > 0
	}

	treasuryFee := big.NewInt(0)
	affiliateFee := big.NewInt(0)
	if !hadCredit {
		treasuryFee = fees.CalculateRate(schedule.Venue.DepositFeeBps, amount)
		if hasAffiliate {
			affiliateFee = fees.CalculateRate(cfg.Fees.AffiliatePercentageBps, treasuryFee)
			treasuryFee = new(big.Int).Sub(treasuryFee, affiliateFee)
		}
	}

	total := new(big.Int).Set(amount)
	total.Add(total, convenienceFee)
	total.Add(total, treasuryFee)
	total.Add(total, affiliateFee)
	if err = e.bank.TransferUSDToken(intent.Venue, e.self, total); err != nil {
		return fmt.Errorf("%w: %w", ErrNotEnoughBalance, err)
	}

	if convenienceFee.Sign() > 0 {
		longOut, swapErr := e.swapToLONG(cfg, e.escrowAt, convenienceFee)
		if swapErr != nil {
			return swapErr
		}
		if err = e.ledger.Credit(intent.Venue, nil, longOut); err != nil {
			return err
		}
	}
	if treasuryFee.Sign() > 0 {
		if err = e.bank.TransferUSDToken(e.self, e.treasury, treasuryFee); err != nil {
			return err
		}
	}
	if affiliateFee.Sign() > 0 {
		if _, err = e.swapToLONG(cfg, affiliate, affiliateFee); err != nil {
			return err
		}
	}

	if err = e.registry.RegisterOrUpdateRules(intent.Venue, intent.Rules, cfg.Fees.ReferralCreditsAmount); err != nil {
		return err
	}
	if hadCredit {
		if _, err = e.registry.ConsumeCredit(intent.Venue); err != nil {
			return err
		}
	}

	if err = e.bank.TransferUSDToken(e.self, e.escrowAt, amount); err != nil {
		return err
	}
	if err = e.ledger.Credit(intent.Venue, amount, nil); err != nil {
		return err
	}
	if e.venueCredit != nil {
		if err = e.venueCredit.Mint(intent.Venue, venueCreditID(intent.Venue), amount, intent.URI); err != nil {
			return err
		}
	}

	e.emit(events.VenuePaidDeposit{
		Venue:        intent.Venue,
		Amount:       amount,
		TreasuryFee:  treasuryFee,
		AffiliateFee: affiliateFee,
		ReferralCode: intent.ReferralCode,
		URI:          intent.URI,
		CreditUsed:   hadCredit,
	})
	e.emitRulesSet(intent.Venue, intent.Rules)
	return nil
}

// UpdateVenueRules replaces the rules of an already registered venue. The
// caller must be the venue itself; remaining free credits are untouched.
func (e *Engine) UpdateVenueRules(caller [20]byte, rules venue.Rules) (err error) {
	defer func() { e.metrics.ObserveOperation("update_venue_rules", err) }()

	if err = e.registry.RequireIsVenue(caller); err != nil {
		return err
	}
	if err = venue.ValidateRules(rules); err != nil {
		return err
	}
	if err = e.registry.RegisterOrUpdateRules(caller, rules, 0); err != nil {
		return err
	}
	e.emitRulesSet(caller, rules)
	return nil
}

func (e *Engine) emitRulesSet(venueAddr [20]byte, rules venue.Rules) {
	e.emit(events.VenueRulesSet{
		Venue:           venueAddr,
		PaymentType:     rules.PaymentType.String(),
		BountyType:      rules.BountyType.String(),
		BountyAlloc:     rules.BountyAlloc.String(),
		LongPaymentType: rules.LongPaymentType.String(),
	})
}
