package checkin

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized indicates the caller lacks the manager role.
	ErrUnauthorized = errors.New("checkin: unauthorized")
	// ErrInvalidSignature indicates the intent signature does not match the
	// trusted signer over the exact field set and chain identity.
	ErrInvalidSignature = errors.New("checkin: invalid signature")
	// ErrWrongPaymentType indicates the payment currency is not accepted by
	// the venue's rules.
	ErrWrongPaymentType = errors.New("checkin: wrong payment type")
	// ErrWrongBountyType indicates the bounty encoding is inconsistent with
	// the venue's declared bounty policy.
	ErrWrongBountyType = errors.New("checkin: wrong bounty type")
	// ErrWrongReferralCode indicates a referral code could not be resolved.
	ErrWrongReferralCode = errors.New("checkin: wrong referral code")
	// ErrNotEnoughBalance indicates an accrual or escrow balance cannot
	// satisfy the requested amount.
	ErrNotEnoughBalance = errors.New("checkin: not enough balance")
)

// WrongReferralCodeError carries the unresolvable code for observability. It
// unwraps to ErrWrongReferralCode.
type WrongReferralCodeError struct {
	Code string
}

func (e *WrongReferralCodeError) Error() string {
	return fmt.Sprintf("checkin: wrong referral code %q", e.Code)
}

func (e *WrongReferralCodeError) Unwrap() error { return ErrWrongReferralCode }
