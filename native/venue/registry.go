package venue

import (
	"errors"
	"fmt"
)

var (
	// ErrWrongPaymentTypeProvided indicates the bounty policy requires a
	// settlement currency the payment type does not permit.
	ErrWrongPaymentTypeProvided = errors.New("venue: wrong payment type provided")
	// ErrNotAVenue indicates the address has never registered rules.
	ErrNotAVenue = errors.New("venue: not a venue")
)

// RegistryState is the subset of state manager functionality the registry
// needs. Venue accounts are exclusively owned by the check-in module; no other
// component writes them.
type RegistryState interface {
	VenueAccountGet(venue [20]byte) (*Account, bool, error)
	VenueAccountPut(venue [20]byte, account *Account) error
}

// Registry maintains per-venue rules and free-deposit credits.
type Registry struct {
	st RegistryState
}

// NewRegistry constructs a registry bound to the supplied state backend.
func NewRegistry(st RegistryState) *Registry {
	return &Registry{st: st}
}

// ValidateRules enforces the payment/bounty compatibility invariant: a
// non-none bounty may only be configured when the payment type permits the
// bounty's allocation currency.
func ValidateRules(rules Rules) error {
	if !rules.PaymentType.Valid() || !rules.BountyType.Valid() ||
		!rules.BountyAlloc.Valid() || !rules.LongPaymentType.Valid() {
		return fmt.Errorf("%w: unknown enum value", ErrWrongPaymentTypeProvided)
	}
	if rules.BountyType == BountyNone {
		return nil
	}
	switch rules.BountyAlloc {
	case AllocateUSD:
		if !rules.PaymentType.AllowsUSD() {
			return fmt.Errorf("%w: usd bounty with %s payments", ErrWrongPaymentTypeProvided, rules.PaymentType)
		}
	case AllocateLONG:
		if !rules.PaymentType.AllowsLONG() {
			return fmt.Errorf("%w: long bounty with %s payments", ErrWrongPaymentTypeProvided, rules.PaymentType)
		}
	}
	return nil
}

func (r *Registry) withState() (RegistryState, error) {
	if r == nil || r.st == nil {
		return nil, fmt.Errorf("venue: state not configured")
	}
	return r.st, nil
}

// RegisterOrUpdateRules validates and persists the rules for a venue. On first
// registration the account is seeded with freeCredits deposit credits; later
// calls replace the rules and keep the remaining credits untouched.
func (r *Registry) RegisterOrUpdateRules(venue [20]byte, rules Rules, freeCredits uint64) error {
	st, err := r.withState()
	if err != nil {
		return err
	}
	if err := ValidateRules(rules); err != nil {
		return err
	}
	account, ok, err := st.VenueAccountGet(venue)
	if err != nil {
		return err
	}
	if !ok || account == nil {
		account = &Account{RemainingCredits: freeCredits}
	}
	account.Rules = rules
	return st.VenueAccountPut(venue, account)
}

// ConsumeCredit decrements the venue's remaining free-deposit credits. It
// reports whether a credit was available; the caller applies the deposit fee
// when it was not.
func (r *Registry) ConsumeCredit(venue [20]byte) (bool, error) {
	st, err := r.withState()
	if err != nil {
		return false, err
	}
	account, ok, err := st.VenueAccountGet(venue)
	if err != nil {
		return false, err
	}
	if !ok || account == nil {
		return false, ErrNotAVenue
	}
	if account.RemainingCredits == 0 {
		return false, nil
	}
	account.RemainingCredits--
	if err := st.VenueAccountPut(venue, account); err != nil {
		return false, err
	}
	return true, nil
}

// RequireIsVenue fails with ErrNotAVenue when the address has no registered
// rules. Rule updates are gated on this check.
func (r *Registry) RequireIsVenue(addr [20]byte) error {
	st, err := r.withState()
	if err != nil {
		return err
	}
	_, ok, err := st.VenueAccountGet(addr)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAVenue
	}
	return nil
}

// Rules returns the registered rules for a venue.
func (r *Registry) Rules(venue [20]byte) (Rules, error) {
	st, err := r.withState()
	if err != nil {
		return Rules{}, err
	}
	account, ok, err := st.VenueAccountGet(venue)
	if err != nil {
		return Rules{}, err
	}
	if !ok || account == nil {
		return Rules{}, ErrNotAVenue
	}
	return account.Rules, nil
}

// AccountOf returns the full registry record for a venue.
func (r *Registry) AccountOf(venue [20]byte) (*Account, error) {
	st, err := r.withState()
	if err != nil {
		return nil, err
	}
	account, ok, err := st.VenueAccountGet(venue)
	if err != nil {
		return nil, err
	}
	if !ok || account == nil {
		return nil, ErrNotAVenue
	}
	return account, nil
}
