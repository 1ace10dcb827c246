package escrow

import (
	"errors"
	"fmt"
	"math/big"

	"checkinchain/core/events"
)

var (
	// ErrNotBelongCheckIn indicates a caller other than the check-in engine
	// attempted a ledger drawdown.
	ErrNotBelongCheckIn = errors.New("escrow: caller does not belong to check-in")
	// ErrNotEnoughLONGs indicates the venue's pooled LONG cannot satisfy the
	// requested debit.
	ErrNotEnoughLONGs = errors.New("escrow: not enough LONG deposits")
	// ErrNotEnoughUSDTokens indicates the venue's pooled USD tokens cannot
	// satisfy the requested debit.
	ErrNotEnoughUSDTokens = errors.New("escrow: not enough usd-token deposits")
)

// NotEnoughLONGsError carries the available and requested amounts for
// observability. It unwraps to ErrNotEnoughLONGs.
type NotEnoughLONGsError struct {
	Have *big.Int
	Want *big.Int
}

func (e *NotEnoughLONGsError) Error() string {
	return fmt.Sprintf("escrow: not enough LONG deposits: have %s, want %s", e.Have, e.Want)
}

func (e *NotEnoughLONGsError) Unwrap() error { return ErrNotEnoughLONGs }

// NotEnoughUSDTokensError is the USD-token counterpart of NotEnoughLONGsError.
type NotEnoughUSDTokensError struct {
	Have *big.Int
	Want *big.Int
}

func (e *NotEnoughUSDTokensError) Error() string {
	return fmt.Sprintf("escrow: not enough usd-token deposits: have %s, want %s", e.Have, e.Want)
}

func (e *NotEnoughUSDTokensError) Unwrap() error { return ErrNotEnoughUSDTokens }

// Deposit is the pooled escrow balance for a single venue. Both fields are
// guarded against going negative; drawdowns fail rather than clamp.
type Deposit struct {
	USDToken *big.Int `json:"usdTokenDeposits"`
	LONG     *big.Int `json:"longDeposits"`
}

// Clone returns a deep copy so callers never alias stored balances.
func (d *Deposit) Clone() *Deposit {
	clone := &Deposit{USDToken: big.NewInt(0), LONG: big.NewInt(0)}
	if d == nil {
		return clone
	}
	if d.USDToken != nil {
		clone.USDToken = new(big.Int).Set(d.USDToken)
	}
	if d.LONG != nil {
		clone.LONG = new(big.Int).Set(d.LONG)
	}
	return clone
}

// LedgerState is the subset of state manager functionality the escrow ledger
// needs. Deposits are exclusively owned by the check-in module.
type LedgerState interface {
	EscrowDepositGet(venue [20]byte) (*Deposit, bool, error)
	EscrowDepositPut(venue [20]byte, deposit *Deposit) error
}

// TokenVault abstracts the token collaborator that custodies pooled value.
// The ledger tracks entitlements; the vault moves tokens.
type TokenVault interface {
	TransferLONG(to [20]byte, amount *big.Int) error
	TransferUSDToken(to [20]byte, amount *big.Int) error
}

// Ledger tracks per-venue dual-currency escrow deposits. Drawdowns are
// restricted to the check-in engine identity fixed at construction.
type Ledger struct {
	st      LedgerState
	vault   TokenVault
	checkIn [20]byte
	emitter events.Emitter
}

// NewLedger constructs a ledger bound to the supplied state backend, vault and
// check-in engine identity.
func NewLedger(st LedgerState, vault TokenVault, checkIn [20]byte) *Ledger {
	return &Ledger{st: st, vault: vault, checkIn: checkIn, emitter: events.NoopEmitter{}}
}

// SetEmitter configures the event emitter. Passing nil resets to a no-op.
func (l *Ledger) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		l.emitter = events.NoopEmitter{}
		return
	}
	l.emitter = emitter
}

func (l *Ledger) emit(evt events.Event) {
	if l == nil || l.emitter == nil {
		return
	}
	l.emitter.Emit(evt)
}

func (l *Ledger) withState() (LedgerState, error) {
	if l == nil || l.st == nil {
		return nil, fmt.Errorf("escrow: state not configured")
	}
	return l.st, nil
}

func (l *Ledger) load(venue [20]byte) (*Deposit, error) {
	st, err := l.withState()
	if err != nil {
		return nil, err
	}
	deposit, ok, err := st.EscrowDepositGet(venue)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &Deposit{USDToken: big.NewInt(0), LONG: big.NewInt(0)}, nil
	}
	return deposit.Clone(), nil
}

func (l *Ledger) store(venue [20]byte, deposit *Deposit) error {
	st, err := l.withState()
	if err != nil {
		return err
	}
	if err := st.EscrowDepositPut(venue, deposit); err != nil {
		return err
	}
	l.emit(events.VenueDepositsUpdated{
		Venue:    venue,
		USDToken: new(big.Int).Set(deposit.USDToken),
		LONG:     new(big.Int).Set(deposit.LONG),
	})
	return nil
}

func nonNegative(amount *big.Int) (*big.Int, error) {
	if amount == nil {
		return big.NewInt(0), nil
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("escrow: negative amount")
	}
	return new(big.Int).Set(amount), nil
}

// Balance returns a copy of the venue's pooled deposits.
func (l *Ledger) Balance(venue [20]byte) (*Deposit, error) {
	return l.load(venue)
}

// Credit increments the venue's pooled balances, creating the record lazily on
// first use.
func (l *Ledger) Credit(venue [20]byte, usdAmount, longAmount *big.Int) error {
	usd, err := nonNegative(usdAmount)
	if err != nil {
		return err
	}
	long, err := nonNegative(longAmount)
	if err != nil {
		return err
	}
	deposit, err := l.load(venue)
	if err != nil {
		return err
	}
	deposit.USDToken = new(big.Int).Add(deposit.USDToken, usd)
	deposit.LONG = new(big.Int).Add(deposit.LONG, long)
	return l.store(venue, deposit)
}

func (l *Ledger) requireCheckIn(caller [20]byte) error {
	if caller != l.checkIn {
		return ErrNotBelongCheckIn
	}
	return nil
}

// DebitAsLong draws longAmount from the venue's pooled LONG and instructs the
// vault to transfer it to the recipient. Only the check-in engine may call.
func (l *Ledger) DebitAsLong(caller, venue, to [20]byte, longAmount *big.Int) error {
	if err := l.requireCheckIn(caller); err != nil {
		return err
	}
	amount, err := nonNegative(longAmount)
	if err != nil {
		return err
	}
	deposit, err := l.load(venue)
	if err != nil {
		return err
	}
	if deposit.LONG.Cmp(amount) < 0 {
		return &NotEnoughLONGsError{Have: new(big.Int).Set(deposit.LONG), Want: amount}
	}
	if l.vault == nil {
		return fmt.Errorf("escrow: vault not configured")
	}
	// The vault moves tokens before the ledger entry shrinks so a failed
	// transfer leaves the deposit untouched.
	if err := l.vault.TransferLONG(to, amount); err != nil {
		return err
	}
	deposit.LONG = new(big.Int).Sub(deposit.LONG, amount)
	return l.store(venue, deposit)
}

// DebitForAccrual decrements the venue's pooled balances without moving
// tokens: the value stays in escrow custody, reserved for a promoter accrual.
// Only the check-in engine may call.
func (l *Ledger) DebitForAccrual(caller, venue [20]byte, usdAmount, longAmount *big.Int) error {
	if err := l.requireCheckIn(caller); err != nil {
		return err
	}
	usd, err := nonNegative(usdAmount)
	if err != nil {
		return err
	}
	long, err := nonNegative(longAmount)
	if err != nil {
		return err
	}
	deposit, err := l.load(venue)
	if err != nil {
		return err
	}
	if deposit.USDToken.Cmp(usd) < 0 {
		return &NotEnoughUSDTokensError{Have: new(big.Int).Set(deposit.USDToken), Want: usd}
	}
	if deposit.LONG.Cmp(long) < 0 {
		return &NotEnoughLONGsError{Have: new(big.Int).Set(deposit.LONG), Want: long}
	}
	deposit.USDToken = new(big.Int).Sub(deposit.USDToken, usd)
	deposit.LONG = new(big.Int).Sub(deposit.LONG, long)
	return l.store(venue, deposit)
}

// PayoutFromPool instructs the vault to pay out value held in escrow custody
// that is no longer attributed to any venue bucket (promoter accruals). Only
// the check-in engine may call; the caller is responsible for the matching
// accrual-meter decrement.
func (l *Ledger) PayoutFromPool(caller, to [20]byte, usdAmount, longAmount *big.Int) error {
	if err := l.requireCheckIn(caller); err != nil {
		return err
	}
	usd, err := nonNegative(usdAmount)
	if err != nil {
		return err
	}
	long, err := nonNegative(longAmount)
	if err != nil {
		return err
	}
	if l.vault == nil {
		return fmt.Errorf("escrow: vault not configured")
	}
	if usd.Sign() > 0 {
		if err := l.vault.TransferUSDToken(to, usd); err != nil {
			return err
		}
	}
	if long.Sign() > 0 {
		if err := l.vault.TransferLONG(to, long); err != nil {
			return err
		}
	}
	return nil
}

// DebitAsUSD is the USD-token counterpart of DebitAsLong.
func (l *Ledger) DebitAsUSD(caller, venue, to [20]byte, usdAmount *big.Int) error {
	if err := l.requireCheckIn(caller); err != nil {
		return err
	}
	amount, err := nonNegative(usdAmount)
	if err != nil {
		return err
	}
	deposit, err := l.load(venue)
	if err != nil {
		return err
	}
	if deposit.USDToken.Cmp(amount) < 0 {
		return &NotEnoughUSDTokensError{Have: new(big.Int).Set(deposit.USDToken), Want: amount}
	}
	if l.vault == nil {
		return fmt.Errorf("escrow: vault not configured")
	}
	if err := l.vault.TransferUSDToken(to, amount); err != nil {
		return err
	}
	deposit.USDToken = new(big.Int).Sub(deposit.USDToken, amount)
	return l.store(venue, deposit)
}
