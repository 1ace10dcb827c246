package bank

import (
	"fmt"
	"math/big"
)

// CreditState persists per-(account, id) credit balances and per-id metadata.
type CreditState interface {
	CreditBalanceGet(name string, account [20]byte, id [32]byte) (*big.Int, bool, error)
	CreditBalancePut(name string, account [20]byte, id [32]byte, amount *big.Int) error
	CreditURIPut(name string, id [32]byte, uri string) error
}

// CreditLedger is a balance-bearing credit token. The engine mints venue
// credits against deposits and promoter credits against bounty accruals; burns
// mirror distributions and cancellations.
type CreditLedger struct {
	st   CreditState
	name string
}

func NewCreditLedger(st CreditState, name string) *CreditLedger {
	return &CreditLedger{st: st, name: name}
}

func (l *CreditLedger) balance(account [20]byte, id [32]byte) (*big.Int, error) {
	amount, ok, err := l.st.CreditBalanceGet(l.name, account, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(amount), nil
}

func (l *CreditLedger) Mint(account [20]byte, id [32]byte, amount *big.Int, uri string) error {
	value, err := checkAmount(amount)
	if err != nil {
		return err
	}
	current, err := l.balance(account, id)
	if err != nil {
		return err
	}
	if err := l.st.CreditBalancePut(l.name, account, id, new(big.Int).Add(current, value)); err != nil {
		return err
	}
	if uri != "" {
		return l.st.CreditURIPut(l.name, id, uri)
	}
	return nil
}

func (l *CreditLedger) Burn(account [20]byte, id [32]byte, amount *big.Int) error {
	value, err := checkAmount(amount)
	if err != nil {
		return err
	}
	current, err := l.balance(account, id)
	if err != nil {
		return err
	}
	if current.Cmp(value) < 0 {
		return fmt.Errorf("%w: have %s, want %s", ErrInsufficientFunds, current, value)
	}
	return l.st.CreditBalancePut(l.name, account, id, new(big.Int).Sub(current, value))
}

// BalanceOf reports the credit balance for one (account, id) pair.
func (l *CreditLedger) BalanceOf(account [20]byte, id [32]byte) (*big.Int, error) {
	return l.balance(account, id)
}
