package bank

import (
	"errors"
	"fmt"
	"math/big"

	"checkinchain/core/types"
)

// ErrInsufficientFunds indicates the source account cannot cover a transfer,
// burn or stake.
var ErrInsufficientFunds = errors.New("bank: insufficient funds")

// State is the account persistence boundary.
type State interface {
	AccountGet(addr [20]byte) (*types.Account, bool, error)
	AccountPut(addr [20]byte, account *types.Account) error
}

// Bank moves USD tokens and LONG between plain account records. It backs the
// engine's TokenBank and Staker collaborators and doubles as the staked
// balance source for tier resolution.
type Bank struct {
	st State
}

func NewBank(st State) *Bank {
	return &Bank{st: st}
}

func (b *Bank) load(addr [20]byte) (*types.Account, error) {
	account, ok, err := b.st.AccountGet(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &types.Account{
			BalanceUSDToken: big.NewInt(0),
			BalanceLONG:     big.NewInt(0),
			Stake:           big.NewInt(0),
		}, nil
	}
	if account.BalanceUSDToken == nil {
		account.BalanceUSDToken = big.NewInt(0)
	}
	if account.BalanceLONG == nil {
		account.BalanceLONG = big.NewInt(0)
	}
	if account.Stake == nil {
		account.Stake = big.NewInt(0)
	}
	return account, nil
}

func checkAmount(amount *big.Int) (*big.Int, error) {
	if amount == nil {
		return big.NewInt(0), nil
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("bank: negative amount")
	}
	return new(big.Int).Set(amount), nil
}

func (b *Bank) transfer(from, to [20]byte, amount *big.Int, balance func(*types.Account) *big.Int, set func(*types.Account, *big.Int)) error {
	value, err := checkAmount(amount)
	if err != nil {
		return err
	}
	if value.Sign() == 0 {
		return nil
	}
	source, err := b.load(from)
	if err != nil {
		return err
	}
	if balance(source).Cmp(value) < 0 {
		return fmt.Errorf("%w: have %s, want %s", ErrInsufficientFunds, balance(source), value)
	}
	set(source, new(big.Int).Sub(balance(source), value))
	if err := b.st.AccountPut(from, source); err != nil {
		return err
	}
	dest, err := b.load(to)
	if err != nil {
		return err
	}
	set(dest, new(big.Int).Add(balance(dest), value))
	return b.st.AccountPut(to, dest)
}

func usdBalance(a *types.Account) *big.Int        { return a.BalanceUSDToken }
func setUSDBalance(a *types.Account, v *big.Int)  { a.BalanceUSDToken = v }
func longBalance(a *types.Account) *big.Int       { return a.BalanceLONG }
func setLongBalance(a *types.Account, v *big.Int) { a.BalanceLONG = v }

// TransferUSDToken moves USD tokens between accounts.
func (b *Bank) TransferUSDToken(from, to [20]byte, amount *big.Int) error {
	return b.transfer(from, to, amount, usdBalance, setUSDBalance)
}

// TransferLONG moves LONG between accounts.
func (b *Bank) TransferLONG(from, to [20]byte, amount *big.Int) error {
	return b.transfer(from, to, amount, longBalance, setLongBalance)
}

// BurnLONG removes LONG from an account permanently.
func (b *Bank) BurnLONG(from [20]byte, amount *big.Int) error {
	value, err := checkAmount(amount)
	if err != nil {
		return err
	}
	if value.Sign() == 0 {
		return nil
	}
	source, err := b.load(from)
	if err != nil {
		return err
	}
	if source.BalanceLONG.Cmp(value) < 0 {
		return fmt.Errorf("%w: have %s, want %s", ErrInsufficientFunds, source.BalanceLONG, value)
	}
	source.BalanceLONG = new(big.Int).Sub(source.BalanceLONG, value)
	return b.st.AccountPut(from, source)
}

// MintUSDToken credits freshly issued USD tokens, used for operator funding.
func (b *Bank) MintUSDToken(to [20]byte, amount *big.Int) error {
	value, err := checkAmount(amount)
	if err != nil {
		return err
	}
	dest, err := b.load(to)
	if err != nil {
		return err
	}
	dest.BalanceUSDToken = new(big.Int).Add(dest.BalanceUSDToken, value)
	return b.st.AccountPut(to, dest)
}

// MintLONG credits freshly issued LONG, used for operator funding.
func (b *Bank) MintLONG(to [20]byte, amount *big.Int) error {
	value, err := checkAmount(amount)
	if err != nil {
		return err
	}
	dest, err := b.load(to)
	if err != nil {
		return err
	}
	dest.BalanceLONG = new(big.Int).Add(dest.BalanceLONG, value)
	return b.st.AccountPut(to, dest)
}

// Stake moves LONG from an account's liquid balance into its staked balance.
func (b *Bank) Stake(account [20]byte, amount *big.Int) error {
	value, err := checkAmount(amount)
	if err != nil {
		return err
	}
	if value.Sign() == 0 {
		return nil
	}
	holder, err := b.load(account)
	if err != nil {
		return err
	}
	if holder.BalanceLONG.Cmp(value) < 0 {
		return fmt.Errorf("%w: have %s, want %s", ErrInsufficientFunds, holder.BalanceLONG, value)
	}
	holder.BalanceLONG = new(big.Int).Sub(holder.BalanceLONG, value)
	holder.Stake = new(big.Int).Add(holder.Stake, value)
	return b.st.AccountPut(account, holder)
}

// Unstake moves staked LONG back into the liquid balance.
func (b *Bank) Unstake(account [20]byte, amount *big.Int) error {
	value, err := checkAmount(amount)
	if err != nil {
		return err
	}
	if value.Sign() == 0 {
		return nil
	}
	holder, err := b.load(account)
	if err != nil {
		return err
	}
	if holder.Stake.Cmp(value) < 0 {
		return fmt.Errorf("%w: staked %s, want %s", ErrInsufficientFunds, holder.Stake, value)
	}
	holder.Stake = new(big.Int).Sub(holder.Stake, value)
	holder.BalanceLONG = new(big.Int).Add(holder.BalanceLONG, value)
	return b.st.AccountPut(account, holder)
}

// StakedBalanceOf reports the account's staked LONG for tier resolution.
func (b *Bank) StakedBalanceOf(account [20]byte) (*big.Int, error) {
	holder, err := b.load(account)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(holder.Stake), nil
}

// BalanceOf returns a copy of the full account record.
func (b *Bank) BalanceOf(account [20]byte) (*types.Account, error) {
	return b.load(account)
}

// Vault adapts a fixed custody account to the escrow ledger's vault boundary.
type Vault struct {
	bank    *Bank
	custody [20]byte
}

// NewVault binds the escrow custody account.
func (b *Bank) NewVault(custody [20]byte) *Vault {
	return &Vault{bank: b, custody: custody}
}

func (v *Vault) TransferLONG(to [20]byte, amount *big.Int) error {
	return v.bank.TransferLONG(v.custody, to, amount)
}

func (v *Vault) TransferUSDToken(to [20]byte, amount *big.Int) error {
	return v.bank.TransferUSDToken(v.custody, to, amount)
}
