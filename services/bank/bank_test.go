package bank

import (
	"errors"
	"math/big"
	"testing"

	"checkinchain/core/types"
)

type mockBankState struct {
	accounts map[[20]byte]*types.Account
	credits  map[string]*big.Int
	uris     map[string]string
}

func newMockBankState() *mockBankState {
	return &mockBankState{
		accounts: make(map[[20]byte]*types.Account),
		credits:  make(map[string]*big.Int),
		uris:     make(map[string]string),
	}
}

func (m *mockBankState) AccountGet(addr [20]byte) (*types.Account, bool, error) {
	account, ok := m.accounts[addr]
	if !ok {
		return nil, false, nil
	}
	clone := *account
	return &clone, true, nil
}

func (m *mockBankState) AccountPut(addr [20]byte, account *types.Account) error {
	clone := *account
	m.accounts[addr] = &clone
	return nil
}

func creditKey(name string, account [20]byte, id [32]byte) string {
	return name + string(id[:]) + string(account[:])
}

func (m *mockBankState) CreditBalanceGet(name string, account [20]byte, id [32]byte) (*big.Int, bool, error) {
	balance, ok := m.credits[creditKey(name, account, id)]
	if !ok {
		return nil, false, nil
	}
	return new(big.Int).Set(balance), true, nil
}

func (m *mockBankState) CreditBalancePut(name string, account [20]byte, id [32]byte, amount *big.Int) error {
	m.credits[creditKey(name, account, id)] = new(big.Int).Set(amount)
	return nil
}

func (m *mockBankState) CreditURIPut(name string, id [32]byte, uri string) error {
	m.uris[name+string(id[:])] = uri
	return nil
}

func addr(fill byte) [20]byte {
	var out [20]byte
	for i := range out {
		out[i] = fill
	}
	return out
}

func TestTransferUSDToken(t *testing.T) {
	st := newMockBankState()
	b := NewBank(st)
	alice, bob := addr(0x01), addr(0x02)

	if err := b.MintUSDToken(alice, big.NewInt(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := b.TransferUSDToken(alice, bob, big.NewInt(40)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	fromBalance, _ := b.BalanceOf(alice)
	toBalance, _ := b.BalanceOf(bob)
	if fromBalance.BalanceUSDToken.Int64() != 60 || toBalance.BalanceUSDToken.Int64() != 40 {
		t.Fatalf("unexpected balances: %s / %s", fromBalance.BalanceUSDToken, toBalance.BalanceUSDToken)
	}

	err := b.TransferUSDToken(alice, bob, big.NewInt(61))
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	fromBalance, _ = b.BalanceOf(alice)
	if fromBalance.BalanceUSDToken.Int64() != 60 {
		t.Fatal("failed transfer must not mutate the source")
	}
}

func TestBurnLONG(t *testing.T) {
	b := NewBank(newMockBankState())
	holder := addr(0x01)

	if err := b.MintLONG(holder, big.NewInt(50)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := b.BurnLONG(holder, big.NewInt(20)); err != nil {
		t.Fatalf("burn: %v", err)
	}
	balance, _ := b.BalanceOf(holder)
	if balance.BalanceLONG.Int64() != 30 {
		t.Fatalf("unexpected balance %s", balance.BalanceLONG)
	}
	if err := b.BurnLONG(holder, big.NewInt(31)); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestStakeAndUnstake(t *testing.T) {
	b := NewBank(newMockBankState())
	holder := addr(0x01)

	if err := b.MintLONG(holder, big.NewInt(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := b.Stake(holder, big.NewInt(70)); err != nil {
		t.Fatalf("stake: %v", err)
	}
	staked, err := b.StakedBalanceOf(holder)
	if err != nil || staked.Int64() != 70 {
		t.Fatalf("unexpected stake %s err=%v", staked, err)
	}
	balance, _ := b.BalanceOf(holder)
	if balance.BalanceLONG.Int64() != 30 {
		t.Fatalf("liquid balance not reduced: %s", balance.BalanceLONG)
	}

	if err := b.Unstake(holder, big.NewInt(71)); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if err := b.Unstake(holder, big.NewInt(70)); err != nil {
		t.Fatalf("unstake: %v", err)
	}
	staked, _ = b.StakedBalanceOf(holder)
	if staked.Sign() != 0 {
		t.Fatalf("stake not cleared: %s", staked)
	}
}

func TestVaultMovesFromCustody(t *testing.T) {
	b := NewBank(newMockBankState())
	custody, recipient := addr(0xEE), addr(0x02)
	if err := b.MintUSDToken(custody, big.NewInt(500)); err != nil {
		t.Fatalf("mint: %v", err)
	}

	vault := b.NewVault(custody)
	if err := vault.TransferUSDToken(recipient, big.NewInt(200)); err != nil {
		t.Fatalf("vault transfer: %v", err)
	}
	balance, _ := b.BalanceOf(recipient)
	if balance.BalanceUSDToken.Int64() != 200 {
		t.Fatalf("unexpected recipient balance %s", balance.BalanceUSDToken)
	}
}

func TestCreditLedgerMintBurn(t *testing.T) {
	st := newMockBankState()
	ledger := NewCreditLedger(st, "venue")
	holder := addr(0x01)
	var id [32]byte
	id[0] = 0x42

	if err := ledger.Mint(holder, id, big.NewInt(1000), "ipfs://meta"); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := ledger.Mint(holder, id, big.NewInt(500), ""); err != nil {
		t.Fatalf("second mint: %v", err)
	}
	balance, err := ledger.BalanceOf(holder, id)
	if err != nil || balance.Int64() != 1500 {
		t.Fatalf("unexpected balance %s err=%v", balance, err)
	}
	if st.uris["venue"+string(id[:])] != "ipfs://meta" {
		t.Fatal("uri not recorded")
	}

	if err := ledger.Burn(holder, id, big.NewInt(1501)); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if err := ledger.Burn(holder, id, big.NewInt(1500)); err != nil {
		t.Fatalf("burn: %v", err)
	}
	balance, _ = ledger.BalanceOf(holder, id)
	if balance.Sign() != 0 {
		t.Fatalf("balance not cleared: %s", balance)
	}
}
