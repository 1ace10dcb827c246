package escrow

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"checkinchain/core/events"
)

type mockLedgerState struct {
	deposits map[[20]byte]*Deposit
}

func newMockLedgerState() *mockLedgerState {
	return &mockLedgerState{deposits: make(map[[20]byte]*Deposit)}
}

func (m *mockLedgerState) EscrowDepositGet(venue [20]byte) (*Deposit, bool, error) {
	deposit, ok := m.deposits[venue]
	if !ok {
		return nil, false, nil
	}
	return deposit.Clone(), true, nil
}

func (m *mockLedgerState) EscrowDepositPut(venue [20]byte, deposit *Deposit) error {
	m.deposits[venue] = deposit.Clone()
	return nil
}

type vaultCall struct {
	token  string
	to     [20]byte
	amount *big.Int
}

type mockVault struct {
	calls []vaultCall
	err   error
}

func (m *mockVault) TransferLONG(to [20]byte, amount *big.Int) error {
	if m.err != nil {
		return m.err
	}
	m.calls = append(m.calls, vaultCall{token: "LONG", to: to, amount: new(big.Int).Set(amount)})
	return nil
}

func (m *mockVault) TransferUSDToken(to [20]byte, amount *big.Int) error {
	if m.err != nil {
		return m.err
	}
	m.calls = append(m.calls, vaultCall{token: "USD", to: to, amount: new(big.Int).Set(amount)})
	return nil
}

type capturingEmitter struct {
	events []events.Event
}

func (c *capturingEmitter) Emit(evt events.Event) {
	c.events = append(c.events, evt)
}

func addr(fill byte) [20]byte {
	var out [20]byte
	copy(out[:], bytes.Repeat([]byte{fill}, 20))
	return out
}

func newTestLedger() (*Ledger, *mockLedgerState, *mockVault, *capturingEmitter) {
	st := newMockLedgerState()
	vault := &mockVault{}
	ledger := NewLedger(st, vault, addr(0xCC))
	emitter := &capturingEmitter{}
	ledger.SetEmitter(emitter)
	return ledger, st, vault, emitter
}

func TestCreditAccumulates(t *testing.T) {
	ledger, st, _, emitter := newTestLedger()
	venue := addr(0x01)

	if err := ledger.Credit(venue, big.NewInt(100), big.NewInt(40)); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := ledger.Credit(venue, big.NewInt(25), nil); err != nil {
		t.Fatalf("second credit: %v", err)
	}

	stored := st.deposits[venue]
	if stored.USDToken.Int64() != 125 || stored.LONG.Int64() != 40 {
		t.Fatalf("unexpected balances: usd=%s long=%s", stored.USDToken, stored.LONG)
	}
	if len(emitter.events) != 2 {
		t.Fatalf("expected 2 deposit events, got %d", len(emitter.events))
	}
	updated, ok := emitter.events[1].(events.VenueDepositsUpdated)
	if !ok {
		t.Fatalf("unexpected event type %T", emitter.events[1])
	}
	if updated.USDToken.Int64() != 125 {
		t.Fatalf("event usd balance = %s", updated.USDToken)
	}
}

func TestDebitAsLongRequiresCheckInIdentity(t *testing.T) {
	ledger, _, _, _ := newTestLedger()
	venue := addr(0x01)
	if err := ledger.Credit(venue, nil, big.NewInt(50)); err != nil {
		t.Fatalf("credit: %v", err)
	}

	err := ledger.DebitAsLong(addr(0xEE), venue, addr(0x02), big.NewInt(10))
	if !errors.Is(err, ErrNotBelongCheckIn) {
		t.Fatalf("expected ErrNotBelongCheckIn, got %v", err)
	}
}

func TestDebitAsLongInsufficientLeavesBalance(t *testing.T) {
	ledger, st, vault, _ := newTestLedger()
	venue := addr(0x01)
	if err := ledger.Credit(venue, nil, big.NewInt(30)); err != nil {
		t.Fatalf("credit: %v", err)
	}

	err := ledger.DebitAsLong(addr(0xCC), venue, addr(0x02), big.NewInt(31))
	if !errors.Is(err, ErrNotEnoughLONGs) {
		t.Fatalf("expected ErrNotEnoughLONGs, got %v", err)
	}
	var insufficient *NotEnoughLONGsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected NotEnoughLONGsError, got %T", err)
	}
	if insufficient.Have.Int64() != 30 || insufficient.Want.Int64() != 31 {
		t.Fatalf("unexpected have/want: %s/%s", insufficient.Have, insufficient.Want)
	}
	if st.deposits[venue].LONG.Int64() != 30 {
		t.Fatalf("balance mutated on failed debit: %s", st.deposits[venue].LONG)
	}
	if len(vault.calls) != 0 {
		t.Fatalf("vault called on failed debit")
	}
}

func TestDebitAsLongMovesTokens(t *testing.T) {
	ledger, st, vault, _ := newTestLedger()
	venue := addr(0x01)
	recipient := addr(0x07)
	if err := ledger.Credit(venue, nil, big.NewInt(30)); err != nil {
		t.Fatalf("credit: %v", err)
	}

	if err := ledger.DebitAsLong(addr(0xCC), venue, recipient, big.NewInt(12)); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if st.deposits[venue].LONG.Int64() != 18 {
		t.Fatalf("expected 18 LONG remaining, got %s", st.deposits[venue].LONG)
	}
	if len(vault.calls) != 1 || vault.calls[0].token != "LONG" || vault.calls[0].to != recipient {
		t.Fatalf("unexpected vault calls: %+v", vault.calls)
	}
	if vault.calls[0].amount.Int64() != 12 {
		t.Fatalf("unexpected transfer amount %s", vault.calls[0].amount)
	}
}

func TestDebitAsUSDInsufficient(t *testing.T) {
	ledger, _, _, _ := newTestLedger()
	venue := addr(0x01)
	if err := ledger.Credit(venue, big.NewInt(5), nil); err != nil {
		t.Fatalf("credit: %v", err)
	}

	err := ledger.DebitAsUSD(addr(0xCC), venue, addr(0x02), big.NewInt(6))
	if !errors.Is(err, ErrNotEnoughUSDTokens) {
		t.Fatalf("expected ErrNotEnoughUSDTokens, got %v", err)
	}
	var insufficient *NotEnoughUSDTokensError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected NotEnoughUSDTokensError, got %T", err)
	}
}

func TestDebitFailedVaultKeepsLedger(t *testing.T) {
	ledger, st, vault, _ := newTestLedger()
	venue := addr(0x01)
	if err := ledger.Credit(venue, big.NewInt(50), nil); err != nil {
		t.Fatalf("credit: %v", err)
	}
	vault.err = errors.New("vault offline")

	err := ledger.DebitAsUSD(addr(0xCC), venue, addr(0x02), big.NewInt(10))
	if err == nil {
		t.Fatal("expected vault error")
	}
	if st.deposits[venue].USDToken.Int64() != 50 {
		t.Fatalf("ledger mutated after vault failure: %s", st.deposits[venue].USDToken)
	}
}

func TestDebitForAccrualReservesWithoutVault(t *testing.T) {
	ledger, st, vault, _ := newTestLedger()
	venue := addr(0x01)
	if err := ledger.Credit(venue, big.NewInt(100), big.NewInt(60)); err != nil {
		t.Fatalf("credit: %v", err)
	}

	if err := ledger.DebitForAccrual(addr(0xCC), venue, big.NewInt(30), big.NewInt(10)); err != nil {
		t.Fatalf("accrual debit: %v", err)
	}
	if st.deposits[venue].USDToken.Int64() != 70 || st.deposits[venue].LONG.Int64() != 50 {
		t.Fatalf("unexpected balances: usd=%s long=%s", st.deposits[venue].USDToken, st.deposits[venue].LONG)
	}
	if len(vault.calls) != 0 {
		t.Fatalf("accrual debit must not move tokens, got %+v", vault.calls)
	}

	err := ledger.DebitForAccrual(addr(0xCC), venue, big.NewInt(71), nil)
	if !errors.Is(err, ErrNotEnoughUSDTokens) {
		t.Fatalf("expected ErrNotEnoughUSDTokens, got %v", err)
	}
	if err := ledger.DebitForAccrual(addr(0xEE), venue, big.NewInt(1), nil); !errors.Is(err, ErrNotBelongCheckIn) {
		t.Fatalf("expected ErrNotBelongCheckIn, got %v", err)
	}
}

func TestPayoutFromPoolMovesTokensOnly(t *testing.T) {
	ledger, st, vault, _ := newTestLedger()
	recipient := addr(0x09)

	if err := ledger.PayoutFromPool(addr(0xCC), recipient, big.NewInt(40), big.NewInt(15)); err != nil {
		t.Fatalf("payout: %v", err)
	}
	if len(vault.calls) != 2 {
		t.Fatalf("expected 2 vault calls, got %d", len(vault.calls))
	}
	if vault.calls[0].token != "USD" || vault.calls[0].amount.Int64() != 40 || vault.calls[0].to != recipient {
		t.Fatalf("unexpected usd call: %+v", vault.calls[0])
	}
	if vault.calls[1].token != "LONG" || vault.calls[1].amount.Int64() != 15 {
		t.Fatalf("unexpected long call: %+v", vault.calls[1])
	}
	if len(st.deposits) != 0 {
		t.Fatalf("payout must not touch venue buckets")
	}

	if err := ledger.PayoutFromPool(addr(0xEE), recipient, big.NewInt(1), nil); !errors.Is(err, ErrNotBelongCheckIn) {
		t.Fatalf("expected ErrNotBelongCheckIn, got %v", err)
	}
}

func TestCreditRejectsNegative(t *testing.T) {
	ledger, _, _, _ := newTestLedger()
	if err := ledger.Credit(addr(0x01), big.NewInt(-1), nil); err == nil {
		t.Fatal("expected error for negative credit")
	}
}
