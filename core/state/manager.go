package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"checkinchain/core/types"
	"checkinchain/native/checkin"
	"checkinchain/native/escrow"
	"checkinchain/native/params"
	"checkinchain/native/pricing"
	"checkinchain/native/venue"
	"checkinchain/services/bank"
	"checkinchain/services/oracle"
	"checkinchain/storage"
)

const (
	accountPrefix       = "checkin/account/"
	venueAccountPrefix  = "checkin/venue/"
	escrowDepositPrefix = "checkin/escrow/"
	referralPrefix      = "checkin/referral/"
	accrualPrefix       = "checkin/accrual/"
	creditPrefix        = "credits/"
	oracleRoundPrefix   = "oracle/round/"
	paramPrefix         = "params/"
)

// Manager persists all module state behind one key-value database. Keys are
// namespaced by record kind; values are JSON except where a raw encoding is
// cheaper.
type Manager struct {
	db storage.Database
}

var (
	_ venue.RegistryState = (*Manager)(nil)
	_ escrow.LedgerState  = (*Manager)(nil)
	_ params.StoreState   = (*Manager)(nil)
	_ checkin.EngineState = (*Manager)(nil)
	_ bank.State          = (*Manager)(nil)
	_ bank.CreditState    = (*Manager)(nil)
	_ oracle.State        = (*Manager)(nil)
)

func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

func (m *Manager) getJSON(key []byte, dest any) (bool, error) {
	raw, err := m.db.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("state: decode %q: %w", key, err)
	}
	return true, nil
}

func (m *Manager) putJSON(key []byte, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("state: encode %q: %w", key, err)
	}
	return m.db.Put(key, raw)
}

func venueAccountKey(addr [20]byte) []byte {
	return []byte(fmt.Sprintf("%s%x", venueAccountPrefix, addr))
}

func (m *Manager) VenueAccountGet(addr [20]byte) (*venue.Account, bool, error) {
	account := new(venue.Account)
	ok, err := m.getJSON(venueAccountKey(addr), account)
	if err != nil || !ok {
		return nil, false, err
	}
	return account, true, nil
}

func (m *Manager) VenueAccountPut(addr [20]byte, account *venue.Account) error {
	if account == nil {
		return fmt.Errorf("state: nil venue account")
	}
	return m.putJSON(venueAccountKey(addr), account)
}

func escrowDepositKey(addr [20]byte) []byte {
	return []byte(fmt.Sprintf("%s%x", escrowDepositPrefix, addr))
}

func (m *Manager) EscrowDepositGet(addr [20]byte) (*escrow.Deposit, bool, error) {
	deposit := new(escrow.Deposit)
	ok, err := m.getJSON(escrowDepositKey(addr), deposit)
	if err != nil || !ok {
		return nil, false, err
	}
	return deposit, true, nil
}

func (m *Manager) EscrowDepositPut(addr [20]byte, deposit *escrow.Deposit) error {
	if deposit == nil {
		return fmt.Errorf("state: nil escrow deposit")
	}
	return m.putJSON(escrowDepositKey(addr), deposit)
}

func paramKey(name string) []byte {
	return []byte(paramPrefix + name)
}

func (m *Manager) ParamStoreSet(name string, value []byte) error {
	return m.db.Put(paramKey(name), value)
}

func (m *Manager) ParamStoreGet(name string) ([]byte, bool, error) {
	raw, err := m.db.Get(paramKey(name))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return raw, true, nil
}

func referralKey(code string) []byte {
	return []byte(referralPrefix + code)
}

func (m *Manager) ReferralAffiliate(code string) ([20]byte, bool, error) {
	var affiliate [20]byte
	raw, err := m.db.Get(referralKey(code))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return affiliate, false, nil
		}
		return affiliate, false, err
	}
	if len(raw) != len(affiliate) {
		return affiliate, false, fmt.Errorf("state: referral record for %q has %d bytes", code, len(raw))
	}
	copy(affiliate[:], raw)
	return affiliate, true, nil
}

func (m *Manager) SetReferralAffiliate(code string, affiliate [20]byte) error {
	if code == "" {
		return fmt.Errorf("state: empty referral code")
	}
	return m.db.Put(referralKey(code), affiliate[:])
}

func accrualStateKey(promoter, venueAddr [20]byte) []byte {
	return []byte(fmt.Sprintf("%s%x/%x", accrualPrefix, promoter, venueAddr))
}

func (m *Manager) PromoterAccrued(promoter, venueAddr [20]byte) (*big.Int, error) {
	raw, err := m.db.Get(accrualStateKey(promoter, venueAddr))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return big.NewInt(0), nil
		}
		return nil, err
	}
	accrued, ok := new(big.Int).SetString(string(raw), 10)
	if !ok {
		return nil, fmt.Errorf("state: corrupt accrual record %q", raw)
	}
	return accrued, nil
}

func (m *Manager) SetPromoterAccrued(promoter, venueAddr [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("state: accrual amount must be non-negative")
	}
	key := accrualStateKey(promoter, venueAddr)
	if amount.Sign() == 0 {
		err := m.db.Delete(key)
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil
		}
		return err
	}
	return m.db.Put(key, []byte(amount.Text(10)))
}

func accountKey(addr [20]byte) []byte {
	return []byte(fmt.Sprintf("%s%x", accountPrefix, addr))
}

func (m *Manager) AccountGet(addr [20]byte) (*types.Account, bool, error) {
	account := new(types.Account)
	ok, err := m.getJSON(accountKey(addr), account)
	if err != nil || !ok {
		return nil, false, err
	}
	return account, true, nil
}

func (m *Manager) AccountPut(addr [20]byte, account *types.Account) error {
	if account == nil {
		return fmt.Errorf("state: nil account")
	}
	return m.putJSON(accountKey(addr), account)
}

func creditBalanceKey(name string, account [20]byte, id [32]byte) []byte {
	return []byte(fmt.Sprintf("%s%s/%x/%x", creditPrefix, name, id, account))
}

func creditURIKey(name string, id [32]byte) []byte {
	return []byte(fmt.Sprintf("%s%s/meta/%x", creditPrefix, name, id))
}

func (m *Manager) CreditBalanceGet(name string, account [20]byte, id [32]byte) (*big.Int, bool, error) {
	raw, err := m.db.Get(creditBalanceKey(name, account, id))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	balance, ok := new(big.Int).SetString(string(raw), 10)
	if !ok {
		return nil, false, fmt.Errorf("state: corrupt credit record %q", raw)
	}
	return balance, true, nil
}

func (m *Manager) CreditBalancePut(name string, account [20]byte, id [32]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("state: credit balance must be non-negative")
	}
	key := creditBalanceKey(name, account, id)
	if amount.Sign() == 0 {
		return m.db.Delete(key)
	}
	return m.db.Put(key, []byte(amount.Text(10)))
}

func (m *Manager) CreditURIPut(name string, id [32]byte, uri string) error {
	return m.db.Put(creditURIKey(name, id), []byte(uri))
}

// CreditURIGet returns the metadata URI last recorded for a credit id.
func (m *Manager) CreditURIGet(name string, id [32]byte) (string, bool, error) {
	raw, err := m.db.Get(creditURIKey(name, id))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(raw), true, nil
}

func oracleRoundKey(asset string) []byte {
	return []byte(oracleRoundPrefix + asset)
}

func (m *Manager) OracleRoundGet(asset string) (pricing.RoundData, bool, error) {
	var round pricing.RoundData
	ok, err := m.getJSON(oracleRoundKey(asset), &round)
	if err != nil || !ok {
		return pricing.RoundData{}, false, err
	}
	return round, true, nil
}

func (m *Manager) OracleRoundPut(asset string, round pricing.RoundData) error {
	return m.putJSON(oracleRoundKey(asset), round)
}
