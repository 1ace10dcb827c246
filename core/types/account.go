package types

import "math/big"

// Account holds the platform balances for a single address. USDToken and LONG
// are the two settlement currencies; Stake mirrors the balance locked in the
// staking collaborator and is only written by that module.
type Account struct {
	Nonce           uint64   `json:"nonce"`
	BalanceUSDToken *big.Int `json:"balanceUSDToken"`
	BalanceLONG     *big.Int `json:"balanceLONG"`
	Stake           *big.Int `json:"stake"`
}
