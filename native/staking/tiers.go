package staking

import "math/big"

// Tier is one of the five fixed staking-reward brackets. The set is closed by
// design; never model it as a dynamic collection.
type Tier uint8

const (
	TierNone Tier = iota
	TierBronze
	TierSilver
	TierGold
	TierPlatinum

	tierCount = 5
)

func (t Tier) String() string {
	switch t {
	case TierNone:
		return "none"
	case TierBronze:
		return "bronze"
	case TierSilver:
		return "silver"
	case TierGold:
		return "gold"
	case TierPlatinum:
		return "platinum"
	}
	return "unknown"
}

// Valid reports whether the tier is one of the five defined brackets.
func (t Tier) Valid() bool {
	return t < tierCount
}

// BalanceSource exposes the staking collaborator's balance query. Deposit and
// withdraw bookkeeping stay inside the collaborator; the engine only reads.
type BalanceSource interface {
	StakedBalanceOf(account [20]byte) (*big.Int, error)
}

func tokens(n int64) *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	return new(big.Int).Mul(big.NewInt(n), scale)
}

// tierThresholds are the ascending minimum staked balances for each tier,
// denominated in 18-decimal platform tokens.
var tierThresholds = [tierCount]*big.Int{
	big.NewInt(0),
	tokens(50_000),
	tokens(250_000),
	tokens(500_000),
	tokens(1_000_000),
}

// ResolveTier maps a staked balance to the highest tier whose threshold is
// met. It is total and non-decreasing in the balance; nil and negative
// balances resolve to TierNone.
func ResolveTier(stakedBalance *big.Int) Tier {
	if stakedBalance == nil || stakedBalance.Sign() <= 0 {
		return TierNone
	}
	tier := TierNone
	for i := 1; i < tierCount; i++ {
		if stakedBalance.Cmp(tierThresholds[i]) >= 0 {
			tier = Tier(i)
		}
	}
	return tier
}
