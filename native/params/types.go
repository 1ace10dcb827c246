package params

import (
	"fmt"
	"time"

	"checkinchain/native/fees"
	"checkinchain/native/staking"
)

// PaymentsInfo is the swap and oracle routing configuration consumed by the
// check-in engine. It is read-only to the core and replaced atomically through
// the parameter store.
type PaymentsInfo struct {
	Router                   [20]byte `json:"router"`
	Quoter                   [20]byte `json:"quoter"`
	SlippageBps              uint32   `json:"slippageBps"`
	MaxPriceStalenessSeconds int64    `json:"maxPriceStalenessSeconds"`
	USDToken                 string   `json:"usdToken"`
	LongToken                string   `json:"longToken"`
	PoolKey                  [32]byte `json:"poolKey"`
}

// MaxPriceStaleness converts the configured staleness bound into a duration.
func (p PaymentsInfo) MaxPriceStaleness() time.Duration {
	if p.MaxPriceStalenessSeconds <= 0 {
		return 0
	}
	return time.Duration(p.MaxPriceStalenessSeconds) * time.Second
}

// Validate bounds the slippage percentage.
func (p PaymentsInfo) Validate() error {
	if p.SlippageBps > fees.BpsDenominator {
		return fmt.Errorf("%w: slippageBps=%d", fees.ErrBPSTooHigh, p.SlippageBps)
	}
	return nil
}

// Parameters is the full engine configuration record. SetParameters replaces
// it as a single unit; there is no piecemeal field mutation.
type Parameters struct {
	Payments    PaymentsInfo        `json:"payments"`
	Fees        fees.Fees           `json:"fees"`
	RewardTable staking.RewardTable `json:"rewardTable"`
}

// Validate checks every bps field across the record.
func (p Parameters) Validate() error {
	if err := p.Payments.Validate(); err != nil {
		return err
	}
	if err := p.Fees.Validate(); err != nil {
		return err
	}
	return p.RewardTable.Validate()
}

// ContractsConfig holds the collaborator addresses, replaced as one unit.
type ContractsConfig struct {
	Escrow              [20]byte `json:"escrow"`
	Staking             [20]byte `json:"staking"`
	VenueCreditToken    [20]byte `json:"venueCreditToken"`
	PromoterCreditToken [20]byte `json:"promoterCreditToken"`
	PriceFeed           [20]byte `json:"priceFeed"`
}
