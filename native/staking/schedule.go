package staking

import (
	"fmt"
	"math/big"

	"checkinchain/native/fees"
)

// VenueStakingRewardInfo holds the venue-facing fee schedule for one tier.
type VenueStakingRewardInfo struct {
	DepositFeeBps        uint32   `json:"depositFeeBps"`
	ConvenienceFeeAmount *big.Int `json:"convenienceFeeAmount"`
}

// PromoterStakingRewardInfo holds the promoter-facing distribution fee
// percentages for one tier.
type PromoterStakingRewardInfo struct {
	USDTokenBps uint32 `json:"usdTokenBps"`
	LongBps     uint32 `json:"longBps"`
}

// TierSchedule pairs the venue and promoter reward info for a single tier.
type TierSchedule struct {
	Venue    VenueStakingRewardInfo    `json:"venue"`
	Promoter PromoterStakingRewardInfo `json:"promoter"`
}

// RewardTable is the full five-tier schedule, indexed by Tier. It is mutated
// only through the parameter store's atomic replace.
type RewardTable [tierCount]TierSchedule

// Validate bounds every bps field in the table.
func (t RewardTable) Validate() error {
	for tier := TierNone; tier.Valid(); tier++ {
		schedule := t[tier]
		if schedule.Venue.DepositFeeBps > fees.BpsDenominator {
			return fmt.Errorf("%w: tier %s depositFeeBps=%d", fees.ErrBPSTooHigh, tier, schedule.Venue.DepositFeeBps)
		}
		if schedule.Promoter.USDTokenBps > fees.BpsDenominator {
			return fmt.Errorf("%w: tier %s usdTokenBps=%d", fees.ErrBPSTooHigh, tier, schedule.Promoter.USDTokenBps)
		}
		if schedule.Promoter.LongBps > fees.BpsDenominator {
			return fmt.Errorf("%w: tier %s longBps=%d", fees.ErrBPSTooHigh, tier, schedule.Promoter.LongBps)
		}
	}
	return nil
}

// ResolveSchedule returns the schedule for the supplied tier. Invalid tiers
// resolve to the TierNone schedule so callers never index out of range.
func (t RewardTable) ResolveSchedule(tier Tier) TierSchedule {
	if !tier.Valid() {
		tier = TierNone
	}
	schedule := t[tier]
	if schedule.Venue.ConvenienceFeeAmount == nil {
		schedule.Venue.ConvenienceFeeAmount = big.NewInt(0)
	} else {
		schedule.Venue.ConvenienceFeeAmount = new(big.Int).Set(schedule.Venue.ConvenienceFeeAmount)
	}
	return schedule
}
