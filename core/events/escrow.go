package events

import (
	"math/big"

	"checkinchain/core/types"
)

const TypeVenueDepositsUpdated = "escrow.venue.deposits_updated"

// VenueDepositsUpdated reports the post-mutation escrow balances for a venue.
type VenueDepositsUpdated struct {
	Venue    [20]byte
	USDToken *big.Int
	LONG     *big.Int
}

func (VenueDepositsUpdated) EventType() string { return TypeVenueDepositsUpdated }

func (e VenueDepositsUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeVenueDepositsUpdated,
		Attributes: map[string]string{
			"venue":    formatAddress(e.Venue),
			"usdToken": formatAmount(e.USDToken),
			"long":     formatAmount(e.LONG),
		},
	}
}
