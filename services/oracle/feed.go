package oracle

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"checkinchain/native/pricing"
)

// ErrUnauthorized indicates a round was posted by an account other than the
// configured attester.
var ErrUnauthorized = errors.New("oracle: caller is not the attester")

// ErrNoRound indicates no round has been posted for the asset yet.
var ErrNoRound = errors.New("oracle: no round posted")

// State persists the latest round per asset symbol.
type State interface {
	OracleRoundGet(asset string) (pricing.RoundData, bool, error)
	OracleRoundPut(asset string, round pricing.RoundData) error
}

// Feed is a push-based price feed: an off-process attester posts signed-off
// rounds and the standardizer reads the latest one. Round ids must advance
// monotonically per asset.
type Feed struct {
	st       State
	attester [20]byte
}

func NewFeed(st State, attester [20]byte) *Feed {
	return &Feed{st: st, attester: attester}
}

// PostRound records a new round for the asset. Restricted to the attester.
func (f *Feed) PostRound(caller [20]byte, asset string, roundID, answer *big.Int, decimals uint8, updatedAt time.Time) error {
	if caller != f.attester {
		return ErrUnauthorized
	}
	if asset == "" {
		return fmt.Errorf("oracle: asset symbol required")
	}
	if roundID == nil || roundID.Sign() <= 0 {
		return pricing.ErrIncorrectRoundID
	}
	if answer == nil || answer.Sign() <= 0 {
		return pricing.ErrIncorrectAnswer
	}
	previous, ok, err := f.st.OracleRoundGet(asset)
	if err != nil {
		return err
	}
	if ok && previous.RoundID.Cmp(roundID) >= 0 {
		return fmt.Errorf("%w: round %s already posted", pricing.ErrIncorrectRoundID, roundID)
	}
	return f.st.OracleRoundPut(asset, pricing.RoundData{
		RoundID:   new(big.Int).Set(roundID),
		Answer:    new(big.Int).Set(answer),
		Decimals:  decimals,
		UpdatedAt: updatedAt,
	})
}

// LatestRound returns the most recently posted round for the asset.
func (f *Feed) LatestRound(asset string) (pricing.RoundData, error) {
	round, ok, err := f.st.OracleRoundGet(asset)
	if err != nil {
		return pricing.RoundData{}, err
	}
	if !ok {
		return pricing.RoundData{}, fmt.Errorf("%w: %s", ErrNoRound, asset)
	}
	return round, nil
}
