package pricing

import (
	"errors"
	"fmt"
	"math/big"
	"time"
)

// StandardDecimals is the common 18-decimal unit every USD-equivalent amount
// is expressed in.
const StandardDecimals = 18

var (
	// ErrIncorrectRoundID indicates the feed reported a non-positive round id.
	ErrIncorrectRoundID = errors.New("pricing: incorrect round id")
	// ErrIncorrectLatestUpdatedTimestamp indicates the feed data is unset or
	// older than the permitted staleness window.
	ErrIncorrectLatestUpdatedTimestamp = errors.New("pricing: incorrect latest updated timestamp")
	// ErrIncorrectAnswer indicates the feed reported a non-positive price.
	ErrIncorrectAnswer = errors.New("pricing: incorrect answer")
)

// Asset identifies a priced token together with its on-chain decimals.
type Asset struct {
	Symbol   string
	Decimals uint8
}

// RoundData captures a single price-feed observation.
type RoundData struct {
	RoundID   *big.Int
	Answer    *big.Int
	Decimals  uint8
	UpdatedAt time.Time
}

// PriceFeed resolves the latest observation for an asset. Implementations are
// external collaborators; the standardizer only consumes this boundary.
type PriceFeed interface {
	LatestRound(asset string) (RoundData, error)
}

// Standardizer converts volatile-asset amounts into 18-decimal USD-equivalent
// amounts and back, enforcing feed validity on every conversion so staleness
// checks can never be bypassed.
type Standardizer struct {
	feed         PriceFeed
	maxStaleness time.Duration
	now          func() time.Time
}

// NewStandardizer constructs a standardizer bound to the supplied feed.
func NewStandardizer(feed PriceFeed, maxStaleness time.Duration) *Standardizer {
	return &Standardizer{feed: feed, maxStaleness: maxStaleness}
}

// SetClock overrides the time source, primarily for deterministic testing.
func (s *Standardizer) SetClock(now func() time.Time) {
	if s == nil {
		return
	}
	s.now = now
}

func (s *Standardizer) clock() time.Time {
	if s != nil && s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *Standardizer) validatedRound(feed PriceFeed, asset Asset, maxStaleness time.Duration) (RoundData, error) {
	if feed == nil {
		return RoundData{}, fmt.Errorf("pricing: feed not configured")
	}
	round, err := feed.LatestRound(asset.Symbol)
	if err != nil {
		return RoundData{}, err
	}
	if round.RoundID == nil || round.RoundID.Sign() <= 0 {
		return RoundData{}, ErrIncorrectRoundID
	}
	if round.UpdatedAt.IsZero() {
		return RoundData{}, ErrIncorrectLatestUpdatedTimestamp
	}
	if maxStaleness > 0 && round.UpdatedAt.Before(s.clock().Add(-maxStaleness)) {
		return RoundData{}, ErrIncorrectLatestUpdatedTimestamp
	}
	if round.Answer == nil || round.Answer.Sign() <= 0 {
		return RoundData{}, ErrIncorrectAnswer
	}
	return round, nil
}

func pow10(exp uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)
}

// Standardize converts an asset amount into its 18-decimal USD equivalent
// using the configured feed and staleness window.
func (s *Standardizer) Standardize(asset Asset, amount *big.Int) (*big.Int, error) {
	if s == nil {
		return nil, fmt.Errorf("pricing: standardizer not configured")
	}
	return s.GetStandardizedPrice(asset, s.feed, amount, s.maxStaleness)
}

// GetStandardizedPrice converts an asset amount into its 18-decimal USD
// equivalent using an explicit feed and staleness bound.
func (s *Standardizer) GetStandardizedPrice(asset Asset, feed PriceFeed, amount *big.Int, maxStaleness time.Duration) (*big.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, fmt.Errorf("pricing: amount must be non-negative")
	}
	round, err := s.validatedRound(feed, asset, maxStaleness)
	if err != nil {
		return nil, err
	}
	// usd = amount * answer * 10^18 / 10^(assetDecimals + feedDecimals)
	out := new(big.Int).Mul(amount, round.Answer)
	out.Mul(out, pow10(StandardDecimals))
	divisor := new(big.Int).Mul(pow10(asset.Decimals), pow10(round.Decimals))
	return out.Quo(out, divisor), nil
}

// Unstandardize converts an 18-decimal USD-equivalent amount back into asset
// units at the current feed price.
func (s *Standardizer) Unstandardize(asset Asset, usdAmount *big.Int) (*big.Int, error) {
	if s == nil {
		return nil, fmt.Errorf("pricing: standardizer not configured")
	}
	if usdAmount == nil || usdAmount.Sign() < 0 {
		return nil, fmt.Errorf("pricing: amount must be non-negative")
	}
	round, err := s.validatedRound(s.feed, asset, s.maxStaleness)
	if err != nil {
		return nil, err
	}
	// assetAmount = usd * 10^(assetDecimals + feedDecimals) / (answer * 10^18)
	out := new(big.Int).Mul(usdAmount, pow10(asset.Decimals))
	out.Mul(out, pow10(round.Decimals))
	divisor := new(big.Int).Mul(round.Answer, pow10(StandardDecimals))
	return out.Quo(out, divisor), nil
}
