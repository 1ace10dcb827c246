package oracle

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"checkinchain/native/pricing"
)

type mockOracleState struct {
	rounds map[string]pricing.RoundData
}

func (m *mockOracleState) OracleRoundGet(asset string) (pricing.RoundData, bool, error) {
	round, ok := m.rounds[asset]
	return round, ok, nil
}

func (m *mockOracleState) OracleRoundPut(asset string, round pricing.RoundData) error {
	m.rounds[asset] = round
	return nil
}

func addr(fill byte) [20]byte {
	var out [20]byte
	for i := range out {
		out[i] = fill
	}
	return out
}

func TestPostAndReadRound(t *testing.T) {
	attester := addr(0xAA)
	feed := NewFeed(&mockOracleState{rounds: make(map[string]pricing.RoundData)}, attester)
	now := time.Unix(1_700_000_000, 0)

	if err := feed.PostRound(addr(0x01), "LONG", big.NewInt(1), big.NewInt(50_000_000), 8, now); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	if err := feed.PostRound(attester, "LONG", big.NewInt(1), big.NewInt(50_000_000), 8, now); err != nil {
		t.Fatalf("post: %v", err)
	}
	round, err := feed.LatestRound("LONG")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if round.RoundID.Int64() != 1 || round.Answer.Int64() != 50_000_000 || round.Decimals != 8 {
		t.Fatalf("unexpected round: %+v", round)
	}

	// Round ids must advance.
	if err := feed.PostRound(attester, "LONG", big.NewInt(1), big.NewInt(60_000_000), 8, now); !errors.Is(err, pricing.ErrIncorrectRoundID) {
		t.Fatalf("expected ErrIncorrectRoundID, got %v", err)
	}
	if err := feed.PostRound(attester, "LONG", big.NewInt(2), big.NewInt(60_000_000), 8, now.Add(time.Minute)); err != nil {
		t.Fatalf("second post: %v", err)
	}
	round, _ = feed.LatestRound("LONG")
	if round.Answer.Int64() != 60_000_000 {
		t.Fatalf("round not replaced: %+v", round)
	}
}

func TestPostRoundRejectsBadValues(t *testing.T) {
	attester := addr(0xAA)
	feed := NewFeed(&mockOracleState{rounds: make(map[string]pricing.RoundData)}, attester)
	now := time.Now()

	if err := feed.PostRound(attester, "LONG", big.NewInt(0), big.NewInt(1), 8, now); !errors.Is(err, pricing.ErrIncorrectRoundID) {
		t.Fatalf("expected ErrIncorrectRoundID, got %v", err)
	}
	if err := feed.PostRound(attester, "LONG", big.NewInt(1), big.NewInt(0), 8, now); !errors.Is(err, pricing.ErrIncorrectAnswer) {
		t.Fatalf("expected ErrIncorrectAnswer, got %v", err)
	}
	if _, err := feed.LatestRound("LONG"); !errors.Is(err, ErrNoRound) {
		t.Fatalf("expected ErrNoRound, got %v", err)
	}
}
