package checkin

import (
	"math/big"
	"strconv"

	ethcommon "github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"checkinchain/native/venue"
)

// Intent domain tags keep the three payload hashes disjoint.
const (
	venueIntentDomain    = "checkin.intent.venue.v1"
	customerIntentDomain = "checkin.intent.customer.v1"
	promoterIntentDomain = "checkin.intent.promoter.v1"
)

// PayCurrency selects the settlement currency of a customer payment.
type PayCurrency uint8

const (
	PayInUSD PayCurrency = iota
	PayInLONG
)

func (c PayCurrency) Valid() bool {
	return c <= PayInLONG
}

// VenueIntent is the signed payload authorizing a venue deposit. The
// signature covers every field plus the chain identity.
type VenueIntent struct {
	Venue        [20]byte
	Rules        venue.Rules
	Amount       *big.Int
	ReferralCode string
	URI          string
	Signature    []byte
}

// Hash computes the keccak digest the trusted signer commits to.
func (i VenueIntent) Hash(chainID *big.Int) [32]byte {
	return ethcrypto.Keccak256Hash(
		[]byte(venueIntentDomain),
		i.Venue[:],
		[]byte{
			byte(i.Rules.PaymentType),
			byte(i.Rules.BountyType),
			byte(i.Rules.BountyAlloc),
			byte(i.Rules.LongPaymentType),
		},
		paddedAmount(i.Amount),
		[]byte(i.ReferralCode),
		[]byte(i.URI),
		paddedAmount(chainID),
	)
}

// CustomerIntent is the signed payload authorizing a customer payment. The
// signature covers every field plus the chain identity.
type CustomerIntent struct {
	Currency          PayCurrency
	VisitBountyAmount *big.Int
	SpendBountyBps    uint32
	Customer          [20]byte
	Venue             [20]byte
	PromoterCode      string
	Amount            *big.Int
	Signature         []byte
}

func (i CustomerIntent) Hash(chainID *big.Int) [32]byte {
	return ethcrypto.Keccak256Hash(
		[]byte(customerIntentDomain),
		[]byte{byte(i.Currency)},
		paddedAmount(i.VisitBountyAmount),
		[]byte(strconv.FormatUint(uint64(i.SpendBountyBps), 10)),
		i.Customer[:],
		i.Venue[:],
		[]byte(i.PromoterCode),
		paddedAmount(i.Amount),
		paddedAmount(chainID),
	)
}

// PromoterIntent is the signed payload authorizing a promoter cash-out. The
// signature covers every field plus the chain identity.
type PromoterIntent struct {
	ReferralCode string
	Venue        [20]byte
	AmountInUSD  *big.Int
	PayInUSD     bool
	Signature    []byte
}

func (i PromoterIntent) Hash(chainID *big.Int) [32]byte {
	return ethcrypto.Keccak256Hash(
		[]byte(promoterIntentDomain),
		[]byte(i.ReferralCode),
		i.Venue[:],
		paddedAmount(i.AmountInUSD),
		[]byte{boolByte(i.PayInUSD)},
		paddedAmount(chainID),
	)
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

func paddedAmount(v *big.Int) []byte {
	if v == nil {
		v = big.NewInt(0)
	}
	return ethcommon.LeftPadBytes(v.Bytes(), 32)
}

// SignatureAuthority verifies a detached intent signature against the
// platform's trusted signer. Verification is a pure function of the digest,
// signature and configured key; it is independent of transport.
type SignatureAuthority interface {
	Verify(digest [32]byte, signature []byte) error
}

// TrustedSigner verifies 65-byte recoverable secp256k1 signatures against a
// fixed signer address.
type TrustedSigner struct {
	signer [20]byte
}

// NewTrustedSigner constructs a verifier for the supplied signer address.
func NewTrustedSigner(signer [20]byte) *TrustedSigner {
	return &TrustedSigner{signer: signer}
}

// Verify implements SignatureAuthority.
func (t *TrustedSigner) Verify(digest [32]byte, signature []byte) error {
	if t == nil {
		return ErrInvalidSignature
	}
	if len(signature) != 65 {
		return ErrInvalidSignature
	}
	pubKey, err := ethcrypto.SigToPub(digest[:], signature)
	if err != nil {
		return ErrInvalidSignature
	}
	recovered := ethcrypto.PubkeyToAddress(*pubKey)
	if recovered != ethcommon.BytesToAddress(t.signer[:]) {
		return ErrInvalidSignature
	}
	return nil
}
