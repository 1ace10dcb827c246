package venue

// PaymentType selects which settlement currencies a venue accepts.
type PaymentType uint8

const (
	PaymentUSD PaymentType = iota
	PaymentLONG
	PaymentBoth
)

func (p PaymentType) Valid() bool {
	return p <= PaymentBoth
}

func (p PaymentType) String() string {
	switch p {
	case PaymentUSD:
		return "usd"
	case PaymentLONG:
		return "long"
	case PaymentBoth:
		return "both"
	}
	return "unknown"
}

// AllowsUSD reports whether USD-token payments are accepted.
func (p PaymentType) AllowsUSD() bool {
	return p == PaymentUSD || p == PaymentBoth
}

// AllowsLONG reports whether LONG payments are accepted.
func (p PaymentType) AllowsLONG() bool {
	return p == PaymentLONG || p == PaymentBoth
}

// BountyType selects which promoter bounty kinds a venue funds.
type BountyType uint8

const (
	BountyNone BountyType = iota
	BountyVisit
	BountySpend
	BountyBoth
)

func (b BountyType) Valid() bool {
	return b <= BountyBoth
}

func (b BountyType) String() string {
	switch b {
	case BountyNone:
		return "none"
	case BountyVisit:
		return "visit"
	case BountySpend:
		return "spend"
	case BountyBoth:
		return "both"
	}
	return "unknown"
}

// AllowsVisit reports whether fixed visit bounties are funded.
func (b BountyType) AllowsVisit() bool {
	return b == BountyVisit || b == BountyBoth
}

// AllowsSpend reports whether percentage spend bounties are funded.
func (b BountyType) AllowsSpend() bool {
	return b == BountySpend || b == BountyBoth
}

// BountyAllocationType selects the settlement currency promoter bounties are
// escrow-funded in.
type BountyAllocationType uint8

const (
	AllocateUSD BountyAllocationType = iota
	AllocateLONG
)

func (a BountyAllocationType) Valid() bool {
	return a <= AllocateLONG
}

func (a BountyAllocationType) String() string {
	switch a {
	case AllocateUSD:
		return "usd"
	case AllocateLONG:
		return "long"
	}
	return "unknown"
}

// LongPaymentType controls how a venue receives LONG-denominated revenue.
type LongPaymentType uint8

const (
	LongDirect LongPaymentType = iota
	LongAutoStake
	LongAutoConvert
)

func (l LongPaymentType) Valid() bool {
	return l <= LongAutoConvert
}

func (l LongPaymentType) String() string {
	switch l {
	case LongDirect:
		return "direct"
	case LongAutoStake:
		return "auto_stake"
	case LongAutoConvert:
		return "auto_convert"
	}
	return "unknown"
}

// Rules captures a venue's payment acceptance and bounty policy.
type Rules struct {
	PaymentType     PaymentType          `json:"paymentType"`
	BountyType      BountyType           `json:"bountyType"`
	BountyAlloc     BountyAllocationType `json:"bountyAllocationType"`
	LongPaymentType LongPaymentType      `json:"longPaymentType"`
}

// Account is the registry record for a single venue. RemainingCredits counts
// the free deposits left before the tier deposit fee applies.
type Account struct {
	Rules            Rules  `json:"rules"`
	RemainingCredits uint64 `json:"remainingCredits"`
}
