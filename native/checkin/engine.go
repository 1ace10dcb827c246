package checkin

import (
	"fmt"
	"math/big"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"checkinchain/core/events"
	"checkinchain/native/escrow"
	"checkinchain/native/fees"
	"checkinchain/native/params"
	"checkinchain/native/pricing"
	"checkinchain/native/staking"
	"checkinchain/native/venue"
)

// swapDeadlineWindow bounds how long a routed swap may stay pending.
const swapDeadlineWindow = int64(5 * 60)

// EngineState is the subset of state manager functionality the engine owns
// directly: referral codes and promoter accrual meters. Venue accounts and
// escrow deposits are reached through the registry and ledger.
type EngineState interface {
	venue.RegistryState
	ReferralAffiliate(code string) ([20]byte, bool, error)
	SetReferralAffiliate(code string, affiliate [20]byte) error
	PromoterAccrued(promoter, venueAddr [20]byte) (*big.Int, error)
	SetPromoterAccrued(promoter, venueAddr [20]byte, amount *big.Int) error
}

// SwapRouter is the DEX routing collaborator. The pool key inside PaymentsInfo
// selects the pair and direction; execution strategy is out of scope here.
type SwapRouter interface {
	Swap(info params.PaymentsInfo, recipient [20]byte, amountIn, minOut *big.Int, deadline int64) (*big.Int, error)
}

// CreditToken is the mint/burn boundary for venue and promoter accrual
// balances, externally represented as balance-bearing tokens.
type CreditToken interface {
	Mint(account [20]byte, id [32]byte, amount *big.Int, uri string) error
	Burn(account [20]byte, id [32]byte, amount *big.Int) error
}

// TokenBank moves value between plain wallet targets and burns LONG.
type TokenBank interface {
	TransferUSDToken(from, to [20]byte, amount *big.Int) error
	TransferLONG(from, to [20]byte, amount *big.Int) error
	BurnLONG(from [20]byte, amount *big.Int) error
}

// Staker is the deposit side of the staking collaborator, used only for the
// AutoStake venue payout mode.
type Staker interface {
	Stake(account [20]byte, amount *big.Int) error
}

// ParameterView exposes the current engine configuration.
type ParameterView interface {
	Parameters() (params.Parameters, error)
}

// Engine orchestrates venue deposits, customer payments and promoter
// distributions over the registry, ledger, tier resolver and collaborators.
type Engine struct {
	st        EngineState
	registry  *venue.Registry
	ledger    *escrow.Ledger
	paramView ParameterView

	authority      SignatureAuthority
	swapper        SwapRouter
	bank           TokenBank
	staker         Staker
	stakes         staking.BalanceSource
	feed           pricing.PriceFeed
	venueCredit    CreditToken
	promoterCredit CreditToken

	self     [20]byte
	treasury [20]byte
	manager  [20]byte
	escrowAt [20]byte
	chainID  *big.Int

	emitter events.Emitter
	metrics OperationObserver
	clock   func() time.Time
}

// OperationObserver receives the outcome of every public engine operation.
type OperationObserver interface {
	ObserveOperation(op string, err error)
	ObservePayout(paidInUSD bool)
}

type noopObserver struct{}

func (noopObserver) ObserveOperation(string, error) {}
func (noopObserver) ObservePayout(bool)             {}

// EngineConfig carries the identities the engine is constructed with.
type EngineConfig struct {
	Self     [20]byte
	Treasury [20]byte
	Manager  [20]byte
	Escrow   [20]byte
	ChainID  *big.Int
}

// NewEngine creates an engine with no-op emitter and observer. Collaborators
// are attached through the Set* methods before first use.
func NewEngine(cfg EngineConfig) *Engine {
	chainID := cfg.ChainID
	if chainID == nil {
		chainID = big.NewInt(0)
	}
	return &Engine{
		self:     cfg.Self,
		treasury: cfg.Treasury,
		manager:  cfg.Manager,
		escrowAt: cfg.Escrow,
		chainID:  new(big.Int).Set(chainID),
		emitter:  events.NoopEmitter{},
		metrics:  noopObserver{},
	}
}

// SetState configures the state backend used directly by the engine.
func (e *Engine) SetState(st EngineState) { e.st = st }

// SetRegistry configures the venue registry.
func (e *Engine) SetRegistry(registry *venue.Registry) { e.registry = registry }

// SetLedger configures the escrow ledger.
func (e *Engine) SetLedger(ledger *escrow.Ledger) { e.ledger = ledger }

// SetParameterView configures the parameter store view.
func (e *Engine) SetParameterView(view ParameterView) { e.paramView = view }

// SetAuthority configures the trusted-signature verifier.
func (e *Engine) SetAuthority(authority SignatureAuthority) { e.authority = authority }

// SetSwapRouter configures the swap collaborator.
func (e *Engine) SetSwapRouter(swapper SwapRouter) { e.swapper = swapper }

// SetBank configures the wallet transfer collaborator.
func (e *Engine) SetBank(bank TokenBank) { e.bank = bank }

// SetStaker configures the staking deposit collaborator.
func (e *Engine) SetStaker(staker Staker) { e.staker = staker }

// SetStakingSource configures the staked-balance query collaborator.
func (e *Engine) SetStakingSource(stakes staking.BalanceSource) { e.stakes = stakes }

// SetPriceFeed configures the price-feed collaborator.
func (e *Engine) SetPriceFeed(feed pricing.PriceFeed) { e.feed = feed }

// SetCreditTokens configures the venue and promoter credit token mints.
func (e *Engine) SetCreditTokens(venueCredit, promoterCredit CreditToken) {
	e.venueCredit = venueCredit
	e.promoterCredit = promoterCredit
}

// SetEmitter configures the event emitter. Passing nil resets to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetObserver configures the metrics observer. Passing nil resets to a no-op.
func (e *Engine) SetObserver(observer OperationObserver) {
	if observer == nil {
		e.metrics = noopObserver{}
		return
	}
	e.metrics = observer
}

// SetClock overrides the time source, primarily for deterministic tests.
func (e *Engine) SetClock(clock func() time.Time) { e.clock = clock }

func (e *Engine) now() time.Time {
	if e.clock != nil {
		return e.clock()
	}
	return time.Now()
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) parameters() (params.Parameters, error) {
	if e.paramView == nil {
		return params.Parameters{}, fmt.Errorf("checkin: parameter view not configured")
	}
	return e.paramView.Parameters()
}

func (e *Engine) verify(digest [32]byte, signature []byte) error {
	if e.authority == nil {
		return fmt.Errorf("checkin: signature authority not configured")
	}
	return e.authority.Verify(digest, signature)
}

func longAsset(cfg params.Parameters) pricing.Asset {
	symbol := cfg.Payments.LongToken
	if symbol == "" {
		symbol = "LONG"
	}
	return pricing.Asset{Symbol: symbol, Decimals: pricing.StandardDecimals}
}

func (e *Engine) pricer(cfg params.Parameters) *pricing.Standardizer {
	standardizer := pricing.NewStandardizer(e.feed, cfg.Payments.MaxPriceStaleness())
	if e.clock != nil {
		standardizer.SetClock(e.clock)
	}
	return standardizer
}

func (e *Engine) scheduleFor(cfg params.Parameters, account [20]byte) (staking.TierSchedule, error) {
	if e.stakes == nil {
		return staking.TierSchedule{}, fmt.Errorf("checkin: staking source not configured")
	}
	staked, err := e.stakes.StakedBalanceOf(account)
	if err != nil {
		return staking.TierSchedule{}, err
	}
	return cfg.RewardTable.ResolveSchedule(staking.ResolveTier(staked)), nil
}

// resolveReferral maps a referral code to its affiliate. An empty code is not
// an error; it resolves to the zero address.
func (e *Engine) resolveReferral(code string) ([20]byte, bool, error) {
	if code == "" {
		return [20]byte{}, false, nil
	}
	affiliate, ok, err := e.st.ReferralAffiliate(code)
	if err != nil {
		return [20]byte{}, false, err
	}
	if !ok {
		return [20]byte{}, false, &WrongReferralCodeError{Code: code}
	}
	return affiliate, true, nil
}

// RegisterReferralCode binds a referral code to an affiliate or promoter
// wallet. Restricted to the manager role.
func (e *Engine) RegisterReferralCode(caller [20]byte, code string, affiliate [20]byte) error {
	if caller != e.manager {
		return ErrUnauthorized
	}
	if code == "" {
		return fmt.Errorf("checkin: referral code required")
	}
	return e.st.SetReferralAffiliate(code, affiliate)
}

// swapToLONG routes usdIn through the swap collaborator, bounding slippage
// with a price-feed estimate, and emits the swap event.
func (e *Engine) swapToLONG(cfg params.Parameters, recipient [20]byte, usdIn *big.Int) (*big.Int, error) {
	if e.swapper == nil {
		return nil, fmt.Errorf("checkin: swap router not configured")
	}
	expected, err := e.pricer(cfg).Unstandardize(longAsset(cfg), usdIn)
	if err != nil {
		return nil, err
	}
	minOut := new(big.Int).Sub(expected, fees.CalculateRate(cfg.Payments.SlippageBps, expected))
	deadline := e.now().Unix() + swapDeadlineWindow
	out, err := e.swapper.Swap(cfg.Payments, recipient, usdIn, minOut, deadline)
	if err != nil {
		return nil, err
	}
	e.emit(events.Swapped{To: recipient, AmountIn: new(big.Int).Set(usdIn), AmountOut: new(big.Int).Set(out)})
	return out, nil
}

// swapToUSD is the reverse direction of swapToLONG.
func (e *Engine) swapToUSD(cfg params.Parameters, recipient [20]byte, longIn *big.Int) (*big.Int, error) {
	if e.swapper == nil {
		return nil, fmt.Errorf("checkin: swap router not configured")
	}
	expected, err := e.pricer(cfg).Standardize(longAsset(cfg), longIn)
	if err != nil {
		return nil, err
	}
	minOut := new(big.Int).Sub(expected, fees.CalculateRate(cfg.Payments.SlippageBps, expected))
	deadline := e.now().Unix() + swapDeadlineWindow
	out, err := e.swapper.Swap(cfg.Payments, recipient, longIn, minOut, deadline)
	if err != nil {
		return nil, err
	}
	e.emit(events.Swapped{To: recipient, AmountIn: new(big.Int).Set(longIn), AmountOut: new(big.Int).Set(out)})
	return out, nil
}

func venueCreditID(venueAddr [20]byte) [32]byte {
	return ethcrypto.Keccak256Hash([]byte("checkin.credit.venue"), venueAddr[:])
}

func promoterAccrualID(promoter, venueAddr [20]byte) [32]byte {
	return ethcrypto.Keccak256Hash([]byte("checkin.credit.promoter"), promoter[:], venueAddr[:])
}

func cloneAmount(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

func requirePositive(v *big.Int, what string) (*big.Int, error) {
	amount := cloneAmount(v)
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("checkin: %s must be positive", what)
	}
	return amount, nil
}
