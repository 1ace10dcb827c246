package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"checkinchain/config"
	"checkinchain/core/events"
	"checkinchain/core/state"
	"checkinchain/core/types"
	"checkinchain/crypto"
	"checkinchain/native/checkin"
	"checkinchain/native/escrow"
	"checkinchain/native/params"
	"checkinchain/native/venue"
	"checkinchain/observability/logging"
	"checkinchain/observability/metrics"
	"checkinchain/services/bank"
	"checkinchain/services/oracle"
	"checkinchain/storage"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// logEmitter forwards engine events into the structured log.
type logEmitter struct {
	logger *slog.Logger
}

func (e logEmitter) Emit(evt events.Event) {
	carrier, ok := evt.(interface{ Event() *types.Event })
	if !ok {
		e.logger.Info(evt.EventType())
		return
	}
	record := carrier.Event()
	attrs := make([]any, 0, len(record.Attributes))
	for key, value := range record.Attributes {
		attrs = append(attrs, slog.String(key, value))
	}
	e.logger.Info(record.Type, attrs...)
}

// moduleIdentity derives the engine's fixed ledger-gating identity.
func moduleIdentity() [20]byte {
	var out [20]byte
	digest := ethcrypto.Keccak256([]byte("checkin/engine"))
	copy(out[:], digest[12:])
	return out
}

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	env := strings.TrimSpace(os.Getenv("CHECKIN_ENV"))
	if env == "" {
		env = cfg.Environment
	}
	logger := logging.Setup("checkind", env)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	signer, _ := cfg.TrustedSignerAddress()
	owner, _ := cfg.OwnerAddress()
	treasury, _ := cfg.TreasuryAddress()
	manager, _ := cfg.ManagerAddress()
	custody, _ := cfg.EscrowAddress()

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		logger.Error("Failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	st := state.NewManager(db)
	emitter := logEmitter{logger: logger}

	accounts := bank.NewBank(st)
	feed := oracle.NewFeed(st, manager)
	registry := venue.NewRegistry(st)
	ledger := escrow.NewLedger(st, accounts.NewVault(custody), moduleIdentity())
	ledger.SetEmitter(emitter)
	store := params.NewStore(st, owner)
	store.SetEmitter(emitter)

	engine := checkin.NewEngine(checkin.EngineConfig{
		Self:     moduleIdentity(),
		Treasury: treasury,
		Manager:  manager,
		Escrow:   custody,
		ChainID:  big.NewInt(cfg.ChainID),
	})
	engine.SetState(st)
	engine.SetRegistry(registry)
	engine.SetLedger(ledger)
	engine.SetParameterView(store)
	engine.SetAuthority(checkin.NewTrustedSigner(signer))
	engine.SetBank(accounts)
	engine.SetStaker(accounts)
	engine.SetStakingSource(accounts)
	engine.SetPriceFeed(feed)
	engine.SetCreditTokens(
		bank.NewCreditLedger(st, "venue"),
		bank.NewCreditLedger(st, "promoter"),
	)
	engine.SetEmitter(emitter)
	engine.SetObserver(metrics.Checkin())

	logger.Info("Engine wired",
		slog.Int64("chainID", cfg.ChainID),
		slog.String("signer", crypto.MustNewAddress(crypto.BelPrefix, signer[:]).String()),
		slog.String("treasury", crypto.MustNewAddress(crypto.BelPrefix, treasury[:]).String()),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              cfg.MetricsAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Metrics listener started", slog.String("address", cfg.MetricsAddress))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics listener failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Metrics shutdown failed", slog.Any("error", err))
	}
}
