package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"stakeScope/internal/chain"
	"stakeScope/internal/config"
	"stakeScope/internal/pool"
	"stakeScope/internal/stake"
	"stakeScope/internal/storage"
	"stakeScope/internal/storage/postgres"
	"stakeScope/internal/swap"
	"stakeScope/internal/token"
	"stakeScope/internal/workflow"
)

func main() {
	root := &cobra.Command{
		Use:          "stakescope",
		Short:        "Staking and swap data layer client",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("rpc", "", "chain RPC URL")
	root.PersistentFlags().String("private-key", "", "hex private key for writes")
	root.PersistentFlags().Uint64("chain-id", 0, "chain id, 0 queries the node")
	root.PersistentFlags().String("primary-token", "", "primary token contract address")
	root.PersistentFlags().String("secondary-token", "", "secondary token contract address")
	root.PersistentFlags().String("staking-contract", "", "staking contract address")
	root.PersistentFlags().String("exchange-contract", "", "token exchange contract address")
	root.PersistentFlags().String("swap-pair", "", "swap pair contract address")
	root.PersistentFlags().String("exchange-fee", "0.0006", "native fee attached to exchange calls")
	root.PersistentFlags().Int64("max-exchange-amount", 1_000_000, "per-exchange amount cap")
	root.PersistentFlags().Duration("receipt-interval", 2*time.Second, "receipt poll interval")
	root.PersistentFlags().Duration("receipt-timeout", 90*time.Second, "receipt poll timeout")
	root.PersistentFlags().Int("max-retries", 5, "maximum read retry attempts")
	root.PersistentFlags().Duration("retry-backoff", 500*time.Millisecond, "initial read retry backoff")
	root.PersistentFlags().String("journal", "", "workflow journal JSONL path")
	root.PersistentFlags().String("pg-dsn", "", "Postgres DSN for the workflow journal")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		newPoolsCmd(),
		newStakesCmd(),
		newBalancesCmd(),
		newRewardsCmd(),
		newDividendsCmd(),
		newRatesCmd(),
		newQuoteCmd(),
		newStakeCmd(),
		newUnstakeCmd(),
		newClaimCmd(),
		newExchangeCmd(),
		newSwapCmd(),
		newWatchCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles the wired services for one command invocation.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	client   *chain.Client
	balances *token.Service
	pools    *pool.Registry
	stakes   *stake.Ledger
	quoter   *swap.Quoter
	engine   *workflow.Engine

	closers []func()
}

func newApp(cmd *cobra.Command) (*app, context.Context, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	if cfg.RPCURL == "" {
		return nil, nil, fmt.Errorf("rpc url is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	client, err := chain.NewClient(ctx, chain.Config{
		RPCURL:          cfg.RPCURL,
		PrivateKey:      cfg.PrivateKey,
		ChainID:         cfg.ChainID,
		ReceiptInterval: cfg.ReceiptInterval,
		ReceiptTimeout:  cfg.ReceiptTimeout,
		MaxRetries:      cfg.MaxRetries,
		RetryBackoff:    cfg.RetryBackoff,
	}, logger)
	if err != nil {
		stop()
		return nil, nil, fmt.Errorf("connect rpc: %w", err)
	}

	primary, err := requireAddress("primary-token", cfg.PrimaryToken)
	if err != nil {
		client.Close()
		stop()
		return nil, nil, err
	}
	secondary, err := requireAddress("secondary-token", cfg.SecondaryToken)
	if err != nil {
		client.Close()
		stop()
		return nil, nil, err
	}
	staking, err := requireAddress("staking-contract", cfg.StakingContract)
	if err != nil {
		client.Close()
		stop()
		return nil, nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		client:   client,
		balances: token.New(client, primary, secondary, logger),
		pools:    pool.New(client, staking, primary, logger),
		stakes:   stake.New(client, staking, primary, logger),
	}
	a.closers = append(a.closers, stop, client.Close, func() { _ = logger.Sync() })

	var pair common.Address
	if cfg.SwapPair != "" {
		pair, err = requireAddress("swap-pair", cfg.SwapPair)
		if err != nil {
			a.close()
			return nil, nil, err
		}
		a.quoter = swap.New(client, pair, logger)
	}

	journal, err := a.newJournal(ctx)
	if err != nil {
		a.close()
		return nil, nil, err
	}

	fee, err := chain.ToBaseUnits(cfg.ExchangeFee, chain.NativeDecimals)
	if err != nil {
		a.close()
		return nil, nil, fmt.Errorf("parse exchange fee: %w", err)
	}

	wfCfg := workflow.Config{
		Owner:             client.From(),
		PrimaryToken:      primary,
		SecondaryToken:    secondary,
		Staking:           staking,
		SwapPair:          pair,
		ExchangeFee:       fee,
		MaxExchangeAmount: cfg.MaxExchangeAmount,
	}
	if cfg.ExchangeContract != "" {
		exchange, err := requireAddress("exchange-contract", cfg.ExchangeContract)
		if err != nil {
			a.close()
			return nil, nil, err
		}
		wfCfg.Exchange = exchange
	}

	a.engine = workflow.New(wfCfg, client, a.balances, a.pools, a.stakes, journal, nil, logger)

	return a, ctx, nil
}

func (a *app) newJournal(ctx context.Context) (storage.Journal, error) {
	if a.cfg.PostgresDSN != "" {
		store, err := postgres.NewStore(ctx, a.cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect journal store: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	}
	if a.cfg.JournalPath != "" {
		return storage.NewJsonlJournal(a.cfg.JournalPath), nil
	}
	return nil, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// owner resolves the wallet address a read command operates on: an explicit
// --address flag wins, otherwise the signing address.
func (a *app) owner(cmd *cobra.Command) (common.Address, error) {
	if flag := cmd.Flags().Lookup("address"); flag != nil && flag.Value.String() != "" {
		return requireAddress("address", flag.Value.String())
	}
	from := a.client.From()
	if from == (common.Address{}) {
		return common.Address{}, fmt.Errorf("no wallet address: set --address or --private-key")
	}
	return from, nil
}

var errMissingPair = fmt.Errorf("swap-pair address is required")

func requireAddress(name, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%s: %q is not a valid address", name, value)
	}
	return common.HexToAddress(value), nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
