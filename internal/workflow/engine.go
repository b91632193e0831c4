package workflow

import (
	"context"
	"errors"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"stakeScope/internal/chain"
	"stakeScope/internal/model"
)

// Gateway is the chain surface workflows submit through.
type Gateway interface {
	Call(ctx context.Context, contract common.Address, contractABI abi.ABI, method string, args ...interface{}) ([]interface{}, error)
	Send(ctx context.Context, contract common.Address, contractABI abi.ABI, method string, value *big.Int, args ...interface{}) (*chain.TxResult, error)
	SendNative(ctx context.Context, to common.Address, value *big.Int) (*chain.TxResult, error)
	NativeBalance(ctx context.Context, addr common.Address) (*big.Int, error)
}

// BalanceService is the balance read surface workflows depend on.
type BalanceService interface {
	Balances(ctx context.Context, owner common.Address, force bool) model.TokenBalance
	Allowance(ctx context.Context, token, owner, spender common.Address) string
}

// PoolService refreshes the pool registry after a successful write.
type PoolService interface {
	All(ctx context.Context, force bool) []model.Pool
	PoolReward(ctx context.Context, poolID uint64, force bool) string
}

// StakeService refreshes the user's stake list after a successful write.
type StakeService interface {
	UserStakes(ctx context.Context, owner common.Address, force bool) []model.StakeRecord
}

// Journal records workflow outcomes. Optional.
type Journal interface {
	Append(ctx context.Context, rec model.JournalRecord) error
}

// Config carries the addresses and limits the workflows operate on.
type Config struct {
	Owner          common.Address
	PrimaryToken   common.Address
	SecondaryToken common.Address
	Staking        common.Address
	Exchange       common.Address
	SwapPair       common.Address

	// ExchangeFee is the native value attached to every exchange call.
	ExchangeFee *big.Int
	// MaxExchangeAmount bounds a single exchange, in display units.
	MaxExchangeAmount int64
}

// Engine sequences multi-call workflows: input validation, balance and
// allowance checks, approval, submission, confirmation and cache refresh.
// Within one instance the steps are strictly ordered; failures from any
// step collapse into a Result, never an escaped error.
type Engine struct {
	cfg      Config
	gw       Gateway
	balances BalanceService
	pools    PoolService
	stakes   StakeService
	journal  Journal
	t        Translator
	logger   *zap.Logger
}

// New builds a workflow engine. journal may be nil; t defaults to the
// built-in English translator.
func New(cfg Config, gw Gateway, balances BalanceService, pools PoolService, stakes StakeService, journal Journal, t Translator, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if t == nil {
		t = DefaultTranslator
	}
	if cfg.MaxExchangeAmount <= 0 {
		cfg.MaxExchangeAmount = 1_000_000
	}
	return &Engine{
		cfg:      cfg,
		gw:       gw,
		balances: balances,
		pools:    pools,
		stakes:   stakes,
		journal:  journal,
		t:        t,
		logger:   logger,
	}
}

func (e *Engine) step(workflow string, state State) {
	e.logger.Debug("workflow state",
		zap.String("workflow", workflow),
		zap.Stringer("state", state),
	)
}

// fail converts an internal error into the terminal Result shape. The raw
// error is logged; only the localized message is surfaced.
func (e *Engine) fail(ctx context.Context, run *run, state State, key string, params map[string]string, err error) Result {
	e.step(run.workflow, StateFailed)
	if err != nil {
		e.logger.Warn("workflow failed",
			zap.String("workflow", run.workflow),
			zap.Stringer("state", state),
			zap.Error(err),
		)
	}
	res := Result{Status: false, Message: e.t(key, params), Data: nil}
	e.record(ctx, run, res, "")
	return res
}

func (e *Engine) succeed(ctx context.Context, run *run, key string, params map[string]string, tx *chain.TxResult) Result {
	e.step(run.workflow, StateSucceeded)
	res := Result{Status: true, Message: e.t(key, params), Data: tx}
	hash := ""
	if tx != nil {
		hash = tx.Hash
	}
	e.record(ctx, run, res, hash)
	return res
}

// run carries the identifying fields of one workflow instance for logging
// and journaling.
type run struct {
	workflow string
	poolID   uint64
	amount   string
}

func (e *Engine) record(ctx context.Context, run *run, res Result, txHash string) {
	if e.journal == nil {
		return
	}
	rec := model.JournalRecord{
		Timestamp: nowUTC(),
		Workflow:  run.workflow,
		Address:   e.cfg.Owner.Hex(),
		PoolID:    run.poolID,
		Amount:    run.amount,
		Status:    res.Status,
		Message:   res.Message,
		TxHash:    txHash,
	}
	if err := e.journal.Append(ctx, rec); err != nil {
		e.logger.Warn("journal append failed", zap.String("workflow", run.workflow), zap.Error(err))
	}
}

// failureKey classifies a chain error into a message key and params.
// Structured kinds first; revert reasons are sub-classified per workflow.
func (e *Engine) failureKey(run *run, err error) (string, map[string]string) {
	switch chain.Kind(err) {
	case chain.KindUserRejected:
		return "common.errors.user_rejected", nil
	case chain.KindInsufficientFunds:
		return "staking.errors.insufficient_funds_or_gas", nil
	case chain.KindNetwork:
		return "common.errors.network_error", nil
	case chain.KindReverted:
		return e.revertKey(run, chain.Reason(err))
	default:
		return genericFailureKey(run.workflow), nil
	}
}

func (e *Engine) revertKey(run *run, reason string) (string, map[string]string) {
	r := strings.ToLower(reason)
	switch {
	case strings.Contains(r, "transfer amount exceeds balance"):
		return "staking.errors.transfer_exceeds_balance", nil
	case strings.Contains(r, "transfer amount exceeds allowance"),
		strings.Contains(r, "insufficient allowance"):
		return "staking.errors.insufficient_allowance", nil
	case strings.Contains(r, "exceeds max exchange amount"):
		return "mapping.errors.exceeds_max_amount",
			map[string]string{"max": formatInt(e.cfg.MaxExchangeAmount)}
	case strings.Contains(r, "lockup"):
		return "staking.errors.lockup_not_ended", nil
	case strings.Contains(r, "already withdrawn"):
		return "staking.errors.already_withdrawn", nil
	case strings.Contains(r, "stake not found"), strings.Contains(r, "invalid stake"):
		return "staking.errors.stake_not_found", nil
	case strings.Contains(r, "cooldown"):
		return "staking.errors.cooldown_active", nil
	default:
		return "staking.errors.contract_execution_failed", nil
	}
}

func genericFailureKey(workflow string) string {
	switch workflow {
	case "exchange":
		return "mapping.errors.exchange_failed"
	case "swap":
		return "swap.errors.swap_failed"
	default:
		return "staking.errors." + workflow + "_failed"
	}
}

// parseAmount validates a display-unit amount: parseable, exact, positive.
func parseAmount(amount string) (*big.Int, error) {
	wei, err := chain.ToBaseUnits(amount, chain.NativeDecimals)
	if err != nil {
		return nil, err
	}
	if wei.Sign() <= 0 {
		return nil, errNonPositive
	}
	return wei, nil
}

var errNonPositive = errors.New("amount must be greater than zero")

func nowUTC() time.Time { return time.Now().UTC() }

func formatInt(v int64) string { return strconv.FormatInt(v, 10) }

// lessThan compares two display-unit decimal strings exactly. Strings that
// do not parse count as zero.
func lessThan(a, b string) bool {
	ra, ok := new(big.Rat).SetString(a)
	if !ok {
		ra = new(big.Rat)
	}
	rb, ok := new(big.Rat).SetString(b)
	if !ok {
		rb = new(big.Rat)
	}
	return ra.Cmp(rb) < 0
}
