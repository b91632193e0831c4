package swap

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"stakeScope/internal/cache"
	"stakeScope/internal/chain"
	"stakeScope/internal/contracts"
	"stakeScope/internal/model"
)

const (
	ratesTTL    = time.Minute
	globalScope = "global"

	// The pair quotes reserve1 scaled by 1e4.
	rateScale = 10000
)

// Gateway is the chain read surface the quoter needs.
type Gateway interface {
	Call(ctx context.Context, contract common.Address, contractABI abi.ABI, method string, args ...interface{}) ([]interface{}, error)
}

// Quoter derives buy/sell rates from the swap pair's reserves and quotes
// expected output amounts.
type Quoter struct {
	gw     Gateway
	pair   common.Address
	rates  *cache.Store[model.SwapRates]
	logger *zap.Logger
}

// New builds a quoter over the swap pair contract.
func New(gw Gateway, pair common.Address, logger *zap.Logger) *Quoter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Quoter{
		gw:     gw,
		pair:   pair,
		rates:  cache.New[model.SwapRates](ratesTTL),
		logger: logger,
	}
}

// Rates returns the cached buy/sell rates, zero-valued on failure.
func (q *Quoter) Rates(ctx context.Context, force bool) model.SwapRates {
	rates, err := q.rates.Get(globalScope, force, func() (model.SwapRates, error) {
		return q.fetchRates(ctx)
	})
	if err != nil {
		q.logger.Warn("reserve fetch failed", zap.Error(err))
		return model.SwapRates{Buy: "0", Sell: "0"}
	}
	return rates
}

// Quote returns the expected output for an input amount via the pair's own
// getAmountOut. Failures degrade to "0".
func (q *Quoter) Quote(ctx context.Context, amount string, buy bool) string {
	amountIn, err := chain.ToBaseUnits(amount, chain.NativeDecimals)
	if err != nil || amountIn.Sign() <= 0 {
		return "0"
	}

	pairABI, err := contracts.SwapPair()
	if err != nil {
		q.logger.Warn("swap pair abi unavailable", zap.Error(err))
		return "0"
	}
	values, err := q.gw.Call(ctx, q.pair, pairABI, "getAmountOut", amountIn, buy)
	if err != nil || len(values) == 0 {
		q.logger.Warn("quote failed", zap.String("amount", amount), zap.Bool("buy", buy), zap.Error(err))
		return "0"
	}
	amountOut, err := contracts.AsBigInt(values[0])
	if err != nil {
		q.logger.Warn("quote value malformed", zap.Error(err))
		return "0"
	}
	return chain.ToDisplayUnits(amountOut, chain.NativeDecimals)
}

// Reset drops the cached rates.
func (q *Quoter) Reset() {
	q.rates.Reset()
}

func (q *Quoter) fetchRates(ctx context.Context) (model.SwapRates, error) {
	pairABI, err := contracts.SwapPair()
	if err != nil {
		return model.SwapRates{}, fmt.Errorf("parse swap pair abi: %w", err)
	}

	values, err := q.gw.Call(ctx, q.pair, pairABI, "getReserves")
	if err != nil {
		return model.SwapRates{}, err
	}
	if len(values) < 2 {
		return model.SwapRates{}, fmt.Errorf("getReserves returned %d values", len(values))
	}
	reserve0, err := contracts.AsBigInt(values[0])
	if err != nil {
		return model.SwapRates{}, err
	}
	reserve1, err := contracts.AsBigInt(values[1])
	if err != nil {
		return model.SwapRates{}, err
	}
	if reserve0.Sign() == 0 || reserve1.Sign() == 0 {
		return model.SwapRates{}, fmt.Errorf("empty reserves")
	}

	scaled := new(big.Rat).SetFrac(reserve1, new(big.Int).Mul(reserve0, big.NewInt(rateScale)))
	inverse := new(big.Rat).Inv(scaled)
	return model.SwapRates{
		Buy:  ratString(scaled),
		Sell: ratString(inverse),
	}, nil
}

func ratString(r *big.Rat) string {
	s := r.FloatString(6)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
