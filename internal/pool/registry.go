package pool

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
	// Pool configuration changes rarely; reward accrual does not.
	poolsTTL        = 10 * time.Minute
	poolRewardTTL   = time.Minute
	dividendViewTTL = 2 * time.Minute

	globalScope = "global"
)

// Gateway is the chain read surface the registry needs.
type Gateway interface {
	Call(ctx context.Context, contract common.Address, contractABI abi.ABI, method string, args ...interface{}) ([]interface{}, error)
}

// Registry fetches and caches the global pool list, per-pool claimable
// rewards, and the dividend view of pools owned by a wallet.
type Registry struct {
	gw      Gateway
	staking common.Address
	token   common.Address

	pools   *cache.Store[[]model.Pool]
	rewards *cache.MapStore[string]
	views   *cache.Store[[]model.DividendPool]

	logger *zap.Logger
}

// New builds a registry over the staking contract. token is the stake token
// the contract's listing call is parameterized by.
func New(gw Gateway, staking, token common.Address, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		gw:      gw,
		staking: staking,
		token:   token,
		pools:   cache.New[[]model.Pool](poolsTTL),
		rewards: cache.NewMap[string](poolRewardTTL),
		views:   cache.New[[]model.DividendPool](dividendViewTTL),
		logger:  logger,
	}
}

// All returns every pool, decorated with tier and formatted lockup. The list
// is cached globally; failures yield an empty list and a warning.
func (r *Registry) All(ctx context.Context, force bool) []model.Pool {
	pools, err := r.pools.Get(globalScope, force, func() ([]model.Pool, error) {
		return r.fetchPools(ctx)
	})
	if err != nil {
		r.logger.Warn("pool list fetch failed", zap.Error(err))
		return []model.Pool{}
	}
	return pools
}

// PoolReward returns the claimable reward of one pool in display units,
// cached per pool id. Failures degrade to "0".
func (r *Registry) PoolReward(ctx context.Context, poolID uint64, force bool) string {
	id := fmt.Sprintf("%d", poolID)
	reward, err := r.rewards.Get(globalScope, id, force, func() (string, error) {
		stakingABI, err := contracts.Staking()
		if err != nil {
			return "", err
		}
		values, err := r.gw.Call(ctx, r.staking, stakingABI, "getPoolDividends", new(big.Int).SetUint64(poolID))
		if err != nil {
			return "", err
		}
		if len(values) == 0 {
			return "", fmt.Errorf("getPoolDividends returned no values")
		}
		amount, err := contracts.AsBigInt(values[0])
		if err != nil {
			return "", err
		}
		return chain.ToDisplayUnits(amount, chain.NativeDecimals), nil
	})
	if err != nil {
		r.logger.Warn("pool reward fetch failed", zap.Uint64("pool", poolID), zap.Error(err))
		return "0"
	}
	return reward
}

// DividendView returns the pools whose dividend address is the viewing
// wallet, each joined with its claimable reward. Cached per address.
func (r *Registry) DividendView(ctx context.Context, owner common.Address, force bool) []model.DividendPool {
	if owner == (common.Address{}) {
		return []model.DividendPool{}
	}

	view, err := r.views.Get(owner.Hex(), force, func() ([]model.DividendPool, error) {
		pools, err := r.fetchPools(ctx)
		if err != nil {
			return nil, err
		}

		view := []model.DividendPool{}
		for _, p := range pools {
			if !strings.EqualFold(p.DividendAddress, owner.Hex()) {
				continue
			}
			view = append(view, model.DividendPool{
				PoolID:           p.PoolID,
				Tier:             p.Tier,
				TotalStaked:      p.TotalStaked,
				APRPct:           p.APRPct,
				DividendRatioPct: p.DividendRatioPct,
				ClaimableReward:  r.PoolReward(ctx, p.PoolID, force),
			})
		}
		return view, nil
	})
	if err != nil {
		r.logger.Warn("dividend view fetch failed", zap.String("owner", owner.Hex()), zap.Error(err))
		return []model.DividendPool{}
	}
	return view
}

// ClearView drops the cached dividend view for one owner.
func (r *Registry) ClearView(owner common.Address) {
	r.views.Clear(owner.Hex())
}

// Reset drops every cached pool, reward and view.
func (r *Registry) Reset() {
	r.pools.Reset()
	r.rewards.Reset()
	r.views.Reset()
}

func (r *Registry) fetchPools(ctx context.Context) ([]model.Pool, error) {
	stakingABI, err := contracts.Staking()
	if err != nil {
		return nil, fmt.Errorf("parse staking abi: %w", err)
	}

	values, err := r.gw.Call(ctx, r.staking, stakingABI, "getAllPoolsInfo", r.token)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("getAllPoolsInfo returned no values")
	}
	raw, err := contracts.DecodePools(values[0])
	if err != nil {
		return nil, err
	}

	pools := make([]model.Pool, 0, len(raw))
	for _, p := range raw {
		poolID := p.PoolId.Uint64()
		lockup := p.LockupPeriod.Uint64()
		pools = append(pools, model.Pool{
			PoolID:           poolID,
			Tier:             model.TierFor(poolID),
			DividendAddress:  p.DividendAddress.Hex(),
			DividendRatioPct: p.DividendRatio.String(),
			StakeToken:       p.StakeToken.Hex(),
			APRPct:           p.Apr.String(),
			LockupSeconds:    lockup,
			LockupPeriod:     model.FormatLockup(lockup),
			MaxStakeAmount:   chain.ToDisplayUnits(p.MaxStakeAmount, chain.NativeDecimals),
			TotalStaked:      chain.ToDisplayUnits(p.TotalStaked, chain.NativeDecimals),
			LastRewardTime:   p.LastRewardTime.Uint64(),
			DividendRate:     p.DividendRate.String(),
		})
	}
	return pools, nil
}
