package stake

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stakeScope/internal/cache"
	"stakeScope/internal/chain"
	"stakeScope/internal/contracts"
	"stakeScope/internal/model"
)

const (
	stakesTTL      = 5 * time.Minute
	stakeRewardTTL = time.Minute
)

// Gateway is the chain read surface the ledger needs.
type Gateway interface {
	Call(ctx context.Context, contract common.Address, contractABI abi.ABI, method string, args ...interface{}) ([]interface{}, error)
}

// Ledger fetches and caches a user's stake records, merging in per-stake
// rewards from one batched lookup.
type Ledger struct {
	gw      Gateway
	staking common.Address
	token   common.Address

	stakes  *cache.Store[[]model.StakeRecord]
	rewards *cache.MapStore[string]

	logger *zap.Logger
}

// New builds a ledger over the staking contract.
func New(gw Gateway, staking, token common.Address, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		gw:      gw,
		staking: staking,
		token:   token,
		stakes:  cache.New[[]model.StakeRecord](stakesTTL),
		rewards: cache.NewMap[string](stakeRewardTTL),
		logger:  logger,
	}
}

// UserStakes returns the owner's active stakes with rewards merged in.
// Withdrawn records are filtered out; failures yield an empty list.
func (l *Ledger) UserStakes(ctx context.Context, owner common.Address, force bool) []model.StakeRecord {
	if owner == (common.Address{}) {
		return []model.StakeRecord{}
	}

	stakes, err := l.stakes.Get(owner.Hex(), force, func() ([]model.StakeRecord, error) {
		return l.fetchStakes(ctx, owner, force)
	})
	if err != nil {
		l.logger.Warn("stake list fetch failed", zap.String("owner", owner.Hex()), zap.Error(err))
		return []model.StakeRecord{}
	}
	return stakes
}

// StakeReward returns the claimable reward of one stake in display units,
// cached per (owner, stake id). Failures degrade to "0".
func (l *Ledger) StakeReward(ctx context.Context, owner common.Address, stakeID string, force bool) string {
	reward, err := l.rewards.Get(owner.Hex(), stakeID, force, func() (string, error) {
		stakingABI, err := contracts.Staking()
		if err != nil {
			return "", err
		}
		id, ok := new(big.Int).SetString(stakeID, 10)
		if !ok {
			return "", fmt.Errorf("invalid stake id %q", stakeID)
		}
		values, err := l.gw.Call(ctx, l.staking, stakingABI, "getStakeDividends", owner, id)
		if err != nil {
			return "", err
		}
		if len(values) == 0 {
			return "", fmt.Errorf("getStakeDividends returned no values")
		}
		amount, err := contracts.AsBigInt(values[0])
		if err != nil {
			return "", err
		}
		return chain.ToDisplayUnits(amount, chain.NativeDecimals), nil
	})
	if err != nil {
		l.logger.Warn("stake reward fetch failed",
			zap.String("owner", owner.Hex()),
			zap.String("stake", stakeID),
			zap.Error(err),
		)
		return "0"
	}
	return reward
}

// BatchStakeRewards looks up every stake id concurrently and merges the
// results. A failing lookup defaults to "0" without aborting the rest, so
// the returned map always has one entry per requested id.
func (l *Ledger) BatchStakeRewards(ctx context.Context, owner common.Address, stakeIDs []string, force bool) map[string]string {
	rewards := make([]string, len(stakeIDs))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range stakeIDs {
		i, id := i, id
		g.Go(func() error {
			rewards[i] = l.StakeReward(gctx, owner, id, force)
			return nil
		})
	}
	g.Wait()

	out := make(map[string]string, len(stakeIDs))
	for i, id := range stakeIDs {
		out[id] = rewards[i]
	}
	return out
}

// Clear drops cached stakes and rewards for one owner.
func (l *Ledger) Clear(owner common.Address) {
	l.stakes.Clear(owner.Hex())
	l.rewards.ClearScope(owner.Hex())
}

// Reset drops every cached stake and reward. Used on wallet disconnect.
func (l *Ledger) Reset() {
	l.stakes.Reset()
	l.rewards.Reset()
}

func (l *Ledger) fetchStakes(ctx context.Context, owner common.Address, force bool) ([]model.StakeRecord, error) {
	stakingABI, err := contracts.Staking()
	if err != nil {
		return nil, fmt.Errorf("parse staking abi: %w", err)
	}

	values, err := l.gw.Call(ctx, l.staking, stakingABI, "getAllUserStakes", owner, l.token)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("getAllUserStakes returned no values")
	}
	raw, err := contracts.DecodeStakes(values[0])
	if err != nil {
		return nil, err
	}

	active := make([]contracts.RawStake, 0, len(raw))
	for _, s := range raw {
		if s.IsWithdrawn {
			continue
		}
		active = append(active, s)
	}

	stakeIDs := make([]string, len(active))
	for i, s := range active {
		stakeIDs[i] = s.StakeId.String()
	}
	rewardMap := l.BatchStakeRewards(ctx, owner, stakeIDs, force)

	records := make([]model.StakeRecord, 0, len(active))
	for _, s := range active {
		poolID := s.PoolId.Uint64()
		stakeID := s.StakeId.String()
		reward, ok := rewardMap[stakeID]
		if !ok {
			reward = "0"
		}
		records = append(records, model.StakeRecord{
			StakeID:        stakeID,
			PoolID:         poolID,
			Tier:           model.TierFor(poolID),
			Amount:         chain.ToDisplayUnits(s.Amount, chain.NativeDecimals),
			StakeStartTime: s.StakeStartTime.Uint64(),
			LockedAPRPct:   s.LockedAPR.String(),
			Reward:         reward,
		})
	}
	return records, nil
}
