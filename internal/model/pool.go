package model

import "fmt"

// Tier is the presentation classification of a pool, derived from its id.
type Tier string

const (
	TierGold   Tier = "gold"
	TierSilver Tier = "silver"
	TierBronze Tier = "bronze"
)

var (
	goldPools   = map[uint64]struct{}{1: {}, 5: {}}
	silverPools = map[uint64]struct{}{2: {}, 3: {}, 4: {}, 6: {}}
)

// TierFor classifies a pool id. Ids outside the gold and silver sets are bronze.
func TierFor(poolID uint64) Tier {
	if _, ok := goldPools[poolID]; ok {
		return TierGold
	}
	if _, ok := silverPools[poolID]; ok {
		return TierSilver
	}
	return TierBronze
}

// Pool is one reward pool as read from the staking contract, decorated with
// tier and a formatted lockup period.
type Pool struct {
	PoolID           uint64 `json:"pool_id"`
	Tier             Tier   `json:"tier"`
	DividendAddress  string `json:"dividend_address"`
	DividendRatioPct string `json:"dividend_ratio_pct"`
	StakeToken       string `json:"stake_token"`
	APRPct           string `json:"apr_pct"`
	LockupSeconds    uint64 `json:"lockup_seconds"`
	LockupPeriod     string `json:"lockup_period"`
	MaxStakeAmount   string `json:"max_stake_amount"`
	TotalStaked      string `json:"total_staked"`
	LastRewardTime   uint64 `json:"last_reward_time"`
	DividendRate     string `json:"dividend_rate"`
}

// DividendPool is a pool whose dividend address matches the viewing wallet,
// joined with its claimable pool reward.
type DividendPool struct {
	PoolID           uint64 `json:"pool_id"`
	Tier             Tier   `json:"tier"`
	TotalStaked      string `json:"total_staked"`
	APRPct           string `json:"apr_pct"`
	DividendRatioPct string `json:"dividend_ratio_pct"`
	ClaimableReward  string `json:"claimable_reward"`
}

// FormatLockup renders a lockup period in seconds as the first non-zero of
// days, hours or seconds. Units are never combined.
func FormatLockup(seconds uint64) string {
	hours := seconds / 3600
	days := hours / 24
	if days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%ds", seconds)
}
