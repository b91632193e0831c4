package model

// StakeRecord is one deposit event by a user into a pool. Withdrawn records
// are filtered out of the active view before rewards are merged in.
type StakeRecord struct {
	StakeID        string `json:"stake_id"`
	PoolID         uint64 `json:"pool_id"`
	Tier           Tier   `json:"tier"`
	Amount         string `json:"amount"`
	StakeStartTime uint64 `json:"stake_start_time"`
	LockedAPRPct   string `json:"locked_apr_pct"`
	Reward         string `json:"reward"`
}
