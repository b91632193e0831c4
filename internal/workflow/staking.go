package workflow

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"stakeScope/internal/contracts"
)

// Stake deposits amount into a pool: balance check, allowance check, approval
// when needed, the stake call itself, then a forced refresh of every cache
// the write may have invalidated.
func (e *Engine) Stake(ctx context.Context, poolID uint64, amount string) Result {
	run := &run{workflow: "stake", poolID: poolID, amount: amount}
	e.step(run.workflow, StateIdle)

	if e.cfg.Owner == (common.Address{}) {
		return e.fail(ctx, run, StateIdle, "common.errors.wallet_not_connected", nil, nil)
	}
	if e.cfg.Staking == (common.Address{}) {
		return e.fail(ctx, run, StateIdle, "staking.errors.contract_not_configured", nil, nil)
	}

	e.step(run.workflow, StateValidating)
	amountWei, err := parseAmount(amount)
	if err != nil {
		return e.fail(ctx, run, StateValidating, "staking.errors.invalid_amount", nil, err)
	}

	e.step(run.workflow, StateCheckingBalance)
	balances := e.balances.Balances(ctx, e.cfg.Owner, true)
	if lessThan(balances.Primary, amount) {
		return e.fail(ctx, run, StateCheckingBalance, "staking.errors.insufficient_balance",
			map[string]string{"balance": balances.Primary, "amount": amount}, nil)
	}

	erc20, err := contracts.ERC20()
	if err != nil {
		return e.fail(ctx, run, StateCheckingAllowance, genericFailureKey(run.workflow), nil, err)
	}
	stakingABI, err := contracts.Staking()
	if err != nil {
		return e.fail(ctx, run, StateCheckingAllowance, genericFailureKey(run.workflow), nil, err)
	}

	// An existing allowance that already covers the amount skips approval
	// entirely.
	e.step(run.workflow, StateCheckingAllowance)
	allowance := e.balances.Allowance(ctx, e.cfg.PrimaryToken, e.cfg.Owner, e.cfg.Staking)
	if lessThan(allowance, amount) {
		e.step(run.workflow, StateApproving)
		if _, err := e.gw.Send(ctx, e.cfg.PrimaryToken, erc20, "approve", nil, e.cfg.Staking, amountWei); err != nil {
			key, params := e.failureKey(run, err)
			return e.fail(ctx, run, StateApproving, key, params, err)
		}
	}

	e.step(run.workflow, StateSubmitting)
	tx, err := e.gw.Send(ctx, e.cfg.Staking, stakingABI, "stake", nil, new(big.Int).SetUint64(poolID), amountWei)
	if err != nil {
		key, params := e.failureKey(run, err)
		return e.fail(ctx, run, StateSubmitting, key, params, err)
	}

	e.confirm(ctx, run)
	return e.succeed(ctx, run, "staking.stake_success",
		map[string]string{"amount": amount, "pool": fmt.Sprintf("%d", poolID)}, tx)
}

// Unstake withdraws amount from a pool. No allowance is involved; the
// contract enforces lockup and ownership and its revert reasons are
// sub-classified for display.
func (e *Engine) Unstake(ctx context.Context, poolID uint64, amount string) Result {
	run := &run{workflow: "unstake", poolID: poolID, amount: amount}
	e.step(run.workflow, StateIdle)

	if e.cfg.Owner == (common.Address{}) {
		return e.fail(ctx, run, StateIdle, "common.errors.wallet_not_connected", nil, nil)
	}
	if e.cfg.Staking == (common.Address{}) {
		return e.fail(ctx, run, StateIdle, "staking.errors.contract_not_configured", nil, nil)
	}

	e.step(run.workflow, StateValidating)
	amountWei, err := parseAmount(amount)
	if err != nil {
		return e.fail(ctx, run, StateValidating, "staking.errors.invalid_amount", nil, err)
	}

	stakingABI, err := contracts.Staking()
	if err != nil {
		return e.fail(ctx, run, StateSubmitting, genericFailureKey(run.workflow), nil, err)
	}

	e.step(run.workflow, StateSubmitting)
	tx, err := e.gw.Send(ctx, e.cfg.Staking, stakingABI, "unstake", nil, new(big.Int).SetUint64(poolID), amountWei)
	if err != nil {
		key, params := e.failureKey(run, err)
		return e.fail(ctx, run, StateSubmitting, key, params, err)
	}

	e.confirm(ctx, run)
	return e.succeed(ctx, run, "staking.unstake_success",
		map[string]string{"amount": amount, "pool": fmt.Sprintf("%d", poolID)}, tx)
}

// Claim collects the claimable dividends of a pool.
func (e *Engine) Claim(ctx context.Context, poolID uint64) Result {
	run := &run{workflow: "claim", poolID: poolID}
	e.step(run.workflow, StateIdle)

	if e.cfg.Owner == (common.Address{}) {
		return e.fail(ctx, run, StateIdle, "common.errors.wallet_not_connected", nil, nil)
	}
	if e.cfg.Staking == (common.Address{}) {
		return e.fail(ctx, run, StateIdle, "staking.errors.contract_not_configured", nil, nil)
	}

	stakingABI, err := contracts.Staking()
	if err != nil {
		return e.fail(ctx, run, StateSubmitting, genericFailureKey(run.workflow), nil, err)
	}

	e.step(run.workflow, StateSubmitting)
	tx, err := e.gw.Send(ctx, e.cfg.Staking, stakingABI, "claimDividends", nil, new(big.Int).SetUint64(poolID))
	if err != nil {
		key, params := e.failureKey(run, err)
		return e.fail(ctx, run, StateSubmitting, key, params, err)
	}

	e.confirm(ctx, run)
	// The claimed pool's reward entry is stale on top of the usual set.
	e.pools.PoolReward(ctx, poolID, true)
	return e.succeed(ctx, run, "staking.claim_success",
		map[string]string{"pool": fmt.Sprintf("%d", poolID)}, tx)
}

// confirm force-refreshes every cache a staking write may have invalidated.
func (e *Engine) confirm(ctx context.Context, run *run) {
	e.step(run.workflow, StateConfirming)
	e.balances.Balances(ctx, e.cfg.Owner, true)
	e.pools.All(ctx, true)
	e.stakes.UserStakes(ctx, e.cfg.Owner, true)
}
