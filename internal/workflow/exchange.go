package workflow

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"stakeScope/internal/chain"
	"stakeScope/internal/contracts"
)

// Exchange maps primary tokens into secondary tokens through the exchange
// contract. A single exchange is capped; the configured native fee rides
// along as call value.
func (e *Engine) Exchange(ctx context.Context, amount string) Result {
	run := &run{workflow: "exchange", amount: amount}
	e.step(run.workflow, StateIdle)

	if e.cfg.Owner == (common.Address{}) {
		return e.fail(ctx, run, StateIdle, "common.errors.wallet_not_connected", nil, nil)
	}
	if e.cfg.Exchange == (common.Address{}) {
		return e.fail(ctx, run, StateIdle, "mapping.errors.contract_not_configured", nil, nil)
	}

	e.step(run.workflow, StateValidating)
	amountWei, err := parseAmount(amount)
	if err != nil {
		return e.fail(ctx, run, StateValidating, "staking.errors.invalid_amount", nil, err)
	}
	if lessThan(formatInt(e.cfg.MaxExchangeAmount), amount) {
		return e.fail(ctx, run, StateValidating, "mapping.errors.exceeds_max_amount",
			map[string]string{"max": formatInt(e.cfg.MaxExchangeAmount)}, nil)
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
	exchangeABI, err := contracts.Exchange()
	if err != nil {
		return e.fail(ctx, run, StateCheckingAllowance, genericFailureKey(run.workflow), nil, err)
	}

	e.step(run.workflow, StateCheckingAllowance)
	allowance := e.balances.Allowance(ctx, e.cfg.PrimaryToken, e.cfg.Owner, e.cfg.Exchange)
	if lessThan(allowance, amount) {
		e.step(run.workflow, StateApproving)
		if _, err := e.gw.Send(ctx, e.cfg.PrimaryToken, erc20, "approve", nil, e.cfg.Exchange, amountWei); err != nil {
			key, params := e.failureKey(run, err)
			return e.fail(ctx, run, StateApproving, key, params, err)
		}
	}

	e.step(run.workflow, StateSubmitting)
	tx, err := e.gw.Send(ctx, e.cfg.Exchange, exchangeABI, "exchange", e.cfg.ExchangeFee,
		e.cfg.PrimaryToken, e.cfg.SecondaryToken, amountWei, new(big.Int))
	if err != nil {
		key, params := e.failureKey(run, err)
		return e.fail(ctx, run, StateSubmitting, key, params, err)
	}

	e.step(run.workflow, StateConfirming)
	e.balances.Balances(ctx, e.cfg.Owner, true)

	return e.succeed(ctx, run, "mapping.exchange_success",
		map[string]string{"amount": amount}, tx)
}

// Swap trades against the swap pair. The buy leg sends native currency to
// the pair; the sell leg submits an ERC20 transfer to it.
func (e *Engine) Swap(ctx context.Context, amount string, buy bool) Result {
	run := &run{workflow: "swap", amount: amount}
	e.step(run.workflow, StateIdle)

	if e.cfg.Owner == (common.Address{}) {
		return e.fail(ctx, run, StateIdle, "common.errors.wallet_not_connected", nil, nil)
	}
	// A zero pair address would receive a real value transfer.
	if e.cfg.SwapPair == (common.Address{}) {
		return e.fail(ctx, run, StateIdle, "swap.errors.pair_not_configured", nil, nil)
	}

	e.step(run.workflow, StateValidating)
	amountWei, err := parseAmount(amount)
	if err != nil {
		return e.fail(ctx, run, StateValidating, "staking.errors.invalid_amount", nil, err)
	}

	e.step(run.workflow, StateCheckingBalance)
	var tx *chain.TxResult
	if buy {
		native, err := e.gw.NativeBalance(ctx, e.cfg.Owner)
		if err != nil {
			key, params := e.failureKey(run, err)
			return e.fail(ctx, run, StateCheckingBalance, key, params, err)
		}
		if native.Cmp(amountWei) < 0 {
			return e.fail(ctx, run, StateCheckingBalance, "swap.errors.insufficient_native_balance",
				map[string]string{"balance": chain.ToDisplayUnits(native, chain.NativeDecimals), "amount": amount}, nil)
		}

		e.step(run.workflow, StateSubmitting)
		tx, err = e.gw.SendNative(ctx, e.cfg.SwapPair, amountWei)
		if err != nil {
			key, params := e.failureKey(run, err)
			return e.fail(ctx, run, StateSubmitting, key, params, err)
		}
	} else {
		balances := e.balances.Balances(ctx, e.cfg.Owner, true)
		if lessThan(balances.Primary, amount) {
			return e.fail(ctx, run, StateCheckingBalance, "staking.errors.insufficient_balance",
				map[string]string{"balance": balances.Primary, "amount": amount}, nil)
		}

		erc20, err := contracts.ERC20()
		if err != nil {
			return e.fail(ctx, run, StateSubmitting, genericFailureKey(run.workflow), nil, err)
		}

		e.step(run.workflow, StateSubmitting)
		tx, err = e.gw.Send(ctx, e.cfg.PrimaryToken, erc20, "transfer", nil, e.cfg.SwapPair, amountWei)
		if err != nil {
			key, params := e.failureKey(run, err)
			return e.fail(ctx, run, StateSubmitting, key, params, err)
		}
	}

	e.step(run.workflow, StateConfirming)
	e.balances.Balances(ctx, e.cfg.Owner, true)

	return e.succeed(ctx, run, "swap.swap_success",
		map[string]string{"amount": amount}, tx)
}
