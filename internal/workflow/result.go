package workflow

import "strings"

// Result is the sole contract every workflow entry point returns. Failures
// never escape as raw errors; they are converted into this shape.
type Result struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// State names the phase a workflow instance is in. Used for logging and for
// tagging failures with where they happened.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateCheckingBalance
	StateCheckingAllowance
	StateApproving
	StateSubmitting
	StateConfirming
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateCheckingBalance:
		return "checking_balance"
	case StateCheckingAllowance:
		return "checking_allowance"
	case StateApproving:
		return "approving"
	case StateSubmitting:
		return "submitting"
	case StateConfirming:
		return "confirming"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Translator resolves a message key with interpolation params into display
// text. The engine only passes structured keys; rendering is external.
type Translator func(key string, params map[string]string) string

// defaultMessages backs the fallback translator when no Translator is wired.
var defaultMessages = map[string]string{
	"common.errors.wallet_not_connected":        "Wallet is not connected",
	"common.errors.user_rejected":               "Transaction was rejected in the wallet",
	"common.errors.network_error":               "Network error, please try again",
	"staking.errors.invalid_amount":             "Please enter a valid amount",
	"staking.errors.insufficient_balance":       "Insufficient balance: you have {balance}, need {amount}",
	"staking.errors.insufficient_funds_or_gas":  "Insufficient funds for gas",
	"staking.errors.contract_execution_failed":  "Contract execution failed, please try again later",
	"staking.errors.transfer_exceeds_balance":   "Token balance is too low",
	"staking.errors.insufficient_allowance":     "Approved amount is too low, please retry",
	"staking.errors.lockup_not_ended":           "Lockup period has not ended yet",
	"staking.errors.already_withdrawn":          "This stake was already withdrawn",
	"staking.errors.stake_not_found":            "Stake not found",
	"staking.errors.cooldown_active":            "Cooldown is still active",
	"staking.errors.stake_failed":               "Staking failed",
	"staking.errors.unstake_failed":             "Unstaking failed",
	"staking.errors.claim_failed":               "Claiming dividends failed",
	"staking.stake_success":                     "Staked {amount} into pool {pool}",
	"staking.unstake_success":                   "Unstaked {amount} from pool {pool}",
	"staking.claim_success":                     "Claimed dividends from pool {pool}",
	"staking.errors.contract_not_configured":    "Staking contract is not configured",
	"mapping.errors.exceeds_max_amount":         "A single exchange cannot exceed {max}",
	"mapping.errors.exchange_failed":            "Exchange failed",
	"mapping.errors.contract_not_configured":    "Exchange contract is not configured",
	"mapping.exchange_success":                  "Exchanged {amount}",
	"swap.errors.swap_failed":                   "Swap failed",
	"swap.errors.insufficient_native_balance":   "Native balance is too low for this swap",
	"swap.errors.pair_not_configured":           "Swap pair is not configured",
	"swap.swap_success":                         "Swapped {amount}",
}

// DefaultTranslator renders the built-in English text for a key. Unknown
// keys fall back to the key itself so a message is never empty.
func DefaultTranslator(key string, params map[string]string) string {
	text, ok := defaultMessages[key]
	if !ok {
		text = key
	}
	for name, value := range params {
		text = strings.ReplaceAll(text, "{"+name+"}", value)
	}
	return text
}
