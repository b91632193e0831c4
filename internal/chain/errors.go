package chain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
)

// ErrorKind is the structured classification of a failed gateway call.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindUserRejected
	KindInsufficientFunds
	KindNetwork
	KindReverted
)

func (k ErrorKind) String() string {
	switch k {
	case KindUserRejected:
		return "user_rejected"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindNetwork:
		return "network"
	case KindReverted:
		return "reverted"
	default:
		return "unknown"
	}
}

// CallError wraps a failed chain call with its classification. Reason carries
// the decoded revert reason when the node returned one.
type CallError struct {
	Kind   ErrorKind
	Op     string
	Reason string
	Err    error
}

func (e *CallError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// Kind extracts the classification from err, or KindUnknown.
func Kind(err error) ErrorKind {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

// Reason extracts the revert reason from err, or "".
func Reason(err error) string {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Reason
	}
	return ""
}

// classify wraps err as a CallError. Structured checks run first; substring
// scanning over the node's message is the last-resort fallback.
func classify(op string, err error) *CallError {
	ce := &CallError{Kind: KindUnknown, Op: op, Err: err}

	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		ce.Kind = KindReverted
		if data, ok := dataErr.ErrorData().(string); ok {
			if reason, uerr := abi.UnpackRevert(common.FromHex(data)); uerr == nil {
				ce.Reason = reason
			}
		}
		if ce.Reason == "" {
			ce.Reason = revertReasonFromMessage(err.Error())
		}
		return ce
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		ce.Kind = KindNetwork
		return ce
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "user rejected"), strings.Contains(msg, "user denied"),
		strings.Contains(msg, "action_rejected"):
		ce.Kind = KindUserRejected
	case strings.Contains(msg, "insufficient funds"):
		ce.Kind = KindInsufficientFunds
	case strings.Contains(msg, "execution reverted"), strings.Contains(msg, "transaction reverted"):
		ce.Kind = KindReverted
		ce.Reason = revertReasonFromMessage(err.Error())
	case strings.Contains(msg, "network"), strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "timeout"), strings.Contains(msg, "no such host"):
		ce.Kind = KindNetwork
	}
	return ce
}

// revertReasonFromMessage strips the node's "execution reverted:" prefix.
func revertReasonFromMessage(msg string) string {
	for _, prefix := range []string{"execution reverted:", "transaction reverted:"} {
		if idx := strings.Index(msg, prefix); idx >= 0 {
			return strings.TrimSpace(msg[idx+len(prefix):])
		}
	}
	return ""
}
