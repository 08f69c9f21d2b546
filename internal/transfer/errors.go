package transfer

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies a failure so callers can tell "nothing happened" from
// "something happened but incompletely" from "timed out, check later".
type ErrorKind string

const (
	KindNone              ErrorKind = ""
	KindValidation        ErrorKind = "validation"
	KindDependency        ErrorKind = "dependency"
	KindRevert            ErrorKind = "revert"
	KindTimeout           ErrorKind = "timeout"
	KindPartialCompletion ErrorKind = "partial_completion"
	KindUnknown           ErrorKind = "unknown"
)

// Remote operations named in errors and logs.
const (
	OpResolveInterface = "resolve_interface"
	OpQueryDecimals    = "query_decimals"
	OpSubmit           = "submit"
	OpConfirm          = "confirm"
	OpFetchGasOracle   = "fetch_gas_oracle"
)

// ValidationError is a malformed request. It never reaches the network.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func NewValidationError(field string, reason string, err error) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Err: err}
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

// DependencyError means a remote dependency (node, explorer, oracle) could not serve the request.
type DependencyError struct {
	Op  string
	Err error
}

func NewDependencyError(op string, err error) *DependencyError {
	return &DependencyError{Op: op, Err: err}
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependency failure during %s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

// RevertError means the network executed the call and rejected it.
// TxHash is empty when the rejection happened before broadcast (e.g. gas estimation).
type RevertError struct {
	Op     string
	TxHash string
	Reason string
	Err    error
}

func NewRevertError(op string, txHash string, reason string, err error) *RevertError {
	return &RevertError{Op: op, TxHash: txHash, Reason: reason, Err: err}
}

func (e *RevertError) Error() string {
	msg := "call rejected by network during " + e.Op
	if e.TxHash != "" {
		msg += " (tx " + e.TxHash + ")"
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}

	return msg
}

func (e *RevertError) Unwrap() error { return e.Err }

// TimeoutError means a wait exceeded its bound or the connection was lost after a
// signed transaction left. The outcome is unknown: a transaction identified by TxHash
// may still be included later.
type TimeoutError struct {
	Op     string
	TxHash string
	Err    error
}

func NewTimeoutError(op string, txHash string, err error) *TimeoutError {
	return &TimeoutError{Op: op, TxHash: txHash, Err: err}
}

func (e *TimeoutError) Error() string {
	msg := "timed out during " + e.Op + ", outcome unknown"
	if e.Err != nil && !errors.Is(e.Err, context.DeadlineExceeded) && !errors.Is(e.Err, context.Canceled) {
		msg = "lost connection during " + e.Op + ", outcome unknown"
	}
	if e.TxHash != "" {
		msg += " (tx " + e.TxHash + ")"
	}

	return msg
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// PartialCompletionError is returned by the token path when the approval landed
// on-chain but the distribution did not. The allowance stays in place.
type PartialCompletionError struct {
	Token          string
	Spender        string
	Owner          string
	ApprovedAmount string
	ApprovalTxHash string
	Err            error
}

func (e *PartialCompletionError) Error() string {
	return fmt.Sprintf(
		"approval %s of %s on token %s for spender %s confirmed but distribution failed: %v",
		e.ApprovalTxHash, e.ApprovedAmount, e.Token, e.Spender, e.Err,
	)
}

func (e *PartialCompletionError) Unwrap() error { return e.Err }

// Kind returns the outermost taxonomy kind found in err's chain.
func Kind(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	var (
		partial    *PartialCompletionError
		validation *ValidationError
		timeout    *TimeoutError
		revert     *RevertError
		dependency *DependencyError
	)

	switch {
	case errors.As(err, &partial):
		return KindPartialCompletion
	case errors.As(err, &validation):
		return KindValidation
	case errors.As(err, &timeout):
		return KindTimeout
	case errors.As(err, &revert):
		return KindRevert
	case errors.As(err, &dependency):
		return KindDependency
	default:
		return KindUnknown
	}
}
