package transfer

import (
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github/chapool/go-batchpay/internal/transfer/amount"
	"github/chapool/go-batchpay/internal/transfer/fee"
)

// Request is one logical batch operation.
// SigningKey lives only for the duration of a single call and is never logged.
type Request struct {
	SigningKey   string
	AssetAddress string // empty means the native coin
	Recipients   []string
	Amounts      []string
	Fees         fee.Parameters
	Timeouts     Timeouts
}

// Timeouts bound the three remote suspension points of a request.
// Zero values fall back to the orchestrator's defaults.
type Timeouts struct {
	Resolve time.Duration
	Submit  time.Duration
	Confirm time.Duration
}

// Or fills zero durations from defaults.
func (t Timeouts) Or(defaults Timeouts) Timeouts {
	if t.Resolve <= 0 {
		t.Resolve = defaults.Resolve
	}
	if t.Submit <= 0 {
		t.Submit = defaults.Submit
	}
	if t.Confirm <= 0 {
		t.Confirm = defaults.Confirm
	}

	return t
}

// IsNative reports whether the request moves the network's native coin.
func (r *Request) IsNative() bool {
	return r.AssetAddress == ""
}

// Validate checks everything that can be checked without the network:
// index alignment, address syntax, amount syntax and fee syntax.
// Precision overflow for tokens is checked once the token's decimals are known.
func (r *Request) Validate() error {
	if len(r.Recipients) == 0 {
		return NewValidationError("receiverAddress", "at least one recipient is required", nil)
	}

	if len(r.Recipients) != len(r.Amounts) {
		return NewValidationError("amount", "recipients and amounts must have the same length", nil)
	}

	if r.SigningKey == "" {
		return NewValidationError("privateKey", "signing key is required", nil)
	}

	if !r.IsNative() && !common.IsHexAddress(r.AssetAddress) {
		return NewValidationError("tokenAddress", "not a valid address", nil)
	}

	for i, recipient := range r.Recipients {
		if !common.IsHexAddress(recipient) {
			return NewValidationError("receiverAddress", "not a valid address at index "+strconv.Itoa(i), nil)
		}
	}

	for i, a := range r.Amounts {
		if _, err := amount.Parse(a); err != nil {
			return NewValidationError("amount", "not a valid amount at index "+strconv.Itoa(i), err)
		}
	}

	if err := r.Fees.Validate(); err != nil {
		return NewValidationError("fees", "invalid fee override", err)
	}

	return nil
}

// MarshalZerologObject logs the request without the signing key.
func (r *Request) MarshalZerologObject(e *zerolog.Event) {
	asset := r.AssetAddress
	if asset == "" {
		asset = "native"
	}

	e.Str("asset", asset).
		Int("recipient_count", len(r.Recipients)).
		Str("gas_limit", r.Fees.GasLimit.String()).
		Str("max_fee_per_gas", r.Fees.MaxFeePerUnit.String()).
		Str("max_priority_fee_per_gas", r.Fees.MaxPriorityFeePerUnit.String())
}

// ConfirmedTransfer is the normalized result of an included batch call.
// It is only ever built from a successful receipt.
type ConfirmedTransfer struct {
	SenderAddress               string
	TransactionHash             string
	GasLimitUsed                string
	EffectiveMaxFeePerUnit      string // gwei
	EffectivePriorityFeePerUnit string // gwei

	AssetAddress            string // empty for the native coin
	ApprovalTransactionHash string // token path only
	TotalBaseUnits          string
	RecipientCount          int
	BlockNumber             uint64
	GasUsed                 uint64
}

// FeeEstimate is a point-in-time snapshot of network fee tiers in gwei.
type FeeEstimate struct {
	Low        string
	Market     string
	Aggressive string
	BaseFee    string
}
