package fee

import (
	"math/big"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github/chapool/go-batchpay/internal/transfer/amount"
)

var (
	ErrInvalidGasLimit = errors.New("gas limit must be a positive integer")
	ErrInvalidFee      = errors.New("fee must be a non-negative gwei amount")
	ErrTipAboveFeeCap  = errors.New("maxPriorityFeePerGas must not exceed maxFeePerGas")
)

// Parameters are the caller's optional fee overrides. Fee values are gwei strings.
type Parameters struct {
	GasLimit              Option
	MaxFeePerUnit         Option
	MaxPriorityFeePerUnit Option
}

// CallOptions is what accompanies a contract call. A nil field is omitted from the
// call and filled by the ledger client, a non-nil field is sent as is (including zero).
type CallOptions struct {
	Value                *big.Int
	GasLimit             *uint64
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
}

// Validate checks the syntax of every set field, and that an explicit tip does not
// exceed an explicit fee cap, without keeping any converted value.
func (p Parameters) Validate() error {
	if v, ok := p.GasLimit.Get(); ok {
		if _, err := parseGasLimit(v); err != nil {
			return errors.Wrap(err, "gasLimit")
		}
	}

	var feeCap, tip *big.Int

	if v, ok := p.MaxFeePerUnit.Get(); ok {
		wei, err := parseGwei(v)
		if err != nil {
			return errors.Wrap(err, "maxFeePerGas")
		}
		feeCap = wei
	}

	if v, ok := p.MaxPriorityFeePerUnit.Get(); ok {
		wei, err := parseGwei(v)
		if err != nil {
			return errors.Wrap(err, "maxPriorityFeePerGas")
		}
		tip = wei
	}

	// 节点会拒绝这样的交易
	if feeCap != nil && tip != nil && tip.Cmp(feeCap) > 0 {
		return errors.Wrapf(ErrTipAboveFeeCap, "%s > %s gwei", p.MaxPriorityFeePerUnit, p.MaxFeePerUnit)
	}

	return nil
}

// CallOptions assembles the options for one call. Only set fields are included;
// fee fields are converted from gwei to wei here and nowhere else.
// value may be nil for calls that attach no coin.
func (p Parameters) CallOptions(value *big.Int) (CallOptions, error) {
	opts := CallOptions{}
	if value != nil {
		opts.Value = new(big.Int).Set(value)
	}

	if v, ok := p.GasLimit.Get(); ok {
		gasLimit, err := parseGasLimit(v)
		if err != nil {
			return CallOptions{}, errors.Wrap(err, "gasLimit")
		}
		opts.GasLimit = &gasLimit
	}

	if v, ok := p.MaxFeePerUnit.Get(); ok {
		wei, err := parseGwei(v)
		if err != nil {
			return CallOptions{}, errors.Wrap(err, "maxFeePerGas")
		}
		opts.MaxFeePerGas = wei
	}

	if v, ok := p.MaxPriorityFeePerUnit.Get(); ok {
		wei, err := parseGwei(v)
		if err != nil {
			return CallOptions{}, errors.Wrap(err, "maxPriorityFeePerGas")
		}
		opts.MaxPriorityFeePerGas = wei
	}

	return opts, nil
}

// PriceOnly drops the gas limit and attached value, keeping fee caps.
// Used for auxiliary calls such as the token approval.
func (o CallOptions) PriceOnly() CallOptions {
	return CallOptions{
		MaxFeePerGas:         o.MaxFeePerGas,
		MaxPriorityFeePerGas: o.MaxPriorityFeePerGas,
	}
}

func (o CallOptions) MarshalZerologObject(e *zerolog.Event) {
	if o.Value != nil {
		e.Str("value", o.Value.String())
	}
	if o.GasLimit != nil {
		e.Uint64("gas_limit", *o.GasLimit)
	}
	if o.MaxFeePerGas != nil {
		e.Str("max_fee_per_gas", o.MaxFeePerGas.String())
	}
	if o.MaxPriorityFeePerGas != nil {
		e.Str("max_priority_fee_per_gas", o.MaxPriorityFeePerGas.String())
	}
}

func parseGasLimit(s string) (uint64, error) {
	const (
		base10  = 10
		bitSize = 64
	)

	gasLimit, err := strconv.ParseUint(s, base10, bitSize)
	if err != nil || gasLimit == 0 {
		return 0, errors.Wrapf(ErrInvalidGasLimit, "%q", s)
	}

	return gasLimit, nil
}

func parseGwei(s string) (*big.Int, error) {
	wei, err := amount.ToBaseUnits(s, amount.GweiPrecision)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidFee, "%q: %v", s, err)
	}

	return wei, nil
}
