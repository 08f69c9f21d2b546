package fee_test

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-batchpay/internal/transfer/fee"
)

func TestOption(t *testing.T) {
	assert.False(t, fee.Unset().IsSet())
	assert.False(t, fee.FromString("").IsSet())
	assert.False(t, fee.FromPtr(nil).IsSet())

	zero := "0"
	o := fee.FromPtr(&zero)
	v, ok := o.Get()
	assert.True(t, ok)
	assert.Equal(t, "0", v)

	assert.Equal(t, "<unset>", fee.Unset().String())
	assert.Equal(t, "1.5", fee.Value("1.5").String())
}

func TestCallOptionsExplicitZeroVersusUnset(t *testing.T) {
	params := fee.Parameters{
		MaxFeePerUnit:         fee.Unset(),
		MaxPriorityFeePerUnit: fee.Value("0"),
	}

	opts, err := params.CallOptions(nil)
	require.NoError(t, err)

	assert.Nil(t, opts.MaxFeePerGas)
	require.NotNil(t, opts.MaxPriorityFeePerGas)
	assert.Equal(t, 0, opts.MaxPriorityFeePerGas.Sign())
	assert.Nil(t, opts.GasLimit)
	assert.Nil(t, opts.Value)
}

func TestCallOptionsConvertsGweiToWei(t *testing.T) {
	params := fee.Parameters{
		GasLimit:              fee.Value("210000"),
		MaxFeePerUnit:         fee.Value("30.5"),
		MaxPriorityFeePerUnit: fee.Value("1.25"),
	}

	value := big.NewInt(7)
	opts, err := params.CallOptions(value)
	require.NoError(t, err)

	require.NotNil(t, opts.GasLimit)
	assert.Equal(t, uint64(210000), *opts.GasLimit)
	assert.Equal(t, "30500000000", opts.MaxFeePerGas.String())
	assert.Equal(t, "1250000000", opts.MaxPriorityFeePerGas.String())
	assert.Equal(t, "7", opts.Value.String())

	// the options keep their own copy of the value
	value.SetInt64(8)
	assert.Equal(t, "7", opts.Value.String())
}

func TestCallOptionsNoOverrides(t *testing.T) {
	opts, err := fee.Parameters{}.CallOptions(big.NewInt(1))
	require.NoError(t, err)

	assert.Nil(t, opts.GasLimit)
	assert.Nil(t, opts.MaxFeePerGas)
	assert.Nil(t, opts.MaxPriorityFeePerGas)
}

func TestValidate(t *testing.T) {
	require.NoError(t, fee.Parameters{}.Validate())
	require.NoError(t, fee.Parameters{MaxPriorityFeePerUnit: fee.Value("0")}.Validate())

	err := fee.Parameters{GasLimit: fee.Value("0")}.Validate()
	assert.True(t, errors.Is(err, fee.ErrInvalidGasLimit))

	err = fee.Parameters{GasLimit: fee.Value("21000.5")}.Validate()
	assert.True(t, errors.Is(err, fee.ErrInvalidGasLimit))

	err = fee.Parameters{MaxFeePerUnit: fee.Value("-1")}.Validate()
	assert.True(t, errors.Is(err, fee.ErrInvalidFee))

	err = fee.Parameters{MaxPriorityFeePerUnit: fee.Value("0.0000000001")}.Validate()
	assert.True(t, errors.Is(err, fee.ErrInvalidFee))
}

func TestValidateTipAboveFeeCap(t *testing.T) {
	err := fee.Parameters{
		MaxFeePerUnit:         fee.Value("1.5"),
		MaxPriorityFeePerUnit: fee.Value("2"),
	}.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, fee.ErrTipAboveFeeCap))

	// equal caps and a single side are fine
	require.NoError(t, fee.Parameters{MaxFeePerUnit: fee.Value("2"), MaxPriorityFeePerUnit: fee.Value("2.000")}.Validate())
	require.NoError(t, fee.Parameters{MaxPriorityFeePerUnit: fee.Value("50")}.Validate())
	require.NoError(t, fee.Parameters{MaxFeePerUnit: fee.Value("0.5")}.Validate())
}

func TestPriceOnly(t *testing.T) {
	gasLimit := uint64(100)
	opts := fee.CallOptions{
		Value:                big.NewInt(1),
		GasLimit:             &gasLimit,
		MaxFeePerGas:         big.NewInt(2),
		MaxPriorityFeePerGas: big.NewInt(0),
	}

	p := opts.PriceOnly()
	assert.Nil(t, p.Value)
	assert.Nil(t, p.GasLimit)
	assert.Equal(t, "2", p.MaxFeePerGas.String())
	assert.Equal(t, "0", p.MaxPriorityFeePerGas.String())
}
