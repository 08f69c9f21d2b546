package batch_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-batchpay/internal/test/mocks"
	"github/chapool/go-batchpay/internal/transfer"
	"github/chapool/go-batchpay/internal/transfer/batch"
	"github/chapool/go-batchpay/internal/transfer/fee"
)

const (
	testKey    = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	testSender = "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"
	recipientA = "0x1111111111111111111111111111111111111111"
	recipientB = "0x2222222222222222222222222222222222222222"
	tokenAddr  = "0x8888888888888888888888888888888888888888"
)

var batchContract = common.HexToAddress("0x9999999999999999999999999999999999999999")

func newService(t *testing.T) (batch.Service, *mocks.Ledger) {
	t.Helper()

	client := mocks.NewLedger(batchContract)
	svc := batch.NewService(client, batch.Config{
		BatchContract: batchContract,
		Timeouts: transfer.Timeouts{
			Resolve: time.Second,
			Submit:  time.Second,
			Confirm: time.Second,
		},
	})

	return svc, client
}

func coinRequest(amounts ...string) *transfer.Request {
	recipients := []string{recipientA, recipientB}[:len(amounts)]
	return &transfer.Request{
		SigningKey: testKey,
		Recipients: recipients,
		Amounts:    amounts,
	}
}

func tokenRequest(amounts ...string) *transfer.Request {
	req := coinRequest(amounts...)
	req.AssetAddress = tokenAddr
	return req
}

func bigStrings(values any) []string {
	ints, ok := values.([]*big.Int)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(ints))
	for _, v := range ints {
		out = append(out, v.String())
	}

	return out
}

func TestSendCoinRejectsBeforeNetwork(t *testing.T) {
	tests := []struct {
		name  string
		req   *transfer.Request
		field string
	}{
		{
			name:  "length mismatch",
			req:   &transfer.Request{SigningKey: testKey, Recipients: []string{recipientA, recipientB}, Amounts: []string{"1"}},
			field: "amount",
		},
		{
			name:  "no recipients",
			req:   &transfer.Request{SigningKey: testKey},
			field: "receiverAddress",
		},
		{
			name:  "bad recipient",
			req:   &transfer.Request{SigningKey: testKey, Recipients: []string{"0x123"}, Amounts: []string{"1"}},
			field: "receiverAddress",
		},
		{
			name:  "bad amount",
			req:   &transfer.Request{SigningKey: testKey, Recipients: []string{recipientA}, Amounts: []string{"-1"}},
			field: "amount",
		},
		{
			name:  "bad key",
			req:   &transfer.Request{SigningKey: "nothex", Recipients: []string{recipientA}, Amounts: []string{"1"}},
			field: "privateKey",
		},
		{
			name: "bad fee",
			req: &transfer.Request{
				SigningKey: testKey, Recipients: []string{recipientA}, Amounts: []string{"1"},
				Fees: fee.Parameters{GasLimit: fee.Value("abc")},
			},
			field: "fees",
		},
		{
			name:  "token address on coin path",
			req:   tokenRequest("1"),
			field: "tokenAddress",
		},
		{
			name:  "native precision overflow",
			req:   coinRequest("0.0000000000000000001"),
			field: "amount",
		},
		{
			name: "tip above fee cap",
			req: &transfer.Request{
				SigningKey: testKey, Recipients: []string{recipientA}, Amounts: []string{"1"},
				Fees: fee.Parameters{MaxFeePerUnit: fee.Value("1"), MaxPriorityFeePerUnit: fee.Value("2")},
			},
			field: "fees",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, client := newService(t)

			_, err := svc.SendCoin(t.Context(), tt.req)
			require.Error(t, err)

			var validation *transfer.ValidationError
			require.True(t, errors.As(err, &validation), err.Error())
			assert.Equal(t, tt.field, validation.Field)
			// 不解析合约，也不提交
			assert.Empty(t, client.Ops())
		})
	}
}

func TestSendCoin(t *testing.T) {
	svc, client := newService(t)

	res, err := svc.SendCoin(t.Context(), coinRequest("0.01", "0.02"))
	require.NoError(t, err)

	submitted := client.Submitted()
	require.Len(t, submitted, 1)

	call := submitted[0]
	assert.Equal(t, batchContract, call.Contract)
	assert.Equal(t, batch.DefaultDistributeMethod, call.Method)
	assert.Equal(t, common.HexToAddress(testSender), call.From)

	require.NotNil(t, call.Options.Value)
	assert.Equal(t, "30000000000000000", call.Options.Value.String())
	assert.Nil(t, call.Options.GasLimit)
	assert.Nil(t, call.Options.MaxFeePerGas)
	assert.Nil(t, call.Options.MaxPriorityFeePerGas)

	require.Len(t, call.Args, 3)
	assert.Equal(t, []common.Address{common.HexToAddress(recipientA), common.HexToAddress(recipientB)}, call.Args[0])
	assert.Equal(t, []string{"10000000000000000", "20000000000000000"}, bigStrings(call.Args[1]))
	assert.Equal(t, common.Address{}, call.Args[2])

	assert.Equal(t, testSender, res.SenderAddress)
	assert.Equal(t, call.Hash.Hex(), res.TransactionHash)
	assert.Equal(t, "120000", res.GasLimitUsed)
	assert.Equal(t, "30", res.EffectiveMaxFeePerUnit)
	assert.Equal(t, "1.5", res.EffectivePriorityFeePerUnit)
	assert.Equal(t, "30000000000000000", res.TotalBaseUnits)
	assert.Equal(t, 2, res.RecipientCount)
	assert.Empty(t, res.AssetAddress)
	assert.Empty(t, res.ApprovalTransactionHash)
}

func TestSendCoinFeeOverrides(t *testing.T) {
	svc, client := newService(t)

	req := coinRequest("1")
	req.Fees = fee.Parameters{
		GasLimit:              fee.Value("210000"),
		MaxFeePerUnit:         fee.Value("50"),
		MaxPriorityFeePerUnit: fee.Value("0"),
	}

	res, err := svc.SendCoin(t.Context(), req)
	require.NoError(t, err)

	call := client.Submitted()[0]
	require.NotNil(t, call.Options.GasLimit)
	assert.Equal(t, uint64(210000), *call.Options.GasLimit)
	assert.Equal(t, "50000000000", call.Options.MaxFeePerGas.String())
	// explicit zero is kept, not treated as unset
	require.NotNil(t, call.Options.MaxPriorityFeePerGas)
	assert.Equal(t, 0, call.Options.MaxPriorityFeePerGas.Sign())

	assert.Equal(t, "210000", res.GasLimitUsed)
	assert.Equal(t, "50", res.EffectiveMaxFeePerUnit)
	assert.Equal(t, "0", res.EffectivePriorityFeePerUnit)
}

func TestSendCoinFailures(t *testing.T) {
	t.Run("resolve", func(t *testing.T) {
		svc, client := newService(t)
		client.ResolveErr = transfer.NewDependencyError(transfer.OpResolveInterface, errors.New("explorer down"))

		_, err := svc.SendCoin(t.Context(), coinRequest("1"))
		assert.Equal(t, transfer.KindDependency, transfer.Kind(err))
		assert.Empty(t, client.Submitted())
	})

	t.Run("rejected", func(t *testing.T) {
		svc, client := newService(t)
		client.SubmitErr[batch.DefaultDistributeMethod] = transfer.NewRevertError(transfer.OpSubmit, "", "insufficient funds", nil)

		_, err := svc.SendCoin(t.Context(), coinRequest("1"))
		assert.Equal(t, transfer.KindRevert, transfer.Kind(err))
		assert.NotContains(t, client.Ops(), mocks.OpConfirm)
	})

	t.Run("confirmation timeout", func(t *testing.T) {
		svc, client := newService(t)
		client.BlockConfirm[batch.DefaultDistributeMethod] = true

		req := coinRequest("1")
		req.Timeouts.Confirm = 20 * time.Millisecond

		_, err := svc.SendCoin(t.Context(), req)
		assert.Equal(t, transfer.KindTimeout, transfer.Kind(err))

		var timeout *transfer.TimeoutError
		require.True(t, errors.As(err, &timeout))
		assert.Equal(t, client.Submitted()[0].Hash.Hex(), timeout.TxHash)
	})
}

func TestSendToken(t *testing.T) {
	svc, client := newService(t)
	client.Decimals = 6

	res, err := svc.SendToken(t.Context(), tokenRequest("10", "20"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		mocks.OpResolve, mocks.OpResolve, mocks.OpDecimals,
		mocks.OpSubmit, mocks.OpConfirm,
		mocks.OpSubmit, mocks.OpConfirm,
	}, client.Ops())

	submitted := client.Submitted()
	require.Len(t, submitted, 2)

	approve := submitted[0]
	assert.Equal(t, "approve", approve.Method)
	assert.Equal(t, common.HexToAddress(tokenAddr), approve.Contract)
	require.Len(t, approve.Args, 2)
	assert.Equal(t, batchContract, approve.Args[0])
	assert.Equal(t, "30000000", approve.Args[1].(*big.Int).String())
	assert.Nil(t, approve.Options.Value)
	assert.Nil(t, approve.Options.GasLimit)

	distribute := submitted[1]
	assert.Equal(t, batch.DefaultDistributeMethod, distribute.Method)
	assert.Equal(t, batchContract, distribute.Contract)
	assert.Equal(t, []string{"10000000", "20000000"}, bigStrings(distribute.Args[1]))
	assert.Equal(t, common.HexToAddress(tokenAddr), distribute.Args[2])
	assert.Nil(t, distribute.Options.Value)

	assert.Equal(t, distribute.Hash.Hex(), res.TransactionHash)
	assert.Equal(t, approve.Hash.Hex(), res.ApprovalTransactionHash)
	assert.Equal(t, common.HexToAddress(tokenAddr).Hex(), res.AssetAddress)
	assert.Equal(t, "30000000", res.TotalBaseUnits)
}

func TestSendTokenFeeOverridesOnBothPhases(t *testing.T) {
	svc, client := newService(t)
	client.Decimals = 6

	req := tokenRequest("1")
	req.Fees = fee.Parameters{
		GasLimit:      fee.Value("90000"),
		MaxFeePerUnit: fee.Value("40"),
	}

	_, err := svc.SendToken(t.Context(), req)
	require.NoError(t, err)

	submitted := client.Submitted()
	require.Len(t, submitted, 2)

	// the approval only carries the price caps
	assert.Nil(t, submitted[0].Options.GasLimit)
	assert.Equal(t, "40000000000", submitted[0].Options.MaxFeePerGas.String())

	require.NotNil(t, submitted[1].Options.GasLimit)
	assert.Equal(t, uint64(90000), *submitted[1].Options.GasLimit)
	assert.Equal(t, "40000000000", submitted[1].Options.MaxFeePerGas.String())
}

func TestSendTokenPrecisionOverflow(t *testing.T) {
	svc, client := newService(t)
	client.Decimals = 6

	_, err := svc.SendToken(t.Context(), tokenRequest("0.0000001"))
	assert.Equal(t, transfer.KindValidation, transfer.Kind(err))
	assert.Empty(t, client.Submitted())
}

func TestSendTokenRequiresTokenAddress(t *testing.T) {
	svc, client := newService(t)

	_, err := svc.SendToken(t.Context(), coinRequest("1"))
	assert.Equal(t, transfer.KindValidation, transfer.Kind(err))
	assert.Empty(t, client.Ops())
}

func TestSendTokenDecimalsFailure(t *testing.T) {
	svc, client := newService(t)
	client.DecimalsErr = transfer.NewDependencyError(transfer.OpQueryDecimals, errors.New("rpc down"))

	_, err := svc.SendToken(t.Context(), tokenRequest("1"))
	assert.Equal(t, transfer.KindDependency, transfer.Kind(err))
	assert.Empty(t, client.Submitted())
}

func TestSendTokenApprovalFailureSkipsDistribution(t *testing.T) {
	t.Run("approval reverted", func(t *testing.T) {
		svc, client := newService(t)
		client.ConfirmErr["approve"] = transfer.NewRevertError(transfer.OpConfirm, "0xaa", "paused", nil)

		_, err := svc.SendToken(t.Context(), tokenRequest("1"))
		assert.Equal(t, transfer.KindRevert, transfer.Kind(err))

		submitted := client.Submitted()
		require.Len(t, submitted, 1)
		assert.Equal(t, "approve", submitted[0].Method)
	})

	t.Run("approval timed out", func(t *testing.T) {
		svc, client := newService(t)
		client.BlockConfirm["approve"] = true

		req := tokenRequest("1")
		req.Timeouts.Confirm = 20 * time.Millisecond

		_, err := svc.SendToken(t.Context(), req)
		assert.Equal(t, transfer.KindTimeout, transfer.Kind(err))
		assert.Len(t, client.Submitted(), 1)
	})
}

func TestSendTokenPartialCompletion(t *testing.T) {
	svc, client := newService(t)
	client.Decimals = 6
	cause := transfer.NewRevertError(transfer.OpConfirm, "0xbb", "transfer amount exceeds balance", nil)
	client.ConfirmErr[batch.DefaultDistributeMethod] = cause

	_, err := svc.SendToken(t.Context(), tokenRequest("10", "20"))
	require.Error(t, err)
	assert.Equal(t, transfer.KindPartialCompletion, transfer.Kind(err))

	var partial *transfer.PartialCompletionError
	require.True(t, errors.As(err, &partial))
	assert.Equal(t, common.HexToAddress(tokenAddr).Hex(), partial.Token)
	assert.Equal(t, batchContract.Hex(), partial.Spender)
	assert.Equal(t, testSender, partial.Owner)
	assert.Equal(t, "30000000", partial.ApprovedAmount)
	assert.Equal(t, client.Submitted()[0].Hash.Hex(), partial.ApprovalTxHash)

	var revert *transfer.RevertError
	require.True(t, errors.As(err, &revert))
	assert.Equal(t, "transfer amount exceeds balance", revert.Reason)
}

func TestSendTokenPartialCompletionOnSubmit(t *testing.T) {
	svc, client := newService(t)
	client.SubmitErr[batch.DefaultDistributeMethod] = transfer.NewDependencyError(transfer.OpSubmit, errors.New("connection refused"))

	_, err := svc.SendToken(t.Context(), tokenRequest("1"))
	assert.Equal(t, transfer.KindPartialCompletion, transfer.Kind(err))
	assert.Len(t, client.Submitted(), 2)
}
