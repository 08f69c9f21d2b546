package transaction_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-batchpay/internal/api"
	"github/chapool/go-batchpay/internal/api/httperrors"
	"github/chapool/go-batchpay/internal/test"
	"github/chapool/go-batchpay/internal/test/mocks"
	"github/chapool/go-batchpay/internal/transfer"
	"github/chapool/go-batchpay/internal/transfer/batch"
	"github/chapool/go-batchpay/internal/types"
)

func TestPostSendCoinSuccess(t *testing.T) {
	test.WithTestServerFakes(t, test.DefaultTestConfig(), func(s *api.Server, fakes *test.Fakes) {
		res := test.PerformRequest(t, s, "POST", sendCoinPath, coinPayload(), test.HeadersWithAPIKey())
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var response types.TransferResponse
		test.ParseResponseAndValidate(t, res, &response)

		submitted := fakes.Ledger.Submitted()
		require.Len(t, submitted, 1)
		assert.Equal(t, batch.DefaultDistributeMethod, submitted[0].Method)

		assert.Equal(t, testSender, *response.Data.Sender)
		assert.Equal(t, submitted[0].Hash.Hex(), *response.Data.Hash)
		assert.Equal(t, "120000", *response.Data.GasLimit)
		assert.Equal(t, "30", *response.Data.MaxFeePerGas)
		assert.Equal(t, "1.5", *response.Data.MaxPriorityFeePerGas)
		assert.Equal(t, "30000000000000000", response.Data.TotalBaseUnits)
		assert.Equal(t, int64(2), response.Data.RecipientCount)
		assert.Empty(t, response.Data.TokenAddress)

		assert.Equal(t, 1, fakes.Receipts.Len())

		err := testutil.GatherAndCompare(s.Metrics.Registry, strings.NewReader(`
# HELP batchpay_transfers_total Batch transfers by asset kind and outcome.
# TYPE batchpay_transfers_total counter
batchpay_transfers_total{asset="native",outcome="success"} 1
`), "batchpay_transfers_total")
		require.NoError(t, err)
	})
}

func TestPostSendCoinSigningKeyNotEchoed(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "POST", sendCoinPath, coinPayload(), test.HeadersWithAPIKey())
		require.Equal(t, http.StatusOK, res.Result().StatusCode)
		assert.NotContains(t, res.Body.String(), testKey)
	})
}

func TestPostSendCoinFeeOverrides(t *testing.T) {
	test.WithTestServerFakes(t, test.DefaultTestConfig(), func(s *api.Server, fakes *test.Fakes) {
		payload := coinPayload()
		payload["gasLimit"] = "210000"
		payload["maxFeePerGas"] = "50"
		payload["maxPriorityFeePerGas"] = "0"

		res := test.PerformRequest(t, s, "POST", sendCoinPath, payload, test.HeadersWithAPIKey())
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var response types.TransferResponse
		test.ParseResponseAndValidate(t, res, &response)

		assert.Equal(t, "210000", *response.Data.GasLimit)
		assert.Equal(t, "50", *response.Data.MaxFeePerGas)
		assert.Equal(t, "0", *response.Data.MaxPriorityFeePerGas)

		opts := fakes.Ledger.Submitted()[0].Options
		require.NotNil(t, opts.MaxPriorityFeePerGas)
		assert.Equal(t, int64(0), opts.MaxPriorityFeePerGas.Int64())
	})
}

func TestPostSendCoinUnauthorized(t *testing.T) {
	test.WithTestServerFakes(t, test.DefaultTestConfig(), func(s *api.Server, fakes *test.Fakes) {
		res := test.PerformRequest(t, s, "POST", sendCoinPath, coinPayload(), nil)
		test.RequireHTTPError(t, res, httperrors.ErrUnauthorizedInvalidAPIKey)

		res = test.PerformRequest(t, s, "POST", sendCoinPath, coinPayload(), http.Header{"X-Api-Key": []string{"wrong"}})
		test.RequireHTTPError(t, res, httperrors.ErrUnauthorizedInvalidAPIKey)

		assert.Empty(t, fakes.Ledger.Calls)
	})
}

func TestPostSendCoinValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p test.GenericPayload)
		key    string
	}{
		{"missing signing key", func(p test.GenericPayload) { delete(p, "privateKey") }, "privateKey"},
		{"no recipients", func(p test.GenericPayload) {
			p["receiverAddress"] = []string{}
			p["amount"] = []string{}
		}, "receiverAddress"},
		{"misaligned amounts", func(p test.GenericPayload) { p["amount"] = []string{"0.01"} }, "amount"},
		{"invalid address", func(p test.GenericPayload) { p["receiverAddress"] = []string{recipientA, "0x1234"} }, "receiverAddress"},
		{"invalid amount", func(p test.GenericPayload) { p["amount"] = []string{"0.01", "-2"} }, "amount"},
		{"invalid gas limit", func(p test.GenericPayload) { p["gasLimit"] = "lots" }, "gasLimit"},
		{"invalid max fee", func(p test.GenericPayload) { p["maxFeePerGas"] = "1e9" }, "maxFeePerGas"},
		{"tip above fee cap", func(p test.GenericPayload) {
			p["maxFeePerGas"] = "1"
			p["maxPriorityFeePerGas"] = "2"
		}, "fees"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test.WithTestServerFakes(t, test.DefaultTestConfig(), func(s *api.Server, fakes *test.Fakes) {
				payload := coinPayload()
				tt.mutate(payload)

				res := test.PerformRequest(t, s, "POST", sendCoinPath, payload, test.HeadersWithAPIKey())
				test.RequireHTTPValidationError(t, res, tt.key)

				assert.Empty(t, fakes.Ledger.Ops())
				assert.Equal(t, 0, fakes.Receipts.Len())
			})
		})
	}
}

func TestPostSendCoinMalformedSigningKey(t *testing.T) {
	test.WithTestServerFakes(t, test.DefaultTestConfig(), func(s *api.Server, fakes *test.Fakes) {
		payload := coinPayload()
		payload["privateKey"] = "not-a-key"

		res := test.PerformRequest(t, s, "POST", sendCoinPath, payload, test.HeadersWithAPIKey())
		test.RequireHTTPValidationError(t, res, "privateKey")
		assert.NotContains(t, res.Body.String(), "not-a-key")
		assert.Empty(t, fakes.Ledger.Submitted())
	})
}

func TestPostSendCoinRevert(t *testing.T) {
	test.WithTestServerFakes(t, test.DefaultTestConfig(), func(s *api.Server, fakes *test.Fakes) {
		fakes.Ledger.ConfirmErr[batch.DefaultDistributeMethod] = transfer.NewRevertError(transfer.OpConfirm, "0xdead", "insufficient balance", nil)

		res := test.PerformRequest(t, s, "POST", sendCoinPath, coinPayload(), test.HeadersWithAPIKey())
		require.Equal(t, http.StatusUnprocessableEntity, res.Result().StatusCode)

		var response types.PublicHTTPTransferError
		test.ParseResponseBody(t, res, &response)

		assert.Equal(t, types.PublicHTTPErrorTypeTRANSFERREJECTED, *response.Type)
		assert.Equal(t, "0xdead", response.TransactionHash)
		assert.Equal(t, "insufficient balance", response.Reason)
		assert.Equal(t, 0, fakes.Receipts.Len())
	})
}

func TestPostSendCoinConfirmationTimeout(t *testing.T) {
	test.WithTestServerFakes(t, test.DefaultTestConfig(), func(s *api.Server, fakes *test.Fakes) {
		fakes.Ledger.BlockConfirm[batch.DefaultDistributeMethod] = true

		res := test.PerformRequest(t, s, "POST", sendCoinPath, coinPayload(), test.HeadersWithAPIKey())
		require.Equal(t, http.StatusGatewayTimeout, res.Result().StatusCode)

		var response types.PublicHTTPTransferError
		test.ParseResponseBody(t, res, &response)

		assert.Equal(t, types.PublicHTTPErrorTypeOUTCOMEUNKNOWN, *response.Type)
		assert.Equal(t, fakes.Ledger.Submitted()[0].Hash.Hex(), response.TransactionHash)
	})
}

func TestPostSendCoinDependencyUnavailable(t *testing.T) {
	test.WithTestServerFakes(t, test.DefaultTestConfig(), func(s *api.Server, fakes *test.Fakes) {
		fakes.Ledger.ResolveErr = transfer.NewDependencyError(transfer.OpResolveInterface, errors.New("explorer down"))

		res := test.PerformRequest(t, s, "POST", sendCoinPath, coinPayload(), test.HeadersWithAPIKey())
		require.Equal(t, http.StatusBadGateway, res.Result().StatusCode)

		var response types.PublicHTTPTransferError
		test.ParseResponseBody(t, res, &response)

		assert.Equal(t, types.PublicHTTPErrorTypeDEPENDENCYUNAVAILABLE, *response.Type)
		assert.NotContains(t, res.Body.String(), "explorer down")
		assert.Empty(t, fakes.Ledger.Submitted())
	})
}

func TestPostSendCoinReceiptFailureStillSucceeds(t *testing.T) {
	test.WithTestServerFakes(t, test.DefaultTestConfig(), func(s *api.Server, fakes *test.Fakes) {
		fakes.Receipts.SaveErr = errors.New("database is gone")

		res := test.PerformRequest(t, s, "POST", sendCoinPath, coinPayload(), test.HeadersWithAPIKey())
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		err := testutil.GatherAndCompare(s.Metrics.Registry, strings.NewReader(`
# HELP batchpay_receipt_persist_failures_total Confirmed transfers whose receipt could not be stored.
# TYPE batchpay_receipt_persist_failures_total counter
batchpay_receipt_persist_failures_total 1
`), "batchpay_receipt_persist_failures_total")
		require.NoError(t, err)
	})
}

func TestPostSendCoinGasLimitFromLedger(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "POST", sendCoinPath, coinPayload(), test.HeadersWithAPIKey())
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var response types.TransferResponse
		test.ParseResponseAndValidate(t, res, &response)

		assert.Equal(t, int64(mocks.DefaultGasLimit*mocks.DefaultGasUsedPercent/100), response.Data.GasUsed)
		assert.Equal(t, int64(mocks.DefaultBlockNumber), response.Data.BlockNumber)
	})
}
