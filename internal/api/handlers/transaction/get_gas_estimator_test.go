package transaction_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-batchpay/internal/api"
	"github/chapool/go-batchpay/internal/api/httperrors"
	"github/chapool/go-batchpay/internal/test"
	"github/chapool/go-batchpay/internal/types"
)

const gasEstimatorPath = "/api/v1/transaction/gas-estimator"

func TestGetGasEstimator(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "GET", gasEstimatorPath, nil, test.HeadersWithAPIKey())
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var response types.FeeEstimateResponse
		test.ParseResponseAndValidate(t, res, &response)

		assert.Equal(t, "1.2", *response.Data.Low)
		assert.Equal(t, "1.5", *response.Data.Market)
		assert.Equal(t, "2.1", *response.Data.Aggressive)
		assert.Equal(t, "1.15", *response.Data.BaseFee)
	})
}

func TestGetGasEstimatorUnauthorized(t *testing.T) {
	test.WithTestServerFakes(t, test.DefaultTestConfig(), func(s *api.Server, fakes *test.Fakes) {
		res := test.PerformRequest(t, s, "GET", gasEstimatorPath, nil, nil)
		test.RequireHTTPError(t, res, httperrors.ErrUnauthorizedInvalidAPIKey)
		assert.Zero(t, fakes.Oracle.Calls())
	})
}

func TestGetGasEstimatorOracleUnavailable(t *testing.T) {
	test.WithTestServerFakes(t, test.DefaultTestConfig(), func(s *api.Server, fakes *test.Fakes) {
		fakes.Oracle.Err = errors.New("status 0: rate limited")

		res := test.PerformRequest(t, s, "GET", gasEstimatorPath, nil, test.HeadersWithAPIKey())
		require.Equal(t, http.StatusBadGateway, res.Result().StatusCode)

		var response types.PublicHTTPTransferError
		test.ParseResponseBody(t, res, &response)
		assert.Equal(t, types.PublicHTTPErrorTypeDEPENDENCYUNAVAILABLE, *response.Type)
	})
}

func TestGetGasEstimatorOracleTimeout(t *testing.T) {
	test.WithTestServerFakes(t, test.DefaultTestConfig(), func(s *api.Server, fakes *test.Fakes) {
		fakes.Oracle.Err = context.DeadlineExceeded

		res := test.PerformRequest(t, s, "GET", gasEstimatorPath, nil, test.HeadersWithAPIKey())
		require.Equal(t, http.StatusBadGateway, res.Result().StatusCode)

		var response types.PublicHTTPTransferError
		test.ParseResponseBody(t, res, &response)
		assert.Equal(t, types.PublicHTTPErrorTypeDEPENDENCYUNAVAILABLE, *response.Type)
		assert.Empty(t, response.TransactionHash)
	})
}

func TestGetGasEstimatorIncompleteData(t *testing.T) {
	test.WithTestServerFakes(t, test.DefaultTestConfig(), func(s *api.Server, fakes *test.Fakes) {
		fakes.Oracle.Levels.Fast = ""

		res := test.PerformRequest(t, s, "GET", gasEstimatorPath, nil, test.HeadersWithAPIKey())
		require.Equal(t, http.StatusBadGateway, res.Result().StatusCode)
	})
}
