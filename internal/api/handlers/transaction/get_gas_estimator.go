package transaction

import (
	"net/http"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
	"github/chapool/go-batchpay/internal/api"
	"github/chapool/go-batchpay/internal/api/httperrors"
	"github/chapool/go-batchpay/internal/types"
	"github/chapool/go-batchpay/internal/util"
)

func GetGasEstimatorRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Transaction.GET("/gas-estimator", getGasEstimatorHandler(s))
}

func getGasEstimatorHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		estimate, err := s.Oracle.Estimate(ctx)
		s.Metrics.ObserveFeeEstimate(err)
		if err != nil {
			util.LogFromContext(ctx).Error().Err(err).Msg("Failed to read fee oracle")
			return httperrors.NewFromTransferError(err)
		}

		response := &types.FeeEstimateResponse{
			Data: &types.FeeEstimate{
				Low:        swag.String(estimate.Low),
				Market:     swag.String(estimate.Market),
				Aggressive: swag.String(estimate.Aggressive),
				BaseFee:    swag.String(estimate.BaseFee),
			},
		}

		return util.ValidateAndReturn(c, http.StatusOK, response)
	}
}
