package transaction

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github/chapool/go-batchpay/internal/api"
	"github/chapool/go-batchpay/internal/api/httperrors"
	"github/chapool/go-batchpay/internal/metrics"
	"github/chapool/go-batchpay/internal/transfer"
	"github/chapool/go-batchpay/internal/types"
	"github/chapool/go-batchpay/internal/util"
)

func PostSendCoinRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Transaction.POST("/send-coin", postSendCoinHandler(s))
}

func postSendCoinHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.PostSendCoinPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		started := time.Now()
		res, err := s.Batch.SendCoin(ctx, newTransferRequest(&body, ""))
		s.Metrics.ObserveTransfer(metrics.AssetNative, started, err)
		if err != nil {
			log.Error().
				Err(err).
				Str("kind", string(transfer.Kind(err))).
				Int("recipient_count", len(body.ReceiverAddress)).
				Msg("Native coin batch transfer failed")
			return httperrors.NewFromTransferError(err)
		}

		saveReceipt(ctx, s, res)

		return util.ValidateAndReturn(c, http.StatusOK, newTransferResponse(res))
	}
}
