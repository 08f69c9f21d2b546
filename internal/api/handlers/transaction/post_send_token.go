package transaction

import (
	"net/http"
	"time"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
	"github/chapool/go-batchpay/internal/api"
	"github/chapool/go-batchpay/internal/api/httperrors"
	"github/chapool/go-batchpay/internal/metrics"
	"github/chapool/go-batchpay/internal/transfer"
	"github/chapool/go-batchpay/internal/types"
	"github/chapool/go-batchpay/internal/util"
)

func PostSendTokenRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Transaction.POST("/send-token", postSendTokenHandler(s))
}

func postSendTokenHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.PostSendTokenPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		tokenAddress := swag.StringValue(body.TokenAddress)

		started := time.Now()
		res, err := s.Batch.SendToken(ctx, newTransferRequest(&body.PostSendCoinPayload, tokenAddress))
		s.Metrics.ObserveTransfer(metrics.AssetToken, started, err)
		if err != nil {
			event := log.Error()
			if transfer.Kind(err) == transfer.KindPartialCompletion {
				// approve 已上链但分发失败，需要人工处理剩余授权
				event = log.Warn()
			}
			event.
				Err(err).
				Str("kind", string(transfer.Kind(err))).
				Str("token", tokenAddress).
				Int("recipient_count", len(body.ReceiverAddress)).
				Msg("Token batch transfer failed")
			return httperrors.NewFromTransferError(err)
		}

		saveReceipt(ctx, s, res)

		return util.ValidateAndReturn(c, http.StatusOK, newTransferResponse(res))
	}
}
