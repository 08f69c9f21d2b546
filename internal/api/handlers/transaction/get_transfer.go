package transaction

import (
	"net/http"
	"regexp"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/go-batchpay/internal/api"
	"github/chapool/go-batchpay/internal/api/httperrors"
	"github/chapool/go-batchpay/internal/transfer/receipt"
	"github/chapool/go-batchpay/internal/types"
	"github/chapool/go-batchpay/internal/util"
)

var txHashPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

func GetTransferRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Transaction.GET("/:hash", getTransferHandler(s))
}

// getTransferHandler 按交易哈希查询已确认的转账记录
func getTransferHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		hash := c.Param("hash")
		if !txHashPattern.MatchString(hash) {
			return httperrors.ErrBadRequestInvalidHash
		}

		rec, err := s.Receipts.GetByTXHash(ctx, hash)
		if err != nil {
			if errors.Is(err, receipt.ErrNotFound) {
				return httperrors.ErrNotFoundTransfer
			}
			util.LogFromContext(ctx).Error().Err(err).Str("tx_hash", hash).Msg("Failed to load transfer receipt")
			return err
		}

		return util.ValidateAndReturn(c, http.StatusOK, &types.TransferReceiptResponse{
			Data: newTransferReceipt(rec),
		})
	}
}

func newTransferReceipt(rec *receipt.Record) *types.TransferReceipt {
	id := strfmt.UUID(rec.ID)
	createdAt := strfmt.DateTime(rec.CreatedAt.In(time.UTC))

	return &types.TransferReceipt{
		ID:                      &id,
		Sender:                  swag.String(rec.Sender),
		Hash:                    swag.String(rec.TXHash),
		AssetKind:               swag.String(rec.AssetKind),
		TokenAddress:            rec.TokenAddress.String,
		ApprovalTransactionHash: rec.ApprovalTXHash.String,
		RecipientCount:          int64(rec.RecipientCount),
		TotalBaseUnits:          rec.TotalBaseUnits,
		GasLimit:                rec.GasLimit,
		MaxFeePerGas:            rec.MaxFeePerGas,
		MaxPriorityFeePerGas:    rec.MaxPriorityFeePerGas,
		BlockNumber:             rec.BlockNumber,
		CreatedAt:               &createdAt,
	}
}
