package transaction

import (
	"context"
	"time"

	"github.com/go-openapi/swag"
	"github/chapool/go-batchpay/internal/api"
	"github/chapool/go-batchpay/internal/transfer"
	"github/chapool/go-batchpay/internal/transfer/fee"
	"github/chapool/go-batchpay/internal/transfer/receipt"
	"github/chapool/go-batchpay/internal/types"
	"github/chapool/go-batchpay/internal/util"
)

const receiptSaveTimeout = 5 * time.Second

// newTransferRequest 将请求体转换为转账请求，空的 fee 字段视为未设置
func newTransferRequest(body *types.PostSendCoinPayload, tokenAddress string) *transfer.Request {
	return &transfer.Request{
		SigningKey:   swag.StringValue(body.PrivateKey),
		AssetAddress: tokenAddress,
		Recipients:   body.ReceiverAddress,
		Amounts:      body.Amount,
		Fees: fee.Parameters{
			GasLimit:              fee.FromString(body.GasLimit),
			MaxFeePerUnit:         fee.FromString(body.MaxFeePerGas),
			MaxPriorityFeePerUnit: fee.FromString(body.MaxPriorityFeePerGas),
		},
	}
}

func newTransferResponse(res *transfer.ConfirmedTransfer) *types.TransferResponse {
	return &types.TransferResponse{
		Data: &types.ConfirmedTransfer{
			Sender:                  swag.String(res.SenderAddress),
			Hash:                    swag.String(res.TransactionHash),
			GasLimit:                swag.String(res.GasLimitUsed),
			MaxFeePerGas:            swag.String(res.EffectiveMaxFeePerUnit),
			MaxPriorityFeePerGas:    swag.String(res.EffectivePriorityFeePerUnit),
			TokenAddress:            res.AssetAddress,
			ApprovalTransactionHash: res.ApprovalTransactionHash,
			TotalBaseUnits:          res.TotalBaseUnits,
			RecipientCount:          int64(res.RecipientCount),
			BlockNumber:             int64(res.BlockNumber), //nolint:gosec
			GasUsed:                 int64(res.GasUsed),     //nolint:gosec
		},
	}
}

// saveReceipt 保存已确认的转账记录。
// 转账已经上链，保存失败只记录日志和指标，不影响响应
func saveReceipt(ctx context.Context, s *api.Server, res *transfer.ConfirmedTransfer) {
	log := util.LogFromContext(ctx)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), receiptSaveTimeout)
	defer cancel()

	if err := s.Receipts.Save(ctx, receipt.NewRecord(res)); err != nil {
		s.Metrics.ReceiptPersistFailed()
		log.Error().
			Err(err).
			Str("tx_hash", res.TransactionHash).
			Msg("Failed to store transfer receipt")
	}
}
