package batch

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github/chapool/go-batchpay/internal/transfer"
)

const (
	// DefaultDistributeMethod is the batch contract method taking (address[], uint256[], address).
	DefaultDistributeMethod = "batchTransfer"
	approveMethod           = "approve"
)

// Service runs batch value transfers end to end.
type Service interface {
	// SendCoin distributes the native coin to every recipient in one call.
	SendCoin(ctx context.Context, req *transfer.Request) (*transfer.ConfirmedTransfer, error)

	// SendToken approves the batch contract for the total and then distributes the token.
	SendToken(ctx context.Context, req *transfer.Request) (*transfer.ConfirmedTransfer, error)
}

// Config holds the static parameters of the orchestrator.
type Config struct {
	BatchContract    common.Address
	DistributeMethod string
	Timeouts         transfer.Timeouts
}
