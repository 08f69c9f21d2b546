package oracle

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github/chapool/go-batchpay/internal/transfer"
	"github/chapool/go-batchpay/internal/transfer/explorer"
)

var ErrIncompleteOracleData = errors.New("fee oracle returned incomplete data")

// Levels are the raw severity levels published by a fee oracle, in gwei.
type Levels struct {
	Safe             string
	Propose          string
	Fast             string
	SuggestedBaseFee string
}

// Service is one outbound read of the current network fee levels.
type Service interface {
	FetchGasOracle(ctx context.Context) (Levels, error)
}

// ExplorerService reads the levels from the explorer gas tracker.
type ExplorerService struct {
	client *explorer.Client
}

func NewExplorerService(client *explorer.Client) *ExplorerService {
	return &ExplorerService{client: client}
}

func (s *ExplorerService) FetchGasOracle(ctx context.Context) (Levels, error) {
	res, err := s.client.GasOracle(ctx)
	if err != nil {
		return Levels{}, err
	}

	return Levels{
		Safe:             res.SafeGasPrice,
		Propose:          res.ProposeGasPrice,
		Fast:             res.FastGasPrice,
		SuggestedBaseFee: res.SuggestBaseFee,
	}, nil
}

// Reader classifies oracle levels into fee tiers. It keeps no state between calls.
type Reader struct {
	service Service
	timeout time.Duration
}

// NewReader creates a Reader; timeout <= 0 leaves the caller's deadline alone.
func NewReader(service Service, timeout time.Duration) *Reader {
	return &Reader{
		service: service,
		timeout: timeout,
	}
}

// Estimate performs exactly one oracle read, without retries.
func (r *Reader) Estimate(ctx context.Context) (*transfer.FeeEstimate, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	levels, err := r.service.FetchGasOracle(ctx)
	if err != nil {
		// 没有交易，超时也只是依赖不可用
		return nil, transfer.NewDependencyError(transfer.OpFetchGasOracle, err)
	}

	if levels.Safe == "" || levels.Propose == "" || levels.Fast == "" || levels.SuggestedBaseFee == "" {
		return nil, transfer.NewDependencyError(transfer.OpFetchGasOracle, ErrIncompleteOracleData)
	}

	return &transfer.FeeEstimate{
		Low:        levels.Safe,
		Market:     levels.Propose,
		Aggressive: levels.Fast,
		BaseFee:    levels.SuggestedBaseFee,
	}, nil
}
