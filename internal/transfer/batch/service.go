//nolint:ireturn
package batch

import (
	"context"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/go-batchpay/internal/transfer"
	"github/chapool/go-batchpay/internal/transfer/amount"
	"github/chapool/go-batchpay/internal/transfer/fee"
	"github/chapool/go-batchpay/internal/transfer/ledger"
)

type service struct {
	client ledger.Client
	config Config
}

// NewService creates the batch transfer orchestrator.
//
//nolint:ireturn // Returning interface is intentional for DI
func NewService(client ledger.Client, config Config) Service {
	if config.DistributeMethod == "" {
		config.DistributeMethod = DefaultDistributeMethod
	}

	return &service{
		client: client,
		config: config,
	}
}

// SendCoin distributes the native coin. The summed amount travels as the call's value.
func (s *service) SendCoin(ctx context.Context, req *transfer.Request) (*transfer.ConfirmedTransfer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if !req.IsNative() {
		return nil, transfer.NewValidationError("tokenAddress", "must be empty for native coin transfers", nil)
	}

	signer, err := ledger.NewSigner(req.SigningKey)
	if err != nil {
		return nil, transfer.NewValidationError("privateKey", "cannot derive signer", err)
	}
	defer signer.Close()

	timeouts := req.Timeouts.Or(s.config.Timeouts)

	log.Info().
		Object("request", req).
		Str("sender", signer.Address().Hex()).
		Msg("Starting native coin batch transfer")

	// 精度已知，转换失败时不发起任何网络调用
	values, total, err := amount.ToBaseUnitsAll(req.Amounts, amount.NativePrecision)
	if err != nil {
		return nil, transfer.NewValidationError("amount", "cannot convert to base units", err)
	}

	opts, err := s.callOptions(req.Fees, total)
	if err != nil {
		return nil, err
	}

	batchContract, err := s.resolve(ctx, timeouts.Resolve, s.config.BatchContract, s.config.DistributeMethod)
	if err != nil {
		return nil, err
	}

	pending, err := s.submit(ctx, timeouts.Submit, &ledger.Call{
		Contract: batchContract,
		Method:   s.config.DistributeMethod,
		Args:     []any{toAddresses(req.Recipients), values, common.Address{}},
		Options:  opts,
	}, signer)
	if err != nil {
		return nil, errors.Wrap(err, "failed to submit distribution")
	}

	receipt, err := s.await(ctx, timeouts.Confirm, pending)
	if err != nil {
		return nil, errors.Wrap(err, "distribution not confirmed")
	}

	result := normalize(receipt)
	result.TotalBaseUnits = total.String()
	result.RecipientCount = len(req.Recipients)

	log.Info().
		Str("tx_hash", result.TransactionHash).
		Str("sender", result.SenderAddress).
		Str("total_wei", result.TotalBaseUnits).
		Uint64("block_number", result.BlockNumber).
		Msg("Native coin batch transfer confirmed")

	return result, nil
}

// SendToken runs the approve-then-distribute protocol. The phases are strictly sequential:
// distribution is only submitted after the approval is confirmed.
func (s *service) SendToken(ctx context.Context, req *transfer.Request) (*transfer.ConfirmedTransfer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.IsNative() {
		return nil, transfer.NewValidationError("tokenAddress", "token address is required", nil)
	}

	signer, err := ledger.NewSigner(req.SigningKey)
	if err != nil {
		return nil, transfer.NewValidationError("privateKey", "cannot derive signer", err)
	}
	defer signer.Close()

	timeouts := req.Timeouts.Or(s.config.Timeouts)
	tokenAddress := common.HexToAddress(req.AssetAddress)

	log.Info().
		Object("request", req).
		Str("sender", signer.Address().Hex()).
		Msg("Starting token batch transfer")

	batchContract, err := s.resolve(ctx, timeouts.Resolve, s.config.BatchContract, s.config.DistributeMethod)
	if err != nil {
		return nil, err
	}

	tokenContract, err := s.resolve(ctx, timeouts.Resolve, tokenAddress, approveMethod)
	if err != nil {
		return nil, err
	}

	decimals, err := s.decimals(ctx, timeouts.Resolve, tokenAddress)
	if err != nil {
		return nil, err
	}

	values, total, err := amount.ToBaseUnitsAll(req.Amounts, int32(decimals))
	if err != nil {
		return nil, transfer.NewValidationError("amount", "cannot convert to token base units", err)
	}

	opts, err := s.callOptions(req.Fees, nil)
	if err != nil {
		return nil, err
	}

	// approval phase
	approval, err := s.submit(ctx, timeouts.Submit, &ledger.Call{
		Contract: tokenContract,
		Method:   approveMethod,
		Args:     []any{s.config.BatchContract, total},
		Options:  opts.PriceOnly(),
	}, signer)
	if err != nil {
		return nil, errors.Wrap(err, "failed to submit approval")
	}

	approvalReceipt, err := s.await(ctx, timeouts.Confirm, approval)
	if err != nil {
		return nil, errors.Wrap(err, "approval not confirmed, distribution skipped")
	}

	log.Info().
		Str("tx_hash", approvalReceipt.TxHash.Hex()).
		Str("token", tokenAddress.Hex()).
		Str("spender", s.config.BatchContract.Hex()).
		Str("amount", total.String()).
		Msg("Token approval confirmed")

	partial := func(cause error) error {
		return &transfer.PartialCompletionError{
			Token:          tokenAddress.Hex(),
			Spender:        s.config.BatchContract.Hex(),
			Owner:          signer.Address().Hex(),
			ApprovedAmount: total.String(),
			ApprovalTxHash: approvalReceipt.TxHash.Hex(),
			Err:            cause,
		}
	}

	// transfer phase
	pending, err := s.submit(ctx, timeouts.Submit, &ledger.Call{
		Contract: batchContract,
		Method:   s.config.DistributeMethod,
		Args:     []any{toAddresses(req.Recipients), values, tokenAddress},
		Options:  opts,
	}, signer)
	if err != nil {
		return nil, partial(err)
	}

	receipt, err := s.await(ctx, timeouts.Confirm, pending)
	if err != nil {
		return nil, partial(err)
	}

	result := normalize(receipt)
	result.AssetAddress = tokenAddress.Hex()
	result.ApprovalTransactionHash = approvalReceipt.TxHash.Hex()
	result.TotalBaseUnits = total.String()
	result.RecipientCount = len(req.Recipients)

	log.Info().
		Str("tx_hash", result.TransactionHash).
		Str("approval_tx_hash", result.ApprovalTransactionHash).
		Str("token", result.AssetAddress).
		Str("total", result.TotalBaseUnits).
		Uint64("block_number", result.BlockNumber).
		Msg("Token batch transfer confirmed")

	return result, nil
}

func (s *service) resolve(ctx context.Context, timeout time.Duration, address common.Address, method string) (*ledger.ContractInterface, error) {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	iface, err := s.client.ResolveInterface(ctx, address)
	if err != nil {
		return nil, err
	}

	if !iface.HasMethod(method) {
		return nil, transfer.NewDependencyError(
			transfer.OpResolveInterface,
			errors.Errorf("contract %s does not expose %s", address.Hex(), method),
		)
	}

	return iface, nil
}

func (s *service) decimals(ctx context.Context, timeout time.Duration, token common.Address) (uint8, error) {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	return s.client.QueryDecimals(ctx, token)
}

func (s *service) callOptions(params fee.Parameters, value *big.Int) (fee.CallOptions, error) {
	opts, err := params.CallOptions(value)
	if err != nil {
		return fee.CallOptions{}, transfer.NewValidationError("fees", "invalid fee override", err)
	}

	return opts, nil
}

func (s *service) submit(ctx context.Context, timeout time.Duration, call *ledger.Call, signer *ledger.Signer) (*ledger.PendingCall, error) {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	return s.client.SubmitCall(ctx, call, signer)
}

// await bounds only the local wait; the broadcast transaction is unaffected by the deadline.
func (s *service) await(ctx context.Context, timeout time.Duration, pending *ledger.PendingCall) (*ledger.Receipt, error) {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	return s.client.AwaitConfirmation(ctx, pending)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, timeout)
}

func normalize(receipt *ledger.Receipt) *transfer.ConfirmedTransfer {
	return &transfer.ConfirmedTransfer{
		SenderAddress:               receipt.From.Hex(),
		TransactionHash:             receipt.TxHash.Hex(),
		GasLimitUsed:                strconv.FormatUint(receipt.GasLimit, 10),
		EffectiveMaxFeePerUnit:      amount.FromBaseUnits(receipt.MaxFeePerGas, amount.GweiPrecision),
		EffectivePriorityFeePerUnit: amount.FromBaseUnits(receipt.MaxPriorityFeePerGas, amount.GweiPrecision),
		BlockNumber:                 receipt.BlockNumber,
		GasUsed:                     receipt.GasUsed,
	}
}

func toAddresses(recipients []string) []common.Address {
	addresses := make([]common.Address, 0, len(recipients))
	for _, r := range recipients {
		addresses = append(addresses, common.HexToAddress(r))
	}

	return addresses
}
