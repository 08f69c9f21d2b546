package ledger

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/go-batchpay/internal/transfer"
)

const (
	eip1559FeeMultiplier       = 2
	defaultReceiptPollInterval = 3 * time.Second
)

// EVMClient implements Client against an EIP-1559 JSON-RPC node.
// It holds no key material and is safe for concurrent use.
type EVMClient struct {
	rpc          *RPCClient
	resolver     Resolver
	pollInterval time.Duration
}

// NewEVMClient wires an RPC client with an interface resolver.
func NewEVMClient(rpc *RPCClient, resolver Resolver, pollInterval time.Duration) *EVMClient {
	if pollInterval <= 0 {
		pollInterval = defaultReceiptPollInterval
	}

	return &EVMClient{
		rpc:          rpc,
		resolver:     resolver,
		pollInterval: pollInterval,
	}
}

// ChainID reports the chain the connected node serves.
func (c *EVMClient) ChainID(ctx context.Context) (*big.Int, error) {
	return c.rpc.ChainID(ctx)
}

// Close releases the node connections.
func (c *EVMClient) Close() {
	c.rpc.Close()
}

// ResolveInterface delegates to the configured resolver.
func (c *EVMClient) ResolveInterface(ctx context.Context, address common.Address) (*ContractInterface, error) {
	iface, err := c.resolver.Resolve(ctx, address)
	if err != nil {
		if transfer.Kind(err) == transfer.KindUnknown {
			return nil, transfer.NewDependencyError(transfer.OpResolveInterface, err)
		}
		return nil, err
	}

	return iface, nil
}

// QueryDecimals calls decimals() on the token.
func (c *EVMClient) QueryDecimals(ctx context.Context, token common.Address) (uint8, error) {
	data, err := ERC20ABI.Pack("decimals")
	if err != nil {
		return 0, errors.Wrap(err, "failed to pack decimals call")
	}

	out, err := c.rpc.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return 0, classify(transfer.OpQueryDecimals, "", err)
	}

	if len(out) == 0 {
		return 0, transfer.NewDependencyError(transfer.OpQueryDecimals, errors.Errorf("%s returned no data for decimals()", token.Hex()))
	}

	var decimals uint8
	if err := ERC20ABI.UnpackIntoInterface(&decimals, "decimals", out); err != nil {
		return 0, transfer.NewDependencyError(transfer.OpQueryDecimals, errors.Wrap(err, "failed to decode decimals"))
	}

	return decimals, nil
}

// SubmitCall packs, prices, signs and broadcasts a call.
// Omitted options are filled from the node; explicit ones are sent untouched.
func (c *EVMClient) SubmitCall(ctx context.Context, call *Call, signer *Signer) (*PendingCall, error) {
	if call == nil || call.Contract == nil {
		return nil, errors.New("call has no contract interface")
	}

	data, err := call.Contract.ABI.Pack(call.Method, call.Args...)
	if err != nil {
		return nil, transfer.NewValidationError("call", "arguments do not match "+call.Method, err)
	}

	from := signer.Address()
	to := call.Contract.Address
	opts := call.Options

	value := new(big.Int)
	if opts.Value != nil {
		value.Set(opts.Value)
	}

	chainID, err := c.rpc.ChainID(ctx)
	if err != nil {
		return nil, classify(transfer.OpSubmit, "", err)
	}

	nonce, err := c.rpc.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, classify(transfer.OpSubmit, "", err)
	}

	tipCap, feeCap, err := c.priceCall(ctx, opts.MaxPriorityFeePerGas, opts.MaxFeePerGas)
	if err != nil {
		return nil, err
	}

	var gasLimit uint64
	if opts.GasLimit != nil {
		gasLimit = *opts.GasLimit
	} else {
		gasLimit, err = c.rpc.EstimateGas(ctx, ethereum.CallMsg{
			From:      from,
			To:        &to,
			Value:     value,
			Data:      data,
			GasFeeCap: feeCap,
			GasTipCap: tipCap,
		})
		if err != nil {
			return nil, classify(transfer.OpSubmit, "", err)
		}
	}

	//nolint:varnamelen // tx is a common abbreviation for transaction
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		To:        &to,
		Value:     value,
		Data:      data,
	})

	signedTx, err := signer.SignTx(tx, chainID)
	if err != nil {
		return nil, err
	}

	txHash := signedTx.Hash()

	// from here on the outcome of a timeout is unknown, so the hash travels with the error
	if err := c.rpc.SendTransaction(ctx, signedTx); err != nil {
		return nil, classify(transfer.OpSubmit, txHash.Hex(), err)
	}

	log.Info().
		Str("tx_hash", txHash.Hex()).
		Str("from", from.Hex()).
		Str("to", to.Hex()).
		Str("method", call.Method).
		Uint64("nonce", nonce).
		Uint64("gas_limit", gasLimit).
		Str("max_fee_per_gas", feeCap.String()).
		Str("max_priority_fee_per_gas", tipCap.String()).
		Msg("Contract call broadcasted")

	return &PendingCall{
		Hash:     txHash,
		From:     from,
		Contract: to,
		Method:   call.Method,
		Tx:       signedTx,
	}, nil
}

// priceCall fills omitted EIP-1559 caps: tip from the node, fee cap as 2*baseFee + tip.
func (c *EVMClient) priceCall(ctx context.Context, tipOverride, feeCapOverride *big.Int) (*big.Int, *big.Int, error) {
	var tipCap *big.Int
	if tipOverride != nil {
		tipCap = new(big.Int).Set(tipOverride)
	} else {
		suggested, err := c.rpc.SuggestGasTipCap(ctx)
		if err != nil {
			return nil, nil, classify(transfer.OpSubmit, "", err)
		}
		tipCap = suggested
		if feeCapOverride != nil && tipCap.Cmp(feeCapOverride) > 0 {
			tipCap = new(big.Int).Set(feeCapOverride)
		}
	}

	if feeCapOverride != nil {
		return tipCap, new(big.Int).Set(feeCapOverride), nil
	}

	header, err := c.rpc.LatestHeader(ctx)
	if err != nil {
		return nil, nil, classify(transfer.OpSubmit, "", err)
	}

	baseFee := header.BaseFee
	if baseFee == nil {
		return nil, nil, transfer.NewDependencyError(transfer.OpSubmit, errors.New("chain does not support EIP-1559 (baseFee is nil)"))
	}

	feeCap := new(big.Int).Add(new(big.Int).Mul(baseFee, big.NewInt(eip1559FeeMultiplier)), tipCap)
	return tipCap, feeCap, nil
}

// AwaitConfirmation polls for the receipt until it appears or ctx ends.
// Transient node errors keep the wait going; they cannot tell us the outcome.
func (c *EVMClient) AwaitConfirmation(ctx context.Context, pending *PendingCall) (*Receipt, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	hash := pending.Hash.Hex()

	for {
		receipt, err := c.rpc.TransactionReceipt(ctx, pending.Hash)
		if err == nil && receipt != nil {
			return c.finalize(ctx, pending, receipt)
		}

		if ctx.Err() != nil {
			return nil, transfer.NewTimeoutError(transfer.OpConfirm, hash, ctx.Err())
		}

		if err != nil && !errors.Is(err, ethereum.NotFound) {
			log.Warn().
				Err(err).
				Str("tx_hash", hash).
				Msg("Failed to poll transaction receipt, will retry until deadline")
		}

		select {
		case <-ctx.Done():
			return nil, transfer.NewTimeoutError(transfer.OpConfirm, hash, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *EVMClient) finalize(ctx context.Context, pending *PendingCall, receipt *types.Receipt) (*Receipt, error) {
	hash := pending.Hash.Hex()

	if receipt.Status != types.ReceiptStatusSuccessful {
		reason := c.replayRevertReason(ctx, pending, receipt.BlockNumber)

		log.Warn().
			Str("tx_hash", hash).
			Str("method", pending.Method).
			Str("reason", reason).
			Msg("Contract call reverted")

		return nil, transfer.NewRevertError(transfer.OpConfirm, hash, reason, nil)
	}

	var blockNumber uint64
	if receipt.BlockNumber != nil {
		blockNumber = receipt.BlockNumber.Uint64()
	}

	return &Receipt{
		TxHash:               pending.Hash,
		From:                 pending.From,
		BlockNumber:          blockNumber,
		GasLimit:             pending.Tx.Gas(),
		GasUsed:              receipt.GasUsed,
		MaxFeePerGas:         pending.Tx.GasFeeCap(),
		MaxPriorityFeePerGas: pending.Tx.GasTipCap(),
		EffectiveGasPrice:    receipt.EffectiveGasPrice,
	}, nil
}

// replayRevertReason re-executes the call at the block that reverted it to recover the reason.
func (c *EVMClient) replayRevertReason(ctx context.Context, pending *PendingCall, blockNumber *big.Int) string {
	const fallback = "execution reverted"

	_, err := c.rpc.CallContract(ctx, pending.Msg(), blockNumber)
	if err == nil {
		return fallback
	}

	if reason, ok := revertReason(err); ok && reason != "" {
		return reason
	}

	return fallback
}
