package ledger

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github/chapool/go-batchpay/internal/transfer"
)

// node messages meaning the call itself was rejected, not that the node is unreachable
var rejectionMarkers = []string{
	"execution reverted",
	"insufficient funds",
	"gas required exceeds",
	"intrinsic gas too low",
	"max priority fee per gas higher than max fee per gas",
	"max fee per gas less than block base fee",
	"nonce too low",
	"replacement transaction underpriced",
	"invalid sender",
	"exceeds block gas limit",
}

// classify maps an RPC failure during op into the transfer error taxonomy.
func classify(op string, txHash string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return transfer.NewTimeoutError(op, txHash, err)
	}

	if reason, ok := revertReason(err); ok {
		return transfer.NewRevertError(op, txHash, reason, err)
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range rejectionMarkers {
		if strings.Contains(msg, marker) {
			return transfer.NewRevertError(op, txHash, err.Error(), err)
		}
	}

	// 已签名的交易可能已到达节点，只有节点明确的应答才能排除这一点
	if txHash != "" {
		var rpcErr rpc.Error
		if !errors.As(err, &rpcErr) {
			return transfer.NewTimeoutError(op, txHash, err)
		}
	}

	return transfer.NewDependencyError(op, err)
}

// revertReason decodes Error(string) revert data attached to a JSON-RPC error.
func revertReason(err error) (string, bool) {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return "", false
	}

	raw, ok := dataErr.ErrorData().(string)
	if !ok || !strings.HasPrefix(raw, "0x") {
		return err.Error(), true
	}

	data, decodeErr := hexutil.Decode(raw)
	if decodeErr != nil {
		return err.Error(), true
	}

	reason, unpackErr := abi.UnpackRevert(data)
	if unpackErr != nil {
		// custom error selector, keep the raw selector for the caller
		return "execution reverted: " + common.Bytes2Hex(data), true
	}

	return reason, true
}
