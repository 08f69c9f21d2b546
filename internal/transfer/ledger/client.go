package ledger

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github/chapool/go-batchpay/internal/transfer/fee"
)

// Client is the capability surface the orchestrator needs from the network.
// Deadlines on ctx bound every suspension point; an expired deadline surfaces as
// transfer.TimeoutError, never as a rejection.
type Client interface {
	// ResolveInterface returns the callable interface of the contract at address.
	ResolveInterface(ctx context.Context, address common.Address) (*ContractInterface, error)

	// SubmitCall signs and broadcasts one contract call with the request-scoped signer.
	SubmitCall(ctx context.Context, call *Call, signer *Signer) (*PendingCall, error)

	// AwaitConfirmation blocks until the call is included or ctx ends.
	// Ending the wait never cancels the broadcast transaction.
	AwaitConfirmation(ctx context.Context, pending *PendingCall) (*Receipt, error)

	// QueryDecimals reads the declared precision of a fungible token.
	QueryDecimals(ctx context.Context, token common.Address) (uint8, error)
}

// ContractInterface is a contract address paired with its ABI.
type ContractInterface struct {
	Address common.Address
	ABI     abi.ABI
}

// HasMethod reports whether the interface declares method.
func (c *ContractInterface) HasMethod(method string) bool {
	_, ok := c.ABI.Methods[method]
	return ok
}

// Call describes one contract invocation.
type Call struct {
	Contract *ContractInterface
	Method   string
	Args     []any
	Options  fee.CallOptions
}

// PendingCall is a broadcast, not yet confirmed, transaction.
type PendingCall struct {
	Hash     common.Hash
	From     common.Address
	Contract common.Address
	Method   string
	Tx       *types.Transaction
}

// Msg rebuilds the call message, used to replay a reverted call for its reason.
func (p *PendingCall) Msg() ethereum.CallMsg {
	to := p.Contract
	return ethereum.CallMsg{
		From:  p.From,
		To:    &to,
		Gas:   p.Tx.Gas(),
		Value: p.Tx.Value(),
		Data:  p.Tx.Data(),
	}
}

// Receipt is a successful inclusion of a PendingCall.
type Receipt struct {
	TxHash               common.Hash
	From                 common.Address
	BlockNumber          uint64
	GasLimit             uint64
	GasUsed              uint64
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
	EffectiveGasPrice    *big.Int
}
