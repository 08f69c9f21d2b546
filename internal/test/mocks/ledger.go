package mocks

import (
	"context"
	"math/big"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github/chapool/go-batchpay/internal/transfer"
	"github/chapool/go-batchpay/internal/transfer/fee"
	"github/chapool/go-batchpay/internal/transfer/ledger"
)

// Ledger operations recorded by the fake.
const (
	OpResolve  = "resolve"
	OpDecimals = "decimals"
	OpSubmit   = "submit"
	OpConfirm  = "confirm"
)

var (
	DefaultGasLimit       uint64 = 120000
	DefaultMaxFee                = big.NewInt(30_000_000_000)
	DefaultPriorityFee           = big.NewInt(1_500_000_000)
	DefaultBlockNumber    uint64 = 4_200_000
	DefaultGasUsedPercent uint64 = 80
)

// LedgerCall is one recorded interaction with the fake ledger.
type LedgerCall struct {
	Op       string
	Contract common.Address
	Method   string
	Args     []any
	Options  fee.CallOptions
	From     common.Address
	Hash     common.Hash
}

// Ledger is an in-memory ledger.Client. Failures are injected per operation
// (and per method for submit/confirm). Every call is recorded in order.
type Ledger struct {
	mu sync.Mutex

	resolver ledger.Resolver
	nonce    uint64

	Decimals    uint8
	ResolveErr  error
	DecimalsErr error
	SubmitErr   map[string]error
	ConfirmErr  map[string]error

	// BlockConfirm makes AwaitConfirmation wait for ctx to end.
	BlockConfirm map[string]bool

	Calls []LedgerCall
}

var _ ledger.Client = (*Ledger)(nil)

// NewLedger returns a fake ledger whose batch contract lives at batchContract.
func NewLedger(batchContract common.Address) *Ledger {
	return &Ledger{
		resolver:     ledger.NewStaticResolver(batchContract),
		Decimals:     18,
		SubmitErr:    map[string]error{},
		ConfirmErr:   map[string]error{},
		BlockConfirm: map[string]bool{},
	}
}

func (l *Ledger) record(call LedgerCall) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.Calls = append(l.Calls, call)
}

func (l *Ledger) ResolveInterface(ctx context.Context, address common.Address) (*ledger.ContractInterface, error) {
	l.record(LedgerCall{Op: OpResolve, Contract: address})

	if l.ResolveErr != nil {
		return nil, l.ResolveErr
	}

	return l.resolver.Resolve(ctx, address)
}

func (l *Ledger) QueryDecimals(_ context.Context, token common.Address) (uint8, error) {
	l.record(LedgerCall{Op: OpDecimals, Contract: token})

	if l.DecimalsErr != nil {
		return 0, l.DecimalsErr
	}

	return l.Decimals, nil
}

func (l *Ledger) SubmitCall(_ context.Context, call *ledger.Call, signer *ledger.Signer) (*ledger.PendingCall, error) {
	l.mu.Lock()
	nonce := l.nonce
	l.nonce++
	l.mu.Unlock()

	hash := crypto.Keccak256Hash([]byte(call.Method + ":" + strconv.FormatUint(nonce, 10)))

	l.record(LedgerCall{
		Op:       OpSubmit,
		Contract: call.Contract.Address,
		Method:   call.Method,
		Args:     call.Args,
		Options:  call.Options,
		From:     signer.Address(),
		Hash:     hash,
	})

	if err := l.SubmitErr[call.Method]; err != nil {
		return nil, err
	}

	gas := DefaultGasLimit
	if call.Options.GasLimit != nil {
		gas = *call.Options.GasLimit
	}

	feeCap := DefaultMaxFee
	if call.Options.MaxFeePerGas != nil {
		feeCap = call.Options.MaxFeePerGas
	}

	tipCap := DefaultPriorityFee
	if call.Options.MaxPriorityFeePerGas != nil {
		tipCap = call.Options.MaxPriorityFeePerGas
	}

	value := new(big.Int)
	if call.Options.Value != nil {
		value = call.Options.Value
	}

	to := call.Contract.Address
	tx := types.NewTx(&types.DynamicFeeTx{
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Value:     value,
	})

	return &ledger.PendingCall{
		Hash:     hash,
		From:     signer.Address(),
		Contract: call.Contract.Address,
		Method:   call.Method,
		Tx:       tx,
	}, nil
}

func (l *Ledger) AwaitConfirmation(ctx context.Context, pending *ledger.PendingCall) (*ledger.Receipt, error) {
	l.record(LedgerCall{Op: OpConfirm, Contract: pending.Contract, Method: pending.Method, Hash: pending.Hash})

	if l.BlockConfirm[pending.Method] {
		<-ctx.Done()
		return nil, transfer.NewTimeoutError(transfer.OpConfirm, pending.Hash.Hex(), ctx.Err())
	}

	if err := l.ConfirmErr[pending.Method]; err != nil {
		return nil, err
	}

	return &ledger.Receipt{
		TxHash:               pending.Hash,
		From:                 pending.From,
		BlockNumber:          DefaultBlockNumber,
		GasLimit:             pending.Tx.Gas(),
		GasUsed:              pending.Tx.Gas() * DefaultGasUsedPercent / 100,
		MaxFeePerGas:         pending.Tx.GasFeeCap(),
		MaxPriorityFeePerGas: pending.Tx.GasTipCap(),
		EffectiveGasPrice:    pending.Tx.GasFeeCap(),
	}, nil
}

// Ops returns the recorded operation names in order.
func (l *Ledger) Ops() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	ops := make([]string, 0, len(l.Calls))
	for _, c := range l.Calls {
		ops = append(ops, c.Op)
	}

	return ops
}

// Submitted returns the recorded submit calls in order.
func (l *Ledger) Submitted() []LedgerCall {
	l.mu.Lock()
	defer l.mu.Unlock()

	var submitted []LedgerCall
	for _, c := range l.Calls {
		if c.Op == OpSubmit {
			submitted = append(submitted, c)
		}
	}

	return submitted
}
