package ledger

import (
	"bytes"
	"context"
	_ "embed"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/go-batchpay/internal/transfer"
)

var (
	//go:embed abi/batch_transfer.json
	batchTransferABIJSON []byte

	//go:embed abi/erc20.json
	erc20ABIJSON []byte
)

// BatchTransferABI is the bundled interface of the batch distribution contract.
var BatchTransferABI = mustParseABI(batchTransferABIJSON)

// ERC20ABI is the bundled interface of a fungible token.
var ERC20ABI = mustParseABI(erc20ABIJSON)

func mustParseABI(raw []byte) abi.ABI {
	parsed, err := abi.JSON(bytes.NewReader(raw))
	if err != nil {
		panic(errors.Wrap(err, "failed to parse bundled ABI"))
	}
	return parsed
}

// Resolver looks up the call interface of a contract.
type Resolver interface {
	Resolve(ctx context.Context, address common.Address) (*ContractInterface, error)
}

// StaticResolver serves interfaces bundled at build time: the batch contract gets
// its own ABI, every other address is treated as a fungible token.
type StaticResolver struct {
	batchContract common.Address
}

func NewStaticResolver(batchContract common.Address) *StaticResolver {
	return &StaticResolver{batchContract: batchContract}
}

func (r *StaticResolver) Resolve(_ context.Context, address common.Address) (*ContractInterface, error) {
	if address == r.batchContract {
		return &ContractInterface{Address: address, ABI: BatchTransferABI}, nil
	}

	return &ContractInterface{Address: address, ABI: ERC20ABI}, nil
}

// ABISource fetches a verified contract ABI as JSON text.
type ABISource interface {
	ContractABI(ctx context.Context, address common.Address) (string, error)
}

// ExplorerResolver fetches verified ABIs from a block explorer and keeps them for ttl.
// Expired entries are dropped, a failed lookup is never answered from stale data.
type ExplorerResolver struct {
	source ABISource
	cache  *expirable.LRU[common.Address, *ContractInterface]
}

func NewExplorerResolver(source ABISource, size int, ttl time.Duration) *ExplorerResolver {
	return &ExplorerResolver{
		source: source,
		cache:  expirable.NewLRU[common.Address, *ContractInterface](size, nil, ttl),
	}
}

func (r *ExplorerResolver) Resolve(ctx context.Context, address common.Address) (*ContractInterface, error) {
	if iface, ok := r.cache.Get(address); ok {
		return iface, nil
	}

	raw, err := r.source.ContractABI(ctx, address)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, transfer.NewTimeoutError(transfer.OpResolveInterface, "", err)
		}
		return nil, transfer.NewDependencyError(transfer.OpResolveInterface, errors.Wrapf(err, "failed to fetch ABI of %s", address.Hex()))
	}

	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		return nil, transfer.NewDependencyError(transfer.OpResolveInterface, errors.Wrapf(err, "explorer returned an unparsable ABI for %s", address.Hex()))
	}

	iface := &ContractInterface{Address: address, ABI: parsed}
	r.cache.Add(address, iface)

	log.Debug().
		Str("address", address.Hex()).
		Int("methods", len(parsed.Methods)).
		Msg("Resolved contract interface from explorer")

	return iface, nil
}
