package api

import (
	"database/sql"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/go-batchpay/internal/config"
	"github/chapool/go-batchpay/internal/transfer"
	"github/chapool/go-batchpay/internal/transfer/batch"
	"github/chapool/go-batchpay/internal/transfer/explorer"
	"github/chapool/go-batchpay/internal/transfer/ledger"
	"github/chapool/go-batchpay/internal/transfer/oracle"
	"github/chapool/go-batchpay/internal/transfer/receipt"
)

// PROVIDERS - define here only providers that for various reasons (e.g. cyclic dependency) can't live in their corresponding packages
// or for wrapping providers that only accept sub-configs to prevent the requirement for defining providers for sub-configs.
// https://github.com/google/wire/blob/main/docs/guide.md#defining-providers

// NewDB opens the receipt database. The connection is established lazily.
func NewDB(cfg config.Server) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func NewRPCClient(cfg config.Server) (*ledger.RPCClient, error) {
	return ledger.NewRPCClient(cfg.Ledger.RPCURLs)
}

func NewExplorerClient(cfg config.Server) *explorer.Client {
	return explorer.NewClient(explorer.Config{
		BaseURL:             cfg.Explorer.BaseURL,
		APIKey:              cfg.Explorer.APIKey,
		ChainID:             cfg.Ledger.ChainID,
		Timeout:             cfg.Explorer.Timeout,
		ConsecutiveFailures: cfg.Explorer.BreakerConsecutiveFailures,
		OpenTimeout:         cfg.Explorer.BreakerOpenTimeout,
	})
}

// NewResolver picks the contract interface source. Static mode serves the bundled ABIs,
// explorer mode fetches verified ABIs and caches them.
func NewResolver(cfg config.Server, explorerClient *explorer.Client) (ledger.Resolver, error) { //nolint:ireturn
	switch cfg.Ledger.ResolverMode {
	case config.ResolverExplorer:
		return ledger.NewExplorerResolver(explorerClient, cfg.Ledger.ABICacheSize, cfg.Ledger.ABICacheTTL), nil
	case config.ResolverStatic, "":
		batchContract, err := batchContractAddress(cfg)
		if err != nil {
			return nil, err
		}
		return ledger.NewStaticResolver(batchContract), nil
	default:
		return nil, errors.Errorf("unknown resolver mode %q", cfg.Ledger.ResolverMode)
	}
}

func NewLedgerClient(cfg config.Server, rpc *ledger.RPCClient, resolver ledger.Resolver) *ledger.EVMClient {
	return ledger.NewEVMClient(rpc, resolver, cfg.Ledger.PollInterval)
}

func NewBatchService(cfg config.Server, client ledger.Client) (BatchService, error) { //nolint:ireturn
	batchContract, err := batchContractAddress(cfg)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("batch_contract", batchContract.Hex()).
		Str("distribute_method", cfg.Ledger.DistributeMethod).
		Msg("Batch transfer service configured")

	return batch.NewService(client, batch.Config{
		BatchContract:    batchContract,
		DistributeMethod: cfg.Ledger.DistributeMethod,
		Timeouts: transfer.Timeouts{
			Resolve: cfg.Timeouts.Resolve,
			Submit:  cfg.Timeouts.Submit,
			Confirm: cfg.Timeouts.Confirm,
		},
	}), nil
}

func NewOracleService(explorerClient *explorer.Client) *oracle.ExplorerService {
	return oracle.NewExplorerService(explorerClient)
}

func NewFeeOracle(cfg config.Server, service oracle.Service) *oracle.Reader {
	return oracle.NewReader(service, cfg.Timeouts.Oracle)
}

func NewReceiptStore(db *sql.DB) *receipt.PostgresStore {
	return receipt.NewPostgresStore(db)
}

func batchContractAddress(cfg config.Server) (common.Address, error) {
	if !common.IsHexAddress(cfg.Ledger.BatchContract) {
		return common.Address{}, errors.Errorf("SERVER_LEDGER_BATCH_CONTRACT must be a hex address, got %q", cfg.Ledger.BatchContract)
	}

	return common.HexToAddress(cfg.Ledger.BatchContract), nil
}
