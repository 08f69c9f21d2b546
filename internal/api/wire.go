//go:build wireinject

package api

import (
	"database/sql"

	"github.com/google/wire"
	"github/chapool/go-batchpay/internal/config"
	"github/chapool/go-batchpay/internal/metrics"
	"github/chapool/go-batchpay/internal/transfer/ledger"
	"github/chapool/go-batchpay/internal/transfer/oracle"
	"github/chapool/go-batchpay/internal/transfer/receipt"
)

// INJECTORS - https://github.com/google/wire/blob/main/docs/guide.md#injectors

// serviceSet groups the default set of providers that are required for initing a server
var serviceSet = wire.NewSet(
	newServerWithComponents,
	metrics.New,
	NewBatchService,
	feeOracleSet,
)

var feeOracleSet = wire.NewSet(
	NewFeeOracle,
	wire.Bind(new(FeeOracle), new(*oracle.Reader)),
)

// ledgerSet connects to the configured network and explorer
var ledgerSet = wire.NewSet(
	NewRPCClient,
	NewExplorerClient,
	NewResolver,
	NewLedgerClient,
	wire.Bind(new(ledger.Client), new(*ledger.EVMClient)),
	NewOracleService,
	wire.Bind(new(oracle.Service), new(*oracle.ExplorerService)),
)

var receiptSet = wire.NewSet(
	NewReceiptStore,
	wire.Bind(new(ReceiptStore), new(*receipt.PostgresStore)),
)

// InitNewServer returns a new Server instance.
func InitNewServer(
	_ config.Server,
) (*Server, error) {
	wire.Build(serviceSet, ledgerSet, receiptSet, NewDB)
	return new(Server), nil
}

// InitNewServerWithDB returns a new Server instance with the given DB instance.
// All the other components are initialized via go wire according to the configuration.
func InitNewServerWithDB(
	_ config.Server,
	_ *sql.DB,
) (*Server, error) {
	wire.Build(serviceSet, ledgerSet, receiptSet)
	return new(Server), nil
}

// InitNewServerWithComponents returns a new Server instance wired to the given network,
// oracle and receipt store, used to run the API against fakes.
func InitNewServerWithComponents(
	_ config.Server,
	_ *sql.DB,
	_ ledger.Client,
	_ oracle.Service,
	_ ReceiptStore,
) (*Server, error) {
	wire.Build(serviceSet)
	return new(Server), nil
}
