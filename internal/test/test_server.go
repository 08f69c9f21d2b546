package test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github/chapool/go-batchpay/internal/api"
	"github/chapool/go-batchpay/internal/api/router"
	"github/chapool/go-batchpay/internal/config"
	"github/chapool/go-batchpay/internal/test/mocks"
)

const (
	TestAPIKey        = "test-api-key"
	TestBatchContract = "0x9999999999999999999999999999999999999999"
)

// Fakes are the in-memory collaborators a test server runs against.
type Fakes struct {
	Ledger   *mocks.Ledger
	Oracle   *mocks.Oracle
	Receipts *mocks.ReceiptStore
}

func NewFakes() *Fakes {
	return &Fakes{
		Ledger:   mocks.NewLedger(common.HexToAddress(TestBatchContract)),
		Oracle:   mocks.NewOracle(),
		Receipts: mocks.NewReceiptStore(),
	}
}

// DefaultTestConfig returns the env config with a fixed API key, batch contract and short confirmation timeout.
func DefaultTestConfig() config.Server {
	cfg := config.DefaultServiceConfigFromEnv()

	cfg.Auth.APIKey = TestAPIKey
	cfg.Ledger.BatchContract = TestBatchContract
	cfg.Ledger.ResolverMode = config.ResolverStatic
	cfg.Timeouts.Confirm = 250 * time.Millisecond

	return cfg
}

// WithTestServer returns a fully configured server running against in-memory fakes.
func WithTestServer(t *testing.T, closure func(s *api.Server)) {
	t.Helper()

	WithTestServerConfigurable(t, DefaultTestConfig(), closure)
}

func WithTestServerConfigurable(t *testing.T, config config.Server, closure func(s *api.Server)) {
	t.Helper()

	WithTestServerFakes(t, config, func(s *api.Server, _ *Fakes) {
		t.Helper()
		closure(s)
	})
}

// WithTestServerFakes additionally hands out the fakes for failure injection and call inspection.
func WithTestServerFakes(t *testing.T, config config.Server, closure func(s *api.Server, fakes *Fakes)) {
	t.Helper()

	fakes := NewFakes()
	s := NewTestServer(t, config, fakes)

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if errs := s.Shutdown(ctx); len(errs) > 0 {
			t.Fatalf("Failed to shutdown server: %v", errs)
		}
	}()

	closure(s, fakes)
}

func NewTestServer(t *testing.T, config config.Server, fakes *Fakes) *api.Server {
	t.Helper()

	// sql.Open does not connect, the fake receipt store never touches it
	db, err := sql.Open("postgres", config.Database.ConnectionString())
	if err != nil {
		t.Fatalf("Failed to open database handle: %v", err)
	}

	s, err := api.InitNewServerWithComponents(config, db, fakes.Ledger, fakes.Oracle, fakes.Receipts)
	if err != nil {
		t.Fatalf("Failed to init server: %v", err)
	}

	if err := router.Init(s); err != nil {
		t.Fatalf("Failed to init router: %v", err)
	}

	return s
}
