package server

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-batchpay/internal/api"
	"github/chapool/go-batchpay/internal/test"
	"github/chapool/go-batchpay/internal/transfer"
)

func TestCheckLedger(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		require.NoError(t, checkLedger(t.Context(), s))
	})
}

func TestCheckLedgerUnknownMethod(t *testing.T) {
	cfg := test.DefaultTestConfig()
	cfg.Ledger.DistributeMethod = "multisend"

	test.WithTestServerConfigurable(t, cfg, func(s *api.Server) {
		err := checkLedger(t.Context(), s)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "multisend")
	})
}

func TestCheckLedgerResolveFailure(t *testing.T) {
	test.WithTestServerFakes(t, test.DefaultTestConfig(), func(s *api.Server, fakes *test.Fakes) {
		fakes.Ledger.ResolveErr = transfer.NewDependencyError(transfer.OpResolveInterface, errors.New("explorer down"))

		err := checkLedger(t.Context(), s)
		require.Error(t, err)
		assert.Equal(t, transfer.KindDependency, transfer.Kind(err))
	})
}
