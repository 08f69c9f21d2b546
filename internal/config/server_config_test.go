package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-batchpay/internal/config"
)

func TestPrintServiceEnv(t *testing.T) {
	config := config.DefaultServiceConfigFromEnv()
	_, err := json.MarshalIndent(config, "", "  ")

	if err != nil {
		t.Fatal(err)
	}
}

func TestSecretsAreNotSerialized(t *testing.T) {
	t.Setenv("SERVER_AUTH_API_KEY", "super-secret-api-key")
	t.Setenv("SERVER_EXPLORER_API_KEY", "super-secret-explorer-key")
	t.Setenv("PGPASSWORD", "super-secret-db-password")

	cfg := config.DefaultServiceConfigFromEnv()
	assert.Equal(t, "super-secret-api-key", cfg.Auth.APIKey)

	b, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "super-secret")
}

func TestLedgerConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_LEDGER_RPC_URLS", " https://a.example , https://b.example,")
	t.Setenv("SERVER_LEDGER_CHAIN_ID", "1")
	t.Setenv("SERVER_LEDGER_RESOLVER_MODE", "explorer")
	t.Setenv("SERVER_TIMEOUTS_CONFIRM", "90s")

	cfg := config.DefaultServiceConfigFromEnv()
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Ledger.RPCURLs)
	assert.Equal(t, int64(1), cfg.Ledger.ChainID)
	assert.Equal(t, config.ResolverExplorer, cfg.Ledger.ResolverMode)
	assert.Equal(t, 90*time.Second, cfg.Timeouts.Confirm)

	t.Setenv("SERVER_LEDGER_RESOLVER_MODE", "bogus")
	cfg = config.DefaultServiceConfigFromEnv()
	assert.Equal(t, config.ResolverStatic, cfg.Ledger.ResolverMode)
}

func TestConnectionString(t *testing.T) {
	db := config.Database{
		Host:     "localhost",
		Port:     5432,
		Username: "user",
		Password: "pass",
		Database: "batchpay",
		AdditionalParams: map[string]string{
			"sslmode":          "require",
			"application_name": "batchpay",
		},
	}

	assert.Equal(t,
		"host=localhost port=5432 user=user password=pass dbname=batchpay application_name=batchpay sslmode=require",
		db.ConnectionString(),
	)

	db.AdditionalParams = nil
	assert.Equal(t,
		"host=localhost port=5432 user=user password=pass dbname=batchpay sslmode=disable",
		db.ConnectionString(),
	)
}

func TestDotEnvLoad(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".env.local")
	require.NoError(t, os.WriteFile(file, []byte("SERVER_LEDGER_CHAIN_ID=137\nSERVER_AUTH_API_KEY=\"quoted\"\n"), 0o600))

	got := map[string]string{}
	err := config.DotEnvLoad(file, func(key string, value string) error {
		got[key] = value
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"SERVER_LEDGER_CHAIN_ID": "137", "SERVER_AUTH_API_KEY": "quoted"}, got)

	// missing files are ignored
	config.DotEnvTryLoad(filepath.Join(t.TempDir(), "missing"), func(string, string) error {
		t.Fatal("must not be called")
		return nil
	})
}
