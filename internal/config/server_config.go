package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github/chapool/go-batchpay/internal/util"
)

// Resolver modes for contract interfaces.
const (
	ResolverStatic   = "static"
	ResolverExplorer = "explorer"
)

type EchoServer struct {
	Debug                          bool
	ListenAddress                  string
	HideInternalServerErrorDetails bool
	BaseURL                        string
	BodyLimit                      string
	EnableCORSMiddleware           bool
	EnableLoggerMiddleware         bool
	EnableRecoverMiddleware        bool
	EnableRequestIDMiddleware      bool
	EnableTrailingSlashMiddleware  bool
}

type LoggerServer struct {
	Level              zerolog.Level
	RequestLevel       zerolog.Level
	LogRequestBody     bool
	LogRequestHeader   bool
	LogRequestQuery    bool
	LogResponseBody    bool
	LogResponseHeader  bool
	LogCaller          bool
	PrettyPrintConsole bool
}

type ManagementServer struct {
	Secret           string `json:"-"` // sensitive
	ReadinessTimeout time.Duration
	LivenessTimeout  time.Duration
}

type AuthServer struct {
	// empty disables the gate, only sensible for local development
	APIKey string `json:"-"` // sensitive
}

// Ledger configures the EVM network the transfers are sent to.
type Ledger struct {
	RPCURLs          []string
	ChainID          int64
	BatchContract    string
	DistributeMethod string
	PollInterval     time.Duration
	ResolverMode     string
	ABICacheSize     int
	ABICacheTTL      time.Duration
}

// Explorer configures the Etherscan compatible API used for fee oracle reads and ABI lookups.
type Explorer struct {
	BaseURL                    string
	APIKey                     string `json:"-"` // sensitive
	Timeout                    time.Duration
	BreakerConsecutiveFailures uint32
	BreakerOpenTimeout         time.Duration
}

// Timeouts bound the remote suspension points of a request.
type Timeouts struct {
	Resolve time.Duration
	Submit  time.Duration
	Confirm time.Duration
	Oracle  time.Duration
}

type Paths struct {
	MigrationsDir string
}

type Server struct {
	Database   Database
	Echo       EchoServer
	Paths      Paths
	Management ManagementServer
	Logger     LoggerServer
	Auth       AuthServer
	Ledger     Ledger
	Explorer   Explorer
	Timeouts   Timeouts
}

// DefaultServiceConfigFromEnv returns the server config as parsed from environment variables
// and their respective defaults defined below.
// We don't expect that ENV_VARs change while we are running our application or our tests
// (and it would be a bad thing to do anyways with parallel testing).
// Do NOT use os.Setenv / os.Unsetenv in tests utilizing DefaultServiceConfigFromEnv()!
func DefaultServiceConfigFromEnv() Server {
	// An `.env.local` file in your project root can override the currently set ENV variables.
	// It is never applied while running "go test", use t.Setenv there.
	if !testing.Testing() {
		DotEnvTryLoad(filepath.Join(util.GetProjectRootDir(), ".env.local"), os.Setenv)
	}

	return Server{
		Database: Database{
			Host:     util.GetEnv("PGHOST", "postgres"),
			Port:     util.GetEnvAsInt("PGPORT", 5432),
			Database: util.GetEnv("PGDATABASE", "batchpay"),
			Username: util.GetEnv("PGUSER", "dbuser"),
			Password: util.GetEnv("PGPASSWORD", ""),
			AdditionalParams: map[string]string{
				"sslmode": util.GetEnv("PGSSLMODE", "disable"),
			},
			MaxOpenConns:    util.GetEnvAsInt("DB_MAX_OPEN_CONNS", 2*runtime.NumCPU()),
			MaxIdleConns:    util.GetEnvAsInt("DB_MAX_IDLE_CONNS", 1),
			ConnMaxLifetime: util.GetEnvAsDuration("DB_CONN_MAX_LIFETIME", 60*time.Second),
		},
		Echo: EchoServer{
			Debug:                          util.GetEnvAsBool("SERVER_ECHO_DEBUG", false),
			ListenAddress:                  util.GetEnv("SERVER_ECHO_LISTEN_ADDRESS", ":8080"),
			HideInternalServerErrorDetails: util.GetEnvAsBool("SERVER_ECHO_HIDE_INTERNAL_SERVER_ERROR_DETAILS", true),
			BaseURL:                        util.GetEnv("SERVER_ECHO_BASE_URL", "http://localhost:8080"),
			BodyLimit:                      util.GetEnv("SERVER_ECHO_BODY_LIMIT", "1M"),
			EnableCORSMiddleware:           util.GetEnvAsBool("SERVER_ECHO_ENABLE_CORS_MIDDLEWARE", true),
			EnableLoggerMiddleware:         util.GetEnvAsBool("SERVER_ECHO_ENABLE_LOGGER_MIDDLEWARE", true),
			EnableRecoverMiddleware:        util.GetEnvAsBool("SERVER_ECHO_ENABLE_RECOVER_MIDDLEWARE", true),
			EnableRequestIDMiddleware:      util.GetEnvAsBool("SERVER_ECHO_ENABLE_REQUEST_ID_MIDDLEWARE", true),
			EnableTrailingSlashMiddleware:  util.GetEnvAsBool("SERVER_ECHO_ENABLE_TRAILING_SLASH_MIDDLEWARE", true),
		},
		Paths: Paths{
			MigrationsDir: util.GetEnv("SERVER_PATHS_MIGRATIONS_DIR", filepath.Join(util.GetProjectRootDir(), "/migrations")),
		},
		Management: ManagementServer{
			Secret:           util.GetEnv("SERVER_MANAGEMENT_SECRET", "mgmt-secret"),
			ReadinessTimeout: util.GetEnvAsDuration("SERVER_MANAGEMENT_READINESS_TIMEOUT", 4*time.Second),
			LivenessTimeout:  util.GetEnvAsDuration("SERVER_MANAGEMENT_LIVENESS_TIMEOUT", 9*time.Second),
		},
		Logger: LoggerServer{
			Level:              util.LogLevelFromString(util.GetEnv("SERVER_LOGGER_LEVEL", zerolog.DebugLevel.String())),
			RequestLevel:       util.LogLevelFromString(util.GetEnv("SERVER_LOGGER_REQUEST_LEVEL", zerolog.DebugLevel.String())),
			LogRequestBody:     util.GetEnvAsBool("SERVER_LOGGER_LOG_REQUEST_BODY", false),
			LogRequestHeader:   util.GetEnvAsBool("SERVER_LOGGER_LOG_REQUEST_HEADER", false),
			LogRequestQuery:    util.GetEnvAsBool("SERVER_LOGGER_LOG_REQUEST_QUERY", false),
			LogResponseBody:    util.GetEnvAsBool("SERVER_LOGGER_LOG_RESPONSE_BODY", false),
			LogResponseHeader:  util.GetEnvAsBool("SERVER_LOGGER_LOG_RESPONSE_HEADER", false),
			LogCaller:          util.GetEnvAsBool("SERVER_LOGGER_LOG_CALLER", false),
			PrettyPrintConsole: util.GetEnvAsBool("SERVER_LOGGER_PRETTY_PRINT_CONSOLE", false),
		},
		Auth: AuthServer{
			APIKey: util.GetEnv("SERVER_AUTH_API_KEY", ""),
		},
		Ledger: Ledger{
			RPCURLs:          util.GetEnvAsStringArrTrimmed("SERVER_LEDGER_RPC_URLS", []string{"http://localhost:8545"}),
			ChainID:          util.GetEnvAsInt64("SERVER_LEDGER_CHAIN_ID", 11155111),
			BatchContract:    util.GetEnv("SERVER_LEDGER_BATCH_CONTRACT", ""),
			DistributeMethod: util.GetEnv("SERVER_LEDGER_DISTRIBUTE_METHOD", "batchTransfer"),
			PollInterval:     util.GetEnvAsDuration("SERVER_LEDGER_POLL_INTERVAL", 3*time.Second),
			ResolverMode:     util.GetEnvEnum("SERVER_LEDGER_RESOLVER_MODE", ResolverStatic, []string{ResolverStatic, ResolverExplorer}),
			ABICacheSize:     util.GetEnvAsInt("SERVER_LEDGER_ABI_CACHE_SIZE", 256),
			ABICacheTTL:      util.GetEnvAsDuration("SERVER_LEDGER_ABI_CACHE_TTL", time.Hour),
		},
		Explorer: Explorer{
			BaseURL:                    util.GetEnv("SERVER_EXPLORER_BASE_URL", "https://api.etherscan.io/v2/api"),
			APIKey:                     util.GetEnv("SERVER_EXPLORER_API_KEY", ""),
			Timeout:                    util.GetEnvAsDuration("SERVER_EXPLORER_TIMEOUT", 10*time.Second),
			BreakerConsecutiveFailures: util.GetEnvAsUint32("SERVER_EXPLORER_BREAKER_CONSECUTIVE_FAILURES", 5),
			BreakerOpenTimeout:         util.GetEnvAsDuration("SERVER_EXPLORER_BREAKER_OPEN_TIMEOUT", 30*time.Second),
		},
		Timeouts: Timeouts{
			Resolve: util.GetEnvAsDuration("SERVER_TIMEOUTS_RESOLVE", 15*time.Second),
			Submit:  util.GetEnvAsDuration("SERVER_TIMEOUTS_SUBMIT", 30*time.Second),
			Confirm: util.GetEnvAsDuration("SERVER_TIMEOUTS_CONFIRM", 3*time.Minute),
			Oracle:  util.GetEnvAsDuration("SERVER_TIMEOUTS_ORACLE", 10*time.Second),
		},
	}
}
