package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-batchpay/internal/api"
	"github/chapool/go-batchpay/internal/api/router"
	"github/chapool/go-batchpay/internal/config"
	"github/chapool/go-batchpay/internal/util/command"
)

const shutdownTimeout = 30 * time.Second

type Flags struct {
	SkipLedgerCheck bool
}

func New() *cobra.Command {
	var flags Flags

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Starts the server",
		Long: `Starts the batch transfer HTTP server

Requires configuration through ENV
and a fully migrated PostgreSQL database.`,
		Run: func(_ *cobra.Command, _ []string) {
			runServer(flags)
		},
	}

	cmd.Flags().BoolVar(&flags.SkipLedgerCheck, "skip-ledger-check", false, "Don't verify chain id and batch contract on startup.")

	return cmd
}

func runServer(flags Flags) {
	cfg := config.DefaultServiceConfigFromEnv()
	command.InitLogger(cfg)

	s, err := api.InitNewServer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}

	if err := router.Init(s); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize router")
	}

	if flags.SkipLedgerCheck {
		log.Warn().Msg("Skipping ledger check on startup")
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.Resolve)
		err := checkLedger(ctx, s)
		cancel()

		if err != nil {
			log.Fatal().Err(err).Msg("Ledger check failed")
		}
	}

	go func() {
		if err := s.Start(); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				log.Info().Msg("Server closed")
			} else {
				log.Fatal().Err(err).Msg("Failed to start server")
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if errs := s.Shutdown(ctx); len(errs) > 0 {
		log.Fatal().Errs("shutdownErrors", errs).Msg("Failed to gracefully shut down server")
	}
}
