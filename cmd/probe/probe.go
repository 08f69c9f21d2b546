package probe

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-batchpay/internal/api/handlers/common"
	"github/chapool/go-batchpay/internal/config"
	"github/chapool/go-batchpay/internal/transfer/receipt"
	"github/chapool/go-batchpay/internal/util/command"

	// Import postgres driver for database/sql package
	_ "github.com/lib/pq"
)

const (
	verboseFlag string = "verbose"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("probe",
		newLiveness(),
		newReadiness(),
	)
}

func newLiveness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liveness",
		Short: "Runs liveness probes",
		Long: `Runs the same probes as /-/healthy without starting the server.
Exits with code 1 if any probe fails.`,
		Run: func(cmd *cobra.Command, _ []string) {
			verbose, _ := cmd.Flags().GetBool(verboseFlag)
			cfg := config.DefaultServiceConfigFromEnv()
			runProbe(cmd.Context(), cfg, cfg.Management.LivenessTimeout, verbose)
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "Show verbose output.")

	return cmd
}

func newReadiness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Runs readiness probes",
		Long: `Runs the same probes as /-/ready without starting the server.
Exits with code 1 if any probe fails.`,
		Run: func(cmd *cobra.Command, _ []string) {
			verbose, _ := cmd.Flags().GetBool(verboseFlag)
			cfg := config.DefaultServiceConfigFromEnv()
			runProbe(cmd.Context(), cfg, cfg.Management.ReadinessTimeout, verbose)
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "Show verbose output.")

	return cmd
}

func runProbe(ctx context.Context, cfg config.Server, timeout time.Duration, verbose bool) {
	command.InitLogger(cfg)

	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	errs := common.ProbeReadiness(ctx, receipt.NewPostgresStore(db), timeout)

	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "Probe error: %v\n", err)
		}
		db.Close()
		os.Exit(1)
	}

	if verbose {
		fmt.Println("Probes succeeded.")
	}
}
