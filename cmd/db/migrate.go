package db

import (
	"database/sql"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-batchpay/internal/config"
	"github/chapool/go-batchpay/internal/util/command"
	dbutil "github/chapool/go-batchpay/internal/util/db"

	// Import postgres driver for database/sql package
	_ "github.com/lib/pq"
)

func newMigrate() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Executes all migrations which are not yet applied.",
		Run: func(_ *cobra.Command, _ []string) {
			withDB(func(cfg config.Server, db *sql.DB) {
				n, err := dbutil.ApplyMigrations(db, cfg.Paths.MigrationsDir)
				if err != nil {
					log.Fatal().Err(err).Msg("Error while applying migrations")
				}

				log.Info().Int("appliedMigrationsCount", n).Msg("Successfully applied migrations")
			})
		},
	}
}

func newRollback() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Reverts the most recently applied migrations.",
		Run: func(_ *cobra.Command, _ []string) {
			withDB(func(cfg config.Server, db *sql.DB) {
				n, err := dbutil.RollbackMigrations(db, cfg.Paths.MigrationsDir, steps)
				if err != nil {
					log.Fatal().Err(err).Msg("Error while rolling back migrations")
				}

				log.Info().Int("revertedMigrationsCount", n).Msg("Successfully rolled back migrations")
			})
		},
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to revert, 0 reverts all.")

	return cmd
}

func newStatus() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Lists migrations which are not yet applied.",
		Run: func(_ *cobra.Command, _ []string) {
			withDB(func(cfg config.Server, db *sql.DB) {
				pending, err := dbutil.PendingMigrations(db, cfg.Paths.MigrationsDir)
				if err != nil {
					log.Fatal().Err(err).Msg("Error while planning migrations")
				}

				log.Info().Strs("pending", pending).Int("pendingMigrationsCount", len(pending)).Msg("Migration status")
			})
		},
	}
}

func withDB(f func(cfg config.Server, db *sql.DB)) {
	cfg := config.DefaultServiceConfigFromEnv()
	command.InitLogger(cfg)

	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	f(cfg, db)
}
