package transfer

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-batchpay/internal/config"
	"github/chapool/go-batchpay/internal/transfer/receipt"
	"github/chapool/go-batchpay/internal/util/command"

	// Import postgres driver for database/sql package
	_ "github.com/lib/pq"
)

func newShow() *cobra.Command {
	return &cobra.Command{
		Use:   "show <tx-hash>",
		Short: "Prints the stored receipt of a confirmed transfer",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runShow(cmd.Context(), args[0])
		},
	}
}

func runShow(ctx context.Context, txHash string) {
	cfg := config.DefaultServiceConfigFromEnv()
	command.InitLogger(cfg)

	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	rec, err := receipt.NewPostgresStore(db).GetByTXHash(ctx, txHash)
	if err != nil {
		if errors.Is(err, receipt.ErrNotFound) {
			log.Fatal().Str("tx_hash", txHash).Msg("No receipt stored for transaction")
		}
		log.Fatal().Err(err).Msg("Failed to load receipt")
	}

	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal receipt")
	}

	fmt.Println(string(out))
}
