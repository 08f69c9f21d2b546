package gas

import (
	"context"
	"fmt"

	"github.com/go-openapi/swag"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-batchpay/internal/api"
	"github/chapool/go-batchpay/internal/config"
	"github/chapool/go-batchpay/internal/types"
	"github/chapool/go-batchpay/internal/util/command"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "gas",
		Short: "Prints the current fee tiers",
		Long: `Reads the fee oracle once and prints low, market and aggressive
fee per gas together with the base fee, all in gwei.`,
		Run: func(cmd *cobra.Command, _ []string) {
			runGas(cmd.Context())
		},
	}
}

func runGas(ctx context.Context) {
	cfg := config.DefaultServiceConfigFromEnv()
	command.InitLogger(cfg)

	reader := api.NewFeeOracle(cfg, api.NewOracleService(api.NewExplorerClient(cfg)))

	estimate, err := reader.Estimate(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read fee oracle")
	}

	out, err := json.MarshalIndent(&types.FeeEstimateResponse{
		Data: &types.FeeEstimate{
			Low:        swag.String(estimate.Low),
			Market:     swag.String(estimate.Market),
			Aggressive: swag.String(estimate.Aggressive),
			BaseFee:    swag.String(estimate.BaseFee),
		},
	}, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal fee estimate")
	}

	fmt.Println(string(out))
}
