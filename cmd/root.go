package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-batchpay/cmd/db"
	"github/chapool/go-batchpay/cmd/env"
	"github/chapool/go-batchpay/cmd/gas"
	"github/chapool/go-batchpay/cmd/probe"
	"github/chapool/go-batchpay/cmd/server"
	"github/chapool/go-batchpay/cmd/transfer"
	"github/chapool/go-batchpay/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Version: config.GetFormattedBuildArgs(),
	Use:     "app",
	Short:   config.ModuleName,
	Long: fmt.Sprintf(`%v

A stateless batch transfer service for EVM networks written in Go.
Requires configuration through ENV.`, config.ModuleName),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	// attach the subcommands
	rootCmd.AddCommand(
		db.New(),
		env.New(),
		gas.New(),
		probe.New(),
		server.New(),
		transfer.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Failed to execute root command")
		os.Exit(1)
	}
}
