package transfer

import (
	"github.com/spf13/cobra"
	"github/chapool/go-batchpay/internal/util/command"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("transfer",
		newShow(),
	)
}
