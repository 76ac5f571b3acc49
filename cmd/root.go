package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/oxo/internal/config"
)

// NewRootCmd returns the root command with every subcommand attached.
func NewRootCmd(cfg *config.AppConfig) *cobra.Command {
	root := &cobra.Command{
		Use:   "oxo",
		Short: "OXO dev server and game API",
		Long: `oxo serves the OXO single-page app with a development proxy that forwards
/api requests to the game backend (rewriting /api to /api/oxo), and runs that
backend itself.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		NewWebCmd(cfg),
		NewServeCmd(cfg),
		NewProxyConfigCmd(cfg),
		NewVersionCmd(),
		NewUpdateCmd(),
	)
	return root
}

// Execute loads configuration from the environment and runs the root command.
func Execute() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := NewRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}
