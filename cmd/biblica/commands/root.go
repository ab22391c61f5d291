// Package commands defines all Cobra CLI commands for the biblica binary.
package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/biblica-labs/biblica-go/internal/audit"
	"github.com/biblica-labs/biblica-go/internal/config"
	"github.com/biblica-labs/biblica-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "biblica",
		Short: "Biblica, a study assistant for the King James Bible",
		Long: `Biblica answers questions about the Scriptures, grounded in the text of
the King James Version. Every answer is assembled from retrieved passages
and cites the verses it relies on.

Run 'biblica setup' once to download and index the corpus, then ask away:

  biblica ask "who led Israel out of Egypt?"
  biblica chat
  biblica serve

Model provider is selected via the MODEL_PROVIDER environment variable
or a YAML config file (~/.biblica/config.yaml).
See 'biblica --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// .env supplements the environment but never overrides it.
			_ = godotenv.Load()

			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.biblica/config.yaml)")

	root.AddCommand(
		NewSetupCmd(),
		NewAskCmd(),
		NewChatCmd(),
		NewServeCmd(),
		NewStatusCmd(),
		NewResetCmd(),
		NewVersionCmd(),
	)

	return root
}
