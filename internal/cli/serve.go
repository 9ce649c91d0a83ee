package cli

import (
	"github.com/spf13/cobra"

	"github.com/easyreads/easyreads/internal/config"
	"github.com/easyreads/easyreads/internal/entrypoint"
)

func newServeCommand(version string, loadConfig func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server, the background task workers and the orphan
cleanup schedule. Configuration comes from the environment, for example
PORT, DATABASE_PATH and AUTH_SESSION_SECRET.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(loadConfig(), version)
		},
	}
}
