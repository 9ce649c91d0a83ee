// Package cli defines the easyreads command line: the HTTP server plus
// maintenance commands that share its configuration.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/easyreads/easyreads/internal/config"
)

// NewRootCommand builds the command tree. Running the binary without a
// subcommand starts the server.
func NewRootCommand(version string) *cobra.Command {
	var dbPath string

	loadConfig := func() *config.Config {
		cfg := config.NewConfig()
		if dbPath != "" {
			cfg.Database.Path = dbPath
		}
		return cfg
	}

	serve := newServeCommand(version, loadConfig)

	root := &cobra.Command{
		Use:           "easyreads",
		Short:         "Read public-domain books and annotate them together",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the SQLite database (overrides DATABASE_PATH)")

	root.AddCommand(
		serve,
		newImportBookCommand(loadConfig),
		newCreateUserCommand(loadConfig),
	)
	return root
}
