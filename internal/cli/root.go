package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brunte71/mymaintlog/internal/config"
	"github.com/brunte71/mymaintlog/internal/storage/sqlite"
)

func NewRootCmd(version, buildDate string) *cobra.Command {
	var dbPath string
	root := &cobra.Command{
		Use:           "maintctl",
		Short:         "Maintenance log datastore tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "", "Datastore path (defaults to MAINTLOG_DB_PATH)")

	root.AddCommand(newVersionCmd(version, buildDate))
	root.AddCommand(newImportCmd(&dbPath))
	root.AddCommand(newPollCmd(&dbPath))
	root.AddCommand(newPurgeUserCmd(&dbPath))
	root.AddCommand(newDeleteFaultCmd(&dbPath))
	return root
}

// openStore resolves configuration and opens the datastore handle shared
// by every subcommand. The --db flag overrides the environment.
func openStore(dbPath string) (*sqlite.Store, config.Config, error) {
	cfg := config.Load()
	if dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	store, err := sqlite.Open(cfg.DatabasePath, cfg.BusyTimeout)
	if err != nil {
		return nil, cfg, err
	}
	return store, cfg, nil
}

func newLogger() *zap.Logger {
	log, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return log
}
