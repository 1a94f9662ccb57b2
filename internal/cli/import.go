package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brunte71/mymaintlog/internal/importer"
)

func newImportCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Import legacy CSV files into the datastore",
		Long: "Reads one CSV file per entity type from <dir> and loads the rows into\n" +
			"the datastore. Rows whose primary key already exists are skipped, so the\n" +
			"command is safe to run more than once.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			log := newLogger()
			defer log.Sync()

			reports, runErr := importer.New(store, log).Run(cmd.Context(), args[0])
			out := cmd.OutOrStdout()
			for _, rep := range reports {
				fmt.Fprintf(out, "%-16s imported=%d skipped=%d failed=%d\n",
					rep.Entity, rep.Imported, rep.Skipped, rep.Failed)
				for _, e := range rep.Errors {
					fmt.Fprintf(out, "  warning: %s\n", e)
				}
			}
			return runErr
		},
	}
}
