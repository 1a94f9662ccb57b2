package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brunte71/mymaintlog/internal/purge"
)

func newPurgeUserCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-user <user-id>",
		Short: "Delete a user and every row referencing them, atomically",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			log := newLogger()
			defer log.Sync()

			if err := purge.New(store, log).DeleteUserData(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %s purged\n", args[0])
			return nil
		},
	}
}

func newDeleteFaultCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-fault <fault-id>",
		Short: "Delete a fault report and its attached photos, atomically",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			log := newLogger()
			defer log.Sync()

			if err := purge.New(store, log).DeleteFaultReport(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fault report %s deleted\n", args[0])
			return nil
		},
	}
}
