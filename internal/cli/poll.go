package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/brunte71/mymaintlog/internal/config"
	"github.com/brunte71/mymaintlog/internal/notify"
	"github.com/brunte71/mymaintlog/internal/scheduler"
)

func newPollCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "poll",
		Short: "Run one reminder poll and report dispatch results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := openStore(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			notifyCfg, err := config.LoadNotify(cfg.NotifyConfigPath)
			if err != nil {
				return err
			}
			log := newLogger()
			defer log.Sync()

			sched := scheduler.New(store, notify.LogNotifier(log), notifyCfg, log)
			dispatches, err := sched.Poll(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(dispatches) == 0 {
				fmt.Fprintln(out, "no reminders due")
				return nil
			}
			for _, d := range dispatches {
				if d.Err != nil {
					fmt.Fprintf(out, "%s  %s  %v\n", d.ReminderID, d.Status, d.Err)
					continue
				}
				fmt.Fprintf(out, "%s  %s\n", d.ReminderID, d.Status)
			}
			return nil
		},
	}
}
