package main

import (
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/flemzord/tgnotify/internal/schedule"
)

func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Inspect and trigger scheduled notifications",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List configured schedules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if len(a.cfg.Schedules) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No schedules configured.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSCHEDULE\tBOT\tCHAT")
			for _, s := range a.cfg.Schedules {
				bot := s.Bot
				if bot == "" {
					bot = a.cfg.Default
				}
				chat := s.ChatID
				if chat == "" {
					chat = a.cfg.Bots[bot].ChatID
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Name, s.Schedule, bot, chat)
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "run <name>",
		Short: "Send a scheduled notification now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			s, err := a.scheduler()
			if err != nil {
				return err
			}
			if err := s.RunNow(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ran %s\n", args[0])
			return nil
		},
	})

	return cmd
}

// scheduler registers every configured notification job.
func (a *app) scheduler() (*schedule.Scheduler, error) {
	s := schedule.NewScheduler(a.logger, schedule.WithRecorder(a.metrics))
	jobs, err := schedule.NotificationJobs(a.tg, a.cfg.Schedules)
	if err != nil {
		return nil, err
	}
	for _, j := range jobs {
		if err := s.RegisterJob(j); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
