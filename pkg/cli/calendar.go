package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/guilhermexp/LifeBetter-sub001/pkg/auth"
	"github.com/guilhermexp/LifeBetter-sub001/pkg/config"
	"github.com/guilhermexp/LifeBetter-sub001/pkg/google"
	"github.com/guilhermexp/LifeBetter-sub001/pkg/index"
	"github.com/guilhermexp/LifeBetter-sub001/pkg/schedule"
)

func newSyncCmd() *cobra.Command {
	var (
		calendarName string
		back, ahead  int
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror confirmed records onto Google Calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd.Context())
			ctx := cmd.Context()
			name := a.cfg.Calendar
			if calendarName != "" {
				name = calendarName
			}
			loc, err := a.cfg.Location()
			if err != nil {
				return err
			}

			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			today := a.today()
			recs, err := st.QueryByDateRange(ctx, a.cfg.UserID, schedule.DateRange(today.AddDays(-back), today.AddDays(ahead)))
			if err != nil {
				return err
			}

			idx, err := index.NewEventIndex()
			if err != nil {
				a.logger.Warn("failed to initialize event index", "error", err)
				idx = nil
			}
			client, err := google.NewClient(ctx, name, idx)
			if err != nil {
				return fmt.Errorf("error creating Google Calendar client: %w", err)
			}
			mirror := google.NewMirror(client, loc, a.logger)

			from := today.AddDays(-back)
			since := time.Date(from.Year, from.Month, from.Day, 0, 0, 0, 0, loc)
			pruned, pruneErr := mirror.Prune(ctx, st, since)
			synced, syncErr := mirror.Sync(ctx, recs)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Synced to %q: %s; pruned %d\n", name, synced, pruned.Deleted)
			if pruneErr != nil {
				return pruneErr
			}
			return syncErr
		},
	}
	cmd.Flags().StringVar(&calendarName, "calendar", "", "Google Calendar name to sync with (overrides config)")
	cmd.Flags().IntVar(&back, "back", 7, "Days before today to include")
	cmd.Flags().IntVar(&ahead, "ahead", 90, "Days after today to include")
	return cmd
}

func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Google Calendar, replacing any stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd.Context())
			if err := auth.Reset(); err != nil {
				return err
			}
			if _, err := auth.GetCalendarService(cmd.Context()); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			path, _ := auth.TokenPath()
			a.logger.Info("authentication successful", "token", path)
			return nil
		},
	}
}

func newSetCalendarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-calendar <name>",
		Short: "Set the default Google Calendar name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd.Context())
			if err := config.SetCalendar(a.configPath, args[0]); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Default calendar set to: %s\n", args[0])
			return nil
		},
	}
}
