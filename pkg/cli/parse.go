package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/guilhermexp/LifeBetter-sub001/pkg/interpret"
	"github.com/guilhermexp/LifeBetter-sub001/pkg/model"
)

func (a *app) orchestrator(habit bool) *interpret.Orchestrator {
	dialog := interpret.DialogQuickAdd
	if habit {
		dialog = interpret.DialogHabit
	}
	o := interpret.New(dialog)
	o.Language = a.cfg.Language
	o.Now = nowFunc
	return o
}

func newParseCmd() *cobra.Command {
	var habit bool

	cmd := &cobra.Command{
		Use:   "parse <text>",
		Short: "Interpret a sentence and print the detected context as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd.Context())
			ctx := a.orchestrator(habit).Process(strings.Join(args, " "))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(ctx)
		},
	}
	cmd.Flags().BoolVar(&habit, "habit", false, "Interpret as the habit dialog does")
	return cmd
}

func newAddCmd() *cobra.Command {
	var habit bool

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Interpret a sentence and store it in the inbox",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd.Context())
			detected := a.orchestrator(habit).Process(strings.Join(args, " "))

			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			rec, err := st.Insert(cmd.Context(), detected.NewRecord(a.cfg.UserID))
			if err != nil {
				return err
			}
			a.logger.Debug("record added", "id", rec.ID, "rule", detected.Rule, "confidence", detected.Confidence)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", rec.ID)
			printRecord(cmd.OutOrStdout(), rec)
			return nil
		},
	}
	cmd.Flags().BoolVar(&habit, "habit", false, "Store as a habit")
	return cmd
}

func newInboxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inbox",
		Short: "List records waiting for confirmation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd.Context())
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			recs, err := st.Inbox(cmd.Context(), a.cfg.UserID)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Inbox is empty")
				return nil
			}
			for _, r := range recs {
				printRecord(cmd.OutOrStdout(), r)
			}
			return nil
		},
	}
}

// printRecord writes one line per record: id, date, time, type and title.
func printRecord(w io.Writer, r model.TaskRecord) {
	clock := "--:--"
	if r.StartTime != nil {
		clock = r.StartTime.String()
	}
	date := r.ScheduledDate.String()
	if date == "" {
		date = "----------"
	}
	extra := ""
	if f := r.EffectiveFrequency(); f != model.FrequencyOnce {
		extra = " [" + string(f) + "]"
	}
	if r.Location != "" {
		extra += " @ " + r.Location
	}
	_, _ = fmt.Fprintf(w, "%s  %s  %s  %-7s  %s%s\n", r.ID, date, clock, r.Type, r.Title, extra)
}
