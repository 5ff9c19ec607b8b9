package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guilhermexp/LifeBetter-sub001/pkg/model"
	"github.com/guilhermexp/LifeBetter-sub001/pkg/schedule"
)

// maxRangeDays bounds counts so a typo in a year cannot scan decades.
const maxRangeDays = 366

func newDayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "day [yyyy-mm-dd]",
		Short: "List what occurs on a day (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd.Context())
			day := a.today()
			if len(args) == 1 {
				d, err := model.ParseDate(args[0])
				if err != nil {
					return err
				}
				day = d
			}

			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			recs, err := st.QueryByDateRange(cmd.Context(), a.cfg.UserID, []model.Date{day})
			if err != nil {
				return err
			}
			visible := schedule.VisibleOn(day, recs)
			out := cmd.OutOrStdout()
			if len(visible) == 0 {
				_, _ = fmt.Fprintf(out, "Nothing on %s\n", day)
				return nil
			}
			for _, r := range visible {
				printRecord(out, r)
			}
			return nil
		},
	}
}

func newCountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "counts <from> <to>",
		Short: "Count visible records per day in an inclusive date range",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd.Context())
			from, err := model.ParseDate(args[0])
			if err != nil {
				return err
			}
			to, err := model.ParseDate(args[1])
			if err != nil {
				return err
			}
			if to.Before(from) {
				return fmt.Errorf("end date %s is before start date %s", to, from)
			}
			dates := schedule.DateRange(from, to)
			if len(dates) > maxRangeDays {
				return fmt.Errorf("range of %d days exceeds the limit of %d", len(dates), maxRangeDays)
			}

			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			recs, err := st.QueryByDateRange(cmd.Context(), a.cfg.UserID, dates)
			if err != nil {
				return err
			}
			counts := schedule.CountsByDay(dates, recs)
			for _, d := range dates {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %d\n", d, counts[d])
			}
			return nil
		},
	}
}
