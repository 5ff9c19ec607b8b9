package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/guilhermexp/LifeBetter-sub001/pkg/materialize"
	"github.com/guilhermexp/LifeBetter-sub001/pkg/model"
	"github.com/guilhermexp/LifeBetter-sub001/pkg/store"
)

func (a *app) editor(st materialize.Store) *materialize.Editor {
	e := materialize.NewEditor(st, a.logger)
	e.Now = nowFunc
	return e
}

func newConfirmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <id>",
		Short: "Move a record from the inbox to the calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd.Context())
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			rec, res, err := a.editor(st).Confirm(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Confirmed %s on %s (%d instances)\n", rec.ID, rec.ScheduledDate, len(res.Inserted))
			return nil
		},
	}
}

func newEditCmd() *cobra.Command {
	var (
		title, details, date, clock, frequency string
		repeat, priority, location, color      string
		notify, category, typ                  string
		duration                               int
		completed, inbox                       bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a record and propagate them to its instances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd.Context())
			flags := cmd.Flags()
			fields := store.Fields{}

			if flags.Changed("title") {
				if strings.TrimSpace(title) == "" {
					return fmt.Errorf("--title must not be empty")
				}
				fields[store.FieldTitle] = title
			}
			if flags.Changed("details") {
				fields[store.FieldDetails] = details
			}
			if flags.Changed("type") {
				t, err := parseType(typ)
				if err != nil {
					return err
				}
				fields[store.FieldType] = t
			}
			if flags.Changed("date") {
				d, err := model.ParseDate(date)
				if err != nil {
					return err
				}
				fields[store.FieldScheduledDate] = d
			}
			if flags.Changed("time") {
				c, err := parseOptionalClock(clock)
				if err != nil {
					return err
				}
				fields[store.FieldStartTime] = c
			}
			if flags.Changed("notify") {
				c, err := parseOptionalClock(notify)
				if err != nil {
					return err
				}
				fields[store.FieldNotificationTime] = c
			}
			if flags.Changed("duration") {
				var d *int
				if duration > 0 {
					d = &duration
				}
				fields[store.FieldDurationMinutes] = d
			}
			if flags.Changed("frequency") {
				f, err := parseFrequency(frequency)
				if err != nil {
					return err
				}
				fields[store.FieldFrequency] = f
			}
			if flags.Changed("repeat") {
				days, err := parseRepeatDays(repeat)
				if err != nil {
					return err
				}
				fields[store.FieldRepeatDays] = days
			}
			if flags.Changed("priority") {
				p, err := parsePriority(priority)
				if err != nil {
					return err
				}
				fields[store.FieldPriority] = p
			}
			if flags.Changed("category") {
				fields[store.FieldCategory] = model.Category(strings.ToLower(category))
			}
			if flags.Changed("location") {
				fields[store.FieldLocation] = location
			}
			if flags.Changed("color") {
				fields[store.FieldColor] = color
			}
			if flags.Changed("completed") {
				fields[store.FieldCompleted] = completed
			}
			if flags.Changed("inbox") {
				fields[store.FieldInboxOnly] = inbox
			}
			if len(fields) == 0 {
				return fmt.Errorf("nothing to change, pass at least one field flag")
			}

			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			rec, res, err := a.editor(st).Edit(cmd.Context(), args[0], fields)
			if err != nil {
				return err
			}
			printRecord(cmd.OutOrStdout(), rec)
			switch {
			case res.Deleted || len(res.Inserted) > 0:
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Regenerated %d instances\n", len(res.Inserted))
			case res.Updated:
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Updated instances")
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&title, "title", "", "Title")
	f.StringVar(&details, "details", "", "Free-form notes")
	f.StringVar(&typ, "type", "", "task, meeting, event or habit")
	f.StringVar(&date, "date", "", "Origin date (yyyy-mm-dd)")
	f.StringVar(&clock, "time", "", "Start time (HH:MM, empty to clear)")
	f.StringVar(&notify, "notify", "", "Reminder time (HH:MM, empty to clear)")
	f.IntVar(&duration, "duration", 0, "Duration in minutes (0 to clear)")
	f.StringVar(&frequency, "frequency", "", "once, daily, weekly, monthly or custom")
	f.StringVar(&repeat, "repeat", "", "Weekdays for weekly records, 0=Sunday (e.g. 1,3,5)")
	f.StringVar(&priority, "priority", "", "high, medium or low")
	f.StringVar(&category, "category", "", "work, personal, health, study, financial or social")
	f.StringVar(&location, "location", "", "Location")
	f.StringVar(&color, "color", "", "Hex color")
	f.BoolVar(&completed, "completed", false, "Mark as completed")
	f.BoolVar(&inbox, "inbox", false, "Move back to (true) or out of (false) the inbox")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record and every instance materialized from it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd.Context())
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if err := a.editor(st).Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func parseOptionalClock(s string) (*model.Clock, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	c, err := model.ParseClock(s)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func parseType(s string) (model.Type, error) {
	switch t := model.Type(strings.ToLower(s)); t {
	case model.TypeTask, model.TypeMeeting, model.TypeEvent, model.TypeHabit:
		return t, nil
	}
	return "", fmt.Errorf("unknown type %q", s)
}

func parseFrequency(s string) (model.Frequency, error) {
	switch f := model.Frequency(strings.ToLower(s)); f {
	case model.FrequencyOnce, model.FrequencyDaily, model.FrequencyWeekly, model.FrequencyMonthly, model.FrequencyCustom:
		return f, nil
	}
	return "", fmt.Errorf("unknown frequency %q", s)
}

func parsePriority(s string) (model.Priority, error) {
	switch p := model.Priority(strings.ToLower(s)); p {
	case model.PriorityHigh, model.PriorityMedium, model.PriorityLow:
		return p, nil
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

func parseRepeatDays(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var days []int
	for _, part := range strings.Split(s, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || d < 0 || d > 6 {
			return nil, fmt.Errorf("invalid weekday %q, use 0 (Sunday) to 6", part)
		}
		days = append(days, d)
	}
	return days, nil
}
