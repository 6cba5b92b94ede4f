package main

import (
	"context"
	"io"
	"slices"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/health-cli/internal/model"
	"github.com/sells-group/health-cli/internal/report"
)

var (
	calendarMonth string
	settingsOn    bool
	settingsOff   bool
	toggleDays    []int
)

var renewalsCmd = &cobra.Command{
	Use:   "renewals",
	Short: "Renewal calendar and reminder settings",
}

var renewalsCalendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "List accounts renewing in a month",
	RunE: func(cmd *cobra.Command, _ []string) error {
		month := calendarMonth
		if month == "" {
			month = model.MonthKey(time.Now())
		}

		s := newStore()
		defer s.Close()
		err := withRetry(cmd.Context(), "load calendar", func(ctx context.Context) error {
			return s.LoadRenewalCalendar(ctx, month)
		})
		if err != nil {
			return eris.Wrap(err, "renewals calendar")
		}

		items := s.Snapshot().Calendar
		return emit(cmd.OutOrStdout(), items, func(w io.Writer) {
			report.WriteCalendar(w, month, items)
		})
	},
}

var renewalsSettingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change renewal reminder settings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if settingsOn && settingsOff {
			return eris.New("renewals settings: --enable and --disable are exclusive")
		}
		for _, d := range toggleDays {
			if !slices.Contains(model.LeadTimeOptions, d) {
				return eris.Errorf("renewals settings: lead time %d not one of 90, 30, 14, 7", d)
			}
		}

		s := newStore()
		defer s.Close()
		if err := withRetry(ctx, "load renewal settings", s.LoadRenewalSettings); err != nil {
			return eris.Wrap(err, "renewals settings")
		}

		if settingsOn || settingsOff {
			enabled := settingsOn
			if err := s.UpdateRenewalSettings(ctx, model.RenewalSettingsPatch{Enabled: &enabled}); err != nil {
				return eris.Wrap(err, "renewals settings")
			}
		}
		for _, d := range toggleDays {
			if err := s.ToggleLeadTime(ctx, d); err != nil {
				return eris.Wrapf(err, "renewals settings: toggle %d", d)
			}
		}

		rs := s.Snapshot().RenewalSettings
		return emit(cmd.OutOrStdout(), rs, func(w io.Writer) {
			report.WriteRenewalSettings(w, rs)
		})
	},
}

func init() {
	renewalsCalendarCmd.Flags().StringVar(&calendarMonth, "month", "", "month as YYYY-MM (default current month)")
	renewalsSettingsCmd.Flags().BoolVar(&settingsOn, "enable", false, "turn reminders on")
	renewalsSettingsCmd.Flags().BoolVar(&settingsOff, "disable", false, "turn reminders off")
	renewalsSettingsCmd.Flags().IntSliceVar(&toggleDays, "toggle", nil, "add or remove a lead time in days (repeatable)")

	renewalsCmd.AddCommand(renewalsCalendarCmd, renewalsSettingsCmd)
	rootCmd.AddCommand(renewalsCmd)
}
