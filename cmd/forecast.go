package main

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/health-cli/internal/report"
)

var forecastHorizon int

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Show the projected MRR",
	RunE: func(cmd *cobra.Command, _ []string) error {
		switch forecastHorizon {
		case 1, 3, 12:
		default:
			return eris.Errorf("forecast: horizon must be 1, 3 or 12, got %d", forecastHorizon)
		}

		s := newStore()
		defer s.Close()
		err := withRetry(cmd.Context(), "load forecast", func(ctx context.Context) error {
			return s.LoadForecast(ctx, true)
		})
		if err != nil {
			return eris.Wrap(err, "forecast")
		}

		f := s.Snapshot().Forecast
		trimmed := *f
		trimmed.MonthlyProjection = f.Horizon(forecastHorizon)
		return emit(cmd.OutOrStdout(), trimmed, func(w io.Writer) {
			report.WriteForecast(w, f, forecastHorizon)
		})
	},
}

func init() {
	forecastCmd.Flags().IntVar(&forecastHorizon, "horizon", 12, "months to show: 1, 3 or 12")
	rootCmd.AddCommand(forecastCmd)
}
