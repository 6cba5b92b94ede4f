package main

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/health-cli/internal/report"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show portfolio health statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s := newStore()
		defer s.Close()
		if err := withRetry(cmd.Context(), "refresh", s.RefreshAll); err != nil {
			return eris.Wrap(err, "stats")
		}

		st := s.Snapshot().Stats
		return emit(cmd.OutOrStdout(), st, func(w io.Writer) {
			report.WriteStats(w, st)
		})
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
