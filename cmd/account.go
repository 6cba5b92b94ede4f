package main

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/health-cli/internal/report"
)

var accountCmd = &cobra.Command{
	Use:   "account <id>",
	Short: "Show an account with its scores, anomalies and activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return eris.Wrapf(err, "account: invalid id %q", args[0])
		}

		s := newStore()
		defer s.Close()
		err = withRetry(cmd.Context(), "select account", func(ctx context.Context) error {
			return s.SelectAccount(ctx, id)
		})
		if err != nil {
			return eris.Wrap(err, "account")
		}

		d := s.Snapshot().ActiveDetail()
		if d == nil {
			return eris.Errorf("account: %d not loaded", id)
		}
		return emit(cmd.OutOrStdout(), d, func(w io.Writer) {
			report.WriteAccountDetail(w, d, time.Now())
		})
	},
}

func init() {
	rootCmd.AddCommand(accountCmd)
}
