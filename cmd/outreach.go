package main

import (
	"context"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/health-cli/internal/store"
)

var outreachAccount int64

var approveCmd = &cobra.Command{
	Use:   "approve <anomaly-id>",
	Short: "Approve and send the outreach drafted for an anomaly",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return decideOutreach(cmd, args[0], "approved", (*store.Store).ApproveOutreach)
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject <anomaly-id>",
	Short: "Reject the outreach drafted for an anomaly",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return decideOutreach(cmd, args[0], "rejected", (*store.Store).RejectOutreach)
	},
}

func decideOutreach(cmd *cobra.Command, arg, verb string, decide func(*store.Store, context.Context, int64) error) error {
	ctx := cmd.Context()
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return eris.Wrapf(err, "outreach: invalid anomaly id %q", arg)
	}

	s := newStore()
	defer s.Close()

	// With the owning account selected the decision is reflected in its detail.
	if outreachAccount > 0 {
		if err := s.SelectAccount(ctx, outreachAccount); err != nil {
			return eris.Wrap(err, "outreach: load account")
		}
	}

	if err := decide(s, ctx, id); err != nil {
		return eris.Wrapf(err, "outreach: anomaly %d not %s", id, verb)
	}
	cmd.Printf("Outreach for anomaly %d %s.\n", id, verb)

	if a, ok := s.Snapshot().ActiveDetail().Anomaly(id); ok {
		cmd.Printf("Status: %s\n", a.OutreachStatus)
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{approveCmd, rejectCmd} {
		c.Flags().Int64Var(&outreachAccount, "account", 0, "account owning the anomaly, to show its updated status")
		rootCmd.AddCommand(c)
	}
}
