package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/health-cli/internal/tui"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive account health dashboard",
	RunE:  runDashboard,
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	// Log lines would corrupt the alternate screen unless they go to a file.
	if cfg.Log.File == "" {
		zap.ReplaceGlobals(zap.NewNop())
	}

	s := newStore()
	defer s.Close()

	return tui.Run(cmd.Context(), s,
		tui.WithRefreshInterval(cfg.TUI.RefreshInterval()),
		tui.WithLogger(zap.L().Named("tui")),
	)
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
