package main

import (
	"io"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/health-cli/internal/model"
	"github.com/sells-group/health-cli/internal/report"
)

var (
	accountsState string
	accountsSort  string
	exportPath    string
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List accounts, worst health first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		patch, err := accountsFilter()
		if err != nil {
			return err
		}

		s := newStore()
		defer s.Close()
		if err := withRetry(ctx, "refresh", s.RefreshAll); err != nil {
			return eris.Wrap(err, "accounts")
		}
		s.SetFilter(patch)

		now := time.Now()
		visible := s.Snapshot().VisibleAccounts(now)
		return emit(cmd.OutOrStdout(), visible, func(w io.Writer) {
			report.WriteAccounts(w, visible, now)
		})
	},
}

var accountsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the filtered account list to an Excel workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		patch, err := accountsFilter()
		if err != nil {
			return err
		}

		s := newStore()
		defer s.Close()
		if err := withRetry(ctx, "refresh", s.RefreshAll); err != nil {
			return eris.Wrap(err, "accounts export")
		}
		s.SetFilter(patch)

		now := time.Now()
		visible := s.Snapshot().VisibleAccounts(now)
		if err := report.ExportAccounts(exportPath, visible, now); err != nil {
			return err
		}
		cmd.Printf("Exported %d accounts to %s\n", len(visible), exportPath)
		return nil
	},
}

func accountsFilter() (model.FilterPatch, error) {
	var patch model.FilterPatch
	sf, err := model.ParseStateFilter(accountsState)
	if err != nil {
		return patch, err
	}
	sk, err := model.ParseSortKey(accountsSort)
	if err != nil {
		return patch, err
	}
	patch.StateFilter, patch.SortBy = &sf, &sk
	return patch, nil
}

func init() {
	accountsCmd.PersistentFlags().StringVar(&accountsState, "state", "all", "filter by state: all, critical, at_risk, good, healthy")
	accountsCmd.PersistentFlags().StringVar(&accountsSort, "sort", "score", "sort by: score, renewal")
	accountsExportCmd.Flags().StringVar(&exportPath, "xlsx", "accounts.xlsx", "workbook path")
	accountsCmd.AddCommand(accountsExportCmd)
	rootCmd.AddCommand(accountsCmd)
}
