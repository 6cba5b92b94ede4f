package main

import (
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a health scan across all accounts",
	Long:  "Asks the server to rescore every account and detect anomalies, then reloads the portfolio.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s := newStore()
		defer s.Close()

		err := s.RunScan(cmd.Context())
		if fb := s.Snapshot().ScanFeedback; fb != nil {
			cmd.Println(fb.Message)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
