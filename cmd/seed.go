package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Regenerate the server's demo data",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s := newStore()
		defer s.Close()
		if err := s.ReseedDemoData(cmd.Context()); err != nil {
			return eris.Wrap(err, "seed")
		}
		cmd.Println("Demo data reseeded.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
