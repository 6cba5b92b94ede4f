package main

import (
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/health-cli/internal/model"
	"github.com/sells-group/health-cli/internal/report"
)

var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Show or change company configuration",
}

var companyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the company configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s := newStore()
		defer s.Close()
		if err := withRetry(cmd.Context(), "refresh company", s.RefreshCompany); err != nil {
			return eris.Wrap(err, "company show")
		}

		c := s.Snapshot().Company
		return emit(cmd.OutOrStdout(), c, func(w io.Writer) {
			report.WriteCompany(w, c)
		})
	},
}

var companySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update company fields; only flags given are changed",
	RunE: func(cmd *cobra.Command, _ []string) error {
		patch, err := companyPatch(cmd)
		if err != nil {
			return err
		}
		if patch.Empty() {
			return eris.New("company set: no fields given")
		}

		s := newStore()
		defer s.Close()
		c, err := s.SaveCompany(cmd.Context(), patch)
		if err != nil {
			return eris.Wrap(err, "company set")
		}
		return emit(cmd.OutOrStdout(), c, func(w io.Writer) {
			report.WriteCompany(w, c)
		})
	},
}

func companyPatch(cmd *cobra.Command) (model.CompanyPatch, error) {
	var p model.CompanyPatch
	f := cmd.Flags()

	str := func(name string) *string {
		if !f.Changed(name) {
			return nil
		}
		v, _ := f.GetString(name)
		return &v
	}
	num := func(name string) *float64 {
		if !f.Changed(name) {
			return nil
		}
		v, _ := f.GetFloat64(name)
		return &v
	}

	p.Name = str("name")
	p.SlackChannel = str("slack")
	p.AlertEmail = str("email")
	p.CriticalThreshold = num("critical")
	p.AtRiskThreshold = num("at-risk")

	if m := str("mode"); m != nil {
		mode := model.AutonomyMode(*m)
		if !mode.Valid() {
			return p, eris.Errorf("company set: invalid mode %q (monitor, approval, executor)", *m)
		}
		p.AutonomyMode = &mode
	}
	if w := str("weights"); w != nil {
		ws, err := parseWeights(*w)
		if err != nil {
			return p, err
		}
		p.WeightEngagement, p.WeightAdoption, p.WeightHealth, p.WeightSupport = &ws[0], &ws[1], &ws[2], &ws[3]
	}
	return p, nil
}

// parseWeights reads "engagement,adoption,health,support".
func parseWeights(s string) ([4]float64, error) {
	var out [4]float64
	parts := strings.Split(s, ",")
	if len(parts) != len(out) {
		return out, eris.Errorf("weights: want 4 comma-separated values, got %q", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || v < 0 {
			return out, eris.Errorf("weights: invalid value %q", p)
		}
		out[i] = v
	}
	return out, nil
}

func init() {
	f := companySetCmd.Flags()
	f.String("name", "", "company name")
	f.String("mode", "", "autonomy mode: monitor, approval, executor")
	f.String("slack", "", "slack channel for alerts")
	f.String("email", "", "alert email")
	f.String("weights", "", "signal weights as engagement,adoption,health,support")
	f.Float64("critical", 0, "critical threshold")
	f.Float64("at-risk", 0, "at-risk threshold")

	companyCmd.AddCommand(companyShowCmd, companySetCmd)
	rootCmd.AddCommand(companyCmd)
}
