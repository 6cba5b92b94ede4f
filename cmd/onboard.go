package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/health-cli/internal/model"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Complete company onboarding",
	RunE: func(cmd *cobra.Command, _ []string) error {
		f := cmd.Flags()
		name, _ := f.GetString("name")
		oc := model.DefaultOnboardingConfig(name)

		if f.Changed("mode") {
			m, _ := f.GetString("mode")
			oc.AutonomyMode = model.AutonomyMode(m)
		}
		if f.Changed("slack") {
			v, _ := f.GetString("slack")
			oc.SlackChannel = &v
		}
		if f.Changed("email") {
			v, _ := f.GetString("email")
			oc.AlertEmail = &v
		}
		if f.Changed("weights") {
			v, _ := f.GetString("weights")
			ws, err := parseWeights(v)
			if err != nil {
				return err
			}
			oc.WeightEngagement, oc.WeightAdoption, oc.WeightHealth, oc.WeightSupport = ws[0], ws[1], ws[2], ws[3]
		}
		if f.Changed("critical") {
			oc.CriticalThreshold, _ = f.GetFloat64("critical")
		}
		if f.Changed("at-risk") {
			oc.AtRiskThreshold, _ = f.GetFloat64("at-risk")
		}

		s := newStore()
		defer s.Close()
		if err := s.CompleteOnboarding(cmd.Context(), oc); err != nil {
			return eris.Wrap(err, "onboard")
		}
		cmd.Printf("Onboarding complete for %s (%s mode).\n", oc.CompanyName, oc.AutonomyMode)
		return nil
	},
}

func init() {
	f := onboardCmd.Flags()
	f.String("name", "", "company name")
	f.String("mode", string(model.AutonomyApproval), "autonomy mode: monitor, approval, executor")
	f.String("slack", "", "slack channel for alerts")
	f.String("email", "", "alert email")
	f.String("weights", "30,25,25,20", "signal weights as engagement,adoption,health,support")
	f.Float64("critical", 40, "critical threshold")
	f.Float64("at-risk", 70, "at-risk threshold")
	_ = onboardCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(onboardCmd)
}
