// Package model holds the value types exchanged with the account-health API and
// cached by the client store. Values are treated as immutable snapshots: helpers that
// "change" a value return a modified copy.
package model

// AutonomyMode describes how much outreach automation the company has authorized.
type AutonomyMode string

const (
	AutonomyMonitor  AutonomyMode = "monitor"
	AutonomyApproval AutonomyMode = "approval"
	AutonomyExecutor AutonomyMode = "executor"
)

// Valid reports whether m is one of the known autonomy modes.
func (m AutonomyMode) Valid() bool {
	switch m {
	case AutonomyMonitor, AutonomyApproval, AutonomyExecutor:
		return true
	default:
		return false
	}
}

// Company is the singleton configuration record of the tenant.
type Company struct {
	ID                 int64        `json:"id" yaml:"id"`
	Name               string       `json:"name" yaml:"name"`
	OnboardingComplete bool         `json:"onboarding_complete" yaml:"onboarding_complete"`
	AutonomyMode       AutonomyMode `json:"autonomy_mode" yaml:"autonomy_mode"`
	SlackChannel       *string      `json:"slack_channel" yaml:"slack_channel,omitempty"`
	AlertEmail         *string      `json:"alert_email" yaml:"alert_email,omitempty"`
	WeightEngagement   float64      `json:"weight_engagement" yaml:"weight_engagement"`
	WeightAdoption     float64      `json:"weight_adoption" yaml:"weight_adoption"`
	WeightHealth       float64      `json:"weight_health" yaml:"weight_health"`
	WeightSupport      float64      `json:"weight_support" yaml:"weight_support"`
	CriticalThreshold  float64      `json:"critical_threshold" yaml:"critical_threshold"`
	AtRiskThreshold    float64      `json:"at_risk_threshold" yaml:"at_risk_threshold"`
}

// WeightTotal sums the four signal weights. The total is expected to be 100 but the
// client never enforces it; upstream forms validate.
func (c Company) WeightTotal() float64 {
	return c.WeightEngagement + c.WeightAdoption + c.WeightHealth + c.WeightSupport
}

// NeedsOnboarding reports whether the dashboard should route to onboarding.
func (c *Company) NeedsOnboarding() bool {
	return c == nil || !c.OnboardingComplete
}

// CompanyPatch is a partial company update. Nil fields are left unchanged server-side.
type CompanyPatch struct {
	Name              *string       `json:"name,omitempty"`
	AutonomyMode      *AutonomyMode `json:"autonomy_mode,omitempty"`
	SlackChannel      *string       `json:"slack_channel,omitempty"`
	AlertEmail        *string       `json:"alert_email,omitempty"`
	WeightEngagement  *float64      `json:"weight_engagement,omitempty"`
	WeightAdoption    *float64      `json:"weight_adoption,omitempty"`
	WeightHealth      *float64      `json:"weight_health,omitempty"`
	WeightSupport     *float64      `json:"weight_support,omitempty"`
	CriticalThreshold *float64      `json:"critical_threshold,omitempty"`
	AtRiskThreshold   *float64      `json:"at_risk_threshold,omitempty"`
}

// Empty reports whether the patch carries no fields.
func (p CompanyPatch) Empty() bool {
	return p == CompanyPatch{}
}

// OnboardingConfig is the payload submitted when onboarding completes.
type OnboardingConfig struct {
	CompanyName       string       `json:"company_name"`
	AutonomyMode      AutonomyMode `json:"autonomy_mode"`
	SlackChannel      *string      `json:"slack_channel"`
	AlertEmail        *string      `json:"alert_email"`
	WeightEngagement  float64      `json:"weight_engagement"`
	WeightAdoption    float64      `json:"weight_adoption"`
	WeightHealth      float64      `json:"weight_health"`
	WeightSupport     float64      `json:"weight_support"`
	CriticalThreshold float64      `json:"critical_threshold"`
	AtRiskThreshold   float64      `json:"at_risk_threshold"`
}

// DefaultOnboardingConfig returns the onboarding wizard defaults.
func DefaultOnboardingConfig(name string) OnboardingConfig {
	return OnboardingConfig{
		CompanyName:       name,
		AutonomyMode:      AutonomyApproval,
		WeightEngagement:  30,
		WeightAdoption:    25,
		WeightHealth:      25,
		WeightSupport:     20,
		CriticalThreshold: 40,
		AtRiskThreshold:   70,
	}
}

// Ack is the opaque acknowledgement returned by action endpoints.
type Ack struct {
	Status         string         `json:"status"`
	CompanyID      int64          `json:"company_id,omitempty"`
	OutreachStatus OutreachStatus `json:"outreach_status,omitempty"`
}
