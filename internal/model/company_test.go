package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutonomyModeValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode AutonomyMode
		want string
	}{
		{AutonomyMonitor, "monitor"},
		{AutonomyApproval, "approval"},
		{AutonomyExecutor, "executor"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, string(tt.mode))
			assert.True(t, tt.mode.Valid())
		})
	}
	assert.False(t, AutonomyMode("autopilot").Valid())
}

func TestCompany_WeightTotalNotEnforced(t *testing.T) {
	t.Parallel()

	c := Company{WeightEngagement: 50, WeightAdoption: 50, WeightHealth: 50, WeightSupport: 0}
	assert.Equal(t, 150.0, c.WeightTotal())
}

func TestCompany_NeedsOnboarding(t *testing.T) {
	t.Parallel()

	var missing *Company
	assert.True(t, missing.NeedsOnboarding())
	assert.True(t, (&Company{}).NeedsOnboarding())
	assert.False(t, (&Company{OnboardingComplete: true}).NeedsOnboarding())
}

func TestCompany_DecodeNullableChannels(t *testing.T) {
	t.Parallel()

	raw := `{"id":1,"name":"Acme","onboarding_complete":true,"autonomy_mode":"executor",
		"slack_channel":null,"alert_email":"cs@acme.io","weight_engagement":30,
		"weight_adoption":25,"weight_health":25,"weight_support":20,
		"critical_threshold":35,"at_risk_threshold":65}`

	var c Company
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	assert.Nil(t, c.SlackChannel)
	require.NotNil(t, c.AlertEmail)
	assert.Equal(t, "cs@acme.io", *c.AlertEmail)
	assert.Equal(t, AutonomyExecutor, c.AutonomyMode)
	assert.Equal(t, 35.0, c.CriticalThreshold)
}

func TestCompanyPatch_OmitsUnsetFields(t *testing.T) {
	t.Parallel()

	name := "Renamed"
	b, err := json.Marshal(CompanyPatch{Name: &name})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Renamed"}`, string(b))
	assert.True(t, CompanyPatch{}.Empty())
	assert.False(t, CompanyPatch{Name: &name}.Empty())
}

func TestDefaultOnboardingConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultOnboardingConfig("Acme")
	assert.Equal(t, "Acme", cfg.CompanyName)
	assert.Equal(t, 100.0, cfg.WeightEngagement+cfg.WeightAdoption+cfg.WeightHealth+cfg.WeightSupport)
	assert.Equal(t, 40.0, cfg.CriticalThreshold)
	assert.Equal(t, 70.0, cfg.AtRiskThreshold)
}
