// Package health derives the views presentation reads from the store: health-state
// buckets, filtered and sorted account lists, and display formatting. Everything here
// is a pure function of its inputs and is recomputed on every read.
package health

import "github.com/sells-group/health-cli/internal/model"

// HealthyFloor is the fixed score at and above which an account is healthy.
const HealthyFloor = 85.0

// Thresholds are the two company-configurable health boundaries.
type Thresholds struct {
	Critical float64
	AtRisk   float64
}

// DefaultThresholds apply until the company record specifies its own.
var DefaultThresholds = Thresholds{Critical: 40, AtRisk: 70}

// ThresholdsFor returns the company's thresholds, falling back to the defaults for a
// missing company or an unset (zero) value.
func ThresholdsFor(c *model.Company) Thresholds {
	t := DefaultThresholds
	if c == nil {
		return t
	}
	if c.CriticalThreshold > 0 {
		t.Critical = c.CriticalThreshold
	}
	if c.AtRiskThreshold > 0 {
		t.AtRisk = c.AtRiskThreshold
	}
	return t
}

// ScoreToState buckets a composite score.
func ScoreToState(score, critical, atRisk float64) model.HealthState {
	switch {
	case score < critical:
		return model.StateCritical
	case score < atRisk:
		return model.StateAtRisk
	case score < HealthyFloor:
		return model.StateGood
	default:
		return model.StateHealthy
	}
}

// State buckets a score with t.
func (t Thresholds) State(score float64) model.HealthState {
	return ScoreToState(score, t.Critical, t.AtRisk)
}

var labels = map[model.HealthState]string{
	model.StateCritical: "Critical",
	model.StateAtRisk:   "At Risk",
	model.StateGood:     "Good",
	model.StateHealthy:  "Healthy",
}

var colors = map[model.HealthState]string{
	model.StateCritical: "#ef4444",
	model.StateAtRisk:   "#f97316",
	model.StateGood:     "#eab308",
	model.StateHealthy:  "#22c55e",
}

// Label returns the display label of a state.
func Label(s model.HealthState) string {
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}

// Color returns the hex color of a state, or a neutral gray for unknown states.
func Color(s model.HealthState) string {
	if c, ok := colors[s]; ok {
		return c
	}
	return "#94a3b8"
}

// ScoreColor is Color(t.State(score)).
func (t Thresholds) ScoreColor(score float64) string {
	return Color(t.State(score))
}
