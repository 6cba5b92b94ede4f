package model

// Stats aggregates counts and averages across all accounts.
type Stats struct {
	TotalAccounts    int        `json:"total_accounts" yaml:"total_accounts"`
	CriticalCount    int        `json:"critical_count" yaml:"critical_count"`
	AtRiskCount      int        `json:"at_risk_count" yaml:"at_risk_count"`
	GoodCount        int        `json:"good_count" yaml:"good_count"`
	HealthyCount     int        `json:"healthy_count" yaml:"healthy_count"`
	AvgHealth        float64    `json:"avg_health" yaml:"avg_health"`
	TotalMRR         float64    `json:"total_mrr" yaml:"total_mrr"`
	PendingApprovals int        `json:"pending_approvals" yaml:"pending_approvals"`
	LastScan         *Timestamp `json:"last_scan" yaml:"last_scan,omitempty"`
}

// RevenueForecastPoint is one month of projected MRR.
type RevenueForecastPoint struct {
	MonthStart   Date    `json:"month_start" yaml:"month_start"`
	Label        string  `json:"label" yaml:"label"`
	ProjectedMRR float64 `json:"projected_mrr" yaml:"projected_mrr"`
}

// RevenueForecast is the 12-month MRR projection.
type RevenueForecast struct {
	CurrentMRR              float64                `json:"current_mrr" yaml:"current_mrr"`
	ProjectedMRREnd12m      float64                `json:"projected_mrr_end_12m" yaml:"projected_mrr_end_12m"`
	ProjectedRevenue12m     float64                `json:"projected_revenue_12m" yaml:"projected_revenue_12m"`
	AverageMonthlyGrowthPct float64                `json:"average_monthly_growth_pct" yaml:"average_monthly_growth_pct"`
	MonthlyProjection       []RevenueForecastPoint `json:"monthly_projection" yaml:"monthly_projection"`
	AssumptionsNote         string                 `json:"assumptions_note" yaml:"assumptions_note"`
}

// Horizon returns the first months of the projection (1, 3 or 12 in the dashboard).
// The returned slice shares no backing array with the forecast.
func (f RevenueForecast) Horizon(months int) []RevenueForecastPoint {
	if months <= 0 {
		return nil
	}
	if months > len(f.MonthlyProjection) {
		months = len(f.MonthlyProjection)
	}
	out := make([]RevenueForecastPoint, months)
	copy(out, f.MonthlyProjection[:months])
	return out
}

// HorizonLabel names a forecast horizon the way the dashboard does.
func HorizonLabel(months int) string {
	switch months {
	case 1:
		return "Next Month"
	case 3:
		return "Next 3 Months"
	default:
		return "Annual (12 Months)"
	}
}
