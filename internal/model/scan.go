package model

import "fmt"

// ScanSummary reports what a server-side scan did.
type ScanSummary struct {
	AccountsScanned        int        `json:"accounts_scanned" yaml:"accounts_scanned"`
	HealthScoresCreated    int        `json:"health_scores_created" yaml:"health_scores_created"`
	HealthScoresUpdated    int        `json:"health_scores_updated" yaml:"health_scores_updated"`
	AnomaliesCreated       int        `json:"anomalies_created" yaml:"anomalies_created"`
	AnomaliesSkippedRecent int        `json:"anomalies_skipped_recent" yaml:"anomalies_skipped_recent"`
	AlertsCreated          int        `json:"alerts_created" yaml:"alerts_created"`
	RenewalAlertsCreated   *int       `json:"renewal_alerts_created,omitempty" yaml:"renewal_alerts_created,omitempty"`
	OutreachAutoSent       int        `json:"outreach_auto_sent" yaml:"outreach_auto_sent"`
	ScanCompletedAt        *Timestamp `json:"scan_completed_at" yaml:"scan_completed_at,omitempty"`
}

// TotalAlerts adds renewal alerts (when reported) to the base alert count.
func (s ScanSummary) TotalAlerts() int {
	total := s.AlertsCreated
	if s.RenewalAlertsCreated != nil {
		total += *s.RenewalAlertsCreated
	}
	return total
}

// Message renders the summary shown after a successful scan.
func (s ScanSummary) Message() string {
	msg := fmt.Sprintf("Scanned %d accounts. %d new scores, %d refreshed. %d anomalies, %d alerts",
		s.AccountsScanned, s.HealthScoresCreated, s.HealthScoresUpdated, s.AnomaliesCreated, s.TotalAlerts())
	if s.AnomaliesSkippedRecent > 0 {
		msg += fmt.Sprintf(", %d skipped (cooldown)", s.AnomaliesSkippedRecent)
	}
	if s.OutreachAutoSent > 0 {
		msg += fmt.Sprintf(", %d outreach auto-sent", s.OutreachAutoSent)
	}
	return msg + "."
}

// ScanResponse wraps the summary returned by POST /api/run-scan.
type ScanResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Summary ScanSummary `json:"summary"`
}

// FeedbackKind classifies scan feedback.
type FeedbackKind string

const (
	FeedbackSuccess FeedbackKind = "success"
	FeedbackError   FeedbackKind = "error"
)

// ScanFeedback is the transient outcome message of the last scan.
type ScanFeedback struct {
	Kind    FeedbackKind `json:"kind" yaml:"kind"`
	Message string       `json:"message" yaml:"message"`
}
