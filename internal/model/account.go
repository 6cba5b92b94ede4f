package model

// HealthState is the derived health bucket of an account.
type HealthState string

const (
	StateCritical HealthState = "critical"
	StateAtRisk   HealthState = "at_risk"
	StateGood     HealthState = "good"
	StateHealthy  HealthState = "healthy"
)

// HealthStates lists the states from worst to best.
var HealthStates = []HealthState{StateCritical, StateAtRisk, StateGood, StateHealthy}

// Tier is the commercial plan of an account.
type Tier string

const (
	TierStarter Tier = "starter"
	TierGrowth  Tier = "growth"
	TierScale   Tier = "scale"
)

// AccountSummary is one row of the account list.
type AccountSummary struct {
	ID                int64       `json:"id" yaml:"id"`
	Name              string      `json:"name" yaml:"name"`
	Tier              Tier        `json:"tier" yaml:"tier"`
	Seats             int         `json:"seats" yaml:"seats"`
	MRR               float64     `json:"mrr" yaml:"mrr"`
	RenewalDate       *Date       `json:"renewal_date" yaml:"renewal_date,omitempty"`
	Composite         float64     `json:"composite" yaml:"composite"`
	TrendDelta        float64     `json:"trend_delta" yaml:"trend_delta"`
	State             HealthState `json:"state" yaml:"state"`
	HasPendingAnomaly bool        `json:"has_pending_anomaly" yaml:"has_pending_anomaly"`
}

// MetricPoint is one day of usage and score history.
type MetricPoint struct {
	Date            Date    `json:"date" yaml:"date"`
	DAU             int     `json:"dau" yaml:"dau"`
	WAU             int     `json:"wau" yaml:"wau"`
	MAU             int     `json:"mau" yaml:"mau"`
	ActiveSeats     int     `json:"active_seats" yaml:"active_seats"`
	FeatureCount    int     `json:"feature_count" yaml:"feature_count"`
	APICalls        int     `json:"api_calls" yaml:"api_calls"`
	SupportTickets  int     `json:"support_tickets" yaml:"support_tickets"`
	Logins          int     `json:"logins" yaml:"logins"`
	Composite       float64 `json:"composite" yaml:"composite"`
	EngagementScore float64 `json:"engagement_score" yaml:"engagement_score"`
	AdoptionScore   float64 `json:"adoption_score" yaml:"adoption_score"`
	HealthScore     float64 `json:"health_score" yaml:"health_score"`
	SupportScore    float64 `json:"support_score" yaml:"support_score"`
}

// Severity grades an anomaly.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// OutreachStatus is the lifecycle of an outreach draft attached to an anomaly.
type OutreachStatus string

const (
	OutreachPending  OutreachStatus = "pending"
	OutreachSent     OutreachStatus = "sent"
	OutreachRejected OutreachStatus = "rejected"
)

// Anomaly is a detected deviation on an account. Explanation and OutreachDraft are nil
// while the server has not generated them yet.
type Anomaly struct {
	ID             int64          `json:"id" yaml:"id"`
	Pattern        string         `json:"pattern" yaml:"pattern"`
	Severity       Severity       `json:"severity" yaml:"severity"`
	Explanation    *string        `json:"explanation" yaml:"explanation,omitempty"`
	OutreachDraft  *string        `json:"outreach_draft" yaml:"outreach_draft,omitempty"`
	OutreachStatus OutreachStatus `json:"outreach_status" yaml:"outreach_status"`
	ZScore         *float64       `json:"z_score" yaml:"z_score,omitempty"`
	DeltaFromPeer  *float64       `json:"delta_from_peer" yaml:"delta_from_peer,omitempty"`
	DetectedAt     Timestamp      `json:"detected_at" yaml:"detected_at"`
}

// AwaitingApproval reports whether the anomaly has a draft waiting for a decision.
func (a Anomaly) AwaitingApproval() bool {
	return a.OutreachStatus == OutreachPending && a.OutreachDraft != nil
}

// ActivityEvent is an entry of the account timeline.
type ActivityEvent struct {
	ID          int64     `json:"id" yaml:"id"`
	EventType   string    `json:"event_type" yaml:"event_type"`
	Description *string   `json:"description" yaml:"description,omitempty"`
	CreatedAt   Timestamp `json:"created_at" yaml:"created_at"`
}

// AccountDetail is the fully loaded view of a single account.
// Metrics are chronological; Anomalies and Events are newest first.
type AccountDetail struct {
	ID              int64           `json:"id" yaml:"id"`
	Name            string          `json:"name" yaml:"name"`
	Tier            Tier            `json:"tier" yaml:"tier"`
	Seats           int             `json:"seats" yaml:"seats"`
	MRR             float64         `json:"mrr" yaml:"mrr"`
	RenewalDate     *Date           `json:"renewal_date" yaml:"renewal_date,omitempty"`
	CSMName         *string         `json:"csm_name" yaml:"csm_name,omitempty"`
	Composite       float64         `json:"composite" yaml:"composite"`
	EngagementScore float64         `json:"engagement_score" yaml:"engagement_score"`
	AdoptionScore   float64         `json:"adoption_score" yaml:"adoption_score"`
	HealthScore     float64         `json:"health_score" yaml:"health_score"`
	SupportScore    float64         `json:"support_score" yaml:"support_score"`
	TrendDelta      float64         `json:"trend_delta" yaml:"trend_delta"`
	State           HealthState     `json:"state" yaml:"state"`
	Metrics         []MetricPoint   `json:"metrics" yaml:"metrics"`
	Anomalies       []Anomaly       `json:"anomalies" yaml:"anomalies"`
	Events          []ActivityEvent `json:"events" yaml:"events"`
}

// Anomaly returns the anomaly with the given id.
func (d *AccountDetail) Anomaly(id int64) (Anomaly, bool) {
	if d == nil {
		return Anomaly{}, false
	}
	for _, a := range d.Anomalies {
		if a.ID == id {
			return a, true
		}
	}
	return Anomaly{}, false
}

// WithOutreachStatus returns a copy of d in which the anomaly with the given id has
// the new status. Other anomalies are carried over untouched. The second result is
// false when no anomaly matched, in which case d itself is returned.
func (d *AccountDetail) WithOutreachStatus(anomalyID int64, status OutreachStatus) (*AccountDetail, bool) {
	if d == nil {
		return nil, false
	}
	idx := -1
	for i, a := range d.Anomalies {
		if a.ID == anomalyID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return d, false
	}
	cp := *d
	cp.Anomalies = make([]Anomaly, len(d.Anomalies))
	copy(cp.Anomalies, d.Anomalies)
	cp.Anomalies[idx].OutreachStatus = status
	return &cp, true
}
