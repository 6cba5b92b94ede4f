// Package demo is an in-memory implementation of the account-health API. It backs
// the demo-server command and the end-to-end tests of the client store.
package demo

import (
	"cmp"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/sells-group/health-cli/internal/health"
	"github.com/sells-group/health-cli/internal/model"
)

// Signals are the four sub-scores of one day, each 0..100.
type signals struct {
	engagement, adoption, health, support float64
}

type account struct {
	summary model.AccountSummary
	profile profile
	csm     string
	days    []model.MetricPoint
	signals []signals
}

type dataset struct {
	company   model.Company
	accounts  []*account
	anomalies []model.Anomaly
	events    map[int64][]model.ActivityEvent
	settings  model.RenewalSettings
	lastScan  *model.Timestamp

	rng     *rand.Rand
	nextID  int64
	anomaly map[int64]int64 // anomaly id -> account id
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (d *dataset) id() int64 {
	d.nextID++
	return d.nextID
}

func (d *dataset) thresholds() health.Thresholds {
	return health.ThresholdsFor(&d.company)
}

// composite weighs a day's signals with the company weights.
func (d *dataset) composite(s signals) float64 {
	c := d.company
	total := c.WeightTotal()
	if total == 0 {
		return 0
	}
	return (s.engagement*c.WeightEngagement + s.adoption*c.WeightAdoption +
		s.health*c.WeightHealth + s.support*c.WeightSupport) / total
}

func (d *dataset) mean(ss []signals) (signals, float64) {
	if len(ss) == 0 {
		return signals{}, 0
	}
	var sum signals
	for _, s := range ss {
		sum.engagement += s.engagement
		sum.adoption += s.adoption
		sum.health += s.health
		sum.support += s.support
	}
	n := float64(len(ss))
	avg := signals{sum.engagement / n, sum.adoption / n, sum.health / n, sum.support / n}
	return avg, d.composite(avg)
}

// scoreWindow is how many trailing days the current score averages.
const scoreWindow = 7

// rescore recomputes an account's summary from its signal history: composite over the
// trailing window, trend as that window against the one before it.
func (d *dataset) rescore(a *account) {
	_, composite := d.mean(a.signals[max(0, len(a.signals)-scoreWindow):])

	trend := 0.0
	if n := len(a.signals); n >= 2*scoreWindow {
		_, last := d.mean(a.signals[n-scoreWindow:])
		_, prior := d.mean(a.signals[n-2*scoreWindow:n-scoreWindow])
		trend = last - prior
	}

	a.summary.Composite = round1(composite)
	a.summary.TrendDelta = round1(trend)
	a.summary.State = d.thresholds().State(a.summary.Composite)
	a.summary.HasPendingAnomaly = d.hasPending(a.summary.ID)

	for i := range a.days {
		avg := a.signals[i]
		a.days[i].EngagementScore = round1(avg.engagement)
		a.days[i].AdoptionScore = round1(avg.adoption)
		a.days[i].HealthScore = round1(avg.health)
		a.days[i].SupportScore = round1(avg.support)
		a.days[i].Composite = round1(d.composite(avg))
	}
}

func (d *dataset) hasPending(accountID int64) bool {
	for _, an := range d.anomalies {
		if d.anomaly[an.ID] == accountID && an.OutreachStatus == model.OutreachPending {
			return true
		}
	}
	return false
}

func (d *dataset) find(id int64) *account {
	for _, a := range d.accounts {
		if a.summary.ID == id {
			return a
		}
	}
	return nil
}

var stateOrder = map[model.HealthState]int{
	model.StateCritical: 0,
	model.StateAtRisk:   1,
	model.StateGood:     2,
	model.StateHealthy:  3,
}

// summaries lists accounts worst state first, then by ascending score.
func (d *dataset) summaries() []model.AccountSummary {
	out := make([]model.AccountSummary, 0, len(d.accounts))
	for _, a := range d.accounts {
		out = append(out, a.summary)
	}
	slices.SortStableFunc(out, func(x, y model.AccountSummary) int {
		if c := cmp.Compare(stateOrder[x.State], stateOrder[y.State]); c != 0 {
			return c
		}
		return cmp.Compare(x.Composite, y.Composite)
	})
	return out
}

func (d *dataset) detail(id int64) (*model.AccountDetail, bool) {
	a := d.find(id)
	if a == nil {
		return nil, false
	}
	s := a.summary
	var last signals
	if n := len(a.signals); n > 0 {
		last, _ = d.mean(a.signals[max(0, n-scoreWindow):])
	}
	csm := a.csm

	var anomalies []model.Anomaly
	for i := len(d.anomalies) - 1; i >= 0 && len(anomalies) < 10; i-- {
		if d.anomaly[d.anomalies[i].ID] == id {
			anomalies = append(anomalies, d.anomalies[i])
		}
	}
	events := slices.Clone(d.events[id])
	slices.Reverse(events)
	if len(events) > 50 {
		events = events[:50]
	}

	return &model.AccountDetail{
		ID:              s.ID,
		Name:            s.Name,
		Tier:            s.Tier,
		Seats:           s.Seats,
		MRR:             s.MRR,
		RenewalDate:     s.RenewalDate,
		CSMName:         &csm,
		Composite:       s.Composite,
		EngagementScore: round1(last.engagement),
		AdoptionScore:   round1(last.adoption),
		HealthScore:     round1(last.health),
		SupportScore:    round1(last.support),
		TrendDelta:      s.TrendDelta,
		State:           s.State,
		Metrics:         slices.Clone(a.days[max(0, len(a.days)-30):]),
		Anomalies:       nonNil(anomalies),
		Events:          nonNil(events),
	}, true
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (d *dataset) stats() model.Stats {
	var st model.Stats
	var sum float64
	for _, a := range d.accounts {
		sum += a.summary.Composite
		st.TotalMRR += a.summary.MRR
		switch a.summary.State {
		case model.StateCritical:
			st.CriticalCount++
		case model.StateAtRisk:
			st.AtRiskCount++
		case model.StateGood:
			st.GoodCount++
		default:
			st.HealthyCount++
		}
	}
	for _, an := range d.anomalies {
		if an.OutreachStatus == model.OutreachPending {
			st.PendingApprovals++
		}
	}
	st.TotalAccounts = len(d.accounts)
	if st.TotalAccounts > 0 {
		st.AvgHealth = round1(sum / float64(st.TotalAccounts))
	}
	st.LastScan = d.lastScan
	return st
}

var (
	driftByState = map[model.HealthState]float64{
		model.StateCritical: -0.015,
		model.StateAtRisk:   -0.008,
		model.StateGood:     0.004,
		model.StateHealthy:  0.008,
	}
	renewalFactorByState = map[model.HealthState]float64{
		model.StateCritical: 0.78,
		model.StateAtRisk:   0.90,
		model.StateGood:     1.02,
		model.StateHealthy:  1.06,
	}
)

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// forecast projects MRR twelve months ahead: each account drifts monthly by its
// state and is scaled once more in its renewal month.
func (d *dataset) forecast(now time.Time) model.RevenueForecast {
	if len(d.accounts) == 0 {
		return model.RevenueForecast{
			MonthlyProjection: []model.RevenueForecastPoint{},
			AssumptionsNote:   "No accounts available to forecast.",
		}
	}

	base := monthStart(now)
	projected := make([]float64, len(d.accounts))
	current := 0.0
	for i, a := range d.accounts {
		projected[i] = a.summary.MRR
		current += a.summary.MRR
	}

	points := make([]model.RevenueForecastPoint, 0, 12)
	annual := 0.0
	for m := 1; m <= 12; m++ {
		month := base.AddDate(0, m, 0)
		total := 0.0
		for i, a := range d.accounts {
			st := a.summary.State
			projected[i] *= 1 + driftByState[st]
			if r := a.summary.RenewalDate; r != nil && monthStart(r.Time).Equal(month) {
				projected[i] *= renewalFactorByState[st]
			}
			projected[i] = math.Max(projected[i], 0)
			total += projected[i]
		}
		points = append(points, model.RevenueForecastPoint{
			MonthStart:   model.NewDate(month.Year(), month.Month(), 1),
			Label:        month.Format("Jan 2006"),
			ProjectedMRR: round2(total),
		})
		annual += round2(total)
	}

	end := points[len(points)-1].ProjectedMRR
	growth := 0.0
	if current > 0 {
		growth = (math.Pow(end/current, 1.0/12) - 1) * 100
	}
	return model.RevenueForecast{
		CurrentMRR:              round2(current),
		ProjectedMRREnd12m:      round2(end),
		ProjectedRevenue12m:     round2(annual),
		AverageMonthlyGrowthPct: round2(growth),
		MonthlyProjection:       points,
		AssumptionsNote: "Projection uses account health state for monthly drift and applies a " +
			"state-based renewal impact in each account's renewal month.",
	}
}

func (d *dataset) calendar(month time.Time, now time.Time) []model.RenewalCalendarItem {
	next := month.AddDate(0, 1, 0)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	items := []model.RenewalCalendarItem{}
	for _, a := range d.accounts {
		r := a.summary.RenewalDate
		if r == nil || r.Before(month) || !r.Before(next) {
			continue
		}
		items = append(items, model.RenewalCalendarItem{
			AccountID:        a.summary.ID,
			AccountName:      a.summary.Name,
			RenewalDate:      *r,
			DaysUntilRenewal: int(r.Sub(today).Hours() / 24),
			Composite:        a.summary.Composite,
			HealthState:      a.summary.State,
		})
	}
	slices.SortStableFunc(items, func(x, y model.RenewalCalendarItem) int {
		return x.RenewalDate.Compare(y.RenewalDate.Time)
	})
	return items
}

func (d *dataset) addEvent(accountID int64, kind, desc string, now time.Time) {
	d.events[accountID] = append(d.events[accountID], model.ActivityEvent{
		ID:          d.id(),
		EventType:   kind,
		Description: &desc,
		CreatedAt:   model.Timestamp{Time: now},
	})
}

func (d *dataset) setOutreach(anomalyID int64, status model.OutreachStatus, now time.Time) bool {
	for i := range d.anomalies {
		if d.anomalies[i].ID != anomalyID {
			continue
		}
		d.anomalies[i].OutreachStatus = status
		accountID := d.anomaly[anomalyID]
		if status == model.OutreachSent {
			d.addEvent(accountID, "outreach_sent", "Outreach email approved and sent", now)
		} else {
			d.addEvent(accountID, "outreach_rejected", "Outreach email rejected", now)
		}
		if a := d.find(accountID); a != nil {
			a.summary.HasPendingAnomaly = d.hasPending(accountID)
		}
		return true
	}
	return false
}

const anomalyCooldown = 7 * 24 * time.Hour

// scan appends a day of usage to every account, rescores it and raises anomalies for
// sharp declines. Accounts with an anomaly in the cooldown window are skipped.
func (d *dataset) scan(now time.Time) model.ScanSummary {
	var sum model.ScanSummary
	for _, a := range d.accounts {
		prevState := a.summary.State
		d.appendDay(a, now)
		d.rescore(a)
		sum.AccountsScanned++
		sum.HealthScoresUpdated++

		if a.summary.TrendDelta > -5 {
			continue
		}
		if d.recentAnomaly(a.summary.ID, now) {
			sum.AnomaliesSkippedRecent++
			continue
		}

		an := d.raiseAnomaly(a, now)
		sum.AnomaliesCreated++
		if a.summary.State != prevState && a.summary.State == model.StateCritical {
			sum.AlertsCreated++
		}
		if d.company.AutonomyMode == model.AutonomyExecutor && an.OutreachDraft != nil {
			d.setOutreach(an.ID, model.OutreachSent, now)
			sum.OutreachAutoSent++
		}
	}

	renewals := 0
	if d.settings.Enabled {
		for _, a := range d.accounts {
			if r := a.summary.RenewalDate; r != nil && d.settings.HasLeadTime(health.DaysUntil(*r, now)) {
				renewals++
				d.addEvent(a.summary.ID, "renewal_alert",
					fmt.Sprintf("Renewal in %d days", health.DaysUntil(*r, now)), now)
			}
		}
	}
	sum.RenewalAlertsCreated = &renewals

	ts := model.Timestamp{Time: now}
	sum.ScanCompletedAt = &ts
	d.lastScan = &ts
	return sum
}

func (d *dataset) recentAnomaly(accountID int64, now time.Time) bool {
	for _, an := range d.anomalies {
		if d.anomaly[an.ID] == accountID && now.Sub(an.DetectedAt.Time) < anomalyCooldown {
			return true
		}
	}
	return false
}

func (d *dataset) raiseAnomaly(a *account, now time.Time) model.Anomaly {
	severity := model.SeverityMedium
	if a.summary.State == model.StateCritical {
		severity = model.SeverityHigh
	}
	explanation := fmt.Sprintf("Composite score fell %.1f points week over week to %.1f.",
		-a.summary.TrendDelta, a.summary.Composite)
	draft := fmt.Sprintf("Hi %s team,\n\nWe noticed usage has dipped recently and wanted to check in. "+
		"Would a quick call this week help?\n\n%s", a.summary.Name, a.csm)
	z := round2(a.summary.TrendDelta / 4)

	an := model.Anomaly{
		ID:             d.id(),
		Pattern:        "usage_decline",
		Severity:       severity,
		Explanation:    &explanation,
		OutreachDraft:  &draft,
		OutreachStatus: model.OutreachPending,
		ZScore:         &z,
		DetectedAt:     model.Timestamp{Time: now},
	}
	d.anomalies = append(d.anomalies, an)
	d.anomaly[an.ID] = a.summary.ID
	a.summary.HasPendingAnomaly = true
	d.addEvent(a.summary.ID, "anomaly_detected", explanation, now)
	return an
}
