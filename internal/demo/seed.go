package demo

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/sells-group/health-cli/internal/model"
)

// historyDays is how much usage the seed generates per account.
const historyDays = 60

// Pattern shapes an account's usage curve over the seeded history.
type pattern string

const (
	patternSuddenDrop   pattern = "sudden_drop"
	patternAbandoned    pattern = "abandoned"
	patternSlowErosion  pattern = "slow_erosion"
	patternSeatCollapse pattern = "seat_collapse"
	patternRecovery     pattern = "recovery"
	patternStable       pattern = "stable"
	patternGrowth       pattern = "growth"
)

type profile struct {
	name        string
	tier        model.Tier
	seats       int
	mrr         float64
	renewalDays int // zero means no renewal date
	csm         string
	pattern     pattern
	target      float64 // score level the curve settles at
	dropDay     int
}

var profiles = []profile{
	{"AcmeCorp", model.TierGrowth, 12, 2400, 45, "Sarah Chen", patternSuddenDrop, 28, 48},
	{"BuildRight", model.TierScale, 30, 8500, 60, "Mike Torres", patternSuddenDrop, 32, 52},
	{"NovaBridge", model.TierStarter, 6, 1200, 14, "Priya Patel", patternAbandoned, 18, 0},
	{"Orbitas", model.TierGrowth, 10, 2100, 38, "Jordan Lee", patternSuddenDrop, 35, 40},
	{"CloudPeak", model.TierStarter, 3, 599, 22, "Sarah Chen", patternSlowErosion, 55, 0},
	{"FlowBase", model.TierStarter, 4, 799, 18, "Mike Torres", patternSeatCollapse, 58, 0},
	{"Riveron", model.TierGrowth, 14, 2800, 41, "Nina Okafor", patternSeatCollapse, 62, 0},
	{"TechNest", model.TierGrowth, 20, 3800, 70, "David Park", patternSlowErosion, 64, 0},
	{"Vaultly", model.TierScale, 40, 11000, 10, "Sarah Chen", patternSlowErosion, 60, 0},
	{"HubLink", model.TierStarter, 5, 999, 55, "Alex Kim", patternStable, 72, 0},
	{"WaveForm", model.TierGrowth, 12, 2600, 80, "Nina Okafor", patternRecovery, 77, 0},
	{"YieldBase", model.TierGrowth, 16, 3400, 110, "Priya Patel", patternStable, 79, 0},
	{"Zephyr", model.TierScale, 35, 9800, 0, "Alex Kim", patternGrowth, 90, 0},
	{"Lumina", model.TierScale, 28, 8900, 150, "David Park", patternStable, 92, 0},
}

// level returns the score level of the curve on day t of the history. Days past the
// seeded history continue the curve's final slope.
func (p profile) level(t int) float64 {
	progress := float64(t) / historyDays
	switch p.pattern {
	case patternSuddenDrop:
		if t < p.dropDay {
			return 78
		}
		return p.target - float64(t-p.dropDay)*0.2
	case patternAbandoned:
		return 70 - (70-p.target)*math.Min(progress*1.5, 1.2)
	case patternSlowErosion:
		return p.target + 18 - 18*progress
	case patternSeatCollapse:
		if t < historyDays-10 {
			return p.target + 15
		}
		return p.target - float64(t-historyDays)*0.5
	case patternRecovery:
		return p.target - 20 + 20*math.Min(progress, 1)
	case patternGrowth:
		return math.Min(p.target-10+10*progress, 97)
	default:
		return p.target
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// appendDay generates the next day of usage for a, dated on day.
func (d *dataset) appendDay(a *account, day time.Time) {
	t := len(a.signals)
	lvl := a.profile.level(t)
	noise := func(scale float64) float64 { return d.rng.NormFloat64() * scale }

	s := signals{
		engagement: clamp(lvl+noise(3)+2, 0, 100),
		adoption:   clamp(lvl+noise(3)-1, 0, 100),
		health:     clamp(lvl+noise(2)+1, 0, 100),
		support:    clamp(lvl+noise(4)-2, 0, 100),
	}
	a.signals = append(a.signals, s)

	seats := float64(a.summary.Seats)
	active := int(math.Round(seats * s.adoption / 100))
	dau := int(math.Round(seats * s.engagement / 100 * 0.8))
	y, m, dd := day.Date()
	a.days = append(a.days, model.MetricPoint{
		Date:           model.NewDate(y, m, dd),
		DAU:            dau,
		WAU:            min(int(math.Round(float64(dau)*1.6)), a.summary.Seats),
		MAU:            min(int(math.Round(float64(dau)*2.2)), a.summary.Seats),
		ActiveSeats:    active,
		FeatureCount:   int(math.Round(s.adoption / 8)),
		APICalls:       int(math.Round(s.engagement * seats * 3)),
		SupportTickets: int(math.Round(math.Max(0, (100-s.support)/25+noise(0.5)))),
		Logins:         int(math.Round(float64(dau) * 1.3)),
	})
}

// seed builds the demo dataset as of now. The same now always yields the same data.
func seed(now time.Time) *dataset {
	d := &dataset{
		company: model.Company{
			ID:                1,
			Name:              "Demo Company",
			AutonomyMode:      model.AutonomyApproval,
			WeightEngagement:  30,
			WeightAdoption:    25,
			WeightHealth:      25,
			WeightSupport:     20,
			CriticalThreshold: 40,
			AtRiskThreshold:   70,
		},
		events:   make(map[int64][]model.ActivityEvent),
		settings: model.RenewalSettings{Enabled: true, LeadTimesDays: []int{30, 14, 7}},
		rng:      rand.New(rand.NewPCG(42, 42)),
		anomaly:  make(map[int64]int64),
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for i, p := range profiles {
		a := &account{
			profile: p,
			csm:     p.csm,
			summary: model.AccountSummary{
				ID:    int64(i + 1),
				Name:  p.name,
				Tier:  p.tier,
				Seats: p.seats,
				MRR:   p.mrr,
			},
		}
		if p.renewalDays > 0 {
			r := model.Date{Time: today.AddDate(0, 0, p.renewalDays)}
			a.summary.RenewalDate = &r
		}
		for day := historyDays - 1; day >= 0; day-- {
			d.appendDay(a, today.AddDate(0, 0, -day))
		}
		d.accounts = append(d.accounts, a)
	}
	d.nextID = int64(len(d.accounts))

	for _, a := range d.accounts {
		d.rescore(a)
		// Seeded anomalies are backdated past the cooldown so a first scan can raise new ones.
		if a.summary.State == model.StateCritical {
			d.raiseAnomaly(a, now.Add(-8*24*time.Hour))
		}
	}
	return d
}
