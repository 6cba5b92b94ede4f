package report

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/health-cli/internal/model"
)

var now = time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)

func sampleAccounts() []model.AccountSummary {
	renewal := model.NewDate(2026, time.October, 25)
	return []model.AccountSummary{
		{ID: 1, Name: "Initech", Tier: model.TierGrowth, Seats: 40, MRR: 12300, Composite: 22, TrendDelta: -4.5,
			State: model.StateCritical, RenewalDate: &renewal, HasPendingAnomaly: true},
		{ID: 2, Name: "A very long account name that will be truncated", Tier: model.TierStarter, MRR: 850,
			Composite: 91, State: model.StateHealthy},
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, f)

	f, err = ParseFormat("yaml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("csv")
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatJSON, sampleAccounts()[:1]))
	assert.Contains(t, buf.String(), `"renewal_date": "2026-10-25"`)
	assert.Contains(t, buf.String(), `"state": "critical"`)

	buf.Reset()
	require.NoError(t, Encode(&buf, FormatYAML, sampleAccounts()[:1]))
	assert.Contains(t, buf.String(), "name: Initech")
	assert.Contains(t, buf.String(), "2026-10-25")

	assert.Error(t, Encode(&buf, FormatTable, nil))
}

func TestWriteAccounts(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	WriteAccounts(&buf, sampleAccounts(), now)
	out := buf.String()

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "ACCOUNT")
	assert.Contains(t, lines[2], "Initech")
	assert.Contains(t, lines[2], "Critical")
	assert.Contains(t, lines[2], "$12.3k")
	assert.Contains(t, lines[2], "7d")
	assert.Contains(t, lines[2], "-4.5")
	assert.Contains(t, lines[3], "A very long account name th...")
	assert.Contains(t, lines[3], "—")
}

func TestWriteAccountDetail(t *testing.T) {
	t.Parallel()

	draft := "Hi there,\nwe noticed a drop."
	desc := "Scan flagged usage"
	d := &model.AccountDetail{
		ID: 1, Name: "Initech", Tier: model.TierScale, Seats: 12, MRR: 1234567, State: model.StateAtRisk, Composite: 55,
		Anomalies: []model.Anomaly{{ID: 9, Pattern: "login drop", Severity: model.Severity("high"), OutreachStatus: model.OutreachPending, OutreachDraft: &draft}},
		Events:    []model.ActivityEvent{{ID: 1, EventType: "scan", Description: &desc}},
	}

	var buf bytes.Buffer
	WriteAccountDetail(&buf, d, now)
	out := buf.String()
	assert.Contains(t, out, "Initech (#1)")
	assert.Contains(t, out, "$1,234,567")
	assert.Contains(t, out, "At Risk")
	assert.Contains(t, out, "Awaiting approval:")
	assert.Contains(t, out, "    we noticed a drop.")
	assert.Contains(t, out, "Scan flagged usage")
}

func TestWriteStatsAndCompany(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	WriteStats(&buf, &model.Stats{TotalAccounts: 1200, CriticalCount: 3, TotalMRR: 98000})
	assert.Contains(t, buf.String(), "1,200")
	assert.Contains(t, buf.String(), "$98,000")
	assert.Contains(t, buf.String(), "never")

	buf.Reset()
	WriteCompany(&buf, &model.Company{Name: "Acme", AutonomyMode: model.AutonomyApproval,
		WeightEngagement: 30, WeightAdoption: 25, WeightHealth: 25, WeightSupport: 20, CriticalThreshold: 40, AtRiskThreshold: 70})
	assert.Contains(t, buf.String(), "total 100")
	assert.Contains(t, buf.String(), "critical < 40, at risk < 70, healthy >= 85")
}

func TestWriteForecastHorizon(t *testing.T) {
	t.Parallel()

	f := &model.RevenueForecast{CurrentMRR: 1000, MonthlyProjection: []model.RevenueForecastPoint{
		{Label: "Nov 2026", ProjectedMRR: 1010},
		{Label: "Dec 2026", ProjectedMRR: 1020},
		{Label: "Jan 2027", ProjectedMRR: 1030},
	}}

	var buf bytes.Buffer
	WriteForecast(&buf, f, 1)
	assert.Contains(t, buf.String(), "Next Month")
	assert.Contains(t, buf.String(), "Nov 2026")
	assert.NotContains(t, buf.String(), "Dec 2026")
}

func TestWriteCalendarAndSettings(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	WriteCalendar(&buf, "2026-11", nil)
	assert.Equal(t, "No renewals in 2026-11.\n", buf.String())

	buf.Reset()
	WriteRenewalSettings(&buf, &model.RenewalSettings{Enabled: true, LeadTimesDays: []int{30, 7}})
	assert.Contains(t, buf.String(), "enabled")
	assert.Contains(t, buf.String(), "[x] 30 days before")
	assert.Contains(t, buf.String(), "[ ] 90 days before")
}

func TestExportAccounts(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "accounts.xlsx")
	require.NoError(t, ExportAccounts(path, sampleAccounts(), now))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet, ok := f.Sheet[AccountsSheet]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 3)

	header := sheet.Rows[0].Cells
	assert.Equal(t, "Account", header[1].String())

	first := sheet.Rows[1].Cells
	assert.Equal(t, "Initech", first[1].String())
	assert.Equal(t, "Critical", first[5].String())
	assert.Equal(t, "2026-10-25", first[8].String())
	days, err := first[9].Int()
	require.NoError(t, err)
	assert.Equal(t, 7, days)
	assert.Equal(t, "yes", first[10].String())

	assert.Equal(t, "", sheet.Rows[2].Cells[8].String())
}
