package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sells-group/health-cli/internal/health"
	"github.com/sells-group/health-cli/internal/model"
)

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// WriteAccounts prints the account list.
func WriteAccounts(out io.Writer, accounts []model.AccountSummary, now time.Time) {
	w := newTable(out)
	_, _ = fmt.Fprintln(w, "ID\tACCOUNT\tTIER\tSTATE\tSCORE\tTREND\tMRR\tRENEWAL\tPENDING")
	_, _ = fmt.Fprintln(w, "--\t-------\t----\t-----\t-----\t-----\t---\t-------\t-------")
	for _, a := range accounts {
		pending := ""
		if a.HasPendingAnomaly {
			pending = "yes"
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.0f\t%s\t%s\t%s\t%s\n",
			a.ID,
			truncate(a.Name, 30),
			a.Tier,
			health.Label(a.State),
			a.Composite,
			health.FormatTrendDelta(a.TrendDelta),
			health.FormatMRR(a.MRR),
			health.FormatRenewal(a.RenewalDate, now),
			pending,
		)
	}
	_ = w.Flush()
}

// WriteAccountDetail prints one account with its scores, anomalies and recent events.
func WriteAccountDetail(out io.Writer, d *model.AccountDetail, now time.Time) {
	w := newTable(out)
	csm := "—"
	if d.CSMName != nil {
		csm = *d.CSMName
	}
	_, _ = fmt.Fprintf(w, "Account:\t%s (#%d)\n", d.Name, d.ID)
	_, _ = fmt.Fprintf(w, "Tier:\t%s, %d seats\n", d.Tier, d.Seats)
	_, _ = fmt.Fprintf(w, "MRR:\t%s\n", health.FormatCurrency(d.MRR))
	_, _ = fmt.Fprintf(w, "Renewal:\t%s\n", health.FormatRenewal(d.RenewalDate, now))
	_, _ = fmt.Fprintf(w, "CSM:\t%s\n", csm)
	_, _ = fmt.Fprintf(w, "State:\t%s (%.0f, trend %s)\n", health.Label(d.State), d.Composite, health.FormatTrendDelta(d.TrendDelta))
	_, _ = fmt.Fprintf(w, "Signals:\tengagement %.0f  adoption %.0f  health %.0f  support %.0f\n",
		d.EngagementScore, d.AdoptionScore, d.HealthScore, d.SupportScore)
	_ = w.Flush()

	if len(d.Anomalies) > 0 {
		_, _ = fmt.Fprintln(out, "\nAnomalies:")
		w = newTable(out)
		_, _ = fmt.Fprintln(w, "ID\tSEVERITY\tPATTERN\tOUTREACH\tDETECTED")
		for _, a := range d.Anomalies {
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				a.ID, a.Severity, truncate(a.Pattern, 40), a.OutreachStatus, a.DetectedAt.Format("2006-01-02 15:04"))
		}
		_ = w.Flush()
	}

	if pending := health.PendingApprovals(d); len(pending) > 0 {
		_, _ = fmt.Fprintln(out, "\nAwaiting approval:")
		for _, a := range pending {
			_, _ = fmt.Fprintf(out, "  #%d %s\n    %s\n", a.ID, a.Pattern, strings.ReplaceAll(*a.OutreachDraft, "\n", "\n    "))
		}
	}

	if len(d.Events) > 0 {
		_, _ = fmt.Fprintln(out, "\nRecent activity:")
		w = newTable(out)
		for i, e := range d.Events {
			if i == 10 {
				break
			}
			desc := ""
			if e.Description != nil {
				desc = truncate(*e.Description, 60)
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", e.CreatedAt.Format("2006-01-02 15:04"), e.EventType, desc)
		}
		_ = w.Flush()
	}
}

// WriteStats prints the portfolio summary.
func WriteStats(out io.Writer, s *model.Stats) {
	w := newTable(out)
	lastScan := "never"
	if s.LastScan != nil {
		lastScan = s.LastScan.Format("2006-01-02 15:04")
	}
	_, _ = fmt.Fprintf(w, "Accounts:\t%s\n", health.FormatCount(s.TotalAccounts))
	_, _ = fmt.Fprintf(w, "  Critical:\t%d\n", s.CriticalCount)
	_, _ = fmt.Fprintf(w, "  At risk:\t%d\n", s.AtRiskCount)
	_, _ = fmt.Fprintf(w, "  Good:\t%d\n", s.GoodCount)
	_, _ = fmt.Fprintf(w, "  Healthy:\t%d\n", s.HealthyCount)
	_, _ = fmt.Fprintf(w, "Average health:\t%.1f\n", s.AvgHealth)
	_, _ = fmt.Fprintf(w, "Total MRR:\t%s\n", health.FormatCurrency(s.TotalMRR))
	_, _ = fmt.Fprintf(w, "Pending approvals:\t%d\n", s.PendingApprovals)
	_, _ = fmt.Fprintf(w, "Last scan:\t%s\n", lastScan)
	_ = w.Flush()
}

// WriteCompany prints the company configuration.
func WriteCompany(out io.Writer, c *model.Company) {
	w := newTable(out)
	opt := func(s *string) string {
		if s == nil || *s == "" {
			return "—"
		}
		return *s
	}
	_, _ = fmt.Fprintf(w, "Name:\t%s\n", c.Name)
	_, _ = fmt.Fprintf(w, "Onboarded:\t%t\n", c.OnboardingComplete)
	_, _ = fmt.Fprintf(w, "Autonomy:\t%s\n", c.AutonomyMode)
	_, _ = fmt.Fprintf(w, "Slack channel:\t%s\n", opt(c.SlackChannel))
	_, _ = fmt.Fprintf(w, "Alert email:\t%s\n", opt(c.AlertEmail))
	_, _ = fmt.Fprintf(w, "Weights:\tengagement %.0f  adoption %.0f  health %.0f  support %.0f (total %.0f)\n",
		c.WeightEngagement, c.WeightAdoption, c.WeightHealth, c.WeightSupport, c.WeightTotal())
	_, _ = fmt.Fprintf(w, "Thresholds:\tcritical < %.0f, at risk < %.0f, healthy >= %.0f\n",
		c.CriticalThreshold, c.AtRiskThreshold, health.HealthyFloor)
	_ = w.Flush()
}

// WriteForecast prints the revenue forecast limited to the horizon in months.
func WriteForecast(out io.Writer, f *model.RevenueForecast, months int) {
	_, _ = fmt.Fprintf(out, "Revenue forecast: %s\n", model.HorizonLabel(months))
	w := newTable(out)
	_, _ = fmt.Fprintf(w, "Current MRR:\t%s\n", health.FormatCurrency(f.CurrentMRR))
	_, _ = fmt.Fprintf(w, "Projected MRR (12m):\t%s\n", health.FormatCurrency(f.ProjectedMRREnd12m))
	_, _ = fmt.Fprintf(w, "Projected revenue (12m):\t%s\n", health.FormatCurrency(f.ProjectedRevenue12m))
	_, _ = fmt.Fprintf(w, "Avg monthly growth:\t%.2f%%\n", f.AverageMonthlyGrowthPct)
	_ = w.Flush()

	w = newTable(out)
	_, _ = fmt.Fprintln(w, "\nMONTH\tPROJECTED MRR")
	for _, p := range f.Horizon(months) {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", p.Label, health.FormatCurrency(p.ProjectedMRR))
	}
	_ = w.Flush()
	if f.AssumptionsNote != "" {
		_, _ = fmt.Fprintf(out, "\n%s\n", f.AssumptionsNote)
	}
}

// WriteCalendar prints the renewals of one month.
func WriteCalendar(out io.Writer, month string, items []model.RenewalCalendarItem) {
	if len(items) == 0 {
		_, _ = fmt.Fprintf(out, "No renewals in %s.\n", month)
		return
	}
	w := newTable(out)
	_, _ = fmt.Fprintln(w, "DATE\tACCOUNT\tDAYS\tSTATE\tSCORE")
	for _, it := range items {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%.0f\n",
			it.RenewalDate, truncate(it.AccountName, 30), it.DaysUntilRenewal, health.Label(it.HealthState), it.Composite)
	}
	_ = w.Flush()
}

// WriteRenewalSettings prints the reminder settings with every lead-time option.
func WriteRenewalSettings(out io.Writer, rs *model.RenewalSettings) {
	status := "disabled"
	if rs.Enabled {
		status = "enabled"
	}
	_, _ = fmt.Fprintf(out, "Renewal reminders: %s\n", status)
	for _, d := range model.LeadTimeOptions {
		mark := " "
		if rs.HasLeadTime(d) {
			mark = "x"
		}
		_, _ = fmt.Fprintf(out, "  [%s] %d days before\n", mark, d)
	}
}
