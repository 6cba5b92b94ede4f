package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sells-group/health-cli/internal/health"
	"github.com/sells-group/health-cli/internal/model"
	"github.com/sells-group/health-cli/internal/store"
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")

	list, detail := paneStyle, activePane
	if m.focus == focusList {
		list, detail = activePane, paneStyle
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		list.Render(m.table.View()),
		detail.Render(m.detail.View()),
	))
	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m Model) header() string {
	st := m.state
	name := "Account Health"
	if st.Company != nil {
		name = st.Company.Name
	}
	parts := []string{titleStyle.Render(name)}

	if s := st.Stats; s != nil {
		parts = append(parts,
			fmt.Sprintf("%d accounts", s.TotalAccounts),
			stateStyle(model.StateCritical).Render(fmt.Sprintf("%d critical", s.CriticalCount)),
			stateStyle(model.StateAtRisk).Render(fmt.Sprintf("%d at risk", s.AtRiskCount)),
			fmt.Sprintf("avg %.1f", s.AvgHealth),
			health.FormatCurrency(s.TotalMRR)+" MRR",
			fmt.Sprintf("%d pending", s.PendingApprovals),
		)
	}
	parts = append(parts, mutedStyle.Render(fmt.Sprintf("filter %s · sort %s",
		st.Filter.StateFilter, st.Filter.SortBy)))
	if st.Loading || st.IsScanning {
		label := "loading"
		if st.IsScanning {
			label = "scanning"
		}
		parts = append(parts, m.spinner.View()+" "+label)
	}
	if st.NeedsOnboarding() && !st.Loading {
		parts = append(parts, errorStyle.Render("onboarding incomplete: run `health-cli onboard`"))
	}
	return strings.Join(parts, "  ")
}

func (m Model) footer() string {
	var lines []string
	if fb := m.state.ScanFeedback; fb != nil {
		style := okStyle
		if fb.Kind == model.FeedbackError {
			style = errorStyle
		}
		lines = append(lines, style.Render(fb.Message))
	}
	if m.status != "" {
		style := mutedStyle
		if m.failed {
			style = errorStyle
		}
		lines = append(lines, style.Render(m.status))
	} else if m.state.Error != "" {
		lines = append(lines, errorStyle.Render(m.state.Error))
	}

	var help []string
	for _, k := range m.keys.help() {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	lines = append(lines, mutedStyle.Render(strings.Join(help, " · ")))
	return strings.Join(lines, "\n")
}

// renderDetail is the detail pane content for the active selection.
func renderDetail(st store.State, now time.Time) string {
	if st.SelectedAccountID == nil {
		return mutedStyle.Render("Select an account with enter.")
	}
	d := st.ActiveDetail()
	if d == nil {
		return mutedStyle.Render("Loading account…")
	}

	var b strings.Builder
	th := st.Thresholds()
	fmt.Fprintf(&b, "%s  %s\n", headerStyle.Render(d.Name), stateStyle(d.State).Render(health.Label(d.State)))
	fmt.Fprintf(&b, "%s · %d seats · %s · renews %s\n",
		d.Tier, d.Seats, health.FormatMRR(d.MRR), health.FormatRenewal(d.RenewalDate, now))
	if d.CSMName != nil {
		fmt.Fprintf(&b, "CSM %s\n", *d.CSMName)
	}
	b.WriteString("\n")

	score := func(label string, v float64) {
		c := lipgloss.NewStyle().Foreground(lipgloss.Color(th.ScoreColor(v)))
		fmt.Fprintf(&b, "%-11s %s\n", label, c.Render(fmt.Sprintf("%5.1f", v)))
	}
	score("Composite", d.Composite)
	score("Engagement", d.EngagementScore)
	score("Adoption", d.AdoptionScore)
	score("Health", d.HealthScore)
	score("Support", d.SupportScore)
	fmt.Fprintf(&b, "%-11s %s\n", "Trend", health.FormatTrendDelta(d.TrendDelta))

	if pending := health.PendingApprovals(d); len(pending) > 0 {
		b.WriteString("\n" + headerStyle.Render("Awaiting approval") + "\n")
		for _, a := range pending {
			fmt.Fprintf(&b, "#%d %s (%s)\n", a.ID, a.Pattern, a.Severity)
			if a.Explanation != nil {
				b.WriteString(mutedStyle.Render(*a.Explanation) + "\n")
			}
			b.WriteString(*a.OutreachDraft + "\n")
		}
	}

	if len(d.Anomalies) > 0 {
		b.WriteString("\n" + headerStyle.Render("Anomalies") + "\n")
		for _, a := range d.Anomalies {
			fmt.Fprintf(&b, "#%d %-14s %-8s %-8s %s\n", a.ID, a.Pattern, a.Severity, a.OutreachStatus,
				a.DetectedAt.Format("2006-01-02"))
		}
	}

	if len(d.Events) > 0 {
		b.WriteString("\n" + headerStyle.Render("Activity") + "\n")
		for i, e := range d.Events {
			if i == 10 {
				break
			}
			desc := ""
			if e.Description != nil {
				desc = *e.Description
			}
			fmt.Fprintf(&b, "%s %-18s %s\n", e.CreatedAt.Format("01-02 15:04"), e.EventType, desc)
		}
	}
	return b.String()
}
