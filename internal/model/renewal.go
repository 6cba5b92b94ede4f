package model

import (
	"fmt"
	"slices"
	"time"

	"github.com/rotisserie/eris"
)

// LeadTimeOptions are the lead times (days before renewal) the server accepts.
var LeadTimeOptions = []int{90, 30, 14, 7}

// RenewalCalendarItem is an account renewing within the requested month.
type RenewalCalendarItem struct {
	AccountID        int64       `json:"account_id" yaml:"account_id"`
	AccountName      string      `json:"account_name" yaml:"account_name"`
	RenewalDate      Date        `json:"renewal_date" yaml:"renewal_date"`
	DaysUntilRenewal int         `json:"days_until_renewal" yaml:"days_until_renewal"`
	Composite        float64     `json:"composite" yaml:"composite"`
	HealthState      HealthState `json:"health_state" yaml:"health_state"`
}

// RenewalSettings controls renewal reminder notifications.
type RenewalSettings struct {
	Enabled       bool  `json:"enabled" yaml:"enabled"`
	LeadTimesDays []int `json:"lead_times_days" yaml:"lead_times_days"`
}

// HasLeadTime reports whether days is one of the configured lead times.
func (s RenewalSettings) HasLeadTime(days int) bool {
	return slices.Contains(s.LeadTimesDays, days)
}

// ToggleLeadTime returns the lead times with days added or removed, sorted
// descending as the server stores them.
func (s RenewalSettings) ToggleLeadTime(days int) []int {
	out := make([]int, 0, len(s.LeadTimesDays)+1)
	found := false
	for _, d := range s.LeadTimesDays {
		if d == days {
			found = true
			continue
		}
		out = append(out, d)
	}
	if !found {
		out = append(out, days)
	}
	slices.Sort(out)
	slices.Reverse(out)
	return slices.Compact(out)
}

// Apply returns the settings with the patch merged in.
func (s RenewalSettings) Apply(p RenewalSettingsPatch) RenewalSettings {
	out := RenewalSettings{Enabled: s.Enabled, LeadTimesDays: slices.Clone(s.LeadTimesDays)}
	if p.Enabled != nil {
		out.Enabled = *p.Enabled
	}
	if p.LeadTimesDays != nil {
		out.LeadTimesDays = slices.Clone(p.LeadTimesDays)
	}
	return out
}

// RenewalSettingsPatch is a partial settings update.
type RenewalSettingsPatch struct {
	Enabled       *bool `json:"enabled,omitempty"`
	LeadTimesDays []int `json:"lead_times_days,omitzero"`
}

// MonthKey formats t as the YYYY-MM key used by the renewal calendar.
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// ParseMonthKey validates a YYYY-MM key and returns the first day of that month.
func ParseMonthKey(key string) (time.Time, error) {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "model: invalid month %q, want YYYY-MM", key)
	}
	return t, nil
}

// AddMonths shifts a month key by delta months.
func AddMonths(key string, delta int) (string, error) {
	t, err := ParseMonthKey(key)
	if err != nil {
		return "", err
	}
	return MonthKey(t.AddDate(0, delta, 0)), nil
}
