package health

import (
	"math"
	"slices"
	"time"

	"github.com/sells-group/health-cli/internal/model"
)

// NoRenewalDays orders accounts without a renewal date after every dated account.
// It is a sort key only and is never displayed.
const NoRenewalDays = 999

// DaysUntil returns the whole days from now until d, rounded up, as the dashboard
// counts them. Past dates are negative.
func DaysUntil(d model.Date, now time.Time) int {
	return int(math.Ceil(d.Sub(now).Hours() / 24))
}

// RenewalSortKey is the ordering value for an account's renewal proximity.
func RenewalSortKey(a model.AccountSummary, now time.Time) int {
	if a.RenewalDate == nil {
		return NoRenewalDays
	}
	return DaysUntil(*a.RenewalDate, now)
}

// FilterAccounts returns the accounts whose state passes f, in their original order.
func FilterAccounts(accounts []model.AccountSummary, f model.StateFilter) []model.AccountSummary {
	out := make([]model.AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		if f.Matches(a.State) {
			out = append(out, a)
		}
	}
	return out
}

// SortAccounts orders accounts by key. SortScore keeps the server order; SortRenewal
// is a stable ascending sort on days until renewal. The input is not modified.
func SortAccounts(accounts []model.AccountSummary, key model.SortKey, now time.Time) []model.AccountSummary {
	out := slices.Clone(accounts)
	if key != model.SortRenewal {
		return out
	}
	slices.SortStableFunc(out, func(a, b model.AccountSummary) int {
		return RenewalSortKey(a, now) - RenewalSortKey(b, now)
	})
	return out
}

// VisibleAccounts applies the filter state to the account list.
func VisibleAccounts(accounts []model.AccountSummary, fs model.FilterState, now time.Time) []model.AccountSummary {
	return SortAccounts(FilterAccounts(accounts, fs.StateFilter), fs.SortBy, now)
}

// CriticalAccounts returns the accounts in critical state, for the alert banner.
func CriticalAccounts(accounts []model.AccountSummary) []model.AccountSummary {
	return FilterAccounts(accounts, model.StateFilter(model.StateCritical))
}

// CountByState tallies accounts per health state.
func CountByState(accounts []model.AccountSummary) map[model.HealthState]int {
	out := make(map[model.HealthState]int, len(model.HealthStates))
	for _, a := range accounts {
		out[a.State]++
	}
	return out
}

// PendingApprovals returns the anomalies of d waiting for an outreach decision.
func PendingApprovals(d *model.AccountDetail) []model.Anomaly {
	if d == nil {
		return nil
	}
	var out []model.Anomaly
	for _, a := range d.Anomalies {
		if a.AwaitingApproval() {
			out = append(out, a)
		}
	}
	return out
}

// ActiveDetail returns the cached detail only when it belongs to the selected account.
func ActiveDetail(selectedID *int64, d *model.AccountDetail) *model.AccountDetail {
	if selectedID == nil || d == nil || d.ID != *selectedID {
		return nil
	}
	return d
}
