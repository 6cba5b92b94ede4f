package store

import (
	"time"

	"github.com/sells-group/health-cli/internal/health"
	"github.com/sells-group/health-cli/internal/model"
)

// State is an immutable snapshot of everything the client knows. Slices and pointers
// inside a State are never modified after the State is published; a transition that
// changes a slice installs a new value.
type State struct {
	Company  *model.Company         `json:"company" yaml:"company"`
	Accounts []model.AccountSummary `json:"accounts" yaml:"accounts"`
	Stats    *model.Stats           `json:"stats" yaml:"stats"`

	// SelectedAccount is either nil or the detail of SelectedAccountID.
	SelectedAccountID *int64               `json:"selected_account_id" yaml:"selected_account_id"`
	SelectedAccount   *model.AccountDetail `json:"selected_account" yaml:"selected_account"`

	Filter       model.FilterState   `json:"filter" yaml:"filter"`
	IsScanning   bool                `json:"is_scanning" yaml:"is_scanning"`
	ScanFeedback *model.ScanFeedback `json:"scan_feedback" yaml:"scan_feedback"`
	Loading      bool                `json:"loading" yaml:"loading"`
	Error        string              `json:"error,omitempty" yaml:"error,omitempty"`

	Forecast        *model.RevenueForecast      `json:"forecast,omitempty" yaml:"forecast,omitempty"`
	CalendarMonth   string                      `json:"calendar_month,omitempty" yaml:"calendar_month,omitempty"`
	Calendar        []model.RenewalCalendarItem `json:"calendar,omitempty" yaml:"calendar,omitempty"`
	RenewalSettings *model.RenewalSettings      `json:"renewal_settings,omitempty" yaml:"renewal_settings,omitempty"`

	// Version increases with every published change.
	Version uint64 `json:"version" yaml:"version"`

	// selection is the fencing token of the current selection. It advances on every
	// selectAccount, including reselecting the same id.
	selection uint64
}

func initialState() State {
	return State{
		Accounts: []model.AccountSummary{},
		Filter:   model.DefaultFilterState(),
		Loading:  true,
	}
}

// Thresholds returns the health thresholds configured on the cached company.
func (s State) Thresholds() health.Thresholds {
	return health.ThresholdsFor(s.Company)
}

// VisibleAccounts is the filtered and sorted account list.
func (s State) VisibleAccounts(now time.Time) []model.AccountSummary {
	return health.VisibleAccounts(s.Accounts, s.Filter, now)
}

// ActiveDetail returns the cached detail if it belongs to the current selection.
func (s State) ActiveDetail() *model.AccountDetail {
	return health.ActiveDetail(s.SelectedAccountID, s.SelectedAccount)
}

// IsSelected reports whether id is the selected account.
func (s State) IsSelected(id int64) bool {
	return s.SelectedAccountID != nil && *s.SelectedAccountID == id
}

// NeedsOnboarding reports whether the company is missing or not onboarded.
func (s State) NeedsOnboarding() bool {
	return s.Company.NeedsOnboarding()
}
