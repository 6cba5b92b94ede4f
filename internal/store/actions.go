package store

import "github.com/sells-group/health-cli/internal/model"

// Action is a named state transition. The set is closed: only the types in this
// file implement it.
type Action interface {
	isAction()
}

// CompanyLoaded replaces the cached company.
type CompanyLoaded struct{ Company *model.Company }

// AccountsLoaded replaces the account list wholesale.
type AccountsLoaded struct{ Accounts []model.AccountSummary }

// StatsLoaded replaces the portfolio stats.
type StatsLoaded struct{ Stats *model.Stats }

// LoadingChanged sets the bulk-loading flag.
type LoadingChanged struct{ Loading bool }

// ErrorRecorded sets the process-wide error message. An empty message clears it.
type ErrorRecorded struct{ Message string }

// AccountSelected makes ID the selection, drops any cached detail and advances the
// selection token.
type AccountSelected struct{ ID int64 }

// DetailLoaded installs a fetched detail. It is ignored unless Token is the current
// selection token and the detail belongs to the selected account.
type DetailLoaded struct {
	Token  uint64
	Detail *model.AccountDetail
}

// FilterChanged merges a partial filter update.
type FilterChanged struct{ Patch model.FilterPatch }

// ScanStarted raises the scanning flag and clears the previous feedback and error.
// It is ignored while a scan is already running.
type ScanStarted struct{}

// ScanFinished lowers the scanning flag and stores the outcome.
type ScanFinished struct {
	Feedback *model.ScanFeedback
	Error    string
}

// OutreachStatusChanged sets the outreach status of one anomaly in the cached
// detail. When DetailID is set the change only applies to that account; when
// IfStatus is set it only applies while the anomaly still has that status.
type OutreachStatusChanged struct {
	AnomalyID int64
	Status    model.OutreachStatus
	DetailID  int64
	IfStatus  model.OutreachStatus
}

// ForecastLoaded replaces the cached revenue forecast.
type ForecastLoaded struct{ Forecast *model.RevenueForecast }

// CalendarRequested switches the calendar to Month and drops the previous items.
type CalendarRequested struct{ Month string }

// CalendarLoaded installs calendar items if Month is still the requested month.
type CalendarLoaded struct {
	Month string
	Items []model.RenewalCalendarItem
}

// RenewalSettingsLoaded replaces the cached renewal settings.
type RenewalSettingsLoaded struct{ Settings *model.RenewalSettings }

func (CompanyLoaded) isAction()         {}
func (AccountsLoaded) isAction()        {}
func (StatsLoaded) isAction()           {}
func (LoadingChanged) isAction()        {}
func (ErrorRecorded) isAction()         {}
func (AccountSelected) isAction()       {}
func (DetailLoaded) isAction()          {}
func (FilterChanged) isAction()         {}
func (ScanStarted) isAction()           {}
func (ScanFinished) isAction()          {}
func (OutreachStatusChanged) isAction() {}
func (ForecastLoaded) isAction()        {}
func (CalendarRequested) isAction()     {}
func (CalendarLoaded) isAction()        {}
func (RenewalSettingsLoaded) isAction() {}

// Reduce applies a to s. The second result is false when the action left the state
// unchanged, in which case nothing is published. Reduce never mutates s.
func Reduce(s State, a Action) (State, bool) {
	switch a := a.(type) {
	case CompanyLoaded:
		s.Company = a.Company
	case AccountsLoaded:
		if a.Accounts == nil {
			a.Accounts = []model.AccountSummary{}
		}
		s.Accounts = a.Accounts
	case StatsLoaded:
		s.Stats = a.Stats
	case LoadingChanged:
		if s.Loading == a.Loading {
			return s, false
		}
		s.Loading = a.Loading
	case ErrorRecorded:
		if s.Error == a.Message {
			return s, false
		}
		s.Error = a.Message
	case AccountSelected:
		id := a.ID
		s.SelectedAccountID = &id
		s.SelectedAccount = nil
		s.selection++
	case DetailLoaded:
		if a.Detail == nil || a.Token != s.selection || !s.IsSelected(a.Detail.ID) {
			return s, false
		}
		s.SelectedAccount = a.Detail
	case FilterChanged:
		next := s.Filter.Apply(a.Patch)
		if next == s.Filter {
			return s, false
		}
		s.Filter = next
	case ScanStarted:
		if s.IsScanning {
			return s, false
		}
		s.IsScanning = true
		s.ScanFeedback = nil
		s.Error = ""
	case ScanFinished:
		s.IsScanning = false
		s.ScanFeedback = a.Feedback
		if a.Error != "" {
			s.Error = a.Error
		}
	case OutreachStatusChanged:
		return reduceOutreach(s, a)
	case ForecastLoaded:
		s.Forecast = a.Forecast
	case CalendarRequested:
		if s.CalendarMonth == a.Month && s.Calendar == nil {
			return s, false
		}
		s.CalendarMonth = a.Month
		s.Calendar = nil
	case CalendarLoaded:
		if a.Month != s.CalendarMonth {
			return s, false
		}
		if a.Items == nil {
			a.Items = []model.RenewalCalendarItem{}
		}
		s.Calendar = a.Items
	case RenewalSettingsLoaded:
		s.RenewalSettings = a.Settings
	default:
		return s, false
	}
	return s, true
}

func reduceOutreach(s State, a OutreachStatusChanged) (State, bool) {
	d := s.SelectedAccount
	if d == nil || (a.DetailID != 0 && d.ID != a.DetailID) {
		return s, false
	}
	cur, ok := d.Anomaly(a.AnomalyID)
	if !ok || cur.OutreachStatus == a.Status {
		return s, false
	}
	if a.IfStatus != "" && cur.OutreachStatus != a.IfStatus {
		return s, false
	}
	next, _ := d.WithOutreachStatus(a.AnomalyID, a.Status)
	s.SelectedAccount = next
	return s, true
}

// reduceAll folds actions over s and reports whether any of them changed it.
func reduceAll(s State, actions []Action) (State, bool) {
	changed := false
	for _, a := range actions {
		var ok bool
		s, ok = Reduce(s, a)
		changed = changed || ok
	}
	return s, changed
}
