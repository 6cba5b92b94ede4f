package model

import "github.com/rotisserie/eris"

// StateFilter restricts the account list to one health state, or passes all.
type StateFilter string

// FilterAll passes every account.
const FilterAll StateFilter = "all"

// ParseStateFilter validates a filter value from user input.
func ParseStateFilter(s string) (StateFilter, error) {
	if s == string(FilterAll) {
		return FilterAll, nil
	}
	for _, st := range HealthStates {
		if s == string(st) {
			return StateFilter(st), nil
		}
	}
	return "", eris.Errorf("model: unknown state filter %q", s)
}

// Matches reports whether an account in state st passes the filter.
func (f StateFilter) Matches(st HealthState) bool {
	return f == FilterAll || f == "" || HealthState(f) == st
}

// SortKey orders the account list.
type SortKey string

const (
	// SortScore keeps the server order (composite score).
	SortScore SortKey = "score"
	// SortRenewal orders by ascending days until renewal.
	SortRenewal SortKey = "renewal"
)

// ParseSortKey validates a sort key from user input.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case SortScore, SortRenewal:
		return SortKey(s), nil
	default:
		return "", eris.Errorf("model: unknown sort key %q", s)
	}
}

// FilterState is the session-local list projection.
type FilterState struct {
	StateFilter StateFilter `json:"state_filter" yaml:"state_filter"`
	SortBy      SortKey     `json:"sort_by" yaml:"sort_by"`
}

// DefaultFilterState shows all accounts in server order.
func DefaultFilterState() FilterState {
	return FilterState{StateFilter: FilterAll, SortBy: SortScore}
}

// FilterPatch is a partial FilterState; nil fields keep their current value.
type FilterPatch struct {
	StateFilter *StateFilter
	SortBy      *SortKey
}

// Apply merges the patch into f.
func (f FilterState) Apply(p FilterPatch) FilterState {
	if p.StateFilter != nil {
		f.StateFilter = *p.StateFilter
	}
	if p.SortBy != nil {
		f.SortBy = *p.SortBy
	}
	return f
}
