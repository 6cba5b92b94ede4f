package store

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/sells-group/health-cli/internal/model"
	"github.com/sells-group/health-cli/pkg/healthapi"
)

// fakeClient serves canned data. Any func field that is set replaces the canned
// behavior for that operation.
type fakeClient struct {
	mu    sync.Mutex
	calls map[string]int

	company  *model.Company
	accounts []model.AccountSummary
	stats    *model.Stats
	details  map[int64]*model.AccountDetail
	forecast *model.RevenueForecast
	settings *model.RenewalSettings
	summary  model.ScanSummary

	fetchCompany  func(context.Context) (*model.Company, error)
	listAccounts  func(context.Context) ([]model.AccountSummary, error)
	fetchStats    func(context.Context) (*model.Stats, error)
	fetchDetail   func(context.Context, int64) (*model.AccountDetail, error)
	runScan       func(context.Context) (*model.ScanResponse, error)
	approve       func(context.Context, int64) (*model.Ack, error)
	reject        func(context.Context, int64) (*model.Ack, error)
	fetchCalendar func(context.Context, string) ([]model.RenewalCalendarItem, error)
	saveSettings  func(context.Context, model.RenewalSettingsPatch) (*model.RenewalSettings, error)
}

var _ healthapi.Client = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	draft := "Hi team, noticed a drop in logins."
	return &fakeClient{
		calls:   make(map[string]int),
		company: &model.Company{ID: 1, Name: "Acme", OnboardingComplete: true, CriticalThreshold: 40, AtRiskThreshold: 70},
		accounts: []model.AccountSummary{
			{ID: 1, Name: "Initech", Composite: 22, State: model.StateCritical},
			{ID: 2, Name: "Globex", Composite: 88, State: model.StateHealthy},
		},
		stats: &model.Stats{TotalAccounts: 2, CriticalCount: 1},
		details: map[int64]*model.AccountDetail{
			1: {ID: 1, Name: "Initech", Anomalies: []model.Anomaly{
				{ID: 10, OutreachStatus: model.OutreachPending, OutreachDraft: &draft},
				{ID: 11, OutreachStatus: model.OutreachSent, OutreachDraft: &draft},
			}},
			2: {ID: 2, Name: "Globex"},
		},
		forecast: &model.RevenueForecast{},
		settings: &model.RenewalSettings{Enabled: true, LeadTimesDays: []int{30, 7}},
		summary:  model.ScanSummary{AccountsScanned: 2, HealthScoresCreated: 2},
	}
}

func (f *fakeClient) record(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeClient) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeClient) FetchCompany(ctx context.Context) (*model.Company, error) {
	f.record("company")
	if f.fetchCompany != nil {
		return f.fetchCompany(ctx)
	}
	c := *f.company
	return &c, nil
}

func (f *fakeClient) SaveCompany(_ context.Context, p model.CompanyPatch) (*model.Company, error) {
	f.record("save_company")
	c := *f.company
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.CriticalThreshold != nil {
		c.CriticalThreshold = *p.CriticalThreshold
	}
	return &c, nil
}

func (f *fakeClient) CompleteOnboarding(_ context.Context, cfg model.OnboardingConfig) (*model.Ack, error) {
	f.record("onboarding")
	f.company.OnboardingComplete = true
	f.company.Name = cfg.CompanyName
	return &model.Ack{Status: "ok"}, nil
}

func (f *fakeClient) ListAccounts(ctx context.Context) ([]model.AccountSummary, error) {
	f.record("accounts")
	if f.listAccounts != nil {
		return f.listAccounts(ctx)
	}
	return f.accounts, nil
}

func (f *fakeClient) FetchAccountDetail(ctx context.Context, id int64) (*model.AccountDetail, error) {
	f.record("detail")
	if f.fetchDetail != nil {
		return f.fetchDetail(ctx, id)
	}
	return f.details[id], nil
}

func (f *fakeClient) FetchStats(ctx context.Context) (*model.Stats, error) {
	f.record("stats")
	if f.fetchStats != nil {
		return f.fetchStats(ctx)
	}
	return f.stats, nil
}

func (f *fakeClient) FetchRevenueForecast(context.Context) (*model.RevenueForecast, error) {
	f.record("forecast")
	return f.forecast, nil
}

func (f *fakeClient) FetchRenewalCalendar(ctx context.Context, month string) ([]model.RenewalCalendarItem, error) {
	f.record("calendar")
	if f.fetchCalendar != nil {
		return f.fetchCalendar(ctx, month)
	}
	return []model.RenewalCalendarItem{}, nil
}

func (f *fakeClient) FetchRenewalSettings(context.Context) (*model.RenewalSettings, error) {
	f.record("settings")
	return f.settings, nil
}

func (f *fakeClient) SaveRenewalSettings(ctx context.Context, p model.RenewalSettingsPatch) (*model.RenewalSettings, error) {
	f.record("save_settings")
	if f.saveSettings != nil {
		return f.saveSettings(ctx, p)
	}
	rs := f.settings.Apply(p)
	return &rs, nil
}

func (f *fakeClient) ApproveOutreach(ctx context.Context, id int64) (*model.Ack, error) {
	f.record("approve")
	if f.approve != nil {
		return f.approve(ctx, id)
	}
	return &model.Ack{Status: "sent"}, nil
}

func (f *fakeClient) RejectOutreach(ctx context.Context, id int64) (*model.Ack, error) {
	f.record("reject")
	if f.reject != nil {
		return f.reject(ctx, id)
	}
	return &model.Ack{Status: "rejected"}, nil
}

func (f *fakeClient) RunScan(ctx context.Context) (*model.ScanResponse, error) {
	f.record("scan")
	if f.runScan != nil {
		return f.runScan(ctx)
	}
	return &model.ScanResponse{Status: "ok", Summary: f.summary}, nil
}

func (f *fakeClient) ReseedDemoData(context.Context) (*model.Ack, error) {
	f.record("seed")
	return &model.Ack{Status: "ok"}, nil
}

func newTestStore(t *testing.T, fc *fakeClient, opts ...Option) *Store {
	t.Helper()
	s := New(fc, append([]Option{WithLogger(zap.NewNop())}, opts...)...)
	t.Cleanup(s.Close)
	return s
}

// recorder collects every published state.
type recorder struct {
	mu     sync.Mutex
	states []State
}

func (r *recorder) listen(st State) {
	r.mu.Lock()
	r.states = append(r.states, st)
	r.mu.Unlock()
}

func (r *recorder) all() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]State, len(r.states))
	copy(out, r.states)
	return out
}
