// Package tui is the interactive account-health dashboard. It renders store
// snapshots and turns key presses into store intents; it never mutates state itself.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sells-group/health-cli/internal/health"
	"github.com/sells-group/health-cli/internal/model"
	"github.com/sells-group/health-cli/internal/store"
)

type focus int

const (
	focusList focus = iota
	focusDetail
)

type refreshTickMsg struct{}

// Option configures the dashboard.
type Option func(*Model)

// WithRefreshInterval reloads the portfolio periodically. Zero disables it.
func WithRefreshInterval(d time.Duration) Option {
	return func(m *Model) { m.refresh = d }
}

// WithClock replaces the wall clock used for renewal countdowns.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Model) { m.log = l }
}

// Model is the bubbletea model of the dashboard.
type Model struct {
	ctx     context.Context
	store   *store.Store
	log     *zap.Logger
	keys    keyMap
	now     func() time.Time
	refresh time.Duration

	changes     <-chan struct{}
	unsubscribe func()

	state   store.State
	visible []model.AccountSummary

	table   table.Model
	detail  viewport.Model
	spinner spinner.Model
	focus   focus
	status  string
	failed  bool

	// selecting is set while the automatic first selection is in flight.
	selecting bool

	width  int
	height int
}

var accountColumns = []table.Column{
	{Title: "Account", Width: 18},
	{Title: "Tier", Width: 8},
	{Title: "Score", Width: 6},
	{Title: "Trend", Width: 6},
	{Title: "State", Width: 9},
	{Title: "MRR", Width: 8},
	{Title: "Renewal", Width: 8},
	{Title: "!", Width: 1},
}

// New returns a dashboard bound to s. Intents run under ctx.
func New(ctx context.Context, s *store.Store, opts ...Option) Model {
	m := Model{
		ctx:   ctx,
		store: s,
		log:   zap.L().Named("tui"),
		keys:  defaultKeys,
		now:   time.Now,
		state: s.Snapshot(),
	}
	for _, o := range opts {
		o(&m)
	}

	m.changes, m.unsubscribe = watch(s)
	m.table = table.New(
		table.WithColumns(accountColumns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	m.detail = viewport.New(60, 12)
	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	m.sync()
	return m
}

// Close detaches the dashboard from the store.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		listenForState(m.store, m.changes),
		m.intent("refresh", m.store.RefreshAll),
		m.spinner.Tick,
	}
	if m.refresh > 0 {
		cmds = append(cmds, m.tick())
	}
	return tea.Batch(cmds...)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(time.Time) tea.Msg { return refreshTickMsg{} })
}

// intent runs a store operation off the update loop and reports its outcome.
func (m Model) intent(op string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return resultMsg{op: op, err: fn(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case stateMsg:
		if msg.state.Version >= m.state.Version {
			m.state = msg.state
			m.sync()
		}
		return m, tea.Batch(listenForState(m.store, m.changes), m.autoSelect())

	case resultMsg:
		if msg.op == "select" {
			m.selecting = false
		}
		switch {
		case msg.err != nil && quietOps[msg.op]:
			m.log.Warn("tui: intent failed", zap.String("op", msg.op), zap.Error(msg.err))
		case msg.err != nil:
			m.log.Warn("tui: intent failed", zap.String("op", msg.op), zap.Error(msg.err))
			m.status, m.failed = fmt.Sprintf("%s failed: %v", msg.op, msg.err), true
		case msg.op != "select" && msg.op != "refresh":
			m.status, m.failed = msg.op+" done", false
		}
		return m, nil

	case refreshTickMsg:
		var cmd tea.Cmd
		if !m.state.Loading && !m.state.IsScanning {
			cmd = m.intent("refresh", m.store.RefreshAll)
		}
		return m, tea.Batch(cmd, m.tick())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Focus):
		if m.focus == focusList {
			m.focus = focusDetail
			m.table.Blur()
		} else {
			m.focus = focusList
			m.table.Focus()
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		a, ok := m.cursorAccount()
		if !ok {
			return m, nil
		}
		return m, m.intent("select", func(ctx context.Context) error {
			return m.store.SelectAccount(ctx, a.ID)
		})

	case key.Matches(msg, m.keys.Filter):
		next := nextStateFilter(m.state.Filter.StateFilter)
		m.store.SetFilter(model.FilterPatch{StateFilter: &next})
		return m, nil

	case key.Matches(msg, m.keys.Sort):
		next := model.SortRenewal
		if m.state.Filter.SortBy == model.SortRenewal {
			next = model.SortScore
		}
		m.store.SetFilter(model.FilterPatch{SortBy: &next})
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.intent("refresh", m.store.RefreshAll)

	case key.Matches(msg, m.keys.Scan):
		if m.state.IsScanning {
			return m, nil
		}
		return m, m.intent("scan", m.store.RunScan)

	case key.Matches(msg, m.keys.Approve), key.Matches(msg, m.keys.Reject):
		pending := health.PendingApprovals(m.state.ActiveDetail())
		if len(pending) == 0 {
			m.status, m.failed = "no outreach awaiting approval", false
			return m, nil
		}
		id := pending[0].ID
		if key.Matches(msg, m.keys.Approve) {
			return m, m.intent("approve", func(ctx context.Context) error {
				return m.store.ApproveOutreach(ctx, id)
			})
		}
		return m, m.intent("reject", func(ctx context.Context) error {
			return m.store.RejectOutreach(ctx, id)
		})
	}

	var cmd tea.Cmd
	if m.focus == focusDetail {
		m.detail, cmd = m.detail.Update(msg)
	} else {
		m.table, cmd = m.table.Update(msg)
	}
	return m, cmd
}

// quietOps fail without a footer message; the next refresh shows the server's view.
var quietOps = map[string]bool{"select": true, "approve": true, "reject": true}

// autoSelect selects the first visible account when nothing is selected yet.
func (m *Model) autoSelect() tea.Cmd {
	if m.state.SelectedAccountID != nil {
		m.selecting = false
		return nil
	}
	if m.selecting || len(m.visible) == 0 {
		return nil
	}
	m.selecting = true
	s, id := m.store, m.visible[0].ID
	return m.intent("select", func(ctx context.Context) error {
		return s.SelectAccount(ctx, id)
	})
}

var stateFilterCycle = []model.StateFilter{
	model.FilterAll,
	model.StateFilter(model.StateCritical),
	model.StateFilter(model.StateAtRisk),
	model.StateFilter(model.StateGood),
	model.StateFilter(model.StateHealthy),
}

func nextStateFilter(cur model.StateFilter) model.StateFilter {
	for i, f := range stateFilterCycle {
		if f == cur {
			return stateFilterCycle[(i+1)%len(stateFilterCycle)]
		}
	}
	return model.FilterAll
}

func (m Model) cursorAccount() (model.AccountSummary, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.visible) {
		return model.AccountSummary{}, false
	}
	return m.visible[i], true
}

// sync rebuilds derived views from m.state. The cursor follows the account it was
// on when the list reorders.
func (m *Model) sync() {
	var cursorID int64 = -1
	if a, ok := m.cursorAccount(); ok {
		cursorID = a.ID
	}

	now := m.now()
	m.visible = m.state.VisibleAccounts(now)
	rows := make([]table.Row, 0, len(m.visible))
	cursor := 0
	for i, a := range m.visible {
		if a.ID == cursorID {
			cursor = i
		}
		flag := ""
		if a.HasPendingAnomaly {
			flag = "●"
		}
		rows = append(rows, table.Row{
			a.Name,
			string(a.Tier),
			strconv.FormatFloat(a.Composite, 'f', 1, 64),
			health.FormatTrendDelta(a.TrendDelta),
			health.Label(a.State),
			health.FormatMRR(a.MRR),
			health.FormatRenewal(a.RenewalDate, now),
			flag,
		})
	}
	m.table.SetRows(rows)
	if len(rows) > 0 {
		m.table.SetCursor(cursor)
	}
	m.detail.SetContent(renderDetail(m.state, now))
}

func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	body := max(m.height-8, 5)
	m.table.SetHeight(body)
	m.detail.Width = max(m.width-tableWidth()-8, 20)
	m.detail.Height = body
}

func tableWidth() int {
	w := 0
	for _, c := range accountColumns {
		w += c.Width + 2
	}
	return w
}

// Run starts the dashboard and blocks until the user quits or ctx ends.
func Run(ctx context.Context, s *store.Store, opts ...Option) error {
	m := New(ctx, s, opts...)
	defer m.Close()
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
