package tui

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/health-cli/internal/demo"
	"github.com/sells-group/health-cli/internal/model"
	"github.com/sells-group/health-cli/internal/store"
	"github.com/sells-group/health-cli/pkg/healthapi"
)

var testNow = time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T) (Model, *store.Store) {
	t.Helper()
	srv := demo.New(demo.WithClock(func() time.Time { return testNow }), demo.WithLogger(zap.NewNop()))
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	client := healthapi.NewClient(healthapi.WithBaseURL(ts.URL), healthapi.WithLogger(zap.NewNop()))
	s := store.New(client, store.WithLogger(zap.NewNop()))
	t.Cleanup(s.Close)

	m := New(context.Background(), s, WithClock(func() time.Time { return testNow }), WithLogger(zap.NewNop()))
	t.Cleanup(m.Close)
	return m, s
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

// settle feeds the latest store snapshot to the model.
func settle(t *testing.T, m Model, s *store.Store) Model {
	t.Helper()
	m, _ = update(t, m, stateMsg{state: s.Snapshot()})
	return m
}

func loaded(t *testing.T) (Model, *store.Store) {
	t.Helper()
	m, s := newTestModel(t)
	require.NoError(t, s.RefreshAll(context.Background()))
	return settle(t, m, s), s
}

func TestStateMsg_PopulatesList(t *testing.T) {
	m, _ := loaded(t)

	assert.Len(t, m.visible, 14)
	assert.Equal(t, model.StateCritical, m.visible[0].State)
	view := m.View()
	assert.Contains(t, view, m.visible[0].Name)
	assert.Contains(t, view, "Demo Company")
	assert.Contains(t, view, "onboarding incomplete")
}

func TestStateMsg_IgnoresOlderSnapshot(t *testing.T) {
	m, s := loaded(t)
	current := m.state.Version

	stale := s.Snapshot()
	stale.Version = current - 1
	stale.Accounts = nil
	m, _ = update(t, m, stateMsg{state: stale})

	assert.Equal(t, current, m.state.Version)
	assert.Len(t, m.visible, 14)
}

func TestFilterAndSortKeys(t *testing.T) {
	m, s := loaded(t)

	m, cmd := update(t, m, keyPress("f"))
	assert.Nil(t, cmd)
	assert.Equal(t, model.StateFilter(model.StateCritical), s.Snapshot().Filter.StateFilter)

	m = settle(t, m, s)
	require.NotEmpty(t, m.visible)
	for _, a := range m.visible {
		assert.Equal(t, model.StateCritical, a.State)
	}

	m, _ = update(t, m, keyPress("o"))
	assert.Equal(t, model.SortRenewal, s.Snapshot().Filter.SortBy)
	_, _ = update(t, m, keyPress("o"))
	assert.Equal(t, model.SortScore, s.Snapshot().Filter.SortBy)
}

func TestNextStateFilterCycles(t *testing.T) {
	f := model.FilterAll
	for range stateFilterCycle {
		f = nextStateFilter(f)
	}
	assert.Equal(t, model.FilterAll, f)
	assert.Equal(t, model.FilterAll, nextStateFilter("bogus"))
}

func TestSelectAndApprove(t *testing.T) {
	m, s := loaded(t)
	worst := m.visible[0]

	m, cmd := update(t, m, keyPress("enter"))
	require.NotNil(t, cmd)
	res, ok := cmd().(resultMsg)
	require.True(t, ok)
	require.NoError(t, res.err)
	m = settle(t, m, s)
	assert.Equal(t, worst.ID, m.state.ActiveDetail().ID)
	assert.Contains(t, renderDetail(m.state, testNow), "Awaiting approval")

	m, cmd = update(t, m, keyPress("a"))
	require.NotNil(t, cmd)
	res = cmd().(resultMsg)
	require.NoError(t, res.err)
	m, _ = update(t, m, res)
	assert.Equal(t, "approve done", m.status)

	m = settle(t, m, s)
	assert.NotContains(t, renderDetail(m.state, testNow), "Awaiting approval")
}

func TestApproveWithoutPendingOutreach(t *testing.T) {
	m, _ := loaded(t)

	m, cmd := update(t, m, keyPress("a"))
	assert.Nil(t, cmd)
	assert.Equal(t, "no outreach awaiting approval", m.status)
}

func TestScanKey(t *testing.T) {
	m, s := loaded(t)

	m, cmd := update(t, m, keyPress("s"))
	require.NotNil(t, cmd)
	require.NoError(t, cmd().(resultMsg).err)

	m = settle(t, m, s)
	require.NotNil(t, m.state.ScanFeedback)
	assert.Contains(t, m.View(), "Scanned 14 accounts.")
}

func TestResultErrorShownInFooter(t *testing.T) {
	m, _ := loaded(t)

	m, _ = update(t, m, resultMsg{op: "scan", err: errors.New("boom")})
	assert.True(t, m.failed)
	assert.Contains(t, m.View(), "scan failed: boom")
}

func TestFocusToggle(t *testing.T) {
	m, _ := loaded(t)

	m, _ = update(t, m, keyPress("tab"))
	assert.Equal(t, focusDetail, m.focus)
	m, _ = update(t, m, keyPress("tab"))
	assert.Equal(t, focusList, m.focus)
}

func TestQuit(t *testing.T) {
	m, _ := loaded(t)

	_, cmd := update(t, m, keyPress("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestWatchCoalescesNotifications(t *testing.T) {
	m, s := newTestModel(t)

	for i := range 5 {
		s.Dispatch(store.ErrorRecorded{Message: string(rune('a' + i))})
	}
	assert.Len(t, m.changes, 1)

	msg := listenForState(s, m.changes)().(stateMsg)
	assert.Equal(t, "e", msg.state.Error)
	assert.Equal(t, s.Snapshot().Version, msg.state.Version)
}

func TestRefreshTick(t *testing.T) {
	m, _ := newTestModel(t)
	m.refresh = time.Minute

	_, cmd := update(t, m, refreshTickMsg{})
	assert.NotNil(t, cmd)
}

func TestStateMsg_AutoSelectsFirstAccount(t *testing.T) {
	m, s := newTestModel(t)
	require.NoError(t, s.RefreshAll(context.Background()))

	m, cmd := update(t, m, stateMsg{state: s.Snapshot()})
	require.NotNil(t, cmd)
	assert.True(t, m.selecting)
	assert.Nil(t, m.autoSelect(), "one automatic selection at a time")

	m.selecting = false
	sel := m.autoSelect()
	require.NotNil(t, sel)
	res, ok := sel().(resultMsg)
	require.True(t, ok)
	assert.Equal(t, "select", res.op)
	require.NoError(t, res.err)

	m, _ = update(t, m, res)
	m = settle(t, m, s)
	require.NotNil(t, m.state.SelectedAccountID)
	assert.Equal(t, m.visible[0].ID, *m.state.SelectedAccountID)
	assert.False(t, m.selecting)
	assert.Nil(t, m.autoSelect(), "an existing selection is kept")
	assert.Empty(t, m.status)
}

func TestAutoSelect_NothingToSelect(t *testing.T) {
	m, _ := newTestModel(t)

	assert.Nil(t, m.autoSelect())
	assert.False(t, m.selecting)
}

func TestSelectAndOutreachFailuresAreLoggedOnly(t *testing.T) {
	m, _ := loaded(t)

	for _, op := range []string{"select", "approve", "reject"} {
		next, _ := update(t, m, resultMsg{op: op, err: errors.New("boom")})
		assert.Empty(t, next.status, op)
		assert.False(t, next.failed, op)
		assert.NotContains(t, next.View(), "boom", op)
	}
}

func TestCloseReleasesPendingListener(t *testing.T) {
	m, s := newTestModel(t)

	done := make(chan tea.Msg, 1)
	go func() { done <- listenForState(s, m.changes)() }()

	m.Close()
	m.Close()

	select {
	case msg := <-done:
		assert.Nil(t, msg)
	case <-time.After(time.Second):
		t.Fatal("listener still blocked after Close")
	}

	// Notifications after Close must not touch the closed channel.
	s.Dispatch(store.ErrorRecorded{Message: "after close"})
}
