package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sells-group/health-cli/internal/store"
)

// stateMsg carries a published store snapshot into the update loop.
type stateMsg struct {
	state store.State
}

// resultMsg reports the outcome of an intent run in the background.
type resultMsg struct {
	op  string
	err error
}

// watch subscribes to s. Notifications are coalesced into a single pending signal
// so a slow renderer never blocks the store; the receiver reads the newest snapshot.
// The returned stop func unsubscribes and closes the channel; it may be called more
// than once.
func watch(s *store.Store) (<-chan struct{}, func()) {
	var (
		mu     sync.Mutex
		closed bool
		once   sync.Once
	)
	ch := make(chan struct{}, 1)
	unsubscribe := s.Subscribe(func(store.State) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- struct{}{}:
		default:
		}
	})
	stop := func() {
		once.Do(func() {
			unsubscribe()
			mu.Lock()
			closed = true
			close(ch)
			mu.Unlock()
		})
	}
	return ch, stop
}

// listenForState blocks until the store changes and delivers the latest snapshot.
func listenForState(s *store.Store, changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return stateMsg{state: s.Snapshot()}
	}
}
