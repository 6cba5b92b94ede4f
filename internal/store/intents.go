package store

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/health-cli/internal/model"
)

// ErrScanInProgress is returned by RunScan while another scan is running.
var ErrScanInProgress = eris.New("store: scan already in progress")

// bulk holds the results of the three bulk reads. A nil field means that read failed.
type bulk struct {
	company  *model.Company
	accounts []model.AccountSummary
	stats    *model.Stats
}

func (b bulk) actions() []Action {
	var out []Action
	if b.company != nil {
		out = append(out, CompanyLoaded{Company: b.company})
	}
	if b.accounts != nil {
		out = append(out, AccountsLoaded{Accounts: b.accounts})
	}
	if b.stats != nil {
		out = append(out, StatsLoaded{Stats: b.stats})
	}
	return out
}

// fetchBulk issues the company, account and stats reads concurrently and waits for
// all of them. Successful reads are kept even when another one fails; the error is
// the first failure.
func (s *Store) fetchBulk(ctx context.Context, withCompany bool) (bulk, error) {
	var (
		b bulk
		g errgroup.Group
	)
	if withCompany {
		g.Go(func() error {
			c, err := s.client.FetchCompany(ctx)
			if err != nil {
				return err
			}
			b.company = c
			return nil
		})
	}
	g.Go(func() error {
		accounts, err := s.client.ListAccounts(ctx)
		if err != nil {
			return err
		}
		b.accounts = accounts
		return nil
	})
	g.Go(func() error {
		st, err := s.client.FetchStats(ctx)
		if err != nil {
			return err
		}
		b.stats = st
		return nil
	})
	err := g.Wait()
	return b, err
}

// RefreshAll reloads company, accounts and stats. Loading is raised for the duration
// and always lowered afterwards. Partial results are installed; the first failure is
// recorded as the store error and returned. A clean refresh clears the error.
func (s *Store) RefreshAll(ctx context.Context) error {
	s.Dispatch(LoadingChanged{Loading: true})

	var (
		b   bulk
		err error
	)
	defer func() {
		final := append(b.actions(), ErrorRecorded{})
		if err != nil {
			final[len(final)-1] = ErrorRecorded{Message: err.Error()}
		}
		s.Dispatch(append(final, LoadingChanged{Loading: false})...)
	}()

	b, err = s.fetchBulk(ctx, true)
	if err != nil {
		s.log.Warn("store: refresh all failed", zap.Error(err))
	}
	return err
}

// RefreshCompany reloads only the company record.
func (s *Store) RefreshCompany(ctx context.Context) error {
	c, err := s.client.FetchCompany(ctx)
	if err != nil {
		s.log.Warn("store: refresh company failed", zap.Error(err))
		return err
	}
	s.Dispatch(CompanyLoaded{Company: c})
	return nil
}

// SelectAccount makes id the selection and loads its detail. The previous detail
// is dropped at once, and a fetch started by an earlier selection is cancelled. A
// detail that arrives for a superseded selection is discarded.
func (s *Store) SelectAccount(ctx context.Context, id int64) error {
	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	next, _ := s.transition(func(State) []Action {
		// Runs under the store lock so selection and cancellation stay paired.
		if s.cancelSelect != nil {
			s.cancelSelect()
		}
		s.cancelSelect = cancel
		return []Action{AccountSelected{ID: id}}
	})
	token := next.selection

	detail, err := s.client.FetchAccountDetail(fetchCtx, id)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() == nil {
			s.log.Debug("store: detail fetch superseded", zap.Int64("account_id", id))
			return nil
		}
		s.log.Warn("store: fetch account detail failed", zap.Int64("account_id", id), zap.Error(err))
		return err
	}
	if _, ok := s.Dispatch(DetailLoaded{Token: token, Detail: detail}); !ok {
		s.log.Debug("store: discarded stale detail", zap.Int64("account_id", id))
	}
	return nil
}

// refreshSelected refetches the detail of the current selection, if any, under the
// selection token current at call time.
func (s *Store) refreshSelected(ctx context.Context) error {
	st := s.Snapshot()
	if st.SelectedAccountID == nil {
		return nil
	}
	id, token := *st.SelectedAccountID, st.selection
	detail, err := s.client.FetchAccountDetail(ctx, id)
	if err != nil {
		return err
	}
	s.Dispatch(DetailLoaded{Token: token, Detail: detail})
	return nil
}

// RunScan triggers a server-side scan and then reloads company, accounts, stats and
// the selected detail. Only one scan runs at a time; a second call returns
// ErrScanInProgress without contacting the server. The scanning flag is always
// lowered when RunScan returns.
func (s *Store) RunScan(ctx context.Context) error {
	if _, started := s.Dispatch(ScanStarted{}); !started {
		return ErrScanInProgress
	}

	var (
		feedback *model.ScanFeedback
		err      error
	)
	defer func() {
		fin := ScanFinished{Feedback: feedback}
		if err != nil {
			fin.Error = err.Error()
		}
		s.Dispatch(fin)
	}()

	var resp *model.ScanResponse
	if resp, err = s.client.RunScan(ctx); err == nil {
		var b bulk
		b, err = s.fetchBulk(ctx, true)
		s.Dispatch(b.actions()...)
		if err == nil {
			err = s.refreshSelected(ctx)
		}
	}
	if err != nil {
		s.log.Warn("store: scan failed", zap.Error(err))
		feedback = &model.ScanFeedback{Kind: model.FeedbackError, Message: "Scan failed: " + err.Error()}
		return err
	}

	feedback = &model.ScanFeedback{Kind: model.FeedbackSuccess, Message: resp.Summary.Message()}
	s.log.Info("store: scan complete", zap.String("summary", feedback.Message))
	return nil
}

// ApproveOutreach marks the anomaly's outreach as sent, asks the server to send it,
// then refreshes accounts and stats.
func (s *Store) ApproveOutreach(ctx context.Context, anomalyID int64) error {
	undo := s.setOutreach(anomalyID, model.OutreachSent)
	if _, err := s.client.ApproveOutreach(ctx, anomalyID); err != nil {
		s.outreachFailed("approve", anomalyID, undo, err)
		return err
	}

	b, err := s.fetchBulk(ctx, false)
	s.Dispatch(b.actions()...)
	if err != nil {
		s.log.Warn("store: refresh after approve failed", zap.Int64("anomaly_id", anomalyID), zap.Error(err))
	}
	return nil
}

// RejectOutreach marks the anomaly's outreach as rejected and tells the server.
func (s *Store) RejectOutreach(ctx context.Context, anomalyID int64) error {
	undo := s.setOutreach(anomalyID, model.OutreachRejected)
	if _, err := s.client.RejectOutreach(ctx, anomalyID); err != nil {
		s.outreachFailed("reject", anomalyID, undo, err)
		return err
	}
	return nil
}

// setOutreach applies an optimistic outreach status and returns the action that
// restores the previous one, or nil if nothing changed.
func (s *Store) setOutreach(anomalyID int64, status model.OutreachStatus) *OutreachStatusChanged {
	var undo *OutreachStatusChanged
	s.transition(func(st State) []Action {
		a, ok := st.SelectedAccount.Anomaly(anomalyID)
		if !ok || a.OutreachStatus == status {
			return nil
		}
		undo = &OutreachStatusChanged{
			AnomalyID: anomalyID,
			Status:    a.OutreachStatus,
			DetailID:  st.SelectedAccount.ID,
			IfStatus:  status,
		}
		return []Action{OutreachStatusChanged{AnomalyID: anomalyID, Status: status}}
	})
	return undo
}

func (s *Store) outreachFailed(op string, anomalyID int64, undo *OutreachStatusChanged, err error) {
	s.log.Warn("store: "+op+" outreach failed", zap.Int64("anomaly_id", anomalyID), zap.Error(err))
	if s.opts.RollbackOutreach && undo != nil {
		s.Dispatch(*undo)
	}
}

// SetFilter merges a partial filter update. No remote call is made.
func (s *Store) SetFilter(patch model.FilterPatch) {
	s.Dispatch(FilterChanged{Patch: patch})
}
