package store

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/health-cli/internal/model"
)

// ErrSettingsNotLoaded is returned when renewal settings are changed before they
// have been loaded.
var ErrSettingsNotLoaded = eris.New("store: renewal settings not loaded")

// SaveCompany applies a partial company update and installs the server's copy.
func (s *Store) SaveCompany(ctx context.Context, patch model.CompanyPatch) (*model.Company, error) {
	if patch.Empty() {
		return s.Snapshot().Company, nil
	}
	c, err := s.client.SaveCompany(ctx, patch)
	if err != nil {
		s.log.Warn("store: save company failed", zap.Error(err))
		return nil, err
	}
	s.Dispatch(CompanyLoaded{Company: c})
	return c, nil
}

// CompleteOnboarding submits the onboarding configuration and reloads everything.
func (s *Store) CompleteOnboarding(ctx context.Context, cfg model.OnboardingConfig) error {
	if !cfg.AutonomyMode.Valid() {
		return eris.Errorf("store: invalid autonomy mode %q", cfg.AutonomyMode)
	}
	if _, err := s.client.CompleteOnboarding(ctx, cfg); err != nil {
		s.log.Warn("store: onboarding failed", zap.Error(err))
		return err
	}
	return s.RefreshAll(ctx)
}

// LoadForecast loads the revenue forecast once. force reloads a cached forecast.
func (s *Store) LoadForecast(ctx context.Context, force bool) error {
	if !force && s.Snapshot().Forecast != nil {
		return nil
	}
	f, err := s.client.FetchRevenueForecast(ctx)
	if err != nil {
		s.log.Warn("store: load forecast failed", zap.Error(err))
		return err
	}
	s.Dispatch(ForecastLoaded{Forecast: f})
	return nil
}

// LoadRenewalCalendar switches the calendar to month ("YYYY-MM") and loads it. Items
// for a month that is no longer requested when they arrive are discarded.
func (s *Store) LoadRenewalCalendar(ctx context.Context, month string) error {
	if _, err := model.ParseMonthKey(month); err != nil {
		return err
	}
	s.Dispatch(CalendarRequested{Month: month})

	items, err := s.client.FetchRenewalCalendar(ctx, month)
	if err != nil {
		s.log.Warn("store: load renewal calendar failed", zap.String("month", month), zap.Error(err))
		return err
	}
	if _, ok := s.Dispatch(CalendarLoaded{Month: month, Items: items}); !ok {
		s.log.Debug("store: discarded stale calendar", zap.String("month", month))
	}
	return nil
}

// LoadRenewalSettings loads the renewal reminder settings.
func (s *Store) LoadRenewalSettings(ctx context.Context) error {
	rs, err := s.client.FetchRenewalSettings(ctx)
	if err != nil {
		s.log.Warn("store: load renewal settings failed", zap.Error(err))
		return err
	}
	s.Dispatch(RenewalSettingsLoaded{Settings: rs})
	return nil
}

// UpdateRenewalSettings applies patch optimistically and saves it. On failure the
// previous settings are restored.
func (s *Store) UpdateRenewalSettings(ctx context.Context, patch model.RenewalSettingsPatch) error {
	var prev *model.RenewalSettings
	s.transition(func(st State) []Action {
		if st.RenewalSettings == nil {
			return nil
		}
		prev = st.RenewalSettings
		next := prev.Apply(patch)
		return []Action{RenewalSettingsLoaded{Settings: &next}}
	})
	if prev == nil {
		return ErrSettingsNotLoaded
	}

	saved, err := s.client.SaveRenewalSettings(ctx, patch)
	if err != nil {
		s.log.Warn("store: save renewal settings failed", zap.Error(err))
		s.Dispatch(RenewalSettingsLoaded{Settings: prev})
		return err
	}
	s.Dispatch(RenewalSettingsLoaded{Settings: saved})
	return nil
}

// ToggleLeadTime adds or removes a reminder lead time.
func (s *Store) ToggleLeadTime(ctx context.Context, days int) error {
	rs := s.Snapshot().RenewalSettings
	if rs == nil {
		return ErrSettingsNotLoaded
	}
	lead := rs.ToggleLeadTime(days)
	return s.UpdateRenewalSettings(ctx, model.RenewalSettingsPatch{LeadTimesDays: lead})
}

// ReseedDemoData asks the server to regenerate its demo data. The cache is not
// refreshed; callers follow up with RefreshAll.
func (s *Store) ReseedDemoData(ctx context.Context) error {
	if _, err := s.client.ReseedDemoData(ctx); err != nil {
		s.log.Warn("store: reseed failed", zap.Error(err))
		return err
	}
	s.log.Info("store: demo data reseeded")
	return nil
}
