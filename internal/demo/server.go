package demo

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/health-cli/internal/model"
)

// Server serves the account-health API from an in-memory dataset.
type Server struct {
	log   *zap.Logger
	clock func() time.Time

	mu       sync.Mutex
	data     *dataset
	failures map[string]int
}

// Option configures a Server.
type Option func(*Server)

// WithClock replaces the wall clock, mainly for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.clock = now }
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New returns a server seeded with the demo dataset.
func New(opts ...Option) *Server {
	s := &Server{
		log:      zap.L().Named("demo"),
		clock:    time.Now,
		failures: make(map[string]int),
	}
	for _, o := range opts {
		o(s)
	}
	s.data = seed(s.now())
	return s
}

func (s *Server) now() time.Time {
	return s.clock().UTC()
}

// Fail makes every request to path answer with status until Recover is called.
func (s *Server) Fail(path string, status int) {
	s.mu.Lock()
	s.failures[path] = status
	s.mu.Unlock()
}

// Recover clears an injected failure.
func (s *Server) Recover(path string) {
	s.mu.Lock()
	delete(s.failures, path)
	s.mu.Unlock()
}

// Routes returns the HTTP handler for the API.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(s.injectFailures)

	r.Route("/api", func(r chi.Router) {
		r.Get("/company", s.getCompany)
		r.Put("/company", s.putCompany)
		r.Post("/onboarding", s.postOnboarding)
		r.Get("/accounts", s.listAccounts)
		r.Get("/accounts/{id}", s.getAccount)
		r.Get("/stats", s.getStats)
		r.Get("/revenue-forecast", s.getForecast)
		r.Get("/renewals/calendar", s.getCalendar)
		r.Get("/renewals/notification-settings", s.getSettings)
		r.Put("/renewals/notification-settings", s.putSettings)
		r.Post("/anomalies/{id}/approve", s.outreach(model.OutreachSent))
		r.Post("/anomalies/{id}/reject", s.outreach(model.OutreachRejected))
		r.Post("/run-scan", s.runScan)
		r.Post("/seed", s.reseed)
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status, ok := s.failures[r.URL.Path]
		s.mu.Unlock()
		if ok {
			writeError(w, status, http.StatusText(status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("demo: encode response", zap.Error(err))
	}
}

// writeError writes the {"detail": ...} error body the client surfaces.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid id: "+raw)
		return 0, false
	}
	return id, true
}

func (s *Server) getCompany(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	c := s.data.company
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) putCompany(w http.ResponseWriter, r *http.Request) {
	var p model.CompanyPatch
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid body: "+err.Error())
		return
	}
	if p.AutonomyMode != nil && !p.AutonomyMode.Valid() {
		writeError(w, http.StatusBadRequest, "invalid autonomy_mode")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c := &s.data.company
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.AutonomyMode != nil {
		c.AutonomyMode = *p.AutonomyMode
	}
	if p.SlackChannel != nil {
		c.SlackChannel = p.SlackChannel
	}
	if p.AlertEmail != nil {
		c.AlertEmail = p.AlertEmail
	}
	set(&c.WeightEngagement, p.WeightEngagement)
	set(&c.WeightAdoption, p.WeightAdoption)
	set(&c.WeightHealth, p.WeightHealth)
	set(&c.WeightSupport, p.WeightSupport)
	set(&c.CriticalThreshold, p.CriticalThreshold)
	set(&c.AtRiskThreshold, p.AtRiskThreshold)
	for _, a := range s.data.accounts {
		s.data.rescore(a)
	}
	writeJSON(w, http.StatusOK, *c)
}

func (s *Server) postOnboarding(w http.ResponseWriter, r *http.Request) {
	var in model.OnboardingConfig
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid body: "+err.Error())
		return
	}
	if !in.AutonomyMode.Valid() {
		writeError(w, http.StatusBadRequest, "invalid autonomy_mode")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c := &s.data.company
	c.Name = in.CompanyName
	c.OnboardingComplete = true
	c.AutonomyMode = in.AutonomyMode
	c.SlackChannel = in.SlackChannel
	c.AlertEmail = in.AlertEmail
	c.WeightEngagement = in.WeightEngagement
	c.WeightAdoption = in.WeightAdoption
	c.WeightHealth = in.WeightHealth
	c.WeightSupport = in.WeightSupport
	c.CriticalThreshold = in.CriticalThreshold
	c.AtRiskThreshold = in.AtRiskThreshold
	for _, a := range s.data.accounts {
		s.data.rescore(a)
	}
	writeJSON(w, http.StatusOK, model.Ack{Status: "ok", CompanyID: c.ID})
}

func (s *Server) listAccounts(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := s.data.summaries()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	d, found := s.data.detail(id)
	s.mu.Unlock()
	if !found {
		writeError(w, http.StatusNotFound, "Account not found")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) getStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	st := s.data.stats()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) getForecast(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	f := s.data.forecast(s.now())
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) getCalendar(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	key := r.URL.Query().Get("month")
	if key == "" {
		key = model.MonthKey(now)
	}
	month, err := model.ParseMonthKey(key)
	if err != nil {
		writeError(w, http.StatusBadRequest, "month must be in YYYY-MM format")
		return
	}
	s.mu.Lock()
	items := s.data.calendar(month, now)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) getSettings(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	rs := s.data.settings.Apply(model.RenewalSettingsPatch{})
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, rs)
}

func (s *Server) putSettings(w http.ResponseWriter, r *http.Request) {
	var p model.RenewalSettingsPatch
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid body: "+err.Error())
		return
	}
	for _, d := range p.LeadTimesDays {
		if !slices.Contains(model.LeadTimeOptions, d) {
			writeError(w, http.StatusBadRequest, "lead_times_days must be drawn from 90, 30, 14, 7")
			return
		}
	}
	if p.LeadTimesDays != nil {
		lt := slices.Clone(p.LeadTimesDays)
		slices.Sort(lt)
		slices.Reverse(lt)
		p.LeadTimesDays = slices.Compact(lt)
	}

	s.mu.Lock()
	s.data.settings = s.data.settings.Apply(p)
	rs := s.data.settings.Apply(model.RenewalSettingsPatch{})
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, rs)
}

func (s *Server) outreach(status model.OutreachStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		s.mu.Lock()
		found := s.data.setOutreach(id, status, s.now())
		s.mu.Unlock()
		if !found {
			writeError(w, http.StatusNotFound, "Anomaly not found")
			return
		}
		writeJSON(w, http.StatusOK, model.Ack{Status: "ok", OutreachStatus: status})
	}
}

func (s *Server) runScan(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	sum := s.data.scan(s.now())
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, model.ScanResponse{
		Status:  "ok",
		Message: sum.Message(),
		Summary: sum,
	})
}

func (s *Server) reseed(w http.ResponseWriter, _ *http.Request) {
	d := seed(s.now())
	s.mu.Lock()
	s.data = d
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Database reseeded"})
}
