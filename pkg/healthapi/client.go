// Package healthapi provides a typed client for the account-health JSON API.
package healthapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/health-cli/internal/model"
)

const defaultBaseURL = "http://localhost:8000"

// Client defines the remote operations consumed by the store. Every failure is a
// *RemoteError; no operation retries on its own.
type Client interface {
	FetchCompany(ctx context.Context) (*model.Company, error)
	SaveCompany(ctx context.Context, patch model.CompanyPatch) (*model.Company, error)
	CompleteOnboarding(ctx context.Context, cfg model.OnboardingConfig) (*model.Ack, error)

	ListAccounts(ctx context.Context) ([]model.AccountSummary, error)
	FetchAccountDetail(ctx context.Context, id int64) (*model.AccountDetail, error)

	FetchStats(ctx context.Context) (*model.Stats, error)
	FetchRevenueForecast(ctx context.Context) (*model.RevenueForecast, error)
	FetchRenewalCalendar(ctx context.Context, monthKey string) ([]model.RenewalCalendarItem, error)
	FetchRenewalSettings(ctx context.Context) (*model.RenewalSettings, error)
	SaveRenewalSettings(ctx context.Context, patch model.RenewalSettingsPatch) (*model.RenewalSettings, error)

	ApproveOutreach(ctx context.Context, anomalyID int64) (*model.Ack, error)
	RejectOutreach(ctx context.Context, anomalyID int64) (*model.Ack, error)

	RunScan(ctx context.Context) (*model.ScanResponse, error)
	ReseedDemoData(ctx context.Context) (*model.Ack, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the API base URL. A trailing slash is ignored.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimiter makes every request wait on the limiter before it is sent.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(c *httpClient) {
		c.limiter = l
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *httpClient) {
		c.log = l
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewClient creates an account-health API client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	if c.log == nil {
		c.log = zap.L()
	}
	return c
}

// do sends one request and decodes a 2xx JSON body into out (when out is non-nil).
func (c *httpClient) do(ctx context.Context, op, method, path string, in, out any) error {
	op = "healthapi: " + op

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return networkError(op, eris.Wrap(err, "marshal request"))
		}
		body = bytes.NewReader(b)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return networkError(op, eris.Wrap(err, "rate limit"))
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return networkError(op, eris.Wrap(err, "create request"))
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("healthapi: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", reqID),
			zap.Error(err),
		)
		return networkError(op, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(op, eris.Wrap(err, "read response"))
	}

	c.log.Debug("healthapi: request",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpError(op, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &RemoteError{
			Class:      ClassHTTP,
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    "unmarshal response: " + err.Error(),
			Err:        err,
		}
	}
	return nil
}

func (c *httpClient) FetchCompany(ctx context.Context) (*model.Company, error) {
	var out model.Company
	if err := c.do(ctx, "fetch company", http.MethodGet, "/api/company", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) SaveCompany(ctx context.Context, patch model.CompanyPatch) (*model.Company, error) {
	var out model.Company
	if err := c.do(ctx, "save company", http.MethodPut, "/api/company", patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) CompleteOnboarding(ctx context.Context, cfg model.OnboardingConfig) (*model.Ack, error) {
	var out model.Ack
	if err := c.do(ctx, "complete onboarding", http.MethodPost, "/api/onboarding", cfg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) ListAccounts(ctx context.Context) ([]model.AccountSummary, error) {
	var out []model.AccountSummary
	if err := c.do(ctx, "list accounts", http.MethodGet, "/api/accounts", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.AccountSummary{}
	}
	return out, nil
}

func (c *httpClient) FetchAccountDetail(ctx context.Context, id int64) (*model.AccountDetail, error) {
	var out model.AccountDetail
	path := fmt.Sprintf("/api/accounts/%d", id)
	if err := c.do(ctx, "fetch account detail", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) FetchStats(ctx context.Context) (*model.Stats, error) {
	var out model.Stats
	if err := c.do(ctx, "fetch stats", http.MethodGet, "/api/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) FetchRevenueForecast(ctx context.Context) (*model.RevenueForecast, error) {
	var out model.RevenueForecast
	if err := c.do(ctx, "fetch revenue forecast", http.MethodGet, "/api/revenue-forecast", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) FetchRenewalCalendar(ctx context.Context, monthKey string) ([]model.RenewalCalendarItem, error) {
	var out []model.RenewalCalendarItem
	path := "/api/renewals/calendar?month=" + url.QueryEscape(monthKey)
	if err := c.do(ctx, "fetch renewal calendar", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.RenewalCalendarItem{}
	}
	return out, nil
}

func (c *httpClient) FetchRenewalSettings(ctx context.Context) (*model.RenewalSettings, error) {
	var out model.RenewalSettings
	if err := c.do(ctx, "fetch renewal settings", http.MethodGet, "/api/renewals/notification-settings", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) SaveRenewalSettings(ctx context.Context, patch model.RenewalSettingsPatch) (*model.RenewalSettings, error) {
	var out model.RenewalSettings
	if err := c.do(ctx, "save renewal settings", http.MethodPut, "/api/renewals/notification-settings", patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) ApproveOutreach(ctx context.Context, anomalyID int64) (*model.Ack, error) {
	var out model.Ack
	path := fmt.Sprintf("/api/anomalies/%d/approve", anomalyID)
	if err := c.do(ctx, "approve outreach", http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) RejectOutreach(ctx context.Context, anomalyID int64) (*model.Ack, error) {
	var out model.Ack
	path := fmt.Sprintf("/api/anomalies/%d/reject", anomalyID)
	if err := c.do(ctx, "reject outreach", http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) RunScan(ctx context.Context) (*model.ScanResponse, error) {
	var out model.ScanResponse
	if err := c.do(ctx, "run scan", http.MethodPost, "/api/run-scan", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) ReseedDemoData(ctx context.Context) (*model.Ack, error) {
	var out model.Ack
	if err := c.do(ctx, "reseed demo data", http.MethodPost, "/api/seed", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
