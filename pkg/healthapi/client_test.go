package healthapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/sells-group/health-cli/internal/model"
)

func TestFetchCompany_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/company", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(model.Company{ID: 1, Name: "Acme", AutonomyMode: model.AutonomyApproval})
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL + "/"))
	got, err := client.FetchCompany(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, model.AutonomyApproval, got.AutonomyMode)
}

func TestListAccounts_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("database unavailable\n"))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.ListAccounts(context.Background())

	require.Error(t, err)
	re, ok := AsRemoteError(err)
	require.True(t, ok)
	assert.Equal(t, ClassHTTP, re.Class)
	assert.Equal(t, http.StatusInternalServerError, re.StatusCode)
	assert.Equal(t, "database unavailable", re.Body)
	assert.Contains(t, err.Error(), "500: database unavailable")
	assert.Equal(t, 500, StatusCode(err))
	assert.False(t, IsNetwork(err))
}

func TestFetchStats_NetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // nothing listens any more

	client := NewClient(WithBaseURL(url))
	_, err := client.FetchStats(context.Background())

	require.Error(t, err)
	re, ok := AsRemoteError(err)
	require.True(t, ok)
	assert.Equal(t, ClassNetwork, re.Class)
	assert.Zero(t, re.StatusCode)
	assert.True(t, IsNetwork(err))
	assert.Equal(t, 0, StatusCode(err))
}

func TestFetchAccountDetail_MalformedJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/accounts/42", r.URL.Path)
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.FetchAccountDetail(context.Background(), 42)

	require.Error(t, err)
	re, ok := AsRemoteError(err)
	require.True(t, ok)
	assert.Equal(t, ClassHTTP, re.Class)
	assert.Equal(t, http.StatusOK, re.StatusCode)
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestContextCancellation_IsNetworkClass(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.RunScan(ctx)

	require.Error(t, err)
	assert.True(t, IsNetwork(err))
}

func TestSaveCompany_SendsPatch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"critical_threshold":35}`, string(body))
		json.NewEncoder(w).Encode(model.Company{ID: 1, CriticalThreshold: 35})
	}))
	defer srv.Close()

	crit := 35.0
	client := NewClient(WithBaseURL(srv.URL))
	got, err := client.SaveCompany(context.Background(), model.CompanyPatch{CriticalThreshold: &crit})

	require.NoError(t, err)
	assert.Equal(t, 35.0, got.CriticalThreshold)
}

func TestRenewalCalendar_QueryAndEmptyList(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/renewals/calendar", r.URL.Path)
		assert.Equal(t, "2026-11", r.URL.Query().Get("month"))
		w.Write([]byte(`null`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	items, err := client.FetchRenewalCalendar(context.Background(), "2026-11")

	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestOutreachActions_Paths(t *testing.T) {
	t.Parallel()

	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.ApproveOutreach(context.Background(), 7)
	require.NoError(t, err)
	_, err = client.RejectOutreach(context.Background(), 8)
	require.NoError(t, err)
	ack, err := client.ReseedDemoData(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ok", ack.Status)
	assert.Equal(t, []string{"/api/anomalies/7/approve", "/api/anomalies/8/reject", "/api/seed"}, paths)
}

func TestRunScan_DecodesSummary(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok","message":"Scan completed","summary":{
			"accounts_scanned":12,"health_scores_created":2,"health_scores_updated":10,
			"anomalies_created":3,"anomalies_skipped_recent":1,"alerts_created":4,
			"outreach_auto_sent":0,"scan_completed_at":"2026-10-18T09:00:00"}}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	resp, err := client.RunScan(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 12, resp.Summary.AccountsScanned)
	assert.Nil(t, resp.Summary.RenewalAlertsCreated)
	require.NotNil(t, resp.Summary.ScanCompletedAt)
	assert.Equal(t, 9, resp.Summary.ScanCompletedAt.Hour())
}

func TestNoAutomaticRetry(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.FetchCompany(context.Background())

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, err.Error(), "unexpected status 503")
}

func TestRateLimiter_WaitFailureIsNetworkClass(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	}))
	defer srv.Close()

	// Burst of zero can never be satisfied.
	limiter := rate.NewLimiter(rate.Every(time.Hour), 0)
	client := NewClient(WithBaseURL(srv.URL), WithRateLimiter(limiter))
	_, err := client.FetchCompany(context.Background())

	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	assert.Contains(t, err.Error(), "rate limit")
}

func TestWithHTTPClient(t *testing.T) {
	t.Parallel()

	custom := &http.Client{}
	c := NewClient(WithHTTPClient(custom))
	hc := c.(*httpClient)
	assert.Equal(t, custom, hc.http)
	assert.Equal(t, defaultBaseURL, hc.baseURL)
}
