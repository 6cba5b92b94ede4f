package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/health-cli/internal/demo"
	"github.com/sells-group/health-cli/internal/model"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	expected := []string{
		"dashboard", "accounts", "account", "stats", "scan", "approve", "reject",
		"company", "onboard", "forecast", "renewals", "seed", "demo-server",
	}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "health-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.NotNil(t, rootCmd.RunE, "bare invocation opens the dashboard")
}

func TestCommandFlags(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("format")
	require.NotNil(t, flag)
	assert.Equal(t, "table", flag.DefValue)

	flag = accountsCmd.PersistentFlags().Lookup("state")
	require.NotNil(t, flag)
	assert.Equal(t, "all", flag.DefValue)

	flag = forecastCmd.Flags().Lookup("horizon")
	require.NotNil(t, flag)
	assert.Equal(t, "12", flag.DefValue)

	flag = demoServerCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)
	assert.Equal(t, "demo", demoServerCmd.Annotations[modeAnnotation])
}

func TestParseWeights(t *testing.T) {
	ws, err := parseWeights("30, 25,25,20")
	require.NoError(t, err)
	assert.Equal(t, [4]float64{30, 25, 25, 20}, ws)

	_, err = parseWeights("30,25,25")
	assert.Error(t, err)
	_, err = parseWeights("30,25,x,20")
	assert.Error(t, err)
	_, err = parseWeights("30,25,-1,20")
	assert.Error(t, err)
}

// execute runs the CLI against an in-memory demo backend.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	ts := httptest.NewServer(demo.New(demo.WithLogger(zap.NewNop())).Routes())
	t.Cleanup(ts.Close)
	t.Setenv("HEALTH_API_BASE_URL", ts.URL)
	t.Setenv("HEALTH_LOG_LEVEL", "error")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestAccountsCommand_JSON(t *testing.T) {
	out, err := execute(t, "accounts", "--format", "json", "--state", "all", "--sort", "score")
	require.NoError(t, err)

	var accounts []model.AccountSummary
	require.NoError(t, json.Unmarshal([]byte(out), &accounts))
	assert.Len(t, accounts, 14)
	assert.Equal(t, model.StateCritical, accounts[0].State)
}

func TestAccountsCommand_StateFilter(t *testing.T) {
	out, err := execute(t, "accounts", "--format", "json", "--state", "critical", "--sort", "score")
	require.NoError(t, err)

	var accounts []model.AccountSummary
	require.NoError(t, json.Unmarshal([]byte(out), &accounts))
	require.NotEmpty(t, accounts)
	for _, a := range accounts {
		assert.Equal(t, model.StateCritical, a.State)
	}
}

func TestAccountsCommand_InvalidState(t *testing.T) {
	_, err := execute(t, "accounts", "--format", "table", "--state", "bogus", "--sort", "score")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown state filter")
}

func TestAccountsExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.xlsx")
	out, err := execute(t, "accounts", "export", "--xlsx", path, "--state", "all", "--sort", "renewal")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 14 accounts")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestAccountCommand(t *testing.T) {
	out, err := execute(t, "account", "1", "--format", "json")
	require.NoError(t, err)

	var d model.AccountDetail
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, int64(1), d.ID)
	assert.Equal(t, "AcmeCorp", d.Name)
}

func TestAccountCommand_NotFound(t *testing.T) {
	_, err := execute(t, "account", "999", "--format", "table")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestScanCommand(t *testing.T) {
	out, err := execute(t, "scan", "--format", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "Scanned 14 accounts.")
}

func TestStatsCommand_Table(t *testing.T) {
	out, err := execute(t, "stats", "--format", "table")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestForecastCommand_InvalidHorizon(t *testing.T) {
	_, err := execute(t, "forecast", "--horizon", "5", "--format", "table")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "horizon must be 1, 3 or 12")
}

func TestForecastCommand_JSON(t *testing.T) {
	out, err := execute(t, "forecast", "--horizon", "3", "--format", "json")
	require.NoError(t, err)

	var f model.RevenueForecast
	require.NoError(t, json.Unmarshal([]byte(out), &f))
	assert.Len(t, f.MonthlyProjection, 3)
}

func TestRenewalsSettingsToggle(t *testing.T) {
	out, err := execute(t, "renewals", "settings", "--toggle", "90", "--format", "json")
	require.NoError(t, err)

	var rs model.RenewalSettings
	require.NoError(t, json.Unmarshal([]byte(out), &rs))
	assert.Equal(t, []int{90, 30, 14, 7}, rs.LeadTimesDays)
}

func TestRenewalsSettings_RejectsUnknownLeadTime(t *testing.T) {
	_, err := execute(t, "renewals", "settings", "--toggle", "45", "--format", "table")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lead time 45")
}

func TestCompanySet(t *testing.T) {
	out, err := execute(t, "company", "set", "--name", "Acme", "--mode", "executor", "--format", "json")
	require.NoError(t, err)

	var c model.Company
	require.NoError(t, json.Unmarshal([]byte(out), &c))
	assert.Equal(t, "Acme", c.Name)
	assert.Equal(t, model.AutonomyExecutor, c.AutonomyMode)
}

func TestDemoModeValidation(t *testing.T) {
	t.Setenv("HEALTH_DEMO_PORT", "0")
	_, err := execute(t, "demo-server", "--format", "table")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "demo.port")
}
