package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/health-cli/internal/config"
	"github.com/sells-group/health-cli/internal/report"
	"github.com/sells-group/health-cli/internal/resilience"
	"github.com/sells-group/health-cli/internal/store"
	"github.com/sells-group/health-cli/pkg/healthapi"
)

var cfg *config.Config

var (
	outputFormat string
	retries      int
)

// modeAnnotation selects which config section a command validates.
const modeAnnotation = "config-mode"

var rootCmd = &cobra.Command{
	Use:   "health-cli",
	Short: "Account health dashboard and client",
	Long:  "Monitors customer account health: portfolio dashboard, anomaly outreach approvals, scans, revenue forecast and renewal calendar.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		mode := "client"
		if m, ok := cmd.Annotations[modeAnnotation]; ok {
			mode = m
		}
		if err := cfg.Validate(mode); err != nil {
			return err
		}

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	RunE: runDashboard,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "table", "output format: table, json or yaml")
	rootCmd.PersistentFlags().IntVar(&retries, "retries", 2, "extra attempts for transient read failures")
}

func newClient() healthapi.Client {
	opts := []healthapi.Option{
		healthapi.WithBaseURL(cfg.API.BaseURL),
		healthapi.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout()}),
		healthapi.WithLogger(zap.L().Named("healthapi")),
	}
	if cfg.API.RateLimitRPS > 0 {
		limiter := rate.NewLimiter(rate.Limit(cfg.API.RateLimitRPS), cfg.API.RateBurst)
		opts = append(opts, healthapi.WithRateLimiter(limiter))
	}
	return healthapi.NewClient(opts...)
}

func newStore() *store.Store {
	return store.New(newClient(),
		store.WithLogger(zap.L().Named("store")),
		store.WithOptions(store.Options{RollbackOutreach: cfg.Store.RollbackOutreach}),
	)
}

// withRetry runs a read intent, retrying transient failures.
func withRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	p := resilience.NewPolicy(retries + 1)
	p.OnRetry = resilience.LogRetries(zap.L(), op)
	return resilience.Do(ctx, p, fn)
}

// emit writes v in a structured format, or calls table for the default format.
func emit(out io.Writer, v any, table func(io.Writer)) error {
	f, err := report.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	if f == report.FormatTable {
		table(out)
		return nil
	}
	return report.Encode(out, f, v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
