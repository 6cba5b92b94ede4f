package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/health-cli/internal/demo"
)

var demoPort int

var demoServerCmd = &cobra.Command{
	Use:         "demo-server",
	Short:       "Serve the account health API from in-memory demo data",
	Annotations: map[string]string{modeAnnotation: "demo"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := demoPort
		if port == 0 {
			port = cfg.Demo.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           demo.New(demo.WithLogger(zap.L().Named("demo"))).Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down demo server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting demo server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "demo server listen")
		}
		return nil
	},
}

func init() {
	demoServerCmd.Flags().IntVar(&demoPort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(demoServerCmd)
}
