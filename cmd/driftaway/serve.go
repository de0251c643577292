// cmd/driftaway/serve.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"driftaway/internal/api"
	"driftaway/internal/common/config"
	"driftaway/pkg/registry"
)

func newServeCmd() *cobra.Command {
	var tripFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the planner HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), tripFile)
		},
	}
	cmd.Flags().StringVar(&tripFile, "trip-file", "", "serve trips from a JSON file instead of Firestore")
	return cmd
}

func serve(ctx context.Context, tripFile string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, tripFile)
	if err != nil {
		return err
	}
	defer a.Close()

	reg, err := registry.Default()
	if err != nil {
		return fmt.Errorf("provider registry: %w", err)
	}

	if a.cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	deps := api.Deps{
		Planner:  a.orchestrator,
		Chat:     a.chat,
		Registry: reg,
		Ready:    a.ready,
		Logger:   a.log,
	}
	deps.RateLimit.RPS = a.cfg.Server.RateLimit.RequestsPerSecond
	deps.RateLimit.Burst = a.cfg.Server.RateLimit.Burst

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:      api.NewRouter(deps),
		ReadTimeout:  config.GetDuration(a.cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(a.cfg.Server.WriteTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		a.zap.Info("HTTP server starting", zap.Int("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		a.zap.Info("Shutting down...")
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(a.cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.zap.Error("HTTP server shutdown error", zap.Error(err))
	}
	a.zap.Info("Shutdown complete")
	return nil
}
