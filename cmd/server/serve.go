package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/dinnerpicker/internal/auth"
	"github.com/mmynk/dinnerpicker/internal/calendar"
	"github.com/mmynk/dinnerpicker/internal/menu"
	"github.com/mmynk/dinnerpicker/internal/metrics"
	"github.com/mmynk/dinnerpicker/internal/selection"
	"github.com/mmynk/dinnerpicker/internal/server"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg

	store, err := server.OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	clock, err := calendar.New(cfg.Timezone)
	if err != nil {
		return err
	}

	authenticator, err := auth.NewSharedPasswordAuthenticator(cfg.Password, cfg.PasswordHash)
	if err != nil {
		return err
	}
	if cfg.PasswordHash == "" && cfg.Password == "family2024" {
		slog.Warn("Using the default shared password, set DINNER_PASSWORD or DINNER_PASSWORD_HASH")
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		slog.Warn("DINNER_JWT_SECRET not set, sessions end when the server restarts")
	}

	deps := server.Deps{
		Selections:    selection.NewService(store, clock),
		Menus:         menu.Embedded(),
		Authenticator: authenticator,
		JWTManager:    jwtManager,
		StaticDir:     cfg.StaticPath,
	}
	if cfg.Metrics {
		deps.Metrics = metrics.New()
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting",
			"address", addr,
			"url", fmt.Sprintf("http://localhost%s", addr),
			"environment", cfg.Environment,
			"storage", cfg.Storage,
			"timezone", cfg.Timezone,
			"static", cfg.StaticPath,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
