package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/horlartundhey/servisbet-sub001/internal/config"
	httpapi "github.com/horlartundhey/servisbet-sub001/internal/http"
	"github.com/horlartundhey/servisbet-sub001/internal/observability"
	"github.com/horlartundhey/servisbet-sub001/internal/sysutil"
	"github.com/horlartundhey/servisbet-sub001/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	var noPoller bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the response scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := sysutil.SetupLogging(cfg.LogLevel, cfg.LogPretty)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, logger, !noPoller)
		},
	}
	cmd.Flags().BoolVar(&noPoller, "no-poller", false, "Do not run the overdue poller and retention sweep in this process")
	return cmd
}

// runServe blocks until ctx is cancelled or the listener fails, then shuts
// everything down in reverse order of startup.
func runServe(ctx context.Context, cfg config.Config, logger zerolog.Logger, withPoller bool) error {
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			logger.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	a := newApp(ctx, cfg, db, worker.NewTimers(nil), logger)
	defer a.close()

	n, err := a.scheduler.RecoverPending(ctx)
	if err != nil {
		return fmt.Errorf("recover pending schedules: %w", err)
	}
	logger.Info().Int("pending", n).Msg("scheduler timers armed")

	if withPoller {
		p := worker.NewPoller(a.scheduler, worker.Config{
			PollInterval:  cfg.Scheduler.PollInterval,
			BatchSize:     cfg.Scheduler.PollBatch,
			SweepInterval: cfg.Scheduler.SweepInterval,
		}, logger)
		p.Start(ctx)
		defer p.Stop()
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, a.services(), cfg)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("base_path", cfg.APIBasePath).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
		return err
	}
	return nil
}
