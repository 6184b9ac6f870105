package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/horlartundhey/servisbet-sub001/internal/config"
	httpapi "github.com/horlartundhey/servisbet-sub001/internal/http"
	"github.com/horlartundhey/servisbet-sub001/internal/notify"
	"github.com/horlartundhey/servisbet-sub001/internal/repo"
	"github.com/horlartundhey/servisbet-sub001/internal/services"
	"github.com/horlartundhey/servisbet-sub001/internal/worker"
)

// app holds the wired services of one process.
type app struct {
	db        *gorm.DB
	templates *services.TemplateService
	elig      *services.EligibilityService
	executor  *services.Executor
	scheduler *services.Scheduler
	timers    *worker.Timers
	notifier  *notify.Async

	closers []func() error
}

// openStore opens the SQLite database, installs GORM tracing and applies
// migrations.
func openStore(cfg config.Config) (*gorm.DB, error) {
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.DBPath, err)
	}
	if cfg.OTEL.Enabled {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			return nil, fmt.Errorf("gorm tracing: %w", err)
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// buildNotifier assembles the configured channels behind one async queue.
// Channels that fail to initialize are logged and skipped.
func buildNotifier(ctx context.Context, cfg config.NotifyConfig, logger zerolog.Logger) (*notify.Async, []func() error) {
	var (
		chain   notify.Multi
		closers []func() error
	)
	if cfg.Log {
		chain = append(chain, notify.Log{Logger: logger.With().Str("component", "notify").Logger()})
	}
	if cfg.RedisEnabled() {
		rdb, err := notify.NewRedis(ctx, notify.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Channel:  cfg.RedisChannel,
		}, logger)
		if err != nil {
			logger.Error().Err(err).Str("addr", cfg.RedisAddr).Msg("redis notifier disabled")
		} else {
			chain = append(chain, rdb)
			closers = append(closers, rdb.Close)
		}
	}
	if cfg.AWSEnabled() {
		awsCfg, err := notify.LoadAWSConfig(ctx, cfg.AWSRegion)
		if err != nil {
			logger.Error().Err(err).Msg("aws notifiers disabled")
		} else {
			if cfg.SESEnabled() {
				chain = append(chain, notify.NewEmailFromConfig(awsCfg, cfg.SESFrom, logger))
			}
			if cfg.SNSEnabled {
				chain = append(chain, notify.NewSMSFromConfig(awsCfg, logger))
			}
		}
	}
	return notify.NewAsync(chain, cfg.QueueSize, logger), closers
}

// newApp wires services over db. timers may be nil for one-shot commands
// that never arm batches.
func newApp(ctx context.Context, cfg config.Config, db *gorm.DB, timers *worker.Timers, logger zerolog.Logger) *app {
	notifier, closers := buildNotifier(ctx, cfg.Notify, logger)

	svcLogger := logger.With().Str("component", "services").Logger()
	exec := &services.Executor{
		DB:       db,
		Notifier: notifier,
		Now:      time.Now,
		Logger:   &svcLogger,
	}
	sched := &services.Scheduler{
		DB:             db,
		Executor:       exec,
		Notifier:       notifier,
		Now:            time.Now,
		Logger:         &svcLogger,
		MinLeadTime:    cfg.Scheduler.MinLeadTime,
		Location:       cfg.Scheduler.Location,
		Retention:      cfg.Scheduler.Retention,
		FireTimeout:    cfg.Scheduler.FireTimeout,
		StaleAfter:     cfg.Scheduler.StaleAfter,
		IdempotencyTTL: cfg.IdempotencyTTL,
	}
	if timers != nil {
		sched.Timers = timers
	}

	return &app{
		db:        db,
		templates: &services.TemplateService{DB: db, Now: time.Now},
		elig:      &services.EligibilityService{DB: db},
		executor:  exec,
		scheduler: sched,
		timers:    timers,
		notifier:  notifier,
		closers:   closers,
	}
}

func (a *app) services() httpapi.Services {
	return httpapi.Services{
		Templates:   a.templates,
		Eligibility: a.elig,
		Executor:    a.executor,
		Scheduler:   a.scheduler,
	}
}

// close stops timers and waits for a firing batch, drains notifications and
// releases connections.
func (a *app) close() {
	if a.timers != nil {
		a.timers.Stop()
	}
	a.notifier.Close()
	for _, c := range a.closers {
		_ = c()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
