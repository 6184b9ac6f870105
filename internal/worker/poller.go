package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Scheduler is the part of services.Scheduler the poller drives.
type Scheduler interface {
	FireDue(ctx context.Context, limit int) (int, error)
	Sweep(ctx context.Context) (int64, error)
}

// Config holds poller configuration.
type Config struct {
	PollInterval  time.Duration
	BatchSize     int
	SweepInterval time.Duration
}

// DefaultConfig returns the default poller configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval:  time.Minute,
		BatchSize:     50,
		SweepInterval: 24 * time.Hour,
	}
}

// Poller fires overdue batches missed by their timers (for example after a
// restart or a failed claim), resumes batches whose run was interrupted
// mid-flight, and periodically runs the retention sweep.
type Poller struct {
	sched  Scheduler
	cfg    Config
	logger zerolog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPoller creates a poller. Zero config fields take DefaultConfig values.
func NewPoller(sched Scheduler, cfg Config, logger zerolog.Logger) *Poller {
	def := DefaultConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = def.SweepInterval
	}
	return &Poller{
		sched:  sched,
		cfg:    cfg,
		logger: logger.With().Str("component", "poller").Logger(),
	}
}

// Start launches the poll and sweep loops. Both run once immediately.
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(2)
	go p.loop(ctx, p.cfg.PollInterval, p.poll)
	go p.loop(ctx, p.cfg.SweepInterval, p.sweep)

	p.logger.Info().
		Dur("poll_interval", p.cfg.PollInterval).
		Int("batch_size", p.cfg.BatchSize).
		Dur("sweep_interval", p.cfg.SweepInterval).
		Msg("poller started")
}

// Stop cancels both loops and waits for an in-flight run to return.
func (p *Poller) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	p.wg.Wait()
	p.logger.Info().Msg("poller stopped")
}

func (p *Poller) loop(ctx context.Context, every time.Duration, run func(context.Context)) {
	defer p.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	run(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	n, err := p.sched.FireDue(ctx, p.cfg.BatchSize)
	if err != nil && ctx.Err() == nil {
		p.logger.Error().Err(err).Msg("fire due batches")
		return
	}
	if n > 0 {
		p.logger.Info().Int("fired", n).Msg("fired overdue batches")
	}
}

func (p *Poller) sweep(ctx context.Context) {
	n, err := p.sched.Sweep(ctx)
	if err != nil && ctx.Err() == nil {
		p.logger.Error().Err(err).Msg("retention sweep")
		return
	}
	if n > 0 {
		p.logger.Info().Int64("deleted", n).Msg("purged old batches")
	}
}
