// Package services – Scheduler
//
// The scheduler persists time-deferred batches and fires them once. Status
// moves only through conditional updates in repo:
//
//	pending -> executing -> completed | failed
//	pending -> cancelled
//
// A batch is armed twice: a one-shot timer registered at creation (and again
// by RecoverPending after a restart), and the periodic FireDue poll. Both
// paths call Fire, whose atomic pending -> executing claim lets exactly one
// of them run the batch. Fire on anything but a pending batch is a no-op
// returning ErrScheduleNotPending.
//
// A run that dies after its claim leaves the batch executing. FireDue
// resumes such batches once their run is older than StaleAfter; items the
// dead run already answered count as delivered, so nothing is written twice.
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/horlartundhey/servisbet-sub001/internal/domain"
	"github.com/horlartundhey/servisbet-sub001/internal/observability"
	"github.com/horlartundhey/servisbet-sub001/internal/repo"
)

// Scheduler defaults applied when the corresponding field is zero.
const (
	DefaultMinLeadTime    = time.Hour
	DefaultRetention      = 30 * 24 * time.Hour
	DefaultFireTimeout    = 5 * time.Minute
	DefaultIdempotencyTTL = 24 * time.Hour
	RecentActivityWindow  = 30 * 24 * time.Hour
)

// OneShot registers callbacks that run once at an absolute instant.
// Registering an id again replaces the previous callback.
type OneShot interface {
	Register(id string, at time.Time, fn func())
	Cancel(id string) bool
}

// ScheduleRequest is the input of Schedule.
type ScheduleRequest struct {
	BusinessID     string
	RequesterID    string
	TemplateID     string
	Items          []domain.ResponseItem
	ScheduledTime  time.Time
	Variables      map[string]string
	IdempotencyKey string
}

// ScheduleReceipt is returned by Schedule. Replayed is true when an earlier
// request with the same idempotency key produced the batch.
type ScheduleReceipt struct {
	ScheduleID    string    `json:"schedule_id"`
	ScheduledTime time.Time `json:"scheduled_time"`
	ItemCount     int       `json:"item_count"`
	Replayed      bool      `json:"-"`
}

// HourActivity reports the hour-of-day with most scheduled batches and the
// full distribution.
type HourActivity struct {
	Hour         int       `json:"hour"`
	Count        int64     `json:"count"`
	Distribution [24]int64 `json:"distribution"`
}

// Analytics summarizes a business's scheduled batches.
type Analytics struct {
	TotalScheduled              int64        `json:"total_scheduled"`
	Pending                     int64        `json:"pending"`
	Executing                   int64        `json:"executing"`
	Completed                   int64        `json:"completed"`
	Failed                      int64        `json:"failed"`
	Cancelled                   int64        `json:"cancelled"`
	TotalResponsesSent          int64        `json:"total_responses_sent"`
	AverageResponsesPerSchedule float64      `json:"average_responses_per_schedule"`
	MostActiveHour              HourActivity `json:"most_active_hour"`
	RecentActivity              int64        `json:"recent_activity"`
}

// Scheduler is the response scheduler.
type Scheduler struct {
	DB       *gorm.DB
	Executor *Executor
	Timers   OneShot
	Notifier Notifier
	Now      Clock
	Logger   *zerolog.Logger

	// MinLeadTime is how far in the future a batch must be scheduled.
	MinLeadTime time.Duration
	// Location buckets scheduled times by hour of day for analytics.
	Location *time.Location
	// Retention is how long completed and failed batches are kept.
	Retention time.Duration
	// FireTimeout bounds one timer- or poll-driven execution.
	FireTimeout time.Duration
	// StaleAfter is how long an executing batch may go without reaching a
	// terminal state before FireDue resumes it. Defaults to twice FireTimeout.
	StaleAfter     time.Duration
	IdempotencyTTL time.Duration
}

func (s *Scheduler) log() *zerolog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return &log.Logger
}

func durationOr(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}

func (s *Scheduler) staleAfter() time.Duration {
	if s.StaleAfter > 0 {
		return s.StaleAfter
	}
	return 2 * durationOr(s.FireTimeout, DefaultFireTimeout)
}

func (s *Scheduler) location() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.UTC
}

// Schedule validates req and persists a pending batch, then arms its timer.
// Every review must be eligible now; it is checked again when the batch fires.
func (s *Scheduler) Schedule(ctx context.Context, req ScheduleRequest) (*ScheduleReceipt, error) {
	tr := otel.Tracer("services/Scheduler")
	ctx, span := tr.Start(ctx, "Schedule",
		trace.WithAttributes(
			attribute.String("business.id", req.BusinessID),
			attribute.String("template.id", req.TemplateID),
			attribute.Int("items", len(req.Items)),
		),
	)
	defer span.End()

	now := s.Now.now()
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	at := req.ScheduledTime.UTC()
	if at.Before(now.Add(durationOr(s.MinLeadTime, DefaultMinLeadTime))) {
		return nil, ErrScheduleTooSoon
	}
	seen := make(map[string]struct{}, len(req.Items))
	for _, it := range req.Items {
		if _, dup := seen[it.ReviewID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateItem, it.ReviewID)
		}
		seen[it.ReviewID] = struct{}{}
	}

	biz, err := authorize(ctx, s.DB, req.BusinessID, req.RequesterID)
	if err != nil {
		return nil, err
	}

	if req.IdempotencyKey != "" {
		if r, ok := s.replay(ctx, req); ok {
			return r, nil
		}
	}

	tpl, err := repo.GetTemplate(ctx, s.DB, req.TemplateID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if tpl.BusinessID != biz.ID {
		return nil, ErrTemplateNotFound
	}
	if !tpl.Usable() {
		return nil, ErrTemplateArchived
	}
	for _, it := range req.Items {
		_, reason, err := checkEligible(ctx, s.DB, biz.ID, it.ReviewID)
		if err != nil {
			return nil, err
		}
		if reason != "" {
			return nil, fmt.Errorf("%w: %s: %s", ErrIneligibleReview, it.ReviewID, reason)
		}
	}

	vars := req.Variables
	if vars == nil {
		vars = map[string]string{}
	}
	b := &domain.ScheduledBatch{
		BusinessID:    biz.ID,
		TemplateID:    tpl.ID,
		CreatedBy:     req.RequesterID,
		Items:         req.Items,
		Variables:     vars,
		ScheduledTime: at,
		ScheduledHour: at.In(s.location()).Hour(),
		CreatedAt:     now,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CreateSchedule(ctx, tx, b); err != nil {
			return err
		}
		if req.IdempotencyKey == "" {
			return nil
		}
		_, err := repo.CreateIdempotency(ctx, tx, req.RequesterID, biz.ID, req.IdempotencyKey, b.ID, 201,
			durationOr(s.IdempotencyTTL, DefaultIdempotencyTTL))
		return err
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			// A concurrent request with the same key won.
			if r, ok := s.replay(ctx, req); ok {
				return r, nil
			}
		}
		return nil, err
	}

	s.arm(b.ID, b.ScheduledTime)
	observability.SchedulesTotal.WithLabelValues(observability.EventScheduled).Inc()
	s.log().Info().
		Str("schedule_id", b.ID).
		Str("business_id", b.BusinessID).
		Time("scheduled_time", b.ScheduledTime).
		Int("items", len(b.Items)).
		Msg("batch scheduled")

	return &ScheduleReceipt{ScheduleID: b.ID, ScheduledTime: b.ScheduledTime, ItemCount: b.ItemCount()}, nil
}

func (s *Scheduler) replay(ctx context.Context, req ScheduleRequest) (*ScheduleReceipt, bool) {
	rec, err := repo.GetIdempotency(ctx, s.DB, req.RequesterID, req.BusinessID, req.IdempotencyKey, s.Now.now())
	if err != nil {
		return nil, false
	}
	b, err := repo.GetSchedule(ctx, s.DB, rec.ScheduleID)
	if err != nil {
		return nil, false
	}
	return &ScheduleReceipt{ScheduleID: b.ID, ScheduledTime: b.ScheduledTime, ItemCount: b.ItemCount(), Replayed: true}, true
}

func (s *Scheduler) arm(id string, at time.Time) {
	if s.Timers == nil {
		return
	}
	s.Timers.Register(id, at, func() { s.fireDetached(id) })
}

// fireDetached runs Fire outside any request, bounded by FireTimeout.
func (s *Scheduler) fireDetached(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), durationOr(s.FireTimeout, DefaultFireTimeout))
	defer cancel()
	if _, err := s.Fire(ctx, id); err != nil && !errors.Is(err, ErrScheduleNotPending) {
		s.log().Error().Err(err).Str("schedule_id", id).Msg("fire scheduled batch")
	}
}

// Fire claims a pending batch and executes it. Per-item failures still end
// in completed; batch-level errors end in failed and are returned.
func (s *Scheduler) Fire(ctx context.Context, id string) (*domain.BatchResults, error) {
	tr := otel.Tracer("services/Scheduler")
	ctx, span := tr.Start(ctx, "Fire", trace.WithAttributes(attribute.String("schedule.id", id)))
	defer span.End()

	if err := repo.ClaimSchedule(ctx, s.DB, id, s.Now.now()); err != nil {
		if errors.Is(err, repo.ErrNotClaimed) {
			if _, gerr := repo.GetSchedule(ctx, s.DB, id); isNotFound(gerr) {
				return nil, ErrScheduleNotFound
			}
			return nil, ErrScheduleNotPending
		}
		// Still pending; the poller retries.
		return nil, err
	}
	if s.Timers != nil {
		s.Timers.Cancel(id)
	}
	observability.SchedulesTotal.WithLabelValues(observability.EventFired).Inc()
	return s.run(ctx, id)
}

// Resume re-runs an executing batch whose previous run started more than
// StaleAfter ago and never finished. It returns ErrScheduleNotPending when
// the batch is not in that state or another worker resumed it first.
func (s *Scheduler) Resume(ctx context.Context, id string) (*domain.BatchResults, error) {
	tr := otel.Tracer("services/Scheduler")
	ctx, span := tr.Start(ctx, "Resume", trace.WithAttributes(attribute.String("schedule.id", id)))
	defer span.End()

	now := s.Now.now()
	if err := repo.ResumeSchedule(ctx, s.DB, id, now.Add(-s.staleAfter()), now); err != nil {
		if errors.Is(err, repo.ErrNotClaimed) {
			return nil, ErrScheduleNotPending
		}
		return nil, err
	}
	observability.SchedulesTotal.WithLabelValues(observability.EventResumed).Inc()
	s.log().Warn().Str("schedule_id", id).Msg("resuming interrupted batch")
	return s.run(ctx, id)
}

// run executes a batch this process holds in executing state and records
// the terminal status.
func (s *Scheduler) run(ctx context.Context, id string) (*domain.BatchResults, error) {
	start := time.Now()
	defer func() { observability.ScheduleFireDuration.Observe(time.Since(start).Seconds()) }()

	// Terminal writes must land even if ctx expires mid-batch.
	wctx := context.WithoutCancel(ctx)

	b, err := repo.GetSchedule(ctx, s.DB, id)
	if err != nil {
		s.fail(wctx, &domain.ScheduledBatch{ID: id}, err)
		return nil, fmt.Errorf("fire schedule %s: %w", id, err)
	}

	res, err := s.Executor.Execute(ctx, BatchRequest{
		BusinessID: b.BusinessID,
		TemplateID: b.TemplateID,
		Items:      b.Items,
		Variables:  b.Variables,
		ScheduleID: b.ID,
	})
	if err != nil {
		s.fail(wctx, b, err)
		return nil, fmt.Errorf("fire schedule %s: %w", id, err)
	}

	if err := repo.CompleteSchedule(wctx, s.DB, id, *res, s.Now.now()); err != nil {
		s.log().Error().Err(err).Str("schedule_id", id).Msg("mark batch completed")
		return res, err
	}
	observability.SchedulesTotal.WithLabelValues(observability.EventCompleted).Inc()
	s.log().Info().
		Str("schedule_id", id).
		Int("sent", len(res.Successful)).
		Int("failed", len(res.Failed)).
		Msg("batch completed")

	ev := s.batchEvent(wctx, b, EventScheduleCompleted)
	ev.Sent, ev.Failed = len(res.Successful), len(res.Failed)
	notifierOrNop(s.Notifier).Notify(wctx, ev)
	return res, nil
}

func (s *Scheduler) fail(ctx context.Context, b *domain.ScheduledBatch, cause error) {
	if err := repo.FailSchedule(ctx, s.DB, b.ID, cause.Error(), s.Now.now()); err != nil {
		s.log().Error().Err(err).Str("schedule_id", b.ID).Msg("mark batch failed")
	}
	observability.SchedulesTotal.WithLabelValues(observability.EventFailed).Inc()
	s.log().Error().Err(cause).Str("schedule_id", b.ID).Msg("batch failed")

	ev := s.batchEvent(ctx, b, EventScheduleFailed)
	ev.Error = cause.Error()
	notifierOrNop(s.Notifier).Notify(ctx, ev)
}

func (s *Scheduler) batchEvent(ctx context.Context, b *domain.ScheduledBatch, t EventType) Event {
	ev := Event{
		Type:       t,
		OccurredAt: s.Now.now(),
		BusinessID: b.BusinessID,
		ScheduleID: b.ID,
		TemplateID: b.TemplateID,
	}
	if b.BusinessID == "" {
		return ev
	}
	if biz, err := repo.GetBusiness(ctx, s.DB, b.BusinessID); err == nil {
		ev.BusinessName = biz.Name
		ev.BusinessEmail = biz.ContactEmail
		ev.BusinessPhone = biz.ContactPhone
	}
	return ev
}

// Cancel cancels a pending batch owned by requesterID and stops its timer.
// Cancelling an already cancelled batch succeeds without changes.
func (s *Scheduler) Cancel(ctx context.Context, id, requesterID string) (*domain.ScheduledBatch, error) {
	tr := otel.Tracer("services/Scheduler")
	ctx, span := tr.Start(ctx, "Cancel", trace.WithAttributes(attribute.String("schedule.id", id)))
	defer span.End()

	b, err := s.Get(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	switch b.Status {
	case domain.StatusCancelled:
		return b, nil
	case domain.StatusPending:
	default:
		return nil, ErrInvalidStateTransition
	}

	if err := repo.CancelSchedule(ctx, s.DB, id, s.Now.now()); err != nil {
		if !errors.Is(err, repo.ErrNotClaimed) {
			return nil, err
		}
		// Lost a race with Fire or another Cancel.
		cur, gerr := repo.GetSchedule(ctx, s.DB, id)
		if gerr == nil && cur.Status == domain.StatusCancelled {
			return cur, nil
		}
		return nil, ErrInvalidStateTransition
	}
	if s.Timers != nil {
		s.Timers.Cancel(id)
	}
	observability.SchedulesTotal.WithLabelValues(observability.EventCancelled).Inc()
	notifierOrNop(s.Notifier).Notify(ctx, s.batchEvent(ctx, b, EventScheduleCancelled))

	return repo.GetSchedule(ctx, s.DB, id)
}

// Get returns one batch owned by requesterID.
func (s *Scheduler) Get(ctx context.Context, id, requesterID string) (*domain.ScheduledBatch, error) {
	b, err := repo.GetSchedule(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	if _, err := authorize(ctx, s.DB, b.BusinessID, requesterID); err != nil {
		return nil, err
	}
	return b, nil
}

// List returns the business's batches, newest created first.
func (s *Scheduler) List(ctx context.Context, businessID, requesterID string) ([]domain.ScheduledBatch, error) {
	tr := otel.Tracer("services/Scheduler")
	ctx, span := tr.Start(ctx, "List", trace.WithAttributes(attribute.String("business.id", businessID)))
	defer span.End()

	if _, err := authorize(ctx, s.DB, businessID, requesterID); err != nil {
		return nil, err
	}
	out, err := repo.ListSchedules(ctx, s.DB, businessID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.ScheduledBatch{}
	}
	return out, nil
}

// Analytics aggregates the business's batches in the database. The most
// active hour is the mode of the scheduled hour-of-day; ties go to the
// earliest hour.
func (s *Scheduler) Analytics(ctx context.Context, businessID, requesterID string) (*Analytics, error) {
	tr := otel.Tracer("services/Scheduler")
	ctx, span := tr.Start(ctx, "Analytics", trace.WithAttributes(attribute.String("business.id", businessID)))
	defer span.End()

	if _, err := authorize(ctx, s.DB, businessID, requesterID); err != nil {
		return nil, err
	}
	agg, err := repo.AggregateSchedules(ctx, s.DB, businessID, s.Now.now().Add(-RecentActivityWindow))
	if err != nil {
		return nil, err
	}

	a := &Analytics{
		Pending:            agg.ByStatus[domain.StatusPending],
		Executing:          agg.ByStatus[domain.StatusExecuting],
		Completed:          agg.ByStatus[domain.StatusCompleted],
		Failed:             agg.ByStatus[domain.StatusFailed],
		Cancelled:          agg.ByStatus[domain.StatusCancelled],
		TotalResponsesSent: agg.TotalSent,
		RecentActivity:     agg.Recent,
	}
	for _, n := range agg.ByStatus {
		a.TotalScheduled += n
	}
	if a.Completed > 0 {
		avg := float64(a.TotalResponsesSent) / float64(a.Completed)
		a.AverageResponsesPerSchedule = math.Round(avg*100) / 100
	}
	a.MostActiveHour.Distribution = agg.ByHour
	for h, n := range agg.ByHour {
		if n > a.MostActiveHour.Count {
			a.MostActiveHour.Hour, a.MostActiveHour.Count = h, n
		}
	}
	return a, nil
}

// Sweep purges completed and failed batches older than Retention and
// expired idempotency records. It returns the number of batches removed.
func (s *Scheduler) Sweep(ctx context.Context) (int64, error) {
	tr := otel.Tracer("services/Scheduler")
	ctx, span := tr.Start(ctx, "Sweep")
	defer span.End()

	now := s.Now.now()
	n, err := repo.PurgeTerminalSchedules(ctx, s.DB, now.Add(-durationOr(s.Retention, DefaultRetention)))
	if err != nil {
		return 0, err
	}
	observability.SchedulesSwept.Add(float64(n))
	keys, err := repo.PurgeExpiredIdempotency(ctx, s.DB, now)
	if err != nil {
		return n, err
	}
	s.log().Info().Int64("schedules", n).Int64("idempotency_keys", keys).Msg("retention sweep")
	return n, nil
}

// FireDue first resumes up to limit interrupted executing batches, then
// fires up to limit pending batches whose time has passed. Batches claimed
// concurrently by a timer or another worker are skipped. It returns how many
// batches this call executed.
func (s *Scheduler) FireDue(ctx context.Context, limit int) (int, error) {
	now := s.Now.now()
	stale, err := repo.ListStaleExecuting(ctx, s.DB, now.Add(-s.staleAfter()), limit)
	if err != nil {
		return 0, err
	}
	fired, err := s.runEach(ctx, stale, s.Resume)
	if err != nil {
		return fired, err
	}

	due, err := repo.ListDueSchedules(ctx, s.DB, now, limit)
	if err != nil {
		return fired, err
	}
	n, err := s.runEach(ctx, due, s.Fire)
	return fired + n, err
}

func (s *Scheduler) runEach(ctx context.Context, batches []domain.ScheduledBatch, fn func(context.Context, string) (*domain.BatchResults, error)) (int, error) {
	ran := 0
	for _, b := range batches {
		if ctx.Err() != nil {
			return ran, ctx.Err()
		}
		fctx, cancel := context.WithTimeout(ctx, durationOr(s.FireTimeout, DefaultFireTimeout))
		_, err := fn(fctx, b.ID)
		cancel()
		switch {
		case errors.Is(err, ErrScheduleNotPending):
			continue
		case err != nil:
			s.log().Error().Err(err).Str("schedule_id", b.ID).Msg("run due batch")
		}
		ran++
	}
	return ran, nil
}

// RecoverPending re-arms timers for every pending batch, typically at
// startup. Batches already overdue fire immediately.
func (s *Scheduler) RecoverPending(ctx context.Context) (int, error) {
	pending, err := repo.ListPendingSchedules(ctx, s.DB)
	if err != nil {
		return 0, err
	}
	for _, b := range pending {
		s.arm(b.ID, b.ScheduledTime)
	}
	return len(pending), nil
}
