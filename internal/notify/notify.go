// Package notify delivers response-core events to the outside world.
//
// Every notifier implements services.Notifier. Delivery is best effort:
// failures are logged and never reach the caller.
//
//   - Log       writes each event as a structured zerolog line.
//   - Redis     publishes each event as JSON on a pub/sub channel.
//   - Email     mails reviewers (review.responded) and owners (schedule.failed) via SES.
//   - SMS       texts the business phone when a batch completes or fails via SNS.
//   - Multi     fans one event out to several notifiers.
//   - Async     moves delivery off the caller's goroutine.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/horlartundhey/servisbet-sub001/internal/services"
)

// deliveryTimeout bounds one outbound call.
const deliveryTimeout = 10 * time.Second

// Log writes events to a zerolog logger.
type Log struct {
	Logger zerolog.Logger
}

// Notify implements services.Notifier.
func (l Log) Notify(_ context.Context, ev services.Event) {
	e := l.Logger.Info().
		Str("event", string(ev.Type)).
		Time("occurred_at", ev.OccurredAt).
		Str("business_id", ev.BusinessID)
	if ev.ScheduleID != "" {
		e = e.Str("schedule_id", ev.ScheduleID)
	}
	if ev.ReviewID != "" {
		e = e.Str("review_id", ev.ReviewID)
	}
	switch ev.Type {
	case services.EventScheduleCompleted:
		e = e.Int("sent", ev.Sent).Int("failed", ev.Failed)
	case services.EventScheduleFailed:
		e = e.Str("error", ev.Error)
	}
	e.Msg("notification")
}

// Multi delivers each event to every notifier in order.
type Multi []services.Notifier

// Notify implements services.Notifier.
func (m Multi) Notify(ctx context.Context, ev services.Event) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, ev)
		}
	}
}

// Async queues events for a single background goroutine. When the queue is
// full the event is dropped and logged.
type Async struct {
	next   services.Notifier
	logger zerolog.Logger
	queue  chan services.Event

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewAsync starts the delivery goroutine. Close drains the queue.
func NewAsync(next services.Notifier, size int, logger zerolog.Logger) *Async {
	if size <= 0 {
		size = 256
	}
	a := &Async{
		next:   next,
		logger: logger.With().Str("component", "notify").Logger(),
		queue:  make(chan services.Event, size),
	}
	a.wg.Add(1)
	go a.run()
	return a
}

// Notify implements services.Notifier and never blocks.
func (a *Async) Notify(_ context.Context, ev services.Event) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		a.logger.Warn().Str("event", string(ev.Type)).Msg("notifier closed; event dropped")
		return
	}
	select {
	case a.queue <- ev:
	default:
		a.logger.Warn().Str("event", string(ev.Type)).Msg("notification queue full; event dropped")
	}
}

func (a *Async) run() {
	defer a.wg.Done()
	for ev := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		a.next.Notify(ctx, ev)
		cancel()
	}
}

// Close stops accepting events and waits until queued ones are delivered.
func (a *Async) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()
	a.wg.Wait()
}
