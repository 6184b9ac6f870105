package services

import (
	"context"
	"time"
)

// EventType names a notification emitted by the response core.
type EventType string

const (
	EventReviewResponded   EventType = "review.responded"
	EventScheduleCompleted EventType = "schedule.completed"
	EventScheduleFailed    EventType = "schedule.failed"
	EventScheduleCancelled EventType = "schedule.cancelled"
)

// Event is the payload handed to a Notifier. Fields not relevant to the
// event type are left empty.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`

	BusinessID    string `json:"business_id"`
	BusinessName  string `json:"business_name,omitempty"`
	BusinessEmail string `json:"-"`
	BusinessPhone string `json:"-"`

	ScheduleID string `json:"schedule_id,omitempty"`
	TemplateID string `json:"template_id,omitempty"`

	ReviewID      string `json:"review_id,omitempty"`
	ReviewerName  string `json:"reviewer_name,omitempty"`
	ReviewerEmail string `json:"-"`
	ResponseText  string `json:"response_text,omitempty"`

	Sent   int    `json:"sent,omitempty"`
	Failed int    `json:"failed,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Notifier delivers events outside the core (email, SMS, push). Delivery is
// best effort: implementations must not block the caller for long and their
// failures never affect batch results.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// NopNotifier discards every event.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(context.Context, Event) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return NopNotifier{}
	}
	return n
}

// Clock returns the current time. Services default to time.Now in UTC.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}
