package domain

import "time"

// ScheduleStatus is the lifecycle state of a ScheduledBatch.
type ScheduleStatus string

const (
	StatusPending   ScheduleStatus = "pending"
	StatusExecuting ScheduleStatus = "executing"
	StatusCompleted ScheduleStatus = "completed"
	StatusFailed    ScheduleStatus = "failed"
	StatusCancelled ScheduleStatus = "cancelled"
)

// IsValid reports whether s is a known status.
func (s ScheduleStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusExecuting, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible from s.
func (s ScheduleStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// CanTransition reports whether the state machine allows moving from s to next:
//
//	pending   -> executing | cancelled
//	executing -> completed | failed
func (s ScheduleStatus) CanTransition(next ScheduleStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusExecuting || next == StatusCancelled
	case StatusExecuting:
		return next == StatusCompleted || next == StatusFailed
	}
	return false
}

// ResponseItem targets one review, optionally with verbatim response text
// that bypasses template rendering.
type ResponseItem struct {
	ReviewID           string `json:"review_id"`
	CustomResponseText string `json:"custom_response_text,omitempty"`
}

// ItemSuccess records a committed business response.
type ItemSuccess struct {
	ReviewID     string `json:"review_id"`
	ReviewerName string `json:"reviewer_name"`
	Rating       int    `json:"rating"`
}

// ItemFailure records a per-item failure and its reason.
type ItemFailure struct {
	ReviewID string `json:"review_id"`
	Error    string `json:"error"`
}

// BatchResults aggregates per-item outcomes of one execution.
type BatchResults struct {
	Successful []ItemSuccess `json:"successful"`
	Failed     []ItemFailure `json:"failed"`
}

// ScheduledBatch is a persisted, time-deferred batch of templated responses.
//
// Fields:
//   - ScheduledTime: absolute UTC firing instant, immutable after creation.
//   - ScheduledHour: hour-of-day (0..23) of ScheduledTime in the configured
//     analytics location, stored at creation so analytics can group in SQL.
//   - Status: see ScheduleStatus; transitions are conditional updates.
//   - Results: populated only once the batch reaches completed.
//   - SentCount / FailedCount: denormalized result sizes for aggregation.
type ScheduledBatch struct {
	ID         string            `json:"id"          gorm:"type:char(36);primaryKey"`
	BusinessID string            `json:"business_id" gorm:"type:char(36);not null;index:idx_business_schedules,priority:1"`
	TemplateID string            `json:"template_id" gorm:"type:char(36);not null;index"`
	CreatedBy  string            `json:"created_by"  gorm:"type:varchar(64);not null"`
	Items      []ResponseItem    `json:"items"       gorm:"type:text;serializer:json"`
	Variables  map[string]string `json:"custom_variables" gorm:"type:text;serializer:json"`

	ScheduledTime time.Time      `json:"scheduled_time" gorm:"not null;index:idx_due_schedules,priority:2"`
	ScheduledHour int            `json:"-"              gorm:"not null;default:0"`
	Status        ScheduleStatus `json:"status"         gorm:"type:varchar(16);not null;index:idx_due_schedules,priority:1"`

	CreatedAt   time.Time  `json:"created_at" gorm:"index:idx_business_schedules,priority:2"`
	UpdatedAt   time.Time  `json:"updated_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty" gorm:"index"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	Error       string        `json:"error,omitempty" gorm:"type:text"`
	Results     *BatchResults `json:"results,omitempty" gorm:"type:text;serializer:json"`
	SentCount   int           `json:"sent_count"   gorm:"not null;default:0"`
	FailedCount int           `json:"failed_count" gorm:"not null;default:0"`
}

// TableName returns the database table name for ScheduledBatch.
func (ScheduledBatch) TableName() string { return "scheduled_batches" }

// ItemCount returns the number of targeted reviews.
func (b *ScheduledBatch) ItemCount() int { return len(b.Items) }
