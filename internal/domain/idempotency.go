package domain

import "time"

// Idempotency records the schedule produced by a previously processed
// POST /businesses/:id/schedules request, keyed by (user_id, business_id, key).
// A retry carrying the same Idempotency-Key returns the original schedule
// instead of creating a duplicate batch.
type Idempotency struct {
	ID         string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	UserID     string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_business_key,priority:1"`
	BusinessID string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_business_key,priority:2"`
	Key        string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_business_key,priority:3"`
	ScheduleID string    `gorm:"type:TEXT NOT NULL"`
	Status     int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt  time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt  time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
