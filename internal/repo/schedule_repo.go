// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// ScheduledBatch model.
//
// Every status change is a conditional UPDATE guarded by the expected source
// status, so two workers racing on the same batch can never both win:
//
//	ClaimSchedule     pending   -> executing
//	CompleteSchedule  executing -> completed
//	FailSchedule      executing -> failed
//	CancelSchedule    pending   -> cancelled
//	ResumeSchedule    executing -> executing (stale started_at only)
//
// A transition that matches no row returns ErrNotClaimed.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/horlartundhey/servisbet-sub001/internal/domain"
)

// CreateSchedule inserts b in pending state.
func CreateSchedule(ctx context.Context, db *gorm.DB, b *domain.ScheduledBatch) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	b.Status = domain.StatusPending
	return db.WithContext(ctx).Create(b).Error
}

// GetSchedule fetches a batch by ID, or ErrNotFound.
func GetSchedule(ctx context.Context, db *gorm.DB, id string) (*domain.ScheduledBatch, error) {
	var b domain.ScheduledBatch
	if err := db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// ListSchedules returns the business's batches, newest created first.
func ListSchedules(ctx context.Context, db *gorm.DB, businessID string) ([]domain.ScheduledBatch, error) {
	var out []domain.ScheduledBatch
	err := db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// ListDueSchedules returns up to limit pending batches whose scheduled time
// is at or before now, earliest first.
func ListDueSchedules(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]domain.ScheduledBatch, error) {
	q := db.WithContext(ctx).
		Where("status = ? AND scheduled_time <= ?", domain.StatusPending, now.UTC()).
		Order("scheduled_time ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []domain.ScheduledBatch
	err := q.Find(&out).Error
	return out, err
}

// ListPendingSchedules returns every pending batch, earliest first.
func ListPendingSchedules(ctx context.Context, db *gorm.DB) ([]domain.ScheduledBatch, error) {
	var out []domain.ScheduledBatch
	err := db.WithContext(ctx).
		Where("status = ?", domain.StatusPending).
		Order("scheduled_time ASC, id ASC").
		Find(&out).Error
	return out, err
}

// CountPendingForTemplate returns how many pending batches reference the template.
func CountPendingForTemplate(ctx context.Context, db *gorm.DB, templateID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.ScheduledBatch{}).
		Where("template_id = ? AND status = ?", templateID, domain.StatusPending).
		Count(&n).Error
	return n, err
}

func transition(ctx context.Context, db *gorm.DB, id string, from domain.ScheduleStatus, patch *domain.ScheduledBatch, cols ...string) error {
	cols = append(cols, "status", "updated_at")
	patch.UpdatedAt = time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.ScheduledBatch{}).
		Where("id = ? AND status = ?", id, from).
		Select(cols).
		Updates(patch)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotClaimed
	}
	return nil
}

// ClaimSchedule atomically moves a pending batch to executing.
func ClaimSchedule(ctx context.Context, db *gorm.DB, id string, at time.Time) error {
	at = at.UTC()
	return transition(ctx, db, id, domain.StatusPending,
		&domain.ScheduledBatch{Status: domain.StatusExecuting, StartedAt: &at}, "started_at")
}

// ListStaleExecuting returns up to limit executing batches started before
// cutoff, oldest first. These were claimed by a run that never reached a
// terminal state.
func ListStaleExecuting(ctx context.Context, db *gorm.DB, cutoff time.Time, limit int) ([]domain.ScheduledBatch, error) {
	q := db.WithContext(ctx).
		Where("status = ? AND (started_at IS NULL OR started_at < ?)", domain.StatusExecuting, cutoff.UTC()).
		Order("started_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []domain.ScheduledBatch
	err := q.Find(&out).Error
	return out, err
}

// ResumeSchedule re-claims an executing batch whose run started before
// cutoff by moving started_at to at. Only one caller can win per stale run.
func ResumeSchedule(ctx context.Context, db *gorm.DB, id string, cutoff, at time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.ScheduledBatch{}).
		Where("id = ? AND status = ? AND (started_at IS NULL OR started_at < ?)", id, domain.StatusExecuting, cutoff.UTC()).
		Updates(map[string]any{"started_at": at.UTC(), "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotClaimed
	}
	return nil
}

// CompleteSchedule stores results on an executing batch and marks it completed.
func CompleteSchedule(ctx context.Context, db *gorm.DB, id string, results domain.BatchResults, at time.Time) error {
	at = at.UTC()
	patch := &domain.ScheduledBatch{
		Status:      domain.StatusCompleted,
		CompletedAt: &at,
		Results:     &results,
		SentCount:   len(results.Successful),
		FailedCount: len(results.Failed),
	}
	return transition(ctx, db, id, domain.StatusExecuting, patch,
		"completed_at", "results", "sent_count", "failed_count")
}

// FailSchedule records a batch-level error on an executing batch.
func FailSchedule(ctx context.Context, db *gorm.DB, id, reason string, at time.Time) error {
	at = at.UTC()
	patch := &domain.ScheduledBatch{Status: domain.StatusFailed, CompletedAt: &at, Error: reason}
	return transition(ctx, db, id, domain.StatusExecuting, patch, "completed_at", "error")
}

// CancelSchedule atomically moves a pending batch to cancelled.
func CancelSchedule(ctx context.Context, db *gorm.DB, id string, at time.Time) error {
	at = at.UTC()
	return transition(ctx, db, id, domain.StatusPending,
		&domain.ScheduledBatch{Status: domain.StatusCancelled, CancelledAt: &at}, "cancelled_at")
}

// PurgeTerminalSchedules deletes completed and failed batches that finished
// before cutoff. Pending, executing and cancelled batches are never touched.
func PurgeTerminalSchedules(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("status IN ? AND completed_at IS NOT NULL AND completed_at < ?",
			[]domain.ScheduleStatus{domain.StatusCompleted, domain.StatusFailed}, cutoff.UTC()).
		Delete(&domain.ScheduledBatch{})
	return res.RowsAffected, res.Error
}

// ScheduleAggregates are the database-side aggregates behind schedule analytics.
type ScheduleAggregates struct {
	ByStatus  map[domain.ScheduleStatus]int64
	ByHour    [24]int64
	TotalSent int64
	Recent    int64
}

// AggregateSchedules computes per-status counts, the per-hour distribution of
// scheduled times, the number of responses sent by completed batches and the
// number of batches created at or after since.
func AggregateSchedules(ctx context.Context, db *gorm.DB, businessID string, since time.Time) (*ScheduleAggregates, error) {
	base := func() *gorm.DB {
		return db.WithContext(ctx).Model(&domain.ScheduledBatch{}).Where("business_id = ?", businessID)
	}
	agg := &ScheduleAggregates{ByStatus: make(map[domain.ScheduleStatus]int64)}

	var statusRows []struct {
		Status domain.ScheduleStatus
		N      int64
	}
	if err := base().Select("status, COUNT(*) AS n").Group("status").Scan(&statusRows).Error; err != nil {
		return nil, err
	}
	for _, r := range statusRows {
		agg.ByStatus[r.Status] = r.N
	}

	var hourRows []struct {
		ScheduledHour int
		N             int64
	}
	if err := base().Select("scheduled_hour, COUNT(*) AS n").Group("scheduled_hour").Scan(&hourRows).Error; err != nil {
		return nil, err
	}
	for _, r := range hourRows {
		if r.ScheduledHour >= 0 && r.ScheduledHour < 24 {
			agg.ByHour[r.ScheduledHour] = r.N
		}
	}

	if err := base().
		Where("status = ?", domain.StatusCompleted).
		Select("COALESCE(SUM(sent_count), 0)").
		Scan(&agg.TotalSent).Error; err != nil {
		return nil, err
	}

	if err := base().Where("created_at >= ?", since.UTC()).Count(&agg.Recent).Error; err != nil {
		return nil, err
	}
	return agg, nil
}
