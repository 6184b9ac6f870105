// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Review model.
//
// The eligibility predicate (registered author, no response yet) lives in two
// scopes, RegisteredAuthor and Unresponded. Listing and the conditional
// response write compose the same scopes, which mirror
// domain.Review.Eligibility.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/horlartundhey/servisbet-sub001/internal/domain"
)

// Response status filters for ListCandidateReviews.
const (
	StatusAll         = "all"
	StatusUnresponded = "unresponded"
	StatusResponded   = "responded"
)

// Sort orders for ListCandidateReviews.
const (
	SortNewest     = "newest"
	SortOldest     = "oldest"
	SortRatingLow  = "rating_low"
	SortRatingHigh = "rating_high"
)

// ReviewQuery narrows ListCandidateReviews. Zero values mean "all, newest
// first, no rating floor, no limit".
type ReviewQuery struct {
	Status    string
	MinRating int
	Sort      string
	Limit     int
}

// RegisteredAuthor restricts to reviews written by a registered,
// non-anonymous user.
func RegisteredAuthor(db *gorm.DB) *gorm.DB {
	return db.Where("author_id IS NOT NULL AND author_id <> '' AND is_anonymous = ?", false)
}

// Unresponded restricts to reviews without a business response.
func Unresponded(db *gorm.DB) *gorm.DB {
	return db.Where("response_responded_at IS NULL")
}

// Responded restricts to reviews carrying a business response.
func Responded(db *gorm.DB) *gorm.DB {
	return db.Where("response_responded_at IS NOT NULL")
}

// CreateReview inserts r, assigning an ID and timestamps when unset.
func CreateReview(ctx context.Context, db *gorm.DB, r *domain.Review) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	return db.WithContext(ctx).Create(r).Error
}

// GetReview fetches a review by ID, or ErrNotFound.
func GetReview(ctx context.Context, db *gorm.DB, id string) (*domain.Review, error) {
	var r domain.Review
	if err := db.WithContext(ctx).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// ListCandidateReviews returns the business's registered-author reviews
// filtered by q. Rating sorts tie-break on creation time, newest first.
func ListCandidateReviews(ctx context.Context, db *gorm.DB, businessID string, q ReviewQuery) ([]domain.Review, error) {
	tx := db.WithContext(ctx).
		Model(&domain.Review{}).
		Scopes(RegisteredAuthor).
		Where("business_id = ?", businessID)

	switch q.Status {
	case StatusUnresponded:
		tx = tx.Scopes(Unresponded)
	case StatusResponded:
		tx = tx.Scopes(Responded)
	}
	if q.MinRating > 0 {
		tx = tx.Where("rating >= ?", q.MinRating)
	}

	switch q.Sort {
	case SortOldest:
		tx = tx.Order("created_at ASC, id ASC")
	case SortRatingLow:
		tx = tx.Order("rating ASC, created_at DESC, id ASC")
	case SortRatingHigh:
		tx = tx.Order("rating DESC, created_at DESC, id ASC")
	default:
		tx = tx.Order("created_at DESC, id ASC")
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var out []domain.Review
	err := tx.Find(&out).Error
	return out, err
}

// CountCandidateReviews returns the number of registered-author reviews of
// the business and how many of them already carry a response.
func CountCandidateReviews(ctx context.Context, db *gorm.DB, businessID string) (total, responded int64, err error) {
	base := func() *gorm.DB {
		return db.WithContext(ctx).
			Model(&domain.Review{}).
			Scopes(RegisteredAuthor).
			Where("business_id = ?", businessID)
	}
	if err = base().Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = base().Scopes(Responded).Count(&responded).Error; err != nil {
		return 0, 0, err
	}
	return total, responded, nil
}

// SetBusinessResponse attaches resp to the review in a single conditional
// UPDATE that only matches while the review is still eligible. When no row
// matches (already answered, anonymous, or missing) it returns
// ErrAlreadyResponded and nothing is written.
func SetBusinessResponse(ctx context.Context, db *gorm.DB, reviewID string, resp domain.BusinessResponse) error {
	if resp.RespondedAt == nil {
		now := time.Now().UTC()
		resp.RespondedAt = &now
	}
	res := db.WithContext(ctx).
		Model(&domain.Review{}).
		Scopes(RegisteredAuthor, Unresponded).
		Where("id = ?", reviewID).
		Updates(map[string]any{
			"response_text":         resp.Text,
			"response_responded_at": resp.RespondedAt.UTC(),
			"response_responded_by": resp.RespondedBy,
			"response_is_scheduled": resp.IsScheduled,
			"response_schedule_id":  resp.ScheduleID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyResponded
	}
	return nil
}
