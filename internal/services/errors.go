// Package services implements the review-response core: the template
// registry, the eligibility filter, the bulk/immediate response executor and
// the response scheduler. This file centralizes service-level error values so
// that they can be consistently returned by service methods and checked by
// callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/horlartundhey/servisbet-sub001/internal/repo"
)

// Not-found errors.
var (
	ErrBusinessNotFound = errors.New("business not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrReviewNotFound   = errors.New("review not found")
	ErrScheduleNotFound = errors.New("schedule not found")
)

// Authorization errors.
var (
	// ErrForbidden is returned when the requester does not own the business
	// (or the schedule/template belonging to it).
	ErrForbidden = errors.New("requester does not own this business")
)

// Validation errors. These are returned before any state is persisted.
var (
	ErrInvalidRatingRange = errors.New("rating range must satisfy 1 <= min <= max <= 5")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrInvalidCategory    = errors.New("unknown template category")
	ErrEmptyTemplateBody  = errors.New("template body is empty")
	ErrEmptyTemplateName  = errors.New("template name is empty")
	ErrInvalidVariable    = errors.New("template variable must have a name")
	ErrInvalidFilter      = errors.New("invalid review filter")

	// ErrDuplicateDefaultTemplate is returned when a second default template
	// would exist for the same business and category.
	ErrDuplicateDefaultTemplate = errors.New("a default template already exists for this category")

	// ErrTemplateArchived is returned when an archived or inactive template is
	// used for new responses or edited.
	ErrTemplateArchived = errors.New("template is archived or inactive")

	ErrEmptyItems       = errors.New("batch has no items")
	ErrDuplicateItem    = errors.New("review appears more than once in batch")
	ErrScheduleTooSoon  = errors.New("scheduled time is not far enough in the future")
	ErrIneligibleReview = errors.New("review is not eligible for a response")
)

// State machine errors.
var (
	// ErrInvalidStateTransition is returned when cancelling a batch that is no
	// longer pending.
	ErrInvalidStateTransition = errors.New("invalid schedule state transition")

	// ErrScheduleNotPending is returned by Fire when the batch was already
	// claimed, finished or cancelled. Callers treat it as a no-op.
	ErrScheduleNotPending = errors.New("schedule is not pending")
)

// Per-item failure reasons recorded in BatchResults.Failed.
const (
	reasonReviewNotFound  = "review not found"
	reasonWrongBusiness   = "review belongs to another business"
	reasonEmptyResponse   = "rendered response is empty"
	reasonMissingVarsPref = "missing required variables: "
	reasonWriteFailed     = "failed to save response"
)

// isNotFound treats repo-level not found sentinels as "not found" in a
// driver-agnostic way.
func isNotFound(err error) bool {
	return errors.Is(err, repo.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicate detects unique-constraint violations across drivers that may
// not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	if errors.Is(err, repo.ErrDuplicate) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
