// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP
// responses (via the `fail()` helper in this package), and the translation of
// service sentinel errors into (status, code) pairs.
//
// Conventions:
//   - Codes are lowercase, snake_case.
//   - Generic codes (e.g., bad_request, forbidden, conflict) mirror common HTTP
//     status semantics to aid interoperability.
//   - Domain-specific codes (e.g., schedule_too_soon, invalid_state) name a
//     business rule that cannot be conveyed by status alone.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "invalid_state",
//	  "message": "invalid schedule state transition"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/horlartundhey/servisbet-sub001/internal/services"
)

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeValidation       = "validation_failed"
	ErrCodeDuplicateDefault = "duplicate_default"
	ErrCodeTemplateArchived = "template_archived"
	ErrCodeIneligible       = "ineligible_review"
	ErrCodeScheduleTooSoon  = "schedule_too_soon"
	ErrCodeInvalidState     = "invalid_state"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)

// errorMapping pairs a service sentinel with its HTTP status and code.
type errorMapping struct {
	target error
	status int
	code   string
}

var serviceErrors = []errorMapping{
	{services.ErrBusinessNotFound, http.StatusNotFound, ErrCodeNotFound},
	{services.ErrTemplateNotFound, http.StatusNotFound, ErrCodeNotFound},
	{services.ErrReviewNotFound, http.StatusNotFound, ErrCodeNotFound},
	{services.ErrScheduleNotFound, http.StatusNotFound, ErrCodeNotFound},

	{services.ErrForbidden, http.StatusForbidden, ErrCodeForbidden},

	{services.ErrInvalidRatingRange, http.StatusBadRequest, ErrCodeValidation},
	{services.ErrInvalidRating, http.StatusBadRequest, ErrCodeValidation},
	{services.ErrInvalidCategory, http.StatusBadRequest, ErrCodeValidation},
	{services.ErrEmptyTemplateBody, http.StatusBadRequest, ErrCodeValidation},
	{services.ErrEmptyTemplateName, http.StatusBadRequest, ErrCodeValidation},
	{services.ErrInvalidVariable, http.StatusBadRequest, ErrCodeValidation},
	{services.ErrInvalidFilter, http.StatusBadRequest, ErrCodeValidation},
	{services.ErrEmptyItems, http.StatusBadRequest, ErrCodeValidation},
	{services.ErrDuplicateItem, http.StatusBadRequest, ErrCodeValidation},
	{services.ErrScheduleTooSoon, http.StatusBadRequest, ErrCodeScheduleTooSoon},
	{services.ErrIneligibleReview, http.StatusUnprocessableEntity, ErrCodeIneligible},

	{services.ErrDuplicateDefaultTemplate, http.StatusConflict, ErrCodeDuplicateDefault},
	{services.ErrTemplateArchived, http.StatusConflict, ErrCodeTemplateArchived},
	{services.ErrInvalidStateTransition, http.StatusConflict, ErrCodeInvalidState},
	{services.ErrScheduleNotPending, http.StatusConflict, ErrCodeInvalidState},
}

// statusFor returns the HTTP status and code for err. Unknown errors map to
// 500/internal_error.
func statusFor(err error) (int, string) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, ErrCodeInternal
}

// writeServiceError translates a service error into the standard envelope.
// 5xx responses carry a generic message; the cause is logged by fail().
func writeServiceError(c *gin.Context, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "internal server error"
	}
	fail(c, status, code, msg)
}
