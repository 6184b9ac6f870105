package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

var (
	// ErrDuplicate indicates a unique constraint violation on insert or update.
	ErrDuplicate = errors.New("duplicate")

	// ErrAlreadyResponded is returned by SetBusinessResponse when the review
	// no longer satisfies the eligibility predicate at write time.
	ErrAlreadyResponded = errors.New("review already responded or not eligible")

	// ErrNotClaimed is returned when a conditional status transition matched
	// no row in the expected source state.
	ErrNotClaimed = errors.New("schedule not in expected state")
)

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique")
}
