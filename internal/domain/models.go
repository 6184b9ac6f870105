// Package domain defines the persistence models for businesses, reviews,
// response templates, and scheduled response batches. These types are mapped
// with GORM and form the core data layer of the review-response service.
package domain

import (
	"time"
)

// Business is the tenant that owns reviews, templates, and schedules.
// Only the fields the response core needs are modelled here.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - OwnerID: user id of the business owner; authorizes template and schedule operations.
//   - Name: display name, exposed to templates as {{businessName}}.
//   - ContactEmail / ContactPhone: optional notification targets.
type Business struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	OwnerID      string    `json:"owner_id"      gorm:"type:varchar(64);not null;index"`
	Name         string    `json:"name"          gorm:"type:varchar(255);not null"`
	ContactEmail string    `json:"contact_email" gorm:"type:varchar(255)"`
	ContactPhone string    `json:"contact_phone" gorm:"type:varchar(32)"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for Business.
func (Business) TableName() string { return "businesses" }

// BusinessResponse is the reply a business posts on a review. A zero
// RespondedAt means the review has not been answered yet.
type BusinessResponse struct {
	Text        string     `json:"text,omitempty"         gorm:"type:text"`
	RespondedAt *time.Time `json:"responded_at,omitempty" gorm:"index"`
	RespondedBy string     `json:"responded_by,omitempty" gorm:"type:varchar(64)"`
	IsScheduled bool       `json:"is_scheduled"`
	ScheduleID  *string    `json:"schedule_id,omitempty"  gorm:"type:char(36)"`
}

// Review is a customer review of a business. The response core reads reviews
// and writes BusinessResponse exactly once per review.
//
// Fields:
//   - AuthorID: registered user id, nil for anonymous reviews.
//   - IsAnonymous: explicit anonymous marker (a registered author may post anonymously).
//   - AuthorName / AuthorEmail: display name and optional notification address.
//   - Response: embedded business response, columns prefixed with "response_".
type Review struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	BusinessID  string    `json:"business_id"  gorm:"type:char(36);not null;index:idx_business_reviews,priority:1"`
	Rating      int       `json:"rating"       gorm:"not null;check:rating BETWEEN 1 AND 5"`
	Content     string    `json:"content"      gorm:"type:text"`
	AuthorID    *string   `json:"author_id,omitempty" gorm:"type:varchar(64)"`
	AuthorName  string    `json:"author_name"  gorm:"type:varchar(255)"`
	AuthorEmail string    `json:"-"            gorm:"type:varchar(255)"`
	IsAnonymous bool      `json:"is_anonymous" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"   gorm:"index:idx_business_reviews,priority:2"`
	UpdatedAt   time.Time `json:"updated_at"`

	Response BusinessResponse `json:"business_response" gorm:"embedded;embeddedPrefix:response_"`
}

// TableName returns the database table name for Review.
func (Review) TableName() string { return "reviews" }

// HasRegisteredAuthor reports whether the review was written by a registered,
// non-anonymous user.
func (r *Review) HasRegisteredAuthor() bool {
	return r.AuthorID != nil && *r.AuthorID != "" && !r.IsAnonymous
}

// HasResponse reports whether a business response is already attached.
func (r *Review) HasResponse() bool {
	return r.Response.RespondedAt != nil
}

// Ineligibility reasons returned by Review.Eligibility.
const (
	ReasonAnonymous        = "anonymous or unregistered reviewer"
	ReasonAlreadyResponded = "review already has a business response"
)

// Eligibility is the single eligibility predicate for templated responses:
// the author must be registered and no response may exist. It returns
// ok=false with the reason when the review cannot be targeted.
//
// The repository's conditional write (SetBusinessResponse) encodes the same
// two conditions in SQL; keep them in sync.
func (r *Review) Eligibility() (ok bool, reason string) {
	if !r.HasRegisteredAuthor() {
		return false, ReasonAnonymous
	}
	if r.HasResponse() {
		return false, ReasonAlreadyResponded
	}
	return true, ""
}

// DisplayName returns the reviewer name used in rendered responses, or
// fallback when the review carries none.
func (r *Review) DisplayName(fallback string) string {
	if r.AuthorName != "" {
		return r.AuthorName
	}
	return fallback
}
