// Package handlers exposes the REST endpoints of the review-response API.
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
// The requester identity comes from the "userID" Gin context key or the
// X-User-ID header.
package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/horlartundhey/servisbet-sub001/internal/domain"
	"github.com/horlartundhey/servisbet-sub001/internal/repo"
	"github.com/horlartundhey/servisbet-sub001/internal/services"
)

//
// Service contracts (context-aware)
//

// TemplateService defines the template registry operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type TemplateService interface {
	Create(ctx context.Context, businessID, ownerID string, in services.TemplateInput) (*domain.ResponseTemplate, error)
	Get(ctx context.Context, templateID, requesterID string) (*domain.ResponseTemplate, error)
	List(ctx context.Context, businessID, requesterID string, q repo.TemplateQuery) ([]domain.ResponseTemplate, error)
	Update(ctx context.Context, templateID, requesterID string, p services.TemplatePatch) (*domain.ResponseTemplate, error)
	// Remove deletes an unused template or archives a used one.
	Remove(ctx context.Context, templateID, requesterID string) (archived bool, err error)
	SetDefault(ctx context.Context, templateID, requesterID string) (*domain.ResponseTemplate, error)
	FindSuggested(ctx context.Context, businessID string, rating int, reviewText string) ([]domain.ResponseTemplate, error)
	Variables(ctx context.Context, templateID, requesterID string) ([]domain.TemplateVariable, error)
}

// EligibilityService lists reviews that may receive a templated response.
type EligibilityService interface {
	ListEligible(ctx context.Context, businessID string, filter services.ReviewFilter) (*services.EligibleReviews, error)
}

// BatchExecutor applies a template to a batch of reviews, or previews the
// result without writing.
type BatchExecutor interface {
	Execute(ctx context.Context, req services.BatchRequest) (*domain.BatchResults, error)
	Preview(ctx context.Context, req services.BatchRequest) ([]services.Preview, error)
}

// ScheduleService defines deferred batch operations.
type ScheduleService interface {
	Schedule(ctx context.Context, req services.ScheduleRequest) (*services.ScheduleReceipt, error)
	Get(ctx context.Context, id, requesterID string) (*domain.ScheduledBatch, error)
	List(ctx context.Context, businessID, requesterID string) ([]domain.ScheduledBatch, error)
	Cancel(ctx context.Context, id, requesterID string) (*domain.ScheduledBatch, error)
	Analytics(ctx context.Context, businessID, requesterID string) (*services.Analytics, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for templates, reviews, responses and
// schedules.
type Handlers struct {
	tplSvc   TemplateService
	eligSvc  EligibilityService
	execSvc  BatchExecutor
	schedSvc ScheduleService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(tpl TemplateService, elig EligibilityService, exec BatchExecutor, sched ScheduleService) *Handlers {
	return &Handlers{tplSvc: tpl, eligSvc: elig, execSvc: exec, schedSvc: sched}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header, and finally to
// "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// DTOs
//

// ResponseItemRequest targets one review in a batch payload.
type ResponseItemRequest struct {
	ReviewID string `json:"review_id" binding:"required" example:"5b1d1f4e-93a4-4f0e-8d0e-6b1e2b0f9c11"`
	// CustomResponseText, when set, is posted verbatim instead of the rendered template.
	CustomResponseText string `json:"custom_response_text,omitempty" example:"Thanks for coming back!"`
}

// BatchResponseRequest is the payload of responses/preview and responses/bulk.
type BatchResponseRequest struct {
	TemplateID      string                `json:"template_id" binding:"required" example:"0f8fad5b-d9cb-469f-a165-70867728950e"`
	Responses       []ResponseItemRequest `json:"responses" binding:"required,min=1,dive"`
	CustomVariables map[string]string     `json:"custom_variables,omitempty"`
}

// CreateScheduleRequest is the payload of POST /businesses/{id}/schedules.
type CreateScheduleRequest struct {
	TemplateID      string                `json:"template_id" binding:"required" example:"0f8fad5b-d9cb-469f-a165-70867728950e"`
	Responses       []ResponseItemRequest `json:"responses" binding:"required,min=1,dive"`
	ScheduledTime   time.Time             `json:"scheduled_time" binding:"required" example:"2025-03-01T10:00:00Z"`
	CustomVariables map[string]string     `json:"custom_variables,omitempty"`
}

// BulkResponse wraps the outcome of an immediate batch.
type BulkResponse struct {
	Results *domain.BatchResults `json:"results"`
	Sent    int                  `json:"sent"`
	Failed  int                  `json:"failed"`
}

// PreviewResponse wraps rendered previews.
type PreviewResponse struct {
	Previews []services.Preview `json:"previews"`
}

// RemoveTemplateResponse reports how a template was removed.
type RemoveTemplateResponse struct {
	Archived bool `json:"archived"`
	Deleted  bool `json:"deleted"`
}

// VariablesResponse lists the variables a template expects.
type VariablesResponse struct {
	TemplateID string                    `json:"template_id"`
	Variables  []domain.TemplateVariable `json:"variables"`
}

// ListTemplatesResponse wraps a business's templates.
type ListTemplatesResponse struct {
	Templates []domain.ResponseTemplate `json:"templates"`
	Total     int                       `json:"total"`
}

// ListSchedulesResponse wraps a business's scheduled batches.
type ListSchedulesResponse struct {
	Schedules []domain.ScheduledBatch `json:"schedules"`
	Total     int                     `json:"total"`
}

func toItems(in []ResponseItemRequest) []domain.ResponseItem {
	out := make([]domain.ResponseItem, 0, len(in))
	for _, it := range in {
		out = append(out, domain.ResponseItem{
			ReviewID:           strings.TrimSpace(it.ReviewID),
			CustomResponseText: it.CustomResponseText,
		})
	}
	return out
}
