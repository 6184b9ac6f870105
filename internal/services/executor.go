// Package services – Executor
//
// The executor applies a template to a batch of reviews and commits one
// business response per review. Items are independent: a failure is
// recorded in BatchResults.Failed and the batch continues. Each successful
// item is one transaction holding the conditional response write and, for
// template-rendered items, the usage counter increment.
//
// Batch-level problems (business or template missing, template archived)
// are returned as errors before any item is processed.
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/horlartundhey/servisbet-sub001/internal/domain"
	"github.com/horlartundhey/servisbet-sub001/internal/observability"
	"github.com/horlartundhey/servisbet-sub001/internal/render"
	"github.com/horlartundhey/servisbet-sub001/internal/repo"
)

// FallbackCustomerName is rendered for {{customerName}} when the review
// carries no author name.
const FallbackCustomerName = "Valued Customer"

// ReviewDateLayout formats {{reviewDate}}.
const ReviewDateLayout = "January 2, 2006"

// BatchRequest describes one execution. RequesterID, when set, must own the
// business. ScheduleID is set for scheduled executions.
type BatchRequest struct {
	BusinessID  string
	TemplateID  string
	RequesterID string
	Items       []domain.ResponseItem
	Variables   map[string]string
	ScheduleID  string
}

// Preview is the rendered, unsaved response for one item.
type Preview struct {
	ReviewID          string `json:"review_id"`
	CustomerName      string `json:"customer_name"`
	Rating            int    `json:"rating"`
	ReviewText        string `json:"review_text"`
	ProcessedResponse string `json:"processed_response"`
	CanRespond        bool   `json:"can_respond"`
	Reason            string `json:"reason,omitempty"`
	// UnusedVariables lists custom variables the template never references.
	UnusedVariables []string `json:"unused_variables,omitempty"`
}

// Executor commits templated business responses.
type Executor struct {
	DB       *gorm.DB
	Notifier Notifier
	Now      Clock
	Logger   *zerolog.Logger
}

func (e *Executor) log() *zerolog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return &log.Logger
}

type batchContext struct {
	business *domain.Business
	template *domain.ResponseTemplate
}

func (e *Executor) prepare(ctx context.Context, req BatchRequest) (*batchContext, error) {
	var (
		biz *domain.Business
		err error
	)
	if req.RequesterID != "" {
		biz, err = authorize(ctx, e.DB, req.BusinessID, req.RequesterID)
	} else {
		biz, err = loadBusiness(ctx, e.DB, req.BusinessID)
	}
	if err != nil {
		return nil, err
	}
	tpl, err := repo.GetTemplate(ctx, e.DB, req.TemplateID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if tpl.BusinessID != biz.ID {
		return nil, ErrTemplateNotFound
	}
	if !tpl.Usable() {
		return nil, ErrTemplateArchived
	}
	return &batchContext{business: biz, template: tpl}, nil
}

// Execute writes a response to every eligible item of req and reports
// per-item outcomes. The returned error is non-nil only for batch-level
// failures, in which case nothing was written.
func (e *Executor) Execute(ctx context.Context, req BatchRequest) (*domain.BatchResults, error) {
	tr := otel.Tracer("services/Executor")
	ctx, span := tr.Start(ctx, "Execute",
		trace.WithAttributes(
			attribute.String("business.id", req.BusinessID),
			attribute.String("template.id", req.TemplateID),
			attribute.String("schedule.id", req.ScheduleID),
			attribute.Int("items", len(req.Items)),
		),
	)
	defer span.End()

	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	bc, err := e.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	scheduled := req.ScheduleID != ""
	path := observability.PathImmediate
	if scheduled {
		path = observability.PathScheduled
	}

	res := &domain.BatchResults{
		Successful: []domain.ItemSuccess{},
		Failed:     []domain.ItemFailure{},
	}
	for _, item := range req.Items {
		ok, fail := e.executeItem(ctx, bc, req, item, scheduled)
		if fail != nil {
			res.Failed = append(res.Failed, *fail)
			observability.ReviewResponsesTotal.WithLabelValues(path, observability.OutcomeFailed).Inc()
			continue
		}
		res.Successful = append(res.Successful, *ok)
		observability.ReviewResponsesTotal.WithLabelValues(path, observability.OutcomeSuccess).Inc()
	}
	return res, nil
}

func (e *Executor) executeItem(ctx context.Context, bc *batchContext, req BatchRequest, item domain.ResponseItem, scheduled bool) (*domain.ItemSuccess, *domain.ItemFailure) {
	failed := func(reason string) *domain.ItemFailure {
		return &domain.ItemFailure{ReviewID: item.ReviewID, Error: reason}
	}

	review, reason, err := checkEligible(ctx, e.DB, bc.business.ID, item.ReviewID)
	if err != nil {
		e.log().Error().Err(err).Str("review_id", item.ReviewID).Msg("load review")
		return nil, failed(reasonWriteFailed)
	}
	if reason == domain.ReasonAlreadyResponded && deliveredBy(review, req.ScheduleID) {
		// An interrupted run of this batch already answered the review.
		return &domain.ItemSuccess{
			ReviewID:     review.ID,
			ReviewerName: review.DisplayName(FallbackCustomerName),
			Rating:       review.Rating,
		}, nil
	}
	if reason != "" {
		return nil, failed(reason)
	}

	text, templated, reason := e.compose(bc, review, item, req.Variables)
	if reason != "" {
		return nil, failed(reason)
	}

	now := e.Now.now()
	resp := domain.BusinessResponse{
		Text:        text,
		RespondedAt: &now,
		RespondedBy: bc.business.OwnerID,
		IsScheduled: scheduled,
	}
	if scheduled {
		sid := req.ScheduleID
		resp.ScheduleID = &sid
	}

	err = e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.SetBusinessResponse(ctx, tx, review.ID, resp); err != nil {
			return err
		}
		if templated {
			return repo.IncrementTemplateUsage(ctx, tx, bc.template.ID, scheduled, now)
		}
		return nil
	})
	switch {
	case errors.Is(err, repo.ErrAlreadyResponded):
		e.log().Warn().
			Str("review_id", review.ID).
			Str("schedule_id", req.ScheduleID).
			Msg("review answered concurrently; skipping")
		return nil, failed(domain.ReasonAlreadyResponded)
	case err != nil:
		e.log().Error().Err(err).Str("review_id", review.ID).Msg("write business response")
		return nil, failed(reasonWriteFailed)
	}

	notifierOrNop(e.Notifier).Notify(ctx, Event{
		Type:          EventReviewResponded,
		OccurredAt:    now,
		BusinessID:    bc.business.ID,
		BusinessName:  bc.business.Name,
		ScheduleID:    req.ScheduleID,
		TemplateID:    bc.template.ID,
		ReviewID:      review.ID,
		ReviewerName:  review.DisplayName(FallbackCustomerName),
		ReviewerEmail: review.AuthorEmail,
		ResponseText:  text,
	})
	return &domain.ItemSuccess{
		ReviewID:     review.ID,
		ReviewerName: review.DisplayName(FallbackCustomerName),
		Rating:       review.Rating,
	}, nil
}

// deliveredBy reports whether the review's response was written by the
// scheduled batch scheduleID.
func deliveredBy(r *domain.Review, scheduleID string) bool {
	return scheduleID != "" && r.Response.ScheduleID != nil && *r.Response.ScheduleID == scheduleID
}

// compose returns the response text for item. templated reports whether
// the text came from the template; reason is non-empty when the item
// cannot be answered.
func (e *Executor) compose(bc *batchContext, review *domain.Review, item domain.ResponseItem, custom map[string]string) (text string, templated bool, reason string) {
	if t := strings.TrimSpace(item.CustomResponseText); t != "" {
		return t, false, ""
	}
	vars := buildVariables(bc.template, bc.business, review, custom)
	if v := render.Validate(bc.template.Body, vars, bc.template.RequiredVariables()); !v.IsValid {
		return "", true, reasonMissingVarsPref + strings.Join(v.Missing, ", ")
	}
	text = render.Render(bc.template.Body, vars)
	if text == "" {
		return "", true, reasonEmptyResponse
	}
	return text, true, ""
}

// Preview renders every item without writing anything.
func (e *Executor) Preview(ctx context.Context, req BatchRequest) ([]Preview, error) {
	tr := otel.Tracer("services/Executor")
	ctx, span := tr.Start(ctx, "Preview",
		trace.WithAttributes(
			attribute.String("business.id", req.BusinessID),
			attribute.String("template.id", req.TemplateID),
			attribute.Int("items", len(req.Items)),
		),
	)
	defer span.End()

	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	bc, err := e.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	out := make([]Preview, 0, len(req.Items))
	for _, item := range req.Items {
		p := Preview{ReviewID: item.ReviewID}
		review, reason, err := checkEligible(ctx, e.DB, bc.business.ID, item.ReviewID)
		if err != nil {
			return nil, fmt.Errorf("preview review %s: %w", item.ReviewID, err)
		}
		if review != nil && reason != reasonWrongBusiness {
			p.CustomerName = review.DisplayName(FallbackCustomerName)
			p.Rating = review.Rating
			p.ReviewText = review.Content
		}
		if reason != "" {
			p.Reason = reason
			out = append(out, p)
			continue
		}
		text, templated, reason := e.compose(bc, review, item, req.Variables)
		if templated {
			p.UnusedVariables = render.Unused(bc.template.Body, req.Variables)
		}
		p.ProcessedResponse = text
		p.CanRespond = reason == ""
		p.Reason = reason
		out = append(out, p)
	}
	return out, nil
}

// buildVariables merges, lowest precedence first: declared template
// defaults, built-in review/business values, caller overrides.
func buildVariables(t *domain.ResponseTemplate, b *domain.Business, r *domain.Review, custom map[string]string) map[string]string {
	vars := t.DefaultValues()
	vars["customerName"] = r.DisplayName(FallbackCustomerName)
	vars["rating"] = strconv.Itoa(r.Rating)
	vars["reviewText"] = r.Content
	vars["businessName"] = b.Name
	vars["reviewDate"] = r.CreatedAt.UTC().Format(ReviewDateLayout)
	for k, v := range custom {
		vars[k] = v
	}
	return vars
}
