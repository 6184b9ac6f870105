// Package services – TemplateService
//
// This file implements the template registry: creation and editing of
// business-scoped response templates, default-per-category management,
// suggestion lookup and usage accounting.
//
// Default uniqueness (at most one default per business and category) is held
// by three layers: a per-(business, category) in-process lock, a
// check-then-write inside one transaction, and the ux_templates_default
// partial unique index created by repo.AutoMigrate.
package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/horlartundhey/servisbet-sub001/internal/domain"
	"github.com/horlartundhey/servisbet-sub001/internal/render"
	"github.com/horlartundhey/servisbet-sub001/internal/repo"
	"github.com/horlartundhey/servisbet-sub001/internal/search"
)

// MaxSuggestions caps FindSuggested results.
const MaxSuggestions = 5

// TemplateInput carries the fields accepted by Create.
type TemplateInput struct {
	Name        string
	Description string
	Body        string
	Category    domain.Category
	RatingMin   int
	RatingMax   int
	Keywords    []string
	Variables   []domain.TemplateVariable
	IsDefault   bool
	AutoApply   bool
}

// TemplatePatch carries the fields accepted by Update; nil fields are left
// unchanged.
type TemplatePatch struct {
	Name        *string
	Description *string
	Body        *string
	Category    *domain.Category
	RatingMin   *int
	RatingMax   *int
	Keywords    *[]string
	Variables   *[]domain.TemplateVariable
	IsActive    *bool
	AutoApply   *bool
}

// TemplateService is the template registry.
type TemplateService struct {
	DB  *gorm.DB
	Now Clock

	locks keyedMutex
}

func defaultKey(businessID string, c domain.Category) string {
	return businessID + "|" + string(c)
}

// Create validates fields and stores a new template for the business.
// Keywords are derived from the body when none are supplied.
func (s *TemplateService) Create(ctx context.Context, businessID, ownerID string, in TemplateInput) (*domain.ResponseTemplate, error) {
	tr := otel.Tracer("services/TemplateService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.String("business.id", businessID),
			attribute.String("template.category", string(in.Category)),
		),
	)
	defer span.End()

	if _, err := authorize(ctx, s.DB, businessID, ownerID); err != nil {
		return nil, err
	}

	t := &domain.ResponseTemplate{
		BusinessID:  businessID,
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Body:        in.Body,
		Category:    in.Category,
		RatingMin:   in.RatingMin,
		RatingMax:   in.RatingMax,
		Keywords:    search.NormalizeKeywords(in.Keywords),
		Variables:   in.Variables,
		IsActive:    true,
		IsDefault:   in.IsDefault,
		AutoApply:   in.AutoApply,
		Version:     1,
	}
	if t.RatingMin == 0 && t.RatingMax == 0 {
		t.RatingMin, t.RatingMax = domain.MinRating, domain.MaxRating
	}
	if err := validateTemplate(t); err != nil {
		return nil, err
	}
	if len(t.Keywords) == 0 {
		t.Keywords = search.Keywords(t.Body, search.DefaultKeywordLimit)
	}
	if t.Variables == nil {
		t.Variables = []domain.TemplateVariable{}
	}

	if !t.IsDefault {
		if err := repo.CreateTemplate(ctx, s.DB, t); err != nil {
			return nil, err
		}
		return t, nil
	}

	unlock := s.locks.Lock(defaultKey(businessID, t.Category))
	defer unlock()
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := repo.CountDefaults(ctx, tx, businessID, t.Category)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateDefaultTemplate
		}
		return repo.CreateTemplate(ctx, tx, t)
	})
	if err != nil {
		if !errors.Is(err, ErrDuplicateDefaultTemplate) && isDuplicate(err) {
			return nil, ErrDuplicateDefaultTemplate
		}
		return nil, err
	}
	return t, nil
}

// Get returns a template of a business owned by requesterID.
func (s *TemplateService) Get(ctx context.Context, templateID, requesterID string) (*domain.ResponseTemplate, error) {
	t, err := s.load(ctx, s.DB, templateID)
	if err != nil {
		return nil, err
	}
	if _, err := authorize(ctx, s.DB, t.BusinessID, requesterID); err != nil {
		return nil, err
	}
	return t, nil
}

// List returns the business's templates, optionally narrowed by category.
func (s *TemplateService) List(ctx context.Context, businessID, requesterID string, q repo.TemplateQuery) ([]domain.ResponseTemplate, error) {
	tr := otel.Tracer("services/TemplateService")
	ctx, span := tr.Start(ctx, "List", trace.WithAttributes(attribute.String("business.id", businessID)))
	defer span.End()

	if q.Category != "" && !q.Category.IsValid() {
		return nil, ErrInvalidCategory
	}
	if _, err := authorize(ctx, s.DB, businessID, requesterID); err != nil {
		return nil, err
	}
	return repo.ListTemplates(ctx, s.DB, businessID, q)
}

// Update edits template content and bumps its version. Keywords are
// re-derived when the body changes and no keywords are supplied. Usage
// counters are never written here.
func (s *TemplateService) Update(ctx context.Context, templateID, requesterID string, p TemplatePatch) (*domain.ResponseTemplate, error) {
	tr := otel.Tracer("services/TemplateService")
	ctx, span := tr.Start(ctx, "Update", trace.WithAttributes(attribute.String("template.id", templateID)))
	defer span.End()

	t, err := s.Get(ctx, templateID, requesterID)
	if err != nil {
		return nil, err
	}
	if t.IsArchived {
		return nil, ErrTemplateArchived
	}
	prevCategory := t.Category

	if p.Name != nil {
		t.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	bodyChanged := false
	if p.Body != nil && *p.Body != t.Body {
		t.Body = *p.Body
		bodyChanged = true
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.RatingMin != nil {
		t.RatingMin = *p.RatingMin
	}
	if p.RatingMax != nil {
		t.RatingMax = *p.RatingMax
	}
	if p.Variables != nil {
		t.Variables = *p.Variables
	}
	if p.IsActive != nil {
		t.IsActive = *p.IsActive
	}
	if p.AutoApply != nil {
		t.AutoApply = *p.AutoApply
	}
	switch {
	case p.Keywords != nil:
		t.Keywords = search.NormalizeKeywords(*p.Keywords)
	case bodyChanged:
		t.Keywords = search.Keywords(t.Body, search.DefaultKeywordLimit)
	}
	if err := validateTemplate(t); err != nil {
		return nil, err
	}
	// A deactivated template cannot stay the default.
	clearDefault := !t.IsActive && t.IsDefault
	t.Version++

	save := func() error { return repo.UpdateTemplateContent(ctx, s.DB, t, clearDefault) }
	if t.IsDefault && !clearDefault && t.Category != prevCategory {
		unlock := s.locks.Lock(defaultKey(t.BusinessID, t.Category))
		defer unlock()
		save = func() error {
			return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				n, err := repo.CountDefaults(ctx, tx, t.BusinessID, t.Category)
				if err != nil {
					return err
				}
				if n > 0 {
					return ErrDuplicateDefaultTemplate
				}
				return repo.UpdateTemplateContent(ctx, tx, t, false)
			})
		}
	}
	if err := save(); err != nil {
		if isNotFound(err) {
			return nil, ErrTemplateNotFound
		}
		if !errors.Is(err, ErrDuplicateDefaultTemplate) && isDuplicate(err) {
			return nil, ErrDuplicateDefaultTemplate
		}
		return nil, err
	}
	// Counters may have moved since the read.
	return s.load(ctx, s.DB, t.ID)
}

// Remove hard-deletes a template that was never used and is not referenced
// by a pending schedule; otherwise it archives it. It reports whether the
// template was archived.
func (s *TemplateService) Remove(ctx context.Context, templateID, requesterID string) (archived bool, err error) {
	tr := otel.Tracer("services/TemplateService")
	ctx, span := tr.Start(ctx, "Remove", trace.WithAttributes(attribute.String("template.id", templateID)))
	defer span.End()

	t, err := s.Get(ctx, templateID, requesterID)
	if err != nil {
		return false, err
	}
	pending, err := repo.CountPendingForTemplate(ctx, s.DB, templateID)
	if err != nil {
		return false, err
	}
	if t.TotalUses == 0 && pending == 0 {
		return false, repo.DeleteTemplate(ctx, s.DB, templateID)
	}
	if t.IsArchived {
		return true, nil
	}
	return true, repo.ArchiveTemplate(ctx, s.DB, templateID)
}

// SetDefault makes the template the single default of its business and
// category, unsetting any previous default in the same transaction.
func (s *TemplateService) SetDefault(ctx context.Context, templateID, requesterID string) (*domain.ResponseTemplate, error) {
	tr := otel.Tracer("services/TemplateService")
	ctx, span := tr.Start(ctx, "SetDefault", trace.WithAttributes(attribute.String("template.id", templateID)))
	defer span.End()

	t, err := s.Get(ctx, templateID, requesterID)
	if err != nil {
		return nil, err
	}
	if !t.Usable() {
		return nil, ErrTemplateArchived
	}

	unlock := s.locks.Lock(defaultKey(t.BusinessID, t.Category))
	defer unlock()
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.ClearDefaults(ctx, tx, t.BusinessID, t.Category, t.ID); err != nil {
			return err
		}
		return repo.MarkDefault(ctx, tx, t.ID)
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	t.IsDefault = true
	return t, nil
}

// FindSuggested returns up to MaxSuggestions active, non-archived templates
// whose rating range contains rating. When reviewText shares tokens with
// some templates' keywords, only those templates are returned; otherwise
// every rating match is. Order is auto-apply first, then total uses.
func (s *TemplateService) FindSuggested(ctx context.Context, businessID string, rating int, reviewText string) ([]domain.ResponseTemplate, error) {
	tr := otel.Tracer("services/TemplateService")
	ctx, span := tr.Start(ctx, "FindSuggested",
		trace.WithAttributes(
			attribute.String("business.id", businessID),
			attribute.Int("rating", rating),
		),
	)
	defer span.End()

	if rating < domain.MinRating || rating > domain.MaxRating {
		return nil, ErrInvalidRating
	}
	all, err := repo.ListApplicableTemplates(ctx, s.DB, businessID, rating)
	if err != nil {
		return nil, err
	}

	out := all
	if strings.TrimSpace(reviewText) != "" {
		cands := make([]search.Candidate, len(all))
		for i, t := range all {
			cands[i] = search.Candidate{ID: t.ID, Keywords: t.Keywords}
		}
		if matches := search.Match(reviewText, cands, search.WithStopwords(search.ReviewStopwords)); len(matches) > 0 {
			score := make(map[string]float64, len(matches))
			for _, m := range matches {
				score[m.ID] = m.Score
			}
			out = make([]domain.ResponseTemplate, 0, len(matches))
			for _, t := range all {
				if _, ok := score[t.ID]; ok {
					out = append(out, t)
				}
			}
			sort.SliceStable(out, func(a, b int) bool {
				if out[a].AutoApply != out[b].AutoApply {
					return out[a].AutoApply
				}
				if out[a].TotalUses != out[b].TotalUses {
					return out[a].TotalUses > out[b].TotalUses
				}
				return score[out[a].ID] > score[out[b].ID]
			})
		}
	}
	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out, nil
}

// Variables lists the placeholders used by the template body in
// first-occurrence order, enriched with declared metadata. Declared
// variables that the body does not use are appended after them.
func (s *TemplateService) Variables(ctx context.Context, templateID, requesterID string) ([]domain.TemplateVariable, error) {
	t, err := s.Get(ctx, templateID, requesterID)
	if err != nil {
		return nil, err
	}
	declared := make(map[string]domain.TemplateVariable, len(t.Variables))
	for _, v := range t.Variables {
		declared[v.Name] = v
	}
	names := render.ExtractVariables(t.Body)
	out := make([]domain.TemplateVariable, 0, len(names)+len(t.Variables))
	used := make(map[string]struct{}, len(names))
	for _, n := range names {
		used[n] = struct{}{}
		if v, ok := declared[n]; ok {
			out = append(out, v)
			continue
		}
		out = append(out, domain.TemplateVariable{Name: n, Placeholder: "{{" + n + "}}"})
	}
	for _, v := range t.Variables {
		if _, ok := used[v.Name]; !ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// IncrementUsage atomically bumps the template's usage counters.
func (s *TemplateService) IncrementUsage(ctx context.Context, templateID string, scheduled bool) error {
	err := repo.IncrementTemplateUsage(ctx, s.DB, templateID, scheduled, s.Now.now())
	if isNotFound(err) {
		return ErrTemplateNotFound
	}
	return err
}

func (s *TemplateService) load(ctx context.Context, db *gorm.DB, templateID string) (*domain.ResponseTemplate, error) {
	t, err := repo.GetTemplate(ctx, db, templateID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return t, nil
}

func validateTemplate(t *domain.ResponseTemplate) error {
	if t.Name == "" {
		return ErrEmptyTemplateName
	}
	if strings.TrimSpace(t.Body) == "" {
		return ErrEmptyTemplateBody
	}
	if !t.Category.IsValid() {
		return ErrInvalidCategory
	}
	if t.RatingMin < domain.MinRating || t.RatingMax > domain.MaxRating || t.RatingMin > t.RatingMax {
		return ErrInvalidRatingRange
	}
	for _, v := range t.Variables {
		if strings.TrimSpace(v.Name) == "" {
			return ErrInvalidVariable
		}
	}
	return nil
}
