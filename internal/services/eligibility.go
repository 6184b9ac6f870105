// Package services – EligibilityService
//
// Eligibility is decided by one predicate, domain.Review.Eligibility, whose
// SQL form is the repo.RegisteredAuthor/repo.Unresponded scope pair. The
// listing here, the executor's pre-check and the conditional response write
// all go through that pair.
package services

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/horlartundhey/servisbet-sub001/internal/domain"
	"github.com/horlartundhey/servisbet-sub001/internal/repo"
)

// ReviewFilter selects candidate reviews. Status is one of all, unresponded
// or responded (default all); SortBy is newest, oldest, rating_low or
// rating_high (default newest). MinRating and Limit are ignored when zero.
type ReviewFilter struct {
	Status    string
	MinRating int
	SortBy    string
	Limit     int
}

// EligibilitySummary counts candidates. TotalRegistered ignores the filter;
// Unresponded and Responded partition it; Filtered is len(Reviews).
type EligibilitySummary struct {
	TotalRegistered int64 `json:"total_registered"`
	Unresponded     int64 `json:"unresponded"`
	Responded       int64 `json:"responded"`
	Filtered        int   `json:"filtered"`
}

// EligibleReviews is the result of ListEligible.
type EligibleReviews struct {
	Reviews []domain.Review    `json:"reviews"`
	Summary EligibilitySummary `json:"summary"`
}

// EligibilityService lists reviews that can receive a templated response.
type EligibilityService struct {
	DB *gorm.DB
}

func (f *ReviewFilter) normalize() error {
	switch f.Status {
	case "":
		f.Status = repo.StatusAll
	case repo.StatusAll, repo.StatusUnresponded, repo.StatusResponded:
	default:
		return ErrInvalidFilter
	}
	switch f.SortBy {
	case "":
		f.SortBy = repo.SortNewest
	case repo.SortNewest, repo.SortOldest, repo.SortRatingLow, repo.SortRatingHigh:
	default:
		return ErrInvalidFilter
	}
	if f.MinRating < 0 || f.MinRating > domain.MaxRating || f.Limit < 0 {
		return ErrInvalidFilter
	}
	return nil
}

// ListEligible returns the business's registered-author reviews matching
// filter, plus a summary over all of them. An empty result is valid.
func (s *EligibilityService) ListEligible(ctx context.Context, businessID string, filter ReviewFilter) (*EligibleReviews, error) {
	tr := otel.Tracer("services/EligibilityService")
	ctx, span := tr.Start(ctx, "ListEligible",
		trace.WithAttributes(
			attribute.String("business.id", businessID),
			attribute.String("filter.status", filter.Status),
		),
	)
	defer span.End()

	if err := filter.normalize(); err != nil {
		return nil, err
	}

	total, responded, err := repo.CountCandidateReviews(ctx, s.DB, businessID)
	if err != nil {
		return nil, err
	}
	reviews, err := repo.ListCandidateReviews(ctx, s.DB, businessID, repo.ReviewQuery{
		Status:    filter.Status,
		MinRating: filter.MinRating,
		Sort:      filter.SortBy,
		Limit:     filter.Limit,
	})
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return &EligibleReviews{
		Reviews: reviews,
		Summary: EligibilitySummary{
			TotalRegistered: total,
			Unresponded:     total - responded,
			Responded:       responded,
			Filtered:        len(reviews),
		},
	}, nil
}

// checkEligible loads a review and applies the shared predicate. It returns
// the review and an empty reason when it can be targeted for businessID.
func checkEligible(ctx context.Context, db *gorm.DB, businessID, reviewID string) (*domain.Review, string, error) {
	r, err := repo.GetReview(ctx, db, reviewID)
	if err != nil {
		if isNotFound(err) {
			return nil, reasonReviewNotFound, nil
		}
		return nil, "", err
	}
	if r.BusinessID != businessID {
		return r, reasonWrongBusiness, nil
	}
	if ok, reason := r.Eligibility(); !ok {
		return r, reason, nil
	}
	return r, "", nil
}
