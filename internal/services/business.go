package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/horlartundhey/servisbet-sub001/internal/domain"
	"github.com/horlartundhey/servisbet-sub001/internal/repo"
)

// loadBusiness fetches the business, mapping a missing row to ErrBusinessNotFound.
func loadBusiness(ctx context.Context, db *gorm.DB, businessID string) (*domain.Business, error) {
	b, err := repo.GetBusiness(ctx, db, businessID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	return b, nil
}

// authorize loads the business and verifies requesterID owns it.
func authorize(ctx context.Context, db *gorm.DB, businessID, requesterID string) (*domain.Business, error) {
	b, err := loadBusiness(ctx, db, businessID)
	if err != nil {
		return nil, err
	}
	if b.OwnerID != requesterID {
		return nil, ErrForbidden
	}
	return b, nil
}
