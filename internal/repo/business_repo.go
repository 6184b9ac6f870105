// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Business model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/horlartundhey/servisbet-sub001/internal/domain"
)

// CreateBusiness inserts b, assigning an ID and UTC timestamps when unset.
func CreateBusiness(ctx context.Context, db *gorm.DB, b *domain.Business) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	return db.WithContext(ctx).Create(b).Error
}

// GetBusiness fetches a business by ID, or ErrNotFound.
func GetBusiness(ctx context.Context, db *gorm.DB, id string) (*domain.Business, error) {
	var b domain.Business
	if err := db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}
