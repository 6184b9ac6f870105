package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/horlartundhey/servisbet-sub001/internal/domain"
)

// newTestDB opens a unique in-memory database. With migrate=true the full
// schema (including the partial default-template index) is applied.
func newTestDB(t *testing.T, migrate bool) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if migrate {
		if err := AutoMigrate(db); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func strp(s string) *string { return &s }

func seedBusiness(t *testing.T, db *gorm.DB, id, owner string) *domain.Business {
	t.Helper()
	b := &domain.Business{ID: id, OwnerID: owner, Name: "Biz " + id}
	if err := CreateBusiness(context.Background(), db, b); err != nil {
		t.Fatalf("seed business: %v", err)
	}
	return b
}

func seedReview(t *testing.T, db *gorm.DB, id, businessID string, rating int, author *string, anonymous bool, created time.Time) *domain.Review {
	t.Helper()
	r := &domain.Review{
		ID:          id,
		BusinessID:  businessID,
		Rating:      rating,
		Content:     "review " + id,
		AuthorID:    author,
		AuthorName:  "Author " + id,
		IsAnonymous: anonymous,
		CreatedAt:   created,
	}
	if err := CreateReview(context.Background(), db, r); err != nil {
		t.Fatalf("seed review: %v", err)
	}
	return r
}

func seedTemplate(t *testing.T, db *gorm.DB, id, businessID string, cat domain.Category, isDefault bool) *domain.ResponseTemplate {
	t.Helper()
	tpl := &domain.ResponseTemplate{
		ID:         id,
		BusinessID: businessID,
		OwnerID:    "owner",
		Name:       "tpl " + id,
		Body:       "Hi {{customerName}}",
		Category:   cat,
		RatingMin:  1,
		RatingMax:  5,
		IsActive:   true,
		IsDefault:  isDefault,
	}
	if err := CreateTemplate(context.Background(), db, tpl); err != nil {
		t.Fatalf("seed template: %v", err)
	}
	return tpl
}
