// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// ResponseTemplate model.
//
// Usage counters are only ever changed with SQL expressions
// (total_uses = total_uses + 1) so concurrent batches never lose updates.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/horlartundhey/servisbet-sub001/internal/domain"
)

// TemplateQuery narrows ListTemplates.
type TemplateQuery struct {
	Category        domain.Category
	IncludeArchived bool
}

// CreateTemplate inserts t, assigning an ID and timestamps when unset.
// A second default for the same business and category yields ErrDuplicate.
func CreateTemplate(ctx context.Context, db *gorm.DB, t *domain.ResponseTemplate) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Version == 0 {
		t.Version = 1
	}
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetTemplate fetches a template by ID, or ErrNotFound.
func GetTemplate(ctx context.Context, db *gorm.DB, id string) (*domain.ResponseTemplate, error) {
	var t domain.ResponseTemplate
	if err := db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTemplates returns the business's templates ordered default first, then
// most used, then by name.
func ListTemplates(ctx context.Context, db *gorm.DB, businessID string, q TemplateQuery) ([]domain.ResponseTemplate, error) {
	tx := db.WithContext(ctx).Where("business_id = ?", businessID)
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if !q.IncludeArchived {
		tx = tx.Where("is_archived = ?", false)
	}
	var out []domain.ResponseTemplate
	err := tx.Order("is_default DESC, total_uses DESC, name ASC, id ASC").Find(&out).Error
	return out, err
}

// ListApplicableTemplates returns active, non-archived templates of the
// business whose rating range contains rating, ordered auto-apply first
// and then by total uses.
func ListApplicableTemplates(ctx context.Context, db *gorm.DB, businessID string, rating int) ([]domain.ResponseTemplate, error) {
	var out []domain.ResponseTemplate
	err := db.WithContext(ctx).
		Where("business_id = ? AND is_active = ? AND is_archived = ?", businessID, true, false).
		Where("rating_min <= ? AND rating_max >= ?", rating, rating).
		Order("auto_apply DESC, total_uses DESC, created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// templateContentColumns are the columns an edit may change. Usage counters
// and is_default are owned by IncrementTemplateUsage and the default
// helpers, so a stale read can never roll them back.
var templateContentColumns = []string{
	"name", "description", "body", "category", "rating_min", "rating_max",
	"keywords", "variables", "is_active", "auto_apply", "version", "updated_at",
}

// UpdateTemplateContent writes the editable columns of t. is_default is
// written too when clearDefault is set, which only ever unsets it.
// Defaults colliding with another row yield ErrDuplicate.
func UpdateTemplateContent(ctx context.Context, db *gorm.DB, t *domain.ResponseTemplate, clearDefault bool) error {
	t.UpdatedAt = time.Now().UTC()
	cols := templateContentColumns
	if clearDefault {
		t.IsDefault = false
		cols = append(append([]string{}, cols...), "is_default")
	}
	res := db.WithContext(ctx).
		Model(&domain.ResponseTemplate{}).
		Where("id = ?", t.ID).
		Select(cols).
		Updates(t)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return ErrDuplicate
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearDefaults unsets is_default on every template of the business and
// category except exceptID.
func ClearDefaults(ctx context.Context, db *gorm.DB, businessID string, category domain.Category, exceptID string) error {
	return db.WithContext(ctx).
		Model(&domain.ResponseTemplate{}).
		Where("business_id = ? AND category = ? AND id <> ? AND is_default = ?", businessID, category, exceptID, true).
		Update("is_default", false).Error
}

// MarkDefault sets is_default on the template. It returns ErrNotFound when
// the row does not exist and ErrDuplicate when another default still exists.
func MarkDefault(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.ResponseTemplate{}).
		Where("id = ?", id).
		Update("is_default", true)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return ErrDuplicate
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountDefaults returns how many default templates exist for the business
// and category.
func CountDefaults(ctx context.Context, db *gorm.DB, businessID string, category domain.Category) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.ResponseTemplate{}).
		Where("business_id = ? AND category = ? AND is_default = ?", businessID, category, true).
		Count(&n).Error
	return n, err
}

// IncrementTemplateUsage atomically bumps total_uses, and scheduled_uses
// when scheduled is true, and stamps last_used.
func IncrementTemplateUsage(ctx context.Context, db *gorm.DB, id string, scheduled bool, at time.Time) error {
	updates := map[string]any{
		"total_uses": gorm.Expr("total_uses + ?", 1),
		"last_used":  at.UTC(),
	}
	if scheduled {
		updates["scheduled_uses"] = gorm.Expr("scheduled_uses + ?", 1)
	}
	res := db.WithContext(ctx).
		Model(&domain.ResponseTemplate{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ArchiveTemplate hides a template from suggestions and new schedules while
// keeping the row for past responses.
func ArchiveTemplate(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.ResponseTemplate{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_archived": true,
			"is_active":   false,
			"is_default":  false,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTemplate removes a template row.
func DeleteTemplate(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.ResponseTemplate{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
