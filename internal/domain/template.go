package domain

import "time"

// Category classifies a response template.
type Category string

const (
	CategoryPositive  Category = "positive"
	CategoryNeutral   Category = "neutral"
	CategoryNegative  Category = "negative"
	CategoryComplaint Category = "complaint"
	CategoryThankYou  Category = "thank_you"
	CategoryApology   Category = "apology"
	CategoryFollowUp  Category = "follow_up"
	CategoryGeneral   Category = "general"
)

// Categories lists every valid Category in display order.
var Categories = []Category{
	CategoryPositive, CategoryNeutral, CategoryNegative, CategoryComplaint,
	CategoryThankYou, CategoryApology, CategoryFollowUp, CategoryGeneral,
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// Rating bounds shared by reviews and template rating ranges.
const (
	MinRating = 1
	MaxRating = 5
)

// TemplateVariable describes one {{placeholder}} a template expects.
type TemplateVariable struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Placeholder  string `json:"placeholder,omitempty"`
	Required     bool   `json:"required"`
	DefaultValue string `json:"default_value,omitempty"`
}

// ResponseTemplate is a parameterized reply a business reuses across reviews.
//
// Fields:
//   - Body: text containing {{variableName}} placeholders.
//   - RatingMin / RatingMax: inclusive applicability window within 1..5.
//   - Keywords: lowercase tokens used for suggestion matching.
//   - Variables: ordered metadata for placeholders (requiredness, defaults).
//   - IsDefault: at most one per (business, category); backed by a partial
//     unique index created in repo.AutoMigrate.
//   - TotalUses / ScheduledUses / LastUsed: usage counters, only ever increased.
//   - Version: incremented on every content edit.
type ResponseTemplate struct {
	ID          string   `json:"id"          gorm:"type:char(36);primaryKey"`
	BusinessID  string   `json:"business_id" gorm:"type:char(36);not null;index:idx_business_templates,priority:1"`
	OwnerID     string   `json:"owner_id"    gorm:"type:varchar(64);not null"`
	Name        string   `json:"name"        gorm:"type:varchar(255);not null"`
	Description string   `json:"description" gorm:"type:text"`
	Body        string   `json:"body"        gorm:"type:text;not null"`
	Category    Category `json:"category"    gorm:"type:varchar(32);not null;index:idx_business_templates,priority:2"`

	RatingMin int                `json:"rating_min" gorm:"not null;default:1"`
	RatingMax int                `json:"rating_max" gorm:"not null;default:5"`
	Keywords  []string           `json:"keywords"   gorm:"type:text;serializer:json"`
	Variables []TemplateVariable `json:"variables"  gorm:"type:text;serializer:json"`

	IsActive   bool `json:"is_active"   gorm:"not null"`
	IsDefault  bool `json:"is_default"  gorm:"not null;default:false"`
	AutoApply  bool `json:"auto_apply"  gorm:"not null;default:false"`
	IsArchived bool `json:"is_archived" gorm:"not null;default:false;index"`

	TotalUses     int64      `json:"total_uses"     gorm:"not null;default:0"`
	ScheduledUses int64      `json:"scheduled_uses" gorm:"not null;default:0"`
	LastUsed      *time.Time `json:"last_used,omitempty"`

	Version   int       `json:"version" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for ResponseTemplate.
func (ResponseTemplate) TableName() string { return "response_templates" }

// CoversRating reports whether rating falls inside the template's range.
func (t *ResponseTemplate) CoversRating(rating int) bool {
	return rating >= t.RatingMin && rating <= t.RatingMax
}

// Usable reports whether the template can be applied to new responses.
func (t *ResponseTemplate) Usable() bool {
	return t.IsActive && !t.IsArchived
}

// RequiredVariables returns the names of variables declared as required.
func (t *ResponseTemplate) RequiredVariables() []string {
	var out []string
	for _, v := range t.Variables {
		if v.Required {
			out = append(out, v.Name)
		}
	}
	return out
}

// DefaultValues returns declared default values keyed by variable name.
func (t *ResponseTemplate) DefaultValues() map[string]string {
	out := make(map[string]string)
	for _, v := range t.Variables {
		if v.DefaultValue != "" {
			out[v.Name] = v.DefaultValue
		}
	}
	return out
}
