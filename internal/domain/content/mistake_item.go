package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/wrongbook-backend/internal/domain/taxonomy"
)

// MistakeItem is one photographed wrong answer. The item row itself is plain
// CRUD; the tags relation is the part the rebuild engine reads and rewrites.
type MistakeItem struct {
	ID      uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Subject taxonomy.Subject `gorm:"column:subject;not null;index" json:"subject"`

	// GradeContext is the free-text grade/semester label the item was filed
	// under (e.g. "七年级上", "初一，上期"). Legacy spellings vary; match it with
	// gradefilter, never by equality.
	GradeContext string `gorm:"column:grade_context" json:"grade_context"`

	ImageURL string `gorm:"column:image_url" json:"image_url"`

	// Analysis is the AI provider's payload (problem text, explanation,
	// knowledge-point strings). Opaque to the taxonomy engine.
	Analysis datatypes.JSON `gorm:"column:analysis;type:jsonb" json:"analysis,omitempty"`

	Tags []*taxonomy.Tag `gorm:"many2many:mistake_item_tags;" json:"tags,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (MistakeItem) TableName() string { return "mistake_items" }

func (m *MistakeItem) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
