package taxonomy

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag is one node of the knowledge-point forest. System tags are derived from a
// curriculum definition and may be deleted and recreated wholesale; their ids are
// not stable across a rebuild. Custom tags belong to one user and survive rebuilds.
//
// The forest is a flat table with a parent back-reference: a nil ParentID marks a
// grade-level root. Cross-rebuild joins must key on (name, subject), never on id.
type Tag struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name    string    `gorm:"column:name;not null;index:idx_tag_name_subject,priority:1;index:idx_tag_owner_name_subject,unique,priority:2" json:"name"`
	Subject Subject   `gorm:"column:subject;not null;index:idx_tag_name_subject,priority:2;index:idx_tag_owner_name_subject,unique,priority:3" json:"subject"`

	ParentID *uuid.UUID `gorm:"type:uuid;index" json:"parent_id,omitempty"`

	IsSystem bool `gorm:"column:is_system;not null;default:false;index" json:"is_system"`

	// OwnerID is set only for custom tags. One owner cannot hold two custom tags
	// with the same (name, subject); system tags have a NULL owner and stay out of
	// the unique index.
	OwnerID *uuid.UUID `gorm:"type:uuid;index:idx_tag_owner_name_subject,unique,priority:1" json:"owner_id,omitempty"`

	// SortOrder is the sibling sort key: grade roots use the curriculum rank
	// table, chapters/sections/leaves use 1-based position.
	SortOrder int `gorm:"column:sort_order;not null;default:0" json:"sort_order"`

	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Parent   *Tag  `gorm:"foreignKey:ParentID" json:"-"`
	Children []Tag `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}

func (Tag) TableName() string { return "tags" }

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
