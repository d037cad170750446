package content

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/wrongbook-backend/internal/domain"
	"github.com/yungbote/wrongbook-backend/internal/platform/logger"
)

// ListFilter narrows ListByUser. TagIDs filters to items linked to any of the
// ids (callers pass a descendant set for chapter-scoped filtering).
// GradePatterns is a gradefilter pattern list applied to grade_context.
type ListFilter struct {
	Subject       types.Subject
	TagIDs        []uuid.UUID
	GradePatterns []string
}

type MistakeItemRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.MistakeItem) ([]*types.MistakeItem, error)

	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.MistakeItem, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.MistakeItem, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter ListFilter) ([]*types.MistakeItem, error)

	// ListWithSystemTags returns every item holding at least one system-tag
	// link, tags preloaded. The rebuild snapshot reads from this.
	ListWithSystemTags(ctx context.Context, tx *gorm.DB) ([]*types.MistakeItem, error)

	// AppendTags unions tags into the item's relation; existing links stay.
	AppendTags(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, tags []*types.Tag) error

	FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type mistakeItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMistakeItemRepo(db *gorm.DB, baseLog *logger.Logger) MistakeItemRepo {
	return &mistakeItemRepo{db: db, log: baseLog.With("repo", "MistakeItemRepo")}
}

func (r *mistakeItemRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.MistakeItem) ([]*types.MistakeItem, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.MistakeItem{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *mistakeItemRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.MistakeItem, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *mistakeItemRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.MistakeItem, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.MistakeItem
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Preload("Tags").
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mistakeItemRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter ListFilter) ([]*types.MistakeItem, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.MistakeItem
	if userID == uuid.Nil {
		return out, nil
	}
	q := t.WithContext(ctx).
		Model(&types.MistakeItem{}).
		Where("mistake_items.user_id = ?", userID)
	if filter.Subject != "" {
		q = q.Where("mistake_items.subject = ?", filter.Subject)
	}
	if len(filter.TagIDs) > 0 {
		q = q.Where(
			"mistake_items.id IN (SELECT mistake_item_id FROM mistake_item_tags WHERE tag_id IN ?)",
			filter.TagIDs,
		)
	}
	if len(filter.GradePatterns) > 0 {
		like := t.Session(&gorm.Session{NewDB: true}).Model(&types.MistakeItem{})
		for _, p := range filter.GradePatterns {
			like = like.Or("mistake_items.grade_context LIKE ?", "%"+p+"%")
		}
		q = q.Where(like)
	}
	if err := q.
		Preload("Tags").
		Order("mistake_items.created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mistakeItemRepo) ListWithSystemTags(ctx context.Context, tx *gorm.DB) ([]*types.MistakeItem, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.MistakeItem
	if err := t.WithContext(ctx).
		Model(&types.MistakeItem{}).
		Where(`mistake_items.id IN (
			SELECT mit.mistake_item_id
			FROM mistake_item_tags mit
			JOIN tags ON tags.id = mit.tag_id
			WHERE tags.is_system = ? AND tags.deleted_at IS NULL
		)`, true).
		Preload("Tags").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mistakeItemRepo) AppendTags(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, tags []*types.Tag) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if itemID == uuid.Nil || len(tags) == 0 {
		return nil
	}
	item := &types.MistakeItem{ID: itemID}
	return t.WithContext(ctx).Model(item).Association("Tags").Append(tags)
}

func (r *mistakeItemRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	if err := t.WithContext(ctx).
		Exec("DELETE FROM mistake_item_tags WHERE mistake_item_id IN ?", ids).Error; err != nil {
		return err
	}
	return t.WithContext(ctx).Unscoped().Where("id IN ?", ids).Delete(&types.MistakeItem{}).Error
}
