package taxonomy

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/wrongbook-backend/internal/domain"
	"github.com/yungbote/wrongbook-backend/internal/platform/logger"
)

type TagRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Tag) ([]*types.Tag, error)

	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Tag, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Tag, error)
	GetChildren(ctx context.Context, tx *gorm.DB, parentIDs []uuid.UUID) ([]*types.Tag, error)
	GetBySubject(ctx context.Context, tx *gorm.DB, subject types.Subject, ownerID uuid.UUID) ([]*types.Tag, error)

	ListSystem(ctx context.Context, tx *gorm.DB) ([]*types.Tag, error)
	CountSystemBySubject(ctx context.Context, tx *gorm.DB, subject types.Subject) (int64, error)
	GetSystemByNameSubject(ctx context.Context, tx *gorm.DB, name string, subject types.Subject) (*types.Tag, error)
	GetSystemBySubjectNameLike(ctx context.Context, tx *gorm.DB, subject types.Subject, patterns []string) ([]*types.Tag, error)
	GetCustomByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, name string, subject types.Subject) (*types.Tag, error)

	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error

	FullDeleteSystemBySubject(ctx context.Context, tx *gorm.DB, subject types.Subject) (int64, error)
	FullDeleteCustom(ctx context.Context, tx *gorm.DB, ownerID, id uuid.UUID) error
}

type tagRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTagRepo(db *gorm.DB, baseLog *logger.Logger) TagRepo {
	return &tagRepo{db: db, log: baseLog.With("repo", "TagRepo")}
}

func (r *tagRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Tag) ([]*types.Tag, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Tag{}, nil
	}
	if err := t.WithContext(ctx).CreateInBatches(&rows, 200).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *tagRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Tag, error) {
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

func (r *tagRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Tag, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Tag
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *tagRepo) GetChildren(ctx context.Context, tx *gorm.DB, parentIDs []uuid.UUID) ([]*types.Tag, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Tag
	if len(parentIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("parent_id IN ?", parentIDs).
		Order("sort_order ASC, name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetBySubject returns the subject's system tags plus the owner's custom tags,
// the whole forest flat, ordered for tree assembly.
func (r *tagRepo) GetBySubject(ctx context.Context, tx *gorm.DB, subject types.Subject, ownerID uuid.UUID) ([]*types.Tag, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Tag
	q := t.WithContext(ctx).Where("subject = ?", subject)
	if ownerID == uuid.Nil {
		q = q.Where("is_system = ?", true)
	} else {
		q = q.Where("is_system = ? OR owner_id = ?", true, ownerID)
	}
	if err := q.Order("sort_order ASC, created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *tagRepo) ListSystem(ctx context.Context, tx *gorm.DB) ([]*types.Tag, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Tag
	if err := t.WithContext(ctx).
		Where("is_system = ?", true).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *tagRepo) CountSystemBySubject(ctx context.Context, tx *gorm.DB, subject types.Subject) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(ctx).
		Model(&types.Tag{}).
		Where("is_system = ? AND subject = ?", true, subject).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *tagRepo) GetSystemByNameSubject(ctx context.Context, tx *gorm.DB, name string, subject types.Subject) (*types.Tag, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Tag
	if err := t.WithContext(ctx).
		Where("is_system = ? AND name = ? AND subject = ?", true, name, subject).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// GetSystemBySubjectNameLike matches system tags whose name matches any of the
// LIKE patterns. Used by the grade-context placement lookup.
func (r *tagRepo) GetSystemBySubjectNameLike(ctx context.Context, tx *gorm.DB, subject types.Subject, patterns []string) ([]*types.Tag, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Tag
	if len(patterns) == 0 {
		return out, nil
	}
	q := t.WithContext(ctx).Where("is_system = ? AND subject = ?", true, subject)
	like := t.Session(&gorm.Session{NewDB: true}).Model(&types.Tag{})
	for _, p := range patterns {
		like = like.Or("name LIKE ?", "%"+p+"%")
	}
	if err := q.Where(like).Order("sort_order ASC, created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *tagRepo) GetCustomByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, name string, subject types.Subject) (*types.Tag, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if ownerID == uuid.Nil {
		return nil, nil
	}
	var out []*types.Tag
	if err := t.WithContext(ctx).
		Where("is_system = ? AND owner_id = ? AND name = ? AND subject = ?", false, ownerID, name, subject).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *tagRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return t.WithContext(ctx).
		Model(&types.Tag{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// FullDeleteSystemBySubject hard-deletes every system tag for one subject along
// with its item links. Custom tags and items are untouched. Returns the number
// of tag rows removed.
func (r *tagRepo) FullDeleteSystemBySubject(ctx context.Context, tx *gorm.DB, subject types.Subject) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var ids []uuid.UUID
	if err := t.WithContext(ctx).
		Model(&types.Tag{}).
		Unscoped().
		Where("is_system = ? AND subject = ?", true, subject).
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := t.WithContext(ctx).
		Exec("DELETE FROM mistake_item_tags WHERE tag_id IN ?", ids).Error; err != nil {
		return 0, err
	}
	res := t.WithContext(ctx).Unscoped().Where("id IN ?", ids).Delete(&types.Tag{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *tagRepo) FullDeleteCustom(ctx context.Context, tx *gorm.DB, ownerID, id uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if ownerID == uuid.Nil || id == uuid.Nil {
		return nil
	}
	if err := t.WithContext(ctx).
		Exec("DELETE FROM mistake_item_tags WHERE tag_id = ?", id).Error; err != nil {
		return err
	}
	return t.WithContext(ctx).
		Unscoped().
		Where("id = ? AND owner_id = ? AND is_system = ?", id, ownerID, false).
		Delete(&types.Tag{}).Error
}
