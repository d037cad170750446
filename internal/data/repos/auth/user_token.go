package auth

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/wrongbook-backend/internal/domain"
	"github.com/yungbote/wrongbook-backend/internal/platform/logger"
)

type UserTokenRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, row *types.UserToken) error
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserToken, error)
	FullDeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return &userTokenRepo{db: db, log: baseLog.With("repo", "UserTokenRepo")}
}

func (r *userTokenRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.UserToken) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.UserID == uuid.Nil {
		return nil
	}
	existing, err := r.GetByUserID(ctx, t, row.UserID)
	if err != nil {
		return err
	}
	if existing == nil {
		return t.WithContext(ctx).Create(row).Error
	}
	return t.WithContext(ctx).
		Model(&types.UserToken{}).
		Where("user_id = ?", row.UserID).
		Updates(map[string]interface{}{
			"refresh_token": row.RefreshToken,
			"expires_at":    row.ExpiresAt,
		}).Error
}

func (r *userTokenRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserToken, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var out []*types.UserToken
	if err := t.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *userTokenRepo) FullDeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil {
		return nil
	}
	return t.WithContext(ctx).Where("user_id = ?", userID).Delete(&types.UserToken{}).Error
}
