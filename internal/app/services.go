package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/wrongbook-backend/internal/curriculum"
	"github.com/yungbote/wrongbook-backend/internal/platform/logger"
	"github.com/yungbote/wrongbook-backend/internal/services"
)

type Services struct {
	Auth    services.AuthService
	TagTree services.TagTreeService
	Tag     services.TagService
	Mistake services.MistakeService
	Rebuild services.RebuildService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, library *curriculum.Library) Services {
	log.Info("Wiring services...")
	tree := services.NewTagTreeService(db, log, repos.Tag, library)
	return Services{
		Auth:    services.NewAuthService(db, log, repos.User, repos.UserToken, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		TagTree: tree,
		Tag:     services.NewTagService(db, log, repos.Tag, tree),
		Mistake: services.NewMistakeService(db, log, repos.MistakeItem, repos.Tag, tree),
		Rebuild: services.NewRebuildService(db, log, repos.Tag, repos.MistakeItem, tree, library, cfg.RebuildTimeout, cfg.RebuildMaxAssociations),
	}
}
