package app

import (
	"gorm.io/gorm"

	authrepo "github.com/yungbote/wrongbook-backend/internal/data/repos/auth"
	contentrepo "github.com/yungbote/wrongbook-backend/internal/data/repos/content"
	taxonomyrepo "github.com/yungbote/wrongbook-backend/internal/data/repos/taxonomy"
	userrepo "github.com/yungbote/wrongbook-backend/internal/data/repos/user"
	"github.com/yungbote/wrongbook-backend/internal/platform/logger"
)

type Repos struct {
	User        userrepo.UserRepo
	UserToken   authrepo.UserTokenRepo
	Tag         taxonomyrepo.TagRepo
	MistakeItem contentrepo.MistakeItemRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:        userrepo.NewUserRepo(db, log),
		UserToken:   authrepo.NewUserTokenRepo(db, log),
		Tag:         taxonomyrepo.NewTagRepo(db, log),
		MistakeItem: contentrepo.NewMistakeItemRepo(db, log),
	}
}
