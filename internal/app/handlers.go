package app

import (
	httpH "github.com/yungbote/wrongbook-backend/internal/http/handlers"
	"github.com/yungbote/wrongbook-backend/internal/platform/logger"
)

type Handlers struct {
	Auth    *httpH.AuthHandler
	Tag     *httpH.TagHandler
	Mistake *httpH.MistakeHandler
	Admin   *httpH.AdminHandler
	Health  *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:    httpH.NewAuthHandler(services.Auth),
		Tag:     httpH.NewTagHandler(services.Tag),
		Mistake: httpH.NewMistakeHandler(services.Mistake),
		Admin:   httpH.NewAdminHandler(services.Rebuild),
		Health:  httpH.NewHealthHandler(),
	}
}
