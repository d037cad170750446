package app

import (
	httpserver "github.com/yungbote/wrongbook-backend/internal/http"
	"github.com/yungbote/wrongbook-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, handlers Handlers, middleware Middleware) *httpserver.Server {
	return httpserver.NewServer(httpserver.RouterConfig{
		Log:            log,
		AuthHandler:    handlers.Auth,
		AuthMiddleware: middleware.Auth,
		TagHandler:     handlers.Tag,
		MistakeHandler: handlers.Mistake,
		AdminHandler:   handlers.Admin,
		HealthHandler:  handlers.Health,
	})
}
