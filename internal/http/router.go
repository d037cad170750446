package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/wrongbook-backend/internal/http/handlers"
	httpMW "github.com/yungbote/wrongbook-backend/internal/http/middleware"
	"github.com/yungbote/wrongbook-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware

	TagHandler     *httpH.TagHandler
	MistakeHandler *httpH.MistakeHandler
	AdminHandler   *httpH.AdminHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.CORS())
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		// Tags
		if cfg.TagHandler != nil {
			protected.GET("/tags", cfg.TagHandler.GetSubjectTree)
			protected.POST("/tags", cfg.TagHandler.CreateCustomTag)
			protected.PATCH("/tags/:id", cfg.TagHandler.RenameCustomTag)
			protected.DELETE("/tags/:id", cfg.TagHandler.DeleteCustomTag)
			protected.GET("/tags/:id/descendants", cfg.TagHandler.Descendants)
		}

		// Mistake items
		if cfg.MistakeHandler != nil {
			protected.POST("/mistakes", cfg.MistakeHandler.Create)
			protected.GET("/mistakes", cfg.MistakeHandler.List)
			protected.DELETE("/mistakes/:id", cfg.MistakeHandler.Delete)
		}

		// Admin
		if cfg.AdminHandler != nil && cfg.AuthMiddleware != nil {
			admin := protected.Group("/admin")
			admin.Use(cfg.AuthMiddleware.RequireAdmin())
			admin.POST("/taxonomy/rebuild", cfg.AdminHandler.RebuildTaxonomy)
		}
	}

	return r
}
