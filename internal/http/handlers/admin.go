package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/wrongbook-backend/internal/domain/taxonomy"
	"github.com/yungbote/wrongbook-backend/internal/http/response"
	"github.com/yungbote/wrongbook-backend/internal/pkg/ctxutil"
	"github.com/yungbote/wrongbook-backend/internal/services"
)

type AdminHandler struct {
	rebuildService services.RebuildService
}

func NewAdminHandler(rebuildService services.RebuildService) *AdminHandler {
	return &AdminHandler{rebuildService: rebuildService}
}

// RebuildTaxonomy serves POST /api/admin/taxonomy/rebuild. An empty subjects
// list rebuilds every defined subject.
func (ah *AdminHandler) RebuildTaxonomy(c *gin.Context) {
	var req struct {
		Subjects []string `json:"subjects"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	subjects := make([]taxonomy.Subject, 0, len(req.Subjects))
	for _, raw := range req.Subjects {
		subjects = append(subjects, taxonomy.Subject(raw))
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	result, err := ah.rebuildService.Rebuild(c.Request.Context(), rd.UserID, subjects)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}
