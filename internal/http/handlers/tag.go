package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/wrongbook-backend/internal/domain/taxonomy"
	"github.com/yungbote/wrongbook-backend/internal/http/response"
	"github.com/yungbote/wrongbook-backend/internal/pkg/ctxutil"
	"github.com/yungbote/wrongbook-backend/internal/services"
)

type TagHandler struct {
	tagService services.TagService
}

func NewTagHandler(tagService services.TagService) *TagHandler {
	return &TagHandler{tagService: tagService}
}

// GetSubjectTree serves GET /api/tags?subject=math.
func (th *TagHandler) GetSubjectTree(c *gin.Context) {
	subject, err := taxonomy.ParseSubject(c.Query("subject"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	nodes, err := th.tagService.GetSubjectTree(c.Request.Context(), rd.UserID, subject)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tags": nodes})
}

func (th *TagHandler) CreateCustomTag(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Subject  string `json:"subject"`
		ParentID string `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	subject, err := taxonomy.ParseSubject(req.Subject)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	var parentID *uuid.UUID
	if req.ParentID != "" {
		pid, err := uuid.Parse(req.ParentID)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
			return
		}
		parentID = &pid
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	tag, err := th.tagService.CreateCustomTag(c.Request.Context(), rd.UserID, req.Name, subject, parentID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, tag)
}

func (th *TagHandler) RenameCustomTag(c *gin.Context) {
	tagID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	tag, err := th.tagService.RenameCustomTag(c.Request.Context(), rd.UserID, tagID, req.Name)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, tag)
}

func (th *TagHandler) DeleteCustomTag(c *gin.Context) {
	tagID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	if err := th.tagService.DeleteCustomTag(c.Request.Context(), rd.UserID, tagID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// Descendants serves GET /api/tags/:id/descendants — the id set a chapter or
// section filter expands to.
func (th *TagHandler) Descendants(c *gin.Context) {
	tagID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	ids, err := th.tagService.Descendants(c.Request.Context(), tagID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	response.RespondOK(c, gin.H{"tag_ids": out})
}
