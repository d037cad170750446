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

type MistakeHandler struct {
	mistakeService services.MistakeService
}

func NewMistakeHandler(mistakeService services.MistakeService) *MistakeHandler {
	return &MistakeHandler{mistakeService: mistakeService}
}

func (mh *MistakeHandler) Create(c *gin.Context) {
	var req services.CreateMistakeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	item, err := mh.mistakeService.Create(c.Request.Context(), rd.UserID, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, item)
}

// List serves GET /api/mistakes?subject=math&tag_id=...&grade=初一上.
func (mh *MistakeHandler) List(c *gin.Context) {
	var opts services.ListMistakesOptions
	if raw := c.Query("subject"); raw != "" {
		subject, err := taxonomy.ParseSubject(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
			return
		}
		opts.Subject = subject
	}
	if raw := c.Query("tag_id"); raw != "" {
		tagID, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
			return
		}
		opts.TagID = &tagID
	}
	opts.Grade = c.Query("grade")

	rd := ctxutil.GetRequestData(c.Request.Context())
	items, err := mh.mistakeService.List(c.Request.Context(), rd.UserID, opts)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"items": items})
}

func (mh *MistakeHandler) Delete(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	if err := mh.mistakeService.Delete(c.Request.Context(), rd.UserID, itemID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
