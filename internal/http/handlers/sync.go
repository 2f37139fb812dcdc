package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/examsync-backend/internal/http/response"
	"github.com/yungbote/examsync-backend/internal/platform/ctxutil"
	"github.com/yungbote/examsync-backend/internal/services"
)

type SyncHandler struct {
	sync services.SyncService
}

func NewSyncHandler(sync services.SyncService) *SyncHandler {
	return &SyncHandler{sync: sync}
}

// POST /sync/push
func (h *SyncHandler) Push(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req services.PushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.sync.Push(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /sync/pull
func (h *SyncHandler) Pull(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req services.PullRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.sync.Pull(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /sync/stats
func (h *SyncHandler) Stats(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	res, err := h.sync.Stats(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

func identity(c *gin.Context) (ctxutil.Identity, bool) {
	id, ok := ctxutil.GetIdentity(c.Request.Context())
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing identity"))
		return ctxutil.Identity{}, false
	}
	return id, true
}
