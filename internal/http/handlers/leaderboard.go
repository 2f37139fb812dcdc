package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/examsync-backend/internal/http/response"
	"github.com/yungbote/examsync-backend/internal/services"
)

const defaultLeaderboardLimit = 20

type LeaderboardHandler struct {
	board services.LeaderboardService
}

func NewLeaderboardHandler(board services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{board: board}
}

// GET /api/leaderboard?limit=
func (h *LeaderboardHandler) Get(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	limit := defaultLeaderboardLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", errors.New("limit must be an integer"))
			return
		}
		limit = n
	}
	view, err := h.board.Read(c.Request.Context(), id, limit)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}
