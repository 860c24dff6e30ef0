package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/wweverma1/pocket-ninja-backend/internal/middleware"
	"github.com/wweverma1/pocket-ninja-backend/internal/service"
	"github.com/wweverma1/pocket-ninja-backend/internal/utils"
)

type leaderboardReader interface {
	Leaderboard(ctx context.Context, userID string) (*service.Leaderboard, error)
}

// LeaderboardHandler serves the public leaderboard.
type LeaderboardHandler struct {
	board leaderboardReader
}

// NewLeaderboardHandler constructs a LeaderboardHandler.
func NewLeaderboardHandler(board leaderboardReader) *LeaderboardHandler {
	return &LeaderboardHandler{board: board}
}

// Get returns the top contributors, plus the caller's rank when authenticated.
// @Router /leaderboard [get]
func (h *LeaderboardHandler) Get(c *gin.Context) {
	board, err := h.board.Leaderboard(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		log.Error().Err(err).Msg("Failed to build leaderboard")
		utils.Error(c, http.StatusInternalServerError, utils.ErrInternal.Error(), utils.MsgInternalError)
		return
	}

	utils.Success(c, http.StatusOK, utils.Msg("Leaderboard fetched successfully.", "リーダーボードが正常に取得されました。"), board)
}
