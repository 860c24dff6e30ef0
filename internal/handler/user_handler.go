package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/wweverma1/pocket-ninja-backend/internal/middleware"
	"github.com/wweverma1/pocket-ninja-backend/internal/service"
	"github.com/wweverma1/pocket-ninja-backend/internal/utils"
)

type profileReader interface {
	Profile(ctx context.Context, userID string) (*service.Profile, error)
}

// UserHandler serves the authenticated user's profile.
type UserHandler struct {
	profiles profileReader
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(profiles profileReader) *UserHandler {
	return &UserHandler{profiles: profiles}
}

// GetProfile returns the caller's stats.
// @Router /user [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)

	profile, err := h.profiles.Profile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, utils.ErrUserNotFound) {
			utils.Error(c, http.StatusNotFound, utils.ErrUserNotFound.Error(), utils.MsgUserGone)
			return
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load profile")
		utils.Error(c, http.StatusInternalServerError, utils.ErrInternal.Error(),
			utils.Msg("Failed to retrieve user profile.", "ユーザー プロファイルの取得に失敗しました。"))
		return
	}

	utils.Success(c, http.StatusOK, utils.Msg("User profile retrieved successfully.", "ユーザー プロファイルが正常に取得されました。"), profile)
}
