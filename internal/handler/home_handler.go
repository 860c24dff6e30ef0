package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wweverma1/pocket-ninja-backend/internal/utils"
)

// Home greets clients on the root path.
func Home(c *gin.Context) {
	utils.Success(c, http.StatusOK, utils.Msg("⚡Pocket Ninja", "⚡Pocket Ninja"), nil)
}
