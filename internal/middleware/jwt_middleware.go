package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/wweverma1/pocket-ninja-backend/internal/utils"
)

// ContextUserID is the gin context key holding the authenticated user id.
const ContextUserID = "user_id"

// UserLookup reports whether a user still exists.
type UserLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// JWTMiddleware authenticates app users by bearer token.
type JWTMiddleware struct {
	secret string
	users  UserLookup
}

// NewJWTMiddleware constructs a JWTMiddleware.
func NewJWTMiddleware(secret string, users UserLookup) *JWTMiddleware {
	return &JWTMiddleware{secret: secret, users: users}
}

// Required rejects requests without a valid token for an existing user.
func (m *JWTMiddleware) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			utils.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", utils.MsgUnauthorized)
			c.Abort()
			return
		}
		if !m.authenticate(c, token) {
			return
		}
		c.Next()
	}
}

// Optional lets anonymous requests through. A token that is present but
// invalid is still rejected.
func (m *JWTMiddleware) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		token, ok := bearerToken(c)
		if !ok {
			utils.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", utils.MsgUnauthorized)
			c.Abort()
			return
		}
		if !m.authenticate(c, token) {
			return
		}
		c.Next()
	}
}

// authenticate validates token and stores the user id. It aborts the request
// and returns false on failure.
func (m *JWTMiddleware) authenticate(c *gin.Context, token string) bool {
	claims, err := utils.ValidateJWT(m.secret, token)
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, utils.ErrInvalidToken.Error(), utils.MsgInvalidToken)
		c.Abort()
		return false
	}

	exists, err := m.users.Exists(c.Request.Context(), claims.UserID())
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID()).Msg("Failed to look up token user")
		utils.Error(c, http.StatusInternalServerError, utils.ErrInternal.Error(), utils.MsgInternalError)
		c.Abort()
		return false
	}
	if !exists {
		utils.Error(c, http.StatusUnauthorized, utils.ErrUserNotFound.Error(), utils.MsgUserGone)
		c.Abort()
		return false
	}

	c.Set(ContextUserID, claims.UserID())
	return true
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GetUserID returns the authenticated user id, or "" for anonymous requests.
func GetUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
