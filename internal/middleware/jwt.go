package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/voyagent/voyagent/internal/pkg/errcode"
	"github.com/voyagent/voyagent/internal/pkg/jwt"
	"github.com/voyagent/voyagent/internal/pkg/response"
)

const ContextUserIDKey = "user_id"

func JWTAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, secret)
		if !ok {
			response.Error(c, errcode.ErrUnauthorized, "unauthorized")
			c.Abort()
			return
		}
		c.Set(ContextUserIDKey, claims.UserID)
		c.Next()
	}
}

// OptionalAuth attaches an identity when a valid token is present but never
// rejects. Chat sessions work anonymously; a signed-in user just gets their
// turns attributed.
func OptionalAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := parseBearer(c, secret); ok {
			c.Set(ContextUserIDKey, claims.UserID)
		}
		c.Next()
	}
}

func parseBearer(c *gin.Context, secret []byte) (*jwt.Claims, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, false
	}
	claims, err := jwt.ParseToken(parts[1], secret)
	if err != nil {
		return nil, false
	}
	return claims, true
}
