package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/projecthub-dev/projecthub-backend/internal/auth"
	"github.com/projecthub-dev/projecthub-backend/internal/logging"
)

// RequireUser validates the bearer token against each verifier in turn and
// stores the resolved identity on the context.
func RequireUser(verifiers ...auth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			unauthorized(c)
			return
		}

		ctx := c.Request.Context()
		for _, v := range verifiers {
			id, err := v.Verify(ctx, token)
			if err == nil {
				auth.SetIdentity(c, id)
				c.Next()
				return
			}
			if code, ok := auth.CodeOf(err); ok {
				rejected(c, http.StatusConflict, code)
				return
			}
			if !errors.Is(err, auth.ErrInvalidToken) {
				logging.New(ctx).Error("auth.verify", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to verify token"})
				return
			}
		}

		unauthorized(c)
	}
}

func unauthorized(c *gin.Context) {
	rejected(c, http.StatusUnauthorized, auth.CodeUnauthenticated)
}

func rejected(c *gin.Context, status int, code auth.Code) {
	lang := auth.MatchLanguage(c.GetHeader("Accept-Language"))
	msg := auth.Describe(auth.OpGeneral, code, lang)
	c.AbortWithStatusJSON(status, gin.H{
		"ok":      false,
		"code":    code,
		"type":    msg.Type,
		"message": msg.Message,
	})
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return ""
}
