package router

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dementia-tracker/internal/handlers"
	"dementia-tracker/internal/response"
	"dementia-tracker/internal/utils"
)

// AuthRequired validates the Bearer token and stores the account ID in the
// request context.
func AuthRequired(log *zap.Logger, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		claims, err := utils.ValidateToken(jwtSecret, tokenStr)
		if err != nil {
			code := response.ErrTokenInvalid
			if errors.Is(err, utils.ErrTokenExpired) {
				code = response.ErrTokenExpired
			}
			log.Debug("Rejected token", zap.Error(err), zap.String("path", c.Request.URL.Path))
			response.AbortFail(c, http.StatusUnauthorized, code)
			return
		}

		c.Set(handlers.ContextKeyUserID, claims.UserID)
		c.Next()
	}
}
