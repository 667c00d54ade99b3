package middleware

import (
	"crypto/subtle"

	"github.com/yashrajoria/catalog-import-service/apperrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIKeyHeader carries the caller's credential.
const APIKeyHeader = "x-api-key"

// Authorize reports whether credential matches secret. An empty secret matches
// nothing.
func Authorize(secret, credential string) bool {
	if secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(credential)) == 1
}

// APIKeyAuth rejects requests whose x-api-key header does not match secret.
func APIKeyAuth(secret string) gin.HandlerFunc {
	if secret == "" {
		zap.L().Warn("API key is empty; all guarded routes will be denied")
	}
	return func(c *gin.Context) {
		if !Authorize(secret, c.GetHeader(APIKeyHeader)) {
			zap.L().Warn("Unauthorized request", zap.String("path", c.Request.URL.Path), zap.String("client_ip", c.ClientIP()))
			apperrors.Respond(c, apperrors.ErrUnauthorized)
			return
		}
		c.Next()
	}
}
