package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"approvalflow/internal/handler"
	"approvalflow/internal/service"
	"approvalflow/pkg/metrics"
	"approvalflow/pkg/util"
)

// AuthMiddleware validates the bearer token, rejects revoked sessions and
// attaches the caller's profile to the request context. Profiles are
// provisioned lazily on first authenticated access.
func AuthMiddleware(jwtSecret string, revoker service.TokenRevoker, directory *service.DirectoryService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := util.ExtractToken(c.Request)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(token, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		revoked, err := revoker.IsRevoked(c.Request.Context(), claims.JTI)
		if err != nil {
			logger.Error("auth: revocation check failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			c.Abort()
			return
		}
		if revoked {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
			c.Abort()
			return
		}

		profile, err := directory.ResolveProfile(c.Request.Context(), claims.UserID, claims.Email)
		if err != nil {
			logger.Error("auth: profile resolution failed",
				zap.Int64("user_id", claims.UserID),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			c.Abort()
			return
		}

		c.Set(handler.CtxClaims, claims)
		c.Set(handler.CtxProfile, profile)

		c.Next()
	}
}

// MetricsMiddleware records request latency labeled by route template.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.ObserveHTTP(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
