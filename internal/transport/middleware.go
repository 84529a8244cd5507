package transport

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainprofile "github.com/alanyang/agent-market/internal/domain/profile"
	"github.com/alanyang/agent-market/internal/domain/viewer"
	portprofile "github.com/alanyang/agent-market/internal/port/profile"
	"github.com/alanyang/agent-market/internal/transport/httpx"
)

const (
	// ViewerHeader carries the signed-in user's id, set by the fronting gateway.
	ViewerHeader = "X-Viewer-ID"
	// ViewerQuery is the fallback for websocket upgrades, which browsers
	// cannot add headers to.
	ViewerQuery       = "viewer_id"
	IdempotencyHeader = "Idempotency-Key"

	maxIdempotencyKeyLen = 255
)

// noisyPaths are high-frequency read paths logged at Debug to keep Info clean.
var noisyPaths = map[string]bool{
	"/api/agents":          true,
	"/api/agents/featured": true,
	"/api/categories":      true,
	"/api/navigation":      true,
	"/api/prefetch":        true,
	"/api/ws":              true,
}

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Request.Method == "OPTIONS" {
			return
		}

		level := slog.LevelInfo
		if noisyPaths[c.Request.URL.Path] {
			level = slog.LevelDebug
		}
		slog.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS, PUT")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+ViewerHeader+", "+IdempotencyHeader)
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

// IdempotencyMiddleware copies a bounded Idempotency-Key header into the gin context.
func IdempotencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if len(key) > maxIdempotencyKeyLen {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Idempotency-Key too long"})
			return
		}
		if key != "" {
			c.Set(httpx.IdempotencyKey, key)
		}
		c.Next()
	}
}

// ViewerMiddleware resolves the X-Viewer-ID header (or viewer_id query) to a viewer with a role and
// stores it in the request context. Requests without either are anonymous.
func ViewerMiddleware(profiles portprofile.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(ViewerHeader)
		if raw == "" {
			raw = c.Query(ViewerQuery)
		}
		if raw == "" {
			c.Next()
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid " + ViewerHeader})
			return
		}

		p, err := profiles.GetByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, domainprofile.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown viewer"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		ctx := viewer.WithViewer(c.Request.Context(), viewer.Viewer{ID: p.ID, Role: p.Role})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
