package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Meta keys attached to payment responses. The snapshot surface always
// reports how fresh and how large the published batch is, so consumers can
// tell a cold start from an empty roster.
const (
	metaContextKey        = "response_meta"
	metaKeyCacheHit       = "cache_hit"
	metaKeyRecordCount    = "record_count"
	metaKeyPublishedAt    = "published_at"
	metaKeyWarning        = "warning"
	metaKeyProcessingTime = "processing_time_ms"
)

// WithResponseMeta initialises response metadata storage on the request context.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(metaContextKey, map[string]interface{}{})
		c.Next()
	}
}

// SetCacheHit records whether the snapshot was served from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	ensureMeta(c)[metaKeyCacheHit] = hit
}

// SetSnapshotMeta records the size and publish time of the batch backing the
// response. A zero publish time means no pass has succeeded yet and the
// published_at key is omitted.
func SetSnapshotMeta(c *gin.Context, count int, publishedAt time.Time) {
	meta := ensureMeta(c)
	meta[metaKeyRecordCount] = count
	if !publishedAt.IsZero() {
		meta[metaKeyPublishedAt] = publishedAt.Format(time.RFC3339)
	}
}

// SetWarning surfaces a soft warning, such as a rejected degraded batch,
// without failing the response.
func SetWarning(c *gin.Context, message string) {
	if message == "" {
		return
	}
	ensureMeta(c)[metaKeyWarning] = message
}

// SetProcessingTime records elapsed handler time on the response.
func SetProcessingTime(c *gin.Context, start time.Time) {
	ensureMeta(c)[metaKeyProcessingTime] = time.Since(start).Milliseconds()
}

// ExtractMeta returns the metadata map stored on the context.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	if meta, exists := c.Get(metaContextKey); exists {
		if typed, ok := meta.(map[string]interface{}); ok {
			return typed
		}
	}
	return nil
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return map[string]interface{}{}
	}
	if meta, exists := c.Get(metaContextKey); exists {
		if typed, ok := meta.(map[string]interface{}); ok {
			return typed
		}
	}
	newMeta := make(map[string]interface{})
	c.Set(metaContextKey, newMeta)
	return newMeta
}
