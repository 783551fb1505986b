package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// CacheControl marks responses cacheable for ttl seconds.
func CacheControl(ttlSeconds int) gin.HandlerFunc {
	value := fmt.Sprintf("public, max-age=%d", ttlSeconds)
	return func(c *gin.Context) {
		c.Header("Cache-Control", value)
		c.Next()
	}
}

// CacheImmutable is CacheControl for content that never changes under its
// URL. Uploaded media gets a fresh uuid name per file, so clients may cache
// it without revalidating.
func CacheImmutable(ttlSeconds int) gin.HandlerFunc {
	value := fmt.Sprintf("public, max-age=%d, immutable", ttlSeconds)
	return func(c *gin.Context) {
		c.Header("Cache-Control", value)
		c.Next()
	}
}
