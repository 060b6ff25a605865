package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const rateLimitCacheSize = 65536

// rateLimiter allows one request per ip+path key within the window. State
// lives in a fixed-size LRU so an attacker rotating keys evicts old
// entries instead of growing memory.
type rateLimiter struct {
	window time.Duration
	seen   *lru.Cache[string, time.Time]
	now    func() time.Time
}

func RateLimit(window time.Duration) gin.HandlerFunc {
	seen, _ := lru.New[string, time.Time](rateLimitCacheSize)
	limiter := &rateLimiter{
		window: window,
		seen:   seen,
		now:    time.Now,
	}
	return limiter.handle
}

func (l *rateLimiter) handle(c *gin.Context) {
	if l.window <= 0 {
		c.Next()
		return
	}
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	key := strings.Join([]string{c.ClientIP(), path}, "|")

	now := l.now()
	if last, ok := l.seen.Get(key); ok && now.Sub(last) < l.window {
		logutil.GetLogger(c.Request.Context()).Warn("rate limit hit",
			zap.String("ip", c.ClientIP()),
			zap.String("path", path),
		)
		c.JSON(http.StatusTooManyRequests, gin.H{"message": http.StatusText(http.StatusTooManyRequests)})
		c.Abort()
		return
	}
	l.seen.Add(key, now)
	c.Next()
}
