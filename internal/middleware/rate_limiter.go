package middleware

import (
	"net/http"
	"sync"
	"time"

	"mercury/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const purgeInterval = 5 * time.Minute

// slidingWindow counts hits per client IP inside fixed windows and forgets
// IPs whose window has lapsed so the map does not grow unbounded.
type slidingWindow struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	entries map[string]*windowEntry
}

type windowEntry struct {
	count     int
	windowEnd time.Time
}

func newSlidingWindow(limit int, window time.Duration) *slidingWindow {
	sw := &slidingWindow{
		limit:   limit,
		window:  window,
		entries: make(map[string]*windowEntry),
	}
	go sw.purgeLoop()
	return sw
}

// allow records one hit for ip and reports whether it stays under the limit,
// along with the end of the current window for Retry-After headers.
func (sw *slidingWindow) allow(ip string) (bool, time.Time) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := time.Now()
	entry, ok := sw.entries[ip]
	if !ok || now.After(entry.windowEnd) {
		entry = &windowEntry{windowEnd: now.Add(sw.window)}
		sw.entries[ip] = entry
	}

	entry.count++
	return entry.count <= sw.limit, entry.windowEnd
}

func (sw *slidingWindow) purgeLoop() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()

		sw.mu.Lock()
		purged := 0
		for ip, entry := range sw.entries {
			if now.After(entry.windowEnd) {
				delete(sw.entries, ip)
				purged++
			}
		}
		remaining := len(sw.entries)
		sw.mu.Unlock()

		if purged > 0 {
			log.Debug().
				Int("entries_purged", purged).
				Int("entries_remaining", remaining).
				Msg("rate limiter map purged")
		}
	}
}

// RateLimiter throttles general API traffic per client IP.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	sw := newSlidingWindow(limit, window)
	return func(c *gin.Context) {
		ok, windowEnd := sw.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", windowEnd.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter throttles credential attempts per IP, tighter than the
// general limiter. perMinute comes from LOGIN_RATE_LIMIT_PER_MINUTE.
func LoginRateLimiter(perMinute int) gin.HandlerFunc {
	sw := newSlidingWindow(perMinute, time.Minute)
	return func(c *gin.Context) {
		if ok, _ := sw.allow(c.ClientIP()); !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiados intentos de login. Intente en 1 minuto."))
			return
		}
		c.Next()
	}
}
