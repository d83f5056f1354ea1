package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ErlanBelekov/social-discovery/internal/metrics"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type ipLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter throttles credential posts per client IP. Stale entries are
// dropped by Sweep, which the server runs on its cron schedule.
type RateLimiter struct {
	limit      rate.Limit
	burst      int
	retryAfter string
	logger     *slog.Logger
	now        func() time.Time

	mu       sync.Mutex
	limiters map[string]*ipLimiter
}

func NewRateLimiter(perMinute int, logger *slog.Logger) *RateLimiter {
	limit := rate.Limit(float64(perMinute) / 60)
	retry := int(math.Ceil(60 / float64(perMinute)))
	if retry < 1 {
		retry = 1
	}
	return &RateLimiter{
		limit:      limit,
		burst:      perMinute,
		retryAfter: strconv.Itoa(retry),
		logger:     logger.With("component", "rate_limiter"),
		now:        time.Now,
		limiters:   make(map[string]*ipLimiter),
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !rl.get(ip).Allow() {
			metrics.RateLimitedTotal.Inc()
			rl.logger.WarnContext(c.Request.Context(), "rate limit exceeded", "ip", ip)
			c.Header("Retry-After", rl.retryAfter)
			c.String(http.StatusTooManyRequests, "Too many attempts. Please try again later.")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) get(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if l, ok := rl.limiters[ip]; ok {
		l.lastAccess = rl.now()
		return l.limiter
	}
	l := &ipLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst), lastAccess: rl.now()}
	rl.limiters[ip] = l
	return l.limiter
}

// Sweep forgets IPs not seen for a while and reports how many it dropped.
func (rl *RateLimiter) Sweep(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	n := 0
	for ip, l := range rl.limiters {
		if now.Sub(l.lastAccess) > limiterIdleTTL {
			delete(rl.limiters, ip)
			n++
		}
	}
	return n
}

func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}
