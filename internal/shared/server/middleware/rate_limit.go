package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"resumeflow/internal/shared/server/respond"
)

// Rule is a token bucket refilled at PerSecond up to Burst.
type Rule struct {
	PerSecond float64
	Burst     int
}

// PerMinute converts a requests-per-minute budget into a Rule.
func PerMinute(n, burst int) Rule {
	return Rule{PerSecond: float64(n) / 60, Burst: burst}
}

func (r Rule) enabled() bool { return r.PerSecond > 0 && r.Burst > 0 }

// Scope names the bucket family a request draws from. Requests with an empty
// scope, or a scope without a rule, are never limited.
type Scope func(*gin.Context) string

type bucketKey struct {
	scope     string
	principal string
}

// RateLimiter keeps one bucket per (scope, principal).
type RateLimiter struct {
	rules map[string]Rule
	now   func() time.Time

	mu      sync.Mutex
	buckets map[bucketKey]*rate.Limiter
}

func NewRateLimiter(rules map[string]Rule, now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{
		rules:   rules,
		now:     now,
		buckets: make(map[bucketKey]*rate.Limiter),
	}
}

// Allow spends one token. When it refuses it also reports the wait until the
// next token.
func (l *RateLimiter) Allow(scope, principal string) (bool, time.Duration) {
	rule, ok := l.rules[scope]
	if !ok || !rule.enabled() {
		return true, 0
	}
	now := l.now()
	key := bucketKey{scope: scope, principal: principal}

	l.mu.Lock()
	bucket, ok := l.buckets[key]
	if !ok {
		bucket = rate.NewLimiter(rate.Limit(rule.PerSecond), rule.Burst)
		l.buckets[key] = bucket
	}
	l.mu.Unlock()

	r := bucket.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Second
	}
	wait := r.DelayFrom(now)
	if wait <= 0 {
		return true, 0
	}
	r.CancelAt(now)
	return false, wait
}

// RateLimit keys buckets on the verified user, falling back to client IP.
func RateLimit(limiter *RateLimiter, scope Scope) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := scope(c)
		if name == "" {
			c.Next()
			return
		}
		principal := UserIDFromContext(c)
		if principal == "" {
			principal = "ip:" + c.ClientIP()
		}
		ok, wait := limiter.Allow(name, principal)
		if ok {
			c.Next()
			return
		}
		seconds := int(math.Ceil(wait.Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		c.Header("Retry-After", strconv.Itoa(seconds))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "Too many requests", gin.H{
			"retryAfterMs": wait.Milliseconds(),
		})
	}
}
