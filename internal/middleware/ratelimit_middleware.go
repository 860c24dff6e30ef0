package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/wweverma1/pocket-ninja-backend/internal/utils"
)

// UploadRateLimiter throttles receipt uploads per authenticated user.
type UploadRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
	idle     time.Duration
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewUploadRateLimiter allows perMinute uploads per user with an equal burst.
// perMinute <= 0 disables limiting.
func NewUploadRateLimiter(perMinute int) *UploadRateLimiter {
	rl := &UploadRateLimiter{
		limiters: make(map[string]*limiterEntry),
		burst:    perMinute,
		idle:     10 * time.Minute,
	}
	if perMinute > 0 {
		rl.limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	return rl
}

// Allow reports whether key may upload now.
func (r *UploadRateLimiter) Allow(key string) bool {
	if r.burst <= 0 {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	e, ok := r.limiters[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// Handle returns the middleware. It keys on the user id set by JWTMiddleware,
// falling back to the client IP.
func (r *UploadRateLimiter) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := GetUserID(c)
		if key == "" {
			key = c.ClientIP()
		}
		if !r.Allow(key) {
			utils.Error(c, http.StatusTooManyRequests, utils.ErrRateLimited.Error(), utils.MsgRateLimited)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Cleanup drops limiters idle for longer than the idle period until stop is closed.
func (r *UploadRateLimiter) Cleanup(stop <-chan struct{}) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.sweep(time.Now())
		}
	}
}

func (r *UploadRateLimiter) sweep(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, e := range r.limiters {
		if now.Sub(e.lastSeen) > r.idle {
			delete(r.limiters, key)
		}
	}
}
