package middlewares

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/Thiahho/Resto-Bar-sub001/utils"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	perMinute int
	burst     int
	mu        sync.Mutex
	visitors  map[string]*visitor
}

func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	if burst <= 0 {
		burst = perMinute
	}
	return &RateLimiter{perMinute: perMinute, burst: burst, visitors: make(map[string]*visitor)}
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rl.perMinute)), rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now

	for k, other := range rl.visitors {
		if now.Sub(other.lastSeen) > 10*time.Minute {
			delete(rl.visitors, k)
		}
	}
	return v.limiter
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiterFor(c.ClientIP()).Allow() {
			utils.RespondAppError(c, utils.TooManyRequests("too many requests, please slow down"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// NewStrictRateLimiter guards login: 5 attempts per minute per IP.
func NewStrictRateLimiter() gin.HandlerFunc {
	return NewRateLimiter(5, 5).RateLimit()
}
