package middleware

import (
	"net/http"
	"sync"
	"time"

	"guruconnect/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Limiters idle longer than this are dropped on the next sweep.
const limiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiterStore keeps one token bucket per client IP.
type rateLimiterStore struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	perMin    int
	lastSweep time.Time
	now       func() time.Time
}

func newRateLimiterStore(perMin int) *rateLimiterStore {
	return &rateLimiterStore{
		visitors: make(map[string]*visitor),
		perMin:   perMin,
		now:      time.Now,
	}
}

// allow spends a token from ip's bucket, creating it on first sight.
func (s *rateLimiterStore) allow(ip string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) > limiterIdleTTL {
		for key, v := range s.visitors {
			if now.Sub(v.lastSeen) > limiterIdleTTL {
				delete(s.visitors, key)
			}
		}
		s.lastSweep = now
	}

	v, ok := s.visitors[ip]
	if !ok {
		// perMin requests per minute, bursting up to a full minute's worth.
		v = &visitor{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.perMin)), s.perMin)}
		s.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// RateLimitMiddleware limits requests per client IP to perMin a minute.
func RateLimitMiddleware(perMin int) gin.HandlerFunc {
	if perMin <= 0 {
		perMin = 200
	}
	store := newRateLimiterStore(perMin)
	return func(c *gin.Context) {
		if !store.allow(clientIP(c)) {
			utils.JSONErrorCode(c, http.StatusTooManyRequests, "RATE_LIMITED", "Rate limit exceeded. Try again later.", "")
			return
		}
		c.Next()
	}
}
