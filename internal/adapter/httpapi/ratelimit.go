package httpapi

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"userapi/internal/problem"
	"userapi/internal/result"
	"userapi/internal/usecase/errs"
)

type window struct {
	start time.Time
	count int
}

// RateLimiter allows a fixed number of requests per client and window.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	permits int
	period  time.Duration
	now     func() time.Time
}

func NewRateLimiter(permits int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*window),
		permits: permits,
		period:  period,
		now:     time.Now,
	}
}

// Allow counts a request for key. When the limit is hit it returns false
// and the time left until the window resets.
func (r *RateLimiter) Allow(key string) (bool, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	w, ok := r.windows[key]
	if !ok || now.Sub(w.start) >= r.period {
		r.windows[key] = &window{start: now, count: 1}
		return true, 0
	}
	if w.count >= r.permits {
		return false, w.start.Add(r.period).Sub(now)
	}
	w.count++
	return true, 0
}

// Sweep drops expired windows and returns how many were removed.
func (r *RateLimiter) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	n := 0
	for k, w := range r.windows {
		if now.Sub(w.start) >= r.period {
			delete(r.windows, k)
			n++
		}
	}
	return n
}

// Middleware rejects clients over the limit with a 429 problem document.
func (r *RateLimiter) Middleware(tr *problem.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, wait := r.Allow(c.ClientIP())
		if ok {
			c.Next()
			return
		}
		secs := int(math.Ceil(wait.Seconds()))
		c.Header("Retry-After", strconv.Itoa(secs))
		writeErrors(c, tr, []result.Error{errs.RateLimitExceeded(secs)})
	}
}

