package bot

import (
	"sync"

	"golang.org/x/time/rate"
)

// maxTrackedUsers bounds the limiter map. It is reset when full.
const maxTrackedUsers = 10000

// userLimiter is a token bucket per user.
type userLimiter struct {
	mu       sync.Mutex
	limiters map[int64]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// newUserLimiter allows perSecond events per user with the given burst. A non-positive rate disables limiting.
func newUserLimiter(perSecond float64, burst int) *userLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &userLimiter{limiters: make(map[int64]*rate.Limiter), limit: limit, burst: burst}
}

func (l *userLimiter) Allow(userID int64) bool {
	l.mu.Lock()
	lim, ok := l.limiters[userID]
	if !ok {
		if len(l.limiters) >= maxTrackedUsers {
			clear(l.limiters)
		}
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[userID] = lim
	}
	l.mu.Unlock()

	return lim.Allow()
}
