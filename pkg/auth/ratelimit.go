package auth

import (
	"net/http"
	"sync"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/types"
	"golang.org/x/time/rate"
)

const maxLimiters = 10_000

// RateLimiter keeps one token bucket per client in a bounded map with LRU
// eviction.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	order    []string
	limit    rate.Limit
	burst    int
}

// NewRateLimiter returns nil when perSecond is not positive; a nil limiter
// allows everything.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = int(perSecond*2) + 1
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

func (rl *RateLimiter) Allow(client string) bool {
	if rl == nil {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	lim, ok := rl.limiters[client]
	if ok {
		for i, k := range rl.order {
			if k == client {
				rl.order = append(rl.order[:i], rl.order[i+1:]...)
				break
			}
		}
		rl.order = append(rl.order, client)
		return lim.Allow()
	}

	if len(rl.limiters) >= maxLimiters {
		oldest := rl.order[0]
		rl.order = rl.order[1:]
		delete(rl.limiters, oldest)
	}
	lim = rate.NewLimiter(rl.limit, rl.burst)
	rl.limiters[client] = lim
	rl.order = append(rl.order, client)
	return lim.Allow()
}

// Middleware rejects requests over the client's budget with 429. It must run
// after APIKeyAuth so the client is known.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if skipPaths[r.URL.Path] || rl.Allow(ClientFromContext(r.Context())) {
			next.ServeHTTP(w, r)
			return
		}
		types.ErrRateLimited().WriteJSON(w)
	})
}
