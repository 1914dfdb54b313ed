package middleware

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"vendora-be/internal/utils"

	"golang.org/x/time/rate"
)

// Rate limit tiers
const (
	// Payment webhook and other sensitive endpoints
	limitStrict = rate.Limit(2)
	burstStrict = 5

	// General (default)
	limitGeneral = rate.Limit(10)
	burstGeneral = 20

	// Internal / trusted services
	limitInternal = rate.Limit(100)
	burstInternal = 200
)

// visitor holds the rate limiter and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	visitors = make(map[string]*visitor)
	mu       sync.Mutex
)

func init() {
	go cleanupVisitors()
}

// getVisitor retrieves or creates a rate limiter for the given bucket key.
func getVisitor(key string, r rate.Limit, b int) *rate.Limiter {
	mu.Lock()
	defer mu.Unlock()

	v, exists := visitors[key]
	if !exists {
		limiter := rate.NewLimiter(r, b)
		visitors[key] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// cleanupVisitors removes stale entries so the map does not grow unbounded.
func cleanupVisitors() {
	for {
		time.Sleep(time.Minute)

		mu.Lock()
		for key, v := range visitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(visitors, key)
			}
		}
		mu.Unlock()
	}
}

// RateLimitMiddleware checks if the request is allowed by the rate limiter.
func RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, burst, tier := resolveRateTier(r)

		var identity string
		if retailerID, ok := utils.GetRetailerIDFromContext(r.Context()); ok {
			identity = fmt.Sprintf("retailer:%d", retailerID)
		} else {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			identity = "ip:" + ip
		}

		// Same caller gets separate quotas per tier.
		key := fmt.Sprintf("%s:%s", identity, tier)

		limiter := getVisitor(key, limit, burst)
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// resolveRateTier determines which rate limit policy applies to the request.
func resolveRateTier(r *http.Request) (rate.Limit, int, string) {
	internalKey := os.Getenv("INTERNAL_SECRET_KEY")
	if internalKey != "" && r.Header.Get("X-Service-Auth") == internalKey {
		return limitInternal, burstInternal, "internal"
	}

	if r.URL.Path == "/api/payments/webhook" {
		return limitStrict, burstStrict, "strict"
	}

	return limitGeneral, burstGeneral, "general"
}
