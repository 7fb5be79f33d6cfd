package middlewares

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/sonuudigital/lovecakes/internal/logs"
	"github.com/sonuudigital/lovecakes/internal/web"
	"golang.org/x/time/rate"
)

type ClientTier int

const (
	AnonymousClient ClientTier = iota
	AuthenticatedClient
)

const rateLimitKeyPrefix = "lovecakes:rl:"

type RateLimitConfig struct {
	Rate  rate.Limit
	Burst int
}

func (c RateLimitConfig) limit() redis_rate.Limit {
	return redis_rate.Limit{
		Rate:   int(c.Rate),
		Period: time.Second,
		Burst:  c.Burst,
	}
}

// Limiter is satisfied by *redis_rate.Limiter.
type Limiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

type RateLimiterMiddleware struct {
	logger    logs.Logger
	limits    map[ClientTier]redis_rate.Limit
	limiter   Limiter
	isEnabled bool
}

func NewRateLimiterMiddleware(logger logs.Logger, rateLimits map[ClientTier]RateLimitConfig, limiter Limiter, isEnabled bool) *RateLimiterMiddleware {
	limits := make(map[ClientTier]redis_rate.Limit, len(rateLimits))
	for tier, cfg := range rateLimits {
		limits[tier] = cfg.limit()
	}
	return &RateLimiterMiddleware{
		logger:    logger,
		limits:    limits,
		limiter:   limiter,
		isEnabled: isEnabled,
	}
}

// Middleware lets the request through when Redis cannot answer; the
// storefront stays readable while the limiter is down.
func (rl *RateLimiterMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.isEnabled {
			next.ServeHTTP(w, r)
			return
		}

		key, tier := rateLimitKey(r)
		res, err := rl.limiter.Allow(r.Context(), key, rl.limits[tier])
		if err != nil {
			rl.logger.Warn("rate limiter unavailable, allowing request", "key", key, "error", err)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if res.Allowed == 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
			web.RespondWithError(w, rl.logger, r, http.StatusTooManyRequests, "Too Many Requests", "You have exceeded the request limit.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// rateLimitKey buckets signed-in shoppers per account and user. Anonymous
// visitors are bucketed per client IP, and per storefront when one is known.
func rateLimitKey(r *http.Request) (string, ClientTier) {
	scope, ok := GetScope(r)
	if ok && scope.Authenticated {
		return fmt.Sprintf("%suser:%d:%d", rateLimitKeyPrefix, scope.AccountID, scope.UserID), AuthenticatedClient
	}

	ip := clientIP(r)
	if ok && scope.AccountID > 0 {
		return fmt.Sprintf("%sacct:%d:ip:%s", rateLimitKeyPrefix, scope.AccountID, ip), AnonymousClient
	}
	return rateLimitKeyPrefix + "ip:" + ip, AnonymousClient
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
