package handler

import (
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/gwan-project/landing-auth/internal/metrics"
	"github.com/gwan-project/landing-auth/internal/repository"
)

// RateLimiter is a fixed-window per-IP limiter for the code-issuing
// endpoints. Counters live in the cache so the window is shared across
// instances when Redis backs it. Cache failures fail open: limiting is
// protection, not a correctness requirement.
type RateLimiter struct {
	cache    repository.Cache
	requests int64
	window   time.Duration
	logger   zerolog.Logger
}

// NewRateLimiter creates a rate limiter allowing requests per window.
func NewRateLimiter(cache repository.Cache, requests int64, window time.Duration, logger zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		cache:    cache,
		requests: requests,
		window:   window,
		logger:   logger.With().Str("component", "ratelimit").Logger(),
	}
}

// Limit wraps a handler with the rate limit, keyed by route name and
// client IP.
func (rl *RateLimiter) Limit(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ratelimit:" + name + ":" + clientIP(r)

			count, err := rl.cache.Increment(r.Context(), key, 1)
			if err != nil {
				rl.logger.Warn().Err(err).Msg("rate limit cache unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				if err := rl.cache.Expire(r.Context(), key, rl.window); err != nil {
					rl.logger.Warn().Err(err).Msg("failed to set rate limit window")
				}
			}

			if count > rl.requests {
				metrics.RateLimitExceededTotal.Inc()
				rl.logger.Debug().
					Str("key", key).
					Int64("count", count).
					Msg("rate limit exceeded")
				writeJSON(w, http.StatusTooManyRequests, response{
					Success: false,
					Error:   "too many requests, try again later",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP extracts the client address without the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
