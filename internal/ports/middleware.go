package ports

import (
	"log/slog"
	"net/http"

	"github.com/Amund211/riftrewind/internal/logging"
	"github.com/Amund211/riftrewind/internal/ratelimiting"
	"github.com/Amund211/riftrewind/internal/session"
)

func NewRateLimitMiddleware(rateLimiter ratelimiting.RequestRateLimiter, onLimitExceeded http.HandlerFunc) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !rateLimiter.Consume(r) {
				onLimitExceeded(w, r)
				return
			}

			next(w, r)
		}
	}
}

func ComposeMiddlewares(middlewares ...func(http.HandlerFunc) http.HandlerFunc) func(http.HandlerFunc) http.HandlerFunc {
	if len(middlewares) == 1 {
		return middlewares[0]
	}
	first := middlewares[0]
	rest := ComposeMiddlewares(middlewares[1:]...)
	return func(h http.HandlerFunc) http.HandlerFunc {
		return first(rest(h))
	}
}

type rateLimit struct {
	refillPerSecond ratelimiting.RefillPerSecond
	burstSize       ratelimiting.BurstSize
}

// Page fetches hit the backend on cache misses, chat messages always do
var (
	pageIPRateLimit      = rateLimit{refillPerSecond: 2, burstSize: 60}
	pageSessionRateLimit = rateLimit{refillPerSecond: 1, burstSize: 30}
	chatIPRateLimit      = rateLimit{refillPerSecond: 0.5, burstSize: 20}
	chatSessionRateLimit = rateLimit{refillPerSecond: 0.2, burstSize: 10}
)

func newRequestRateLimiters(ipLimit, sessionLimit rateLimit) []ratelimiting.RequestRateLimiter {
	ipLimiter, _ := ratelimiting.NewTokenBucketRateLimiter(ipLimit.refillPerSecond, ipLimit.burstSize)
	sessionLimiter, _ := ratelimiting.NewTokenBucketRateLimiter(sessionLimit.refillPerSecond, sessionLimit.burstSize)

	return []ratelimiting.RequestRateLimiter{
		ratelimiting.NewRequestBasedRateLimiter(ipLimiter, ratelimiting.IPKeyFunc),
		// NOTE: Rate limiting based on user controlled value
		ratelimiting.NewRequestBasedRateLimiter(sessionLimiter, ratelimiting.CookieKeyFunc(session.CookieName)),
	}
}

// buildRateLimitMiddlewares limits by client IP and by session cookie.
// New visitors without a cookie share the "<missing>" session bucket.
func buildRateLimitMiddlewares(ipLimit, sessionLimit rateLimit, onLimitExceeded http.HandlerFunc) func(http.HandlerFunc) http.HandlerFunc {
	makeOnLimitExceeded := func(rateLimiter ratelimiting.RequestRateLimiter) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logging.FromContext(ctx).InfoContext(ctx, "Rate limit exceeded", slog.String("key", rateLimiter.KeyFor(r)))
			onLimitExceeded(w, r)
		}
	}

	middlewares := []func(http.HandlerFunc) http.HandlerFunc{}
	for _, rateLimiter := range newRequestRateLimiters(ipLimit, sessionLimit) {
		middlewares = append(middlewares, NewRateLimitMiddleware(rateLimiter, makeOnLimitExceeded(rateLimiter)))
	}
	return ComposeMiddlewares(middlewares...)
}

// buildMiddleware is the stack shared by every route. Rate limiting runs before
// the session lookup so rejected requests never create sessions.
func buildMiddleware(
	port string,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
	sessionMiddleware func(http.HandlerFunc) http.HandlerFunc,
	extra ...func(http.HandlerFunc) http.HandlerFunc,
) func(http.HandlerFunc) http.HandlerFunc {
	middlewares := []func(http.HandlerFunc) http.HandlerFunc{
		buildMetricsMiddleware(port),
		logging.NewRequestLoggerMiddleware(rootLogger.With(slog.String("port", port))),
		sentryMiddleware,
	}
	middlewares = append(middlewares, extra...)
	middlewares = append(middlewares, sessionMiddleware)
	return ComposeMiddlewares(middlewares...)
}
