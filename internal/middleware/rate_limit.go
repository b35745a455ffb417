package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/BradenHooton/wakeguard/internal/models"
	pkghttp "github.com/BradenHooton/wakeguard/pkg/http"
	"github.com/go-chi/httprate"
)

// Limiter is a per-key request counter
type Limiter interface {
	Name() string
	Allow(key string) (bool, time.Duration)
}

// RateLimitConfig controls how a rejected request is answered
type RateLimitConfig struct {
	Message string
	EchoIP  bool // include the caller's IP in the 429 body
}

// RateLimitByIP counts every request against limiter keyed by client IP and
// answers 429 with Retry-After once the limit is exceeded
func RateLimitByIP(limiter Limiter, ipConfig *pkghttp.IPConfig, config RateLimitConfig, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := pkghttp.ExtractClientIP(r, ipConfig)

			allowed, retryAfter := limiter.Allow(ip)
			if !allowed {
				logger.Warn("rate limit exceeded",
					slog.String("limiter", limiter.Name()),
					slog.String("ip_address", ip),
					slog.Duration("retry_after", retryAfter))

				message := config.Message
				if message == "" {
					message = models.ErrRateLimited.Error()
				}
				resp := pkghttp.ErrorResponse{
					Error:   "rate_limit_exceeded",
					Message: message,
				}
				if config.EchoIP {
					resp.IP = ip
				}
				pkghttp.SetRetryAfter(w, retryAfter)
				pkghttp.WriteErrorResponse(w, http.StatusTooManyRequests, resp)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GlobalRateLimit is a coarse per-IP backstop across the whole API. A
// non-positive requestsPerMinute disables it.
func GlobalRateLimit(requestsPerMinute int, ipConfig *pkghttp.IPConfig) func(next http.Handler) http.Handler {
	if requestsPerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return httprate.Limit(
		requestsPerMinute,
		1*time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return pkghttp.ExtractClientIP(r, ipConfig), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteTooManyRequests(w, "Too many requests, please slow down", 0)
		}),
	)
}
