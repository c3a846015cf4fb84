package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts limiter outcomes.
type Metrics struct {
	Throttled prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		Throttled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certiva_ratelimit_throttled_total",
			Help: "Requests rejected with 429 by the rate limiter",
		}),
	}
}

// Middleware enforces a per-client-IP fixed window. A limiter failure fails
// open: the request proceeds without headers.
func Middleware(limiter Limiter, limit int, window time.Duration, metrics *Metrics, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision, err := limiter.Allow(r.Context(), clientIP(r), limit, window)
			if err != nil {
				logger.Error("rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			if !decision.ResetAt.IsZero() {
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
			}

			if !decision.Allowed {
				if metrics != nil {
					metrics.Throttled.Inc()
				}
				retryAfter := int64(time.Until(decision.ResetAt).Seconds())
				if retryAfter < 0 {
					retryAfter = 0
				}
				w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
