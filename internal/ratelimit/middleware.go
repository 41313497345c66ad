package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/wsk776429-afk/tutor-bot-now/internal/config"
	"github.com/wsk776429-afk/tutor-bot-now/internal/httputil"
	"github.com/wsk776429-afk/tutor-bot-now/internal/telemetry"
)

const (
	headerClientID = "X-Client-ID"

	headerRateLimitRequests          = "X-RateLimit-Limit-Requests"
	headerRateLimitRemainingRequests = "X-RateLimit-Remaining-Requests"
	headerRateLimitReset             = "X-RateLimit-Reset-Requests"
	headerRetryAfter                 = "Retry-After"
)

// clientKey identifies the caller for rate limiting. Browser clients
// send X-Client-ID; anything without one shares a bucket per remote IP.
func clientKey(r *http.Request) string {
	if id := r.Header.Get(headerClientID); id != "" {
		return "client:" + id
	}
	return "ip:" + r.RemoteAddr
}

// Middleware returns chi middleware that enforces a per-client request
// rate limit. With no Redis the limiter fails open.
func Middleware(limiter *Limiter, cfg func() config.RateLimitConfig, metrics *telemetry.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rlCfg := cfg()
			if !rlCfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			reqID := w.Header().Get("X-Request-ID")
			rpm := rlCfg.RequestsPerMinute

			result, _ := limiter.Check(r.Context(), clientKey(r), int64(rpm), time.Minute)

			// Always set rate limit headers
			w.Header().Set(headerRateLimitRequests, strconv.Itoa(rpm))
			w.Header().Set(headerRateLimitRemainingRequests, strconv.FormatInt(result.Remaining, 10))
			w.Header().Set(headerRateLimitReset, result.ResetAt.Format(time.RFC3339))

			if !result.Allowed {
				slog.Warn("rate limit exceeded",
					"request_id", reqID,
					"client_key", clientKey(r),
					"limit", rpm,
				)
				if metrics != nil {
					metrics.RecordRateLimitDenied()
				}
				w.Header().Set(headerRetryAfter, strconv.Itoa(int(result.RetryAfter.Seconds())))
				httputil.WriteRateLimitError(w, reqID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
