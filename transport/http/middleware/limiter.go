package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
	"traveltrust/shared"
	"traveltrust/shared/constant"
	"traveltrust/transport/http/response"

	"github.com/rs/zerolog/log"
)

const cacheKeyRateLimit = "limiter"

// RateLimit counts requests per client IP in fixed windows aligned to the
// wall clock. A cache outage lets traffic through.
func (a *appMiddleware) RateLimit() func(http.Handler) http.Handler {
	settings := a.config.App.RateLimiter
	window := time.Duration(max(settings.WindowSeconds, 1)) * time.Second

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !settings.Enable {
				next.ServeHTTP(w, r)

				return
			}

			now := time.Now()
			slot := now.Truncate(window)
			ip := clientIP(r, settings.TrustProxy)
			key := shared.BuildCacheKey(cacheKeyRateLimit, ip, strconv.FormatInt(slot.Unix(), 10))

			count, err := a.cache.Increment(r.Context(), key, int(window/time.Second))
			if err != nil {
				log.Ctx(r.Context()).Warn().Err(err).Str("client", ip).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)

				return
			}

			remaining := max(int64(settings.MaxRequests)-count, 0)
			reset := slot.Add(window).Sub(now)

			w.Header().Set(constant.RequestHeaderRateLimit, strconv.Itoa(settings.MaxRequests))
			w.Header().Set(constant.RequestHeaderRateLimitRemaining, strconv.FormatInt(remaining, 10))
			w.Header().Set(constant.RequestHeaderRateLimitWindow, strconv.Itoa(int(window/time.Second)))

			if count > int64(settings.MaxRequests) {
				w.Header().Set(constant.RequestHeaderRetryAfter, strconv.Itoa(int(reset.Round(time.Second)/time.Second)+1))
				response.WithRequestLimitExceeded(w)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the caller address without its port. Forwarding headers
// are honoured only behind a trusted proxy.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get(constant.RequestHeaderForwardedFor); xff != "" {
			first, _, _ := strings.Cut(xff, ",")

			return strings.TrimSpace(first)
		}

		if xri := r.Header.Get(constant.RequestHeaderRealIP); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
