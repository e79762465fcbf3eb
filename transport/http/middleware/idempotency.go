package middleware

import (
	"bytes"
	"net/http"
	"strings"
	"traveltrust/shared"
	"traveltrust/shared/constant"
	"traveltrust/transport/http/response"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
)

const (
	cacheKeyIdempotency     = "idempotency"
	cacheKeyIdempotencyLock = "idempotency:lock"
	maxIdempotencyKeyLength = 255
)

type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type recordingWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *recordingWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}

	w.ResponseWriter.WriteHeader(code)
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	w.body.Write(b)

	return w.ResponseWriter.Write(b) //nolint:wrapcheck
}

// Idempotency replays the stored response of a POST or PUT that carried the
// same Idempotency-Key from the same caller. Server errors are not stored so
// they can be retried.
func (a *appMiddleware) Idempotency() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(constant.RequestHeaderIdempotencyKey))
			if key == "" || (r.Method != http.MethodPost && r.Method != http.MethodPut) {
				next.ServeHTTP(w, r)

				return
			}

			if len(key) > maxIdempotencyKeyLength {
				response.WithMessage(w, http.StatusBadRequest, "Idempotency-Key too long")

				return
			}

			ctx := r.Context()
			ttl := a.config.Trust.IdempotencyTTLMin * constant.MinutesToSeconds
			scopeParts := []string{callerScope(r), r.Method, r.URL.Path, key}
			cacheKey := shared.BuildCacheKey(cacheKeyIdempotency, scopeParts...)
			lockKey := shared.BuildCacheKey(cacheKeyIdempotencyLock, scopeParts...)

			var stored storedResponse
			if err := a.cache.Get(ctx, cacheKey, &stored); err == nil {
				w.Header().Set(constant.RequestHeaderIdempotentReplay, "true")
				w.Header().Set(constant.RequestHeaderContentType, stored.ContentType)
				w.WriteHeader(stored.Status)
				_, _ = w.Write(stored.Body)

				return
			}

			acquired, err := a.cache.Reserve(ctx, lockKey, ttl)
			if err != nil {
				log.Ctx(ctx).Warn().Err(err).Msg("idempotency store unavailable")
				next.ServeHTTP(w, r)

				return
			}

			if !acquired {
				response.WithMessage(w, http.StatusConflict, constant.ResponseErrorRequestInFlight)

				return
			}

			rec := &recordingWriter{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			if rec.status != 0 && rec.status < http.StatusInternalServerError {
				stored = storedResponse{
					Status:      rec.status,
					ContentType: rec.Header().Get(constant.RequestHeaderContentType),
					Body:        rec.body.Bytes(),
				}

				if err := a.cache.Save(ctx, cacheKey, stored, ttl); err != nil {
					log.Ctx(ctx).Error().Err(err).Msg("failed to store idempotent response")
				}
			}

			if err := a.cache.Delete(ctx, lockKey); err != nil {
				log.Ctx(ctx).Error().Err(err).Msg("failed to release idempotency lock")
			}
		})
	}
}

func callerScope(r *http.Request) string {
	if address, ok := r.Context().Value(constant.ContextKeyAddress).(common.Address); ok {
		return address.Hex()
	}

	return ""
}
