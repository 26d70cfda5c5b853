// internal/api/middleware/idempotency.go
package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	idempotencyPrefix    = "idempotency:v1:"
	inProgressMarker     = "__in_progress__"
	cacheTimeout         = 2 * time.Second
)

// replayedHeaders are the response headers stored alongside the body.
var replayedHeaders = []string{"Content-Type", "Content-Disposition"}

type storedResponse struct {
	Status  int               `json:"status"`
	Body    string            `json:"body"`
	Headers map[string]string `json:"headers"`
}

// Idempotency replays the stored response of an unsafe request that carries an
// Idempotency-Key header already seen for the same caller. Requests without the
// header pass through untouched. Server errors are not stored, so a retry after
// a 5xx runs the operation again.
//
// It must run after Authenticator; keys are scoped to the authenticated owner.
func Idempotency(cache *redis.Client, ttl time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(IdempotencyKeyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			scope := "anonymous"
			if ownerID, ok := OwnerID(r.Context()); ok {
				scope = ownerID.String()
			}
			cacheKey := idempotencyPrefix + scope + ":" + r.Method + ":" + r.URL.Path + ":" + key

			ctx, cancel := context.WithTimeout(r.Context(), cacheTimeout)
			defer cancel()

			cached, err := cache.Get(ctx, cacheKey).Result()
			if err == nil {
				if cached == inProgressMarker {
					writeError(w, http.StatusConflict, "duplicate request currently processing")
					return
				}

				var stored storedResponse
				if err := json.Unmarshal([]byte(cached), &stored); err != nil {
					logger.Warn("Failed to decode stored idempotent response", "key", key, "error", err)
					writeError(w, http.StatusConflict, "duplicate request")
					return
				}

				for header, value := range stored.Headers {
					w.Header().Set(header, value)
				}
				w.Header().Set("Idempotent-Replayed", "true")
				w.WriteHeader(stored.Status)
				_, _ = w.Write([]byte(stored.Body))
				return
			}

			if !errors.Is(err, redis.Nil) {
				logger.Error("Idempotency lookup failed", "key", key, "error", err)
				writeError(w, http.StatusInternalServerError, "idempotency store failure")
				return
			}

			reserved, err := cache.SetNX(ctx, cacheKey, inProgressMarker, ttl).Result()
			if err != nil {
				logger.Error("Idempotency reservation failed", "key", key, "error", err)
				writeError(w, http.StatusInternalServerError, "idempotency reservation failure")
				return
			}
			if !reserved {
				writeError(w, http.StatusConflict, "duplicate request currently processing")
				return
			}

			var body bytes.Buffer
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&body)
			next.ServeHTTP(ww, r)

			persistCtx, persistCancel := context.WithTimeout(context.Background(), cacheTimeout)
			defer persistCancel()

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if status >= http.StatusInternalServerError {
				cache.Del(persistCtx, cacheKey)
				return
			}

			stored := storedResponse{
				Status:  status,
				Body:    body.String(),
				Headers: map[string]string{},
			}
			for _, header := range replayedHeaders {
				if v := ww.Header().Get(header); v != "" {
					stored.Headers[header] = v
				}
			}

			payload, err := json.Marshal(stored)
			if err != nil {
				logger.Error("Failed to encode idempotent response", "key", key, "error", err)
				cache.Del(persistCtx, cacheKey)
				return
			}
			if err := cache.Set(persistCtx, cacheKey, payload, ttl).Err(); err != nil {
				logger.Error("Failed to persist idempotent response", "key", key, "error", err)
				cache.Del(persistCtx, cacheKey)
			}
		})
	}
}
