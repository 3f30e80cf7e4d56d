package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"keydesk/pkg/requestcontext"
)

// RequestMeta stamps every request with a request ID and a request-scoped
// time. The whole invocation observes one instant, which keeps expiration
// resolution and credential naming deterministic within a single event.
func RequestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		ctx = requestcontext.WithTime(ctx, time.Now().UTC())

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
