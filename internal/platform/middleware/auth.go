package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"keydesk/pkg/requestcontext"
)

// TokenVerifier validates the bearer token presented by the intake source.
type TokenVerifier interface {
	Verify(tokenString string) error
}

// RequireIntakeAuth guards the intake endpoint with bearer-token
// verification. The form frontend is the only expected caller, so claims
// beyond validity are not extracted.
func RequireIntakeAuth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized intake - missing token",
					"request_id", requestID,
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			if err := verifier.Verify(token); err != nil {
				logger.WarnContext(ctx, "unauthorized intake - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
