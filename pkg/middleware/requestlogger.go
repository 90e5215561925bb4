package middleware

import (
	"log/slog"
	"net/http"

	"github.com/leaselink/leaselink/pkg/logger"
)

// RequestLogger stores a request-scoped logger in context, carrying the
// correlation_id, user_id, trace_id, and span_id fields when present.
// Handlers retrieve it with logger.FromContext. It must run after
// RequestLogging, which sets the correlation ID, and after Auth when the
// user ID should appear in log lines.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if userID := UserIDFromContext(ctx); userID != "" {
				ctx = logger.WithUserID(ctx, userID)
			}
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
