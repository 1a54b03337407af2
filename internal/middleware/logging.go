package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskloop-ai/taskchat/pkg/logger"
	"github.com/taskloop-ai/taskchat/pkg/metrics"
)

// Logging creates request logging middleware. Every request gets a
// correlation ID (taken from X-Correlation-ID when the client sent one)
// that is echoed back, stored in the context and attached to the log line.
func Logging(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			correlationID := r.Header.Get("X-Correlation-ID")
			if correlationID == "" {
				correlationID = uuid.Must(uuid.NewV7()).String()
			}
			w.Header().Set("X-Correlation-ID", correlationID)
			ctx := context.WithValue(r.Context(), CorrelationIDKey, correlationID)

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			duration := time.Since(start)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			routePattern := chi.RouteContext(r.Context()).RoutePattern()
			if routePattern == "" {
				routePattern = r.URL.Path
			}
			metrics.RecordRequest(r.Method, routePattern, strconv.Itoa(status), duration.Seconds())

			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Duration("duration", duration),
				zap.String("correlation_id", correlationID),
				zap.Int64("user_id", GetUserID(ctx)),
				zap.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}
