package middleware

import (
	"net/http"
	"time"

	"vendora-be/internal/logger"
	"vendora-be/internal/utils"

	"go.uber.org/zap"
)

// responseRecorder lets us capture HTTP status codes
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs every HTTP request with its final status.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r)

		retailerID, _ := utils.GetRetailerIDFromContext(r.Context())

		logger.FromCtx(r.Context()).Info("incoming request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.statusCode),
			zap.String("ip", r.RemoteAddr),
			zap.Uint("retailer_id", retailerID),
			zap.Duration("duration_ms", time.Since(start)),
		)
	})
}
