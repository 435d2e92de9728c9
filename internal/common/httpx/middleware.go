package httpx

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"cafe-ordering/internal/common/logger"
)

// Recover turns a panic into the 500 envelope instead of dropping the connection.
func Recover(lg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err := fmt.Errorf("panic: %v", rec)
					lg.WithRequestID(middleware.GetReqID(r.Context())).Error("request_panicked", err, map[string]any{
						"method": r.Method, "path": r.URL.Path,
					})
					WriteError(w, err)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// AccessLog writes one structured entry per request.
func AccessLog(lg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			lg.WithRequestID(middleware.GetReqID(r.Context())).Debug("http_request", map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"duration_ms": time.Since(start).Milliseconds(),
			})
		})
	}
}

// Logger returns lg bound to the request id of r.
func Logger(lg *logger.Logger, r *http.Request) *logger.Logger {
	return lg.WithRequestID(middleware.GetReqID(r.Context()))
}
