package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/mhadifilms/reverie/internal/logctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Middleware instruments and logs every HTTP request: a span per request,
// RED metrics by status class, and a completion log whose level follows the
// status code. Works with a nil *Telemetry (logging only).
func Middleware(tel *Telemetry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := logctx.LoggerFromContext(ctx)
			start := time.Now()

			tel.IncrementHTTPInFlight()
			defer tel.DecrementHTTPInFlight()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			if tracer := tel.Tracer(); tracer != nil {
				spanCtx, s := tracer.Start(ctx, "http_request")
				defer s.End()

				s.SetAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.route", r.URL.Path),
				)

				next.ServeHTTP(rw, r.WithContext(spanCtx))

				s.SetAttributes(attribute.Int("http.status_code", rw.statusCode))
				if rw.statusCode >= http.StatusInternalServerError {
					s.SetStatus(codes.Error, "HTTP "+strconv.Itoa(rw.statusCode))
				}
			} else {
				next.ServeHTTP(rw, r)
			}

			duration := time.Since(start)
			tel.RecordHTTPRequest(r.Method, r.URL.Path, statusClass(rw.statusCode), duration)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.statusCode,
				"duration_ms", duration.Milliseconds(),
			}

			switch {
			case rw.statusCode >= 500:
				logger.ErrorContext(ctx, "http request completed", attrs...)
			case rw.statusCode >= 400:
				logger.WarnContext(ctx, "http request completed", attrs...)
			default:
				logger.InfoContext(ctx, "http request completed", attrs...)
			}
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter

	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}

	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}

	return rw.ResponseWriter.Write(b)
}

func statusClass(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
