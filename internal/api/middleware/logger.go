package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"stip-taxii-backend/pkg/logger"
)

// Logger returns a middleware that logs one line per completed request.
// The request id from chi's RequestID middleware is folded into the
// request-scoped logger rather than attached per event.
func Logger(log *logger.Logger) func(next http.Handler) http.Handler {
	log = log.WithComponent("http")
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			reqLog := log.WithRequestID(middleware.GetReqID(r.Context()))
			start := time.Now()

			defer func() {
				reqLog.Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Msg("request completed")
			}()

			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}
