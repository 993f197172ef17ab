package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/2beens/gymstats/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const panicResponseBody = `{"error":"internal server error"}`

// PanicRecovery turns a panicking analytics or MCP handler into a JSON 500.
// The panic is recorded on the request span and logged at error level, which
// the sentry hook forwards. http.ErrAbortHandler is re-raised untouched.
func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				if err, ok := recovered.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(recovered)
				}

				if metricsManager != nil {
					metricsManager.CounterHandleRequestPanic.Inc()
				}

				span := trace.SpanFromContext(req.Context())
				span.RecordError(fmt.Errorf("panic: %v", recovered))
				span.SetStatus(codes.Error, "handler panic")

				log.WithFields(log.Fields{
					"method": req.Method,
					"path":   req.URL.Path,
				}).Errorf("recovered handler panic: %v\n%s", recovered, debug.Stack())

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(panicResponseBody))
			}()

			next.ServeHTTP(w, req)
		})
	}
}
