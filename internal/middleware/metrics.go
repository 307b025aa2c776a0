package middleware

import (
	"net/http"
	"time"

	"github.com/sakif/boardsvc/internal/metrics"
)

// Metrics records request count, latency and in-flight requests.
// Requests are labelled by route pattern so /board?idx=1 and /board?idx=2
// share one series. The /metrics endpoint itself is not recorded.
func Metrics(rec metrics.Recorder) func(http.Handler) http.Handler {
	if _, ok := rec.(metrics.Noop); ok {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec.HTTPRequestStarted()
			defer rec.HTTPRequestFinished()

			wrapped := wrap(w)
			next.ServeHTTP(wrapped, r)

			rec.RecordHTTPRequest(r.Method, routePattern(r), wrapped.statusCode, time.Since(start))
		})
	}
}
