package health

import (
	"context"
	"net/http"
	"time"
)

// checkTimeout bounds a single probe evaluation.
const checkTimeout = 2 * time.Second

// HealthzHandler answers 200 "ok" when p passes (or is nil) and 503 with
// the failure reason otherwise.
func HealthzHandler(p Probe) http.HandlerFunc {
	return probeHandler(p, "ok")
}

// ReadyzHandler is HealthzHandler answering "ready".
func ReadyzHandler(p Probe) http.HandlerFunc {
	return probeHandler(p, "ready")
}

func probeHandler(p Probe, okBody string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")

		var err error
		if p != nil {
			ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
			err = p.Check(ctx)
			cancel()
		}

		status, body := http.StatusOK, okBody
		if err != nil {
			status, body = http.StatusServiceUnavailable, err.Error()
		}
		w.WriteHeader(status)
		if r.Method != http.MethodHead {
			_, _ = w.Write([]byte(body + "\n"))
		}
	}
}
