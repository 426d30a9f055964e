package hc

import (
	"context"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// Pinger checks a dependency. A nil Pinger is skipped.
type Pinger func(ctx context.Context) error

func Handler(version string, ledger Pinger) http.Handler {
	t := time.Now()
	fn := func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]any{
			"version": version,
			"uptime":  time.Since(t).String(),
		}

		if ledger != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()

			body["ledger"] = "ok"
			if err := ledger(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["ledger"] = err.Error()
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = jsoniter.NewEncoder(w).Encode(body)
	}

	return http.HandlerFunc(fn)
}
