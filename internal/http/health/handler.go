// Package health serves the liveness endpoint.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/janisto/devconnector-api/internal/platform/logging"
)

const checkTimeout = 2 * time.Second

// Response is the payload for the health endpoint.
type Response struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Check probes one dependency.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Handler reports "healthy" when every check passes and 503 "unhealthy"
// otherwise. With no checks it always reports healthy.
func Handler(checks ...Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := Response{Status: "healthy"}
		code := http.StatusOK

		if len(checks) > 0 {
			ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
			defer cancel()

			resp.Checks = make(map[string]string, len(checks))
			for _, c := range checks {
				if err := c.Fn(ctx); err != nil {
					logging.LogWarn(r.Context(), "health check failed", zap.String("check", c.Name), zap.Error(err))
					resp.Checks[c.Name] = "down"
					resp.Status = "unhealthy"
					code = http.StatusServiceUnavailable
					continue
				}
				resp.Checks[c.Name] = "up"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
