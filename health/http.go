package health

import (
	"encoding/json"
	"net/http"
)

// Handler returns an HTTP handler reporting the aggregator's checks as
// JSON. The response status is 200 for healthy or degraded and 503 for
// unhealthy.
func Handler(agg *Aggregator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		results := agg.CheckAll(r.Context())
		overall := agg.OverallStatus(results)

		body := map[string]any{
			"status": overall.String(),
			"checks": make(map[string]any, len(results)),
		}
		checks := body["checks"].(map[string]any)
		for name, result := range results {
			entry := map[string]any{
				"status":   result.Status.String(),
				"message":  result.Message,
				"duration": result.Duration.String(),
			}
			if result.Error != nil {
				entry["error"] = result.Error.Error()
			}
			checks[name] = entry
		}

		w.Header().Set("Content-Type", "application/json")
		if overall == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(body)
	})
}
