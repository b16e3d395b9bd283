//START OF FILE pickleball/internal/services/cluster/health.go
package cluster

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// NewBasicHealthHandler is the liveness probe consul polls. It only proves
// the process is serving HTTP.
func NewBasicHealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Service is alive.")
	}
}

// CheckFunc reports a dependency problem as an error.
type CheckFunc func() error

// HealthAggregator runs named checks behind one readiness endpoint.
type HealthAggregator struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc
}

func NewHealthAggregator() *HealthAggregator {
	return &HealthAggregator{checks: make(map[string]CheckFunc)}
}

func (h *HealthAggregator) AddCheck(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// Run executes every check and returns the failures keyed by check name.
func (h *HealthAggregator) Run() map[string]string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	failures := make(map[string]string)
	for name, check := range h.checks {
		if err := check(); err != nil {
			failures[name] = err.Error()
		}
	}
	return failures
}

// Handler answers 200 when every check passes and 503 with the failures otherwise.
func (h *HealthAggregator) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		failures := h.Run()
		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		if len(failures) > 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(failures)
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}
}

//END OF FILE pickleball/internal/services/cluster/health.go
