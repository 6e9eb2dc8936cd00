package handlers

import (
	"context"
	"net/http"
	"time"
)

type HealthChecker interface {
	Health(ctx context.Context) error
}

const healthCheckTimeout = 5 * time.Second

// HealthHandler reports dependency health for orchestration probes.
type HealthHandler struct {
	deps []namedChecker
}

type namedChecker struct {
	name    string
	checker HealthChecker
}

func NewHealthHandler(db, redis HealthChecker) *HealthHandler {
	return &HealthHandler{
		deps: []namedChecker{
			{"postgres", db},
			{"redis", redis},
		},
	}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp string            `json:"timestamp"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Checks:    make(map[string]string, len(h.deps)),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	for _, dep := range h.deps {
		if err := dep.checker.Health(ctx); err != nil {
			response.Status = "unhealthy"
			response.Checks[dep.name] = "unhealthy: " + err.Error()
		} else {
			response.Checks[dep.name] = "healthy"
		}
	}

	status := http.StatusOK
	if response.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	for _, dep := range h.deps {
		if dep.checker.Health(ctx) != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Live answers unconditionally: the process serving the request is alive.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}
