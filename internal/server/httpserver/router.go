package httpserver

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"

	"github.com/yndnr/rudis-go/internal/telemetry/logger"
	"github.com/yndnr/rudis-go/internal/telemetry/metric"
)

// Health tracks whether the server is draining.
type Health struct {
	draining atomic.Bool
}

// SetDraining marks the server as draining (or not).
func (h *Health) SetDraining(v bool) {
	h.draining.Store(v)
}

// Draining reports whether the server is draining.
func (h *Health) Draining() bool {
	return h.draining.Load()
}

// RouterConfig holds configuration for the admin router.
type RouterConfig struct {
	Logger  logger.Logger
	Metrics *metric.Registry
	Health  *Health
}

// NewRouter builds the admin router.
func NewRouter(cfg *RouterConfig) http.Handler {
	l := cfg.Logger
	if l == nil {
		l = logger.Default()
	}
	health := cfg.Health
	if health == nil {
		health = &Health{}
	}

	r := chi.NewRouter()
	r.Use(RequestID(), Recover(l), AccessLog(l))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if health.Draining() {
			writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "draining"})
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
	})

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	return r
}

type statusResponse struct {
	Status string `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
