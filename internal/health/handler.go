package health

import (
	"context"
	"net/http"
	"time"

	"zignasa/internal/httputil"
	"zignasa/internal/metrics"

	"github.com/go-chi/chi/v5"
)

// Pinger is satisfied by *bun.DB and the handoff stores.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	deps    map[string]Pinger
	metrics *metrics.HealthMetrics
}

// NewHandler checks deps on /ready. m may be nil.
func NewHandler(deps map[string]Pinger, m *metrics.HealthMetrics) *Handler {
	return &Handler{deps: deps, metrics: m}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.Health)
	router.Get("/ready", h.Ready)
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready reports 503 when any dependency fails to answer within two seconds.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ready", Checks: map[string]string{}}
	code := http.StatusOK
	for name, dep := range h.deps {
		start := time.Now()
		err := dep.PingContext(ctx)
		h.metrics.RecordCheck(ctx, name, time.Since(start), err)
		if err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "unavailable"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	httputil.RespondWithJSON(w, code, resp)
}
