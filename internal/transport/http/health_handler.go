package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"penyusutan/internal/services"
)

// HealthHandler exposes the probes and build information.
type HealthHandler struct {
	service *services.HealthService
	logger  *slog.Logger
}

func NewHealthHandler(service *services.HealthService, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "health")),
	}
}

// Routes returns the probe endpoints, mounted under /api/health.
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HealthCheck)
	r.Get("/ready", h.ReadinessCheck)
	r.Get("/live", h.LivenessCheck)
	return r
}

// HealthCheck reports the overall status and session count.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.HealthCheck(r.Context()))
}

// ReadinessCheck answers 503 once the session store no longer accepts uploads.
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	readiness := h.service.ReadinessCheck(r.Context())
	if readiness.Status == "ready" {
		render.JSON(w, r, readiness)
		return
	}
	h.logger.WarnContext(r.Context(), "not ready for uploads", slog.String("status", readiness.Status))
	render.Status(r, http.StatusServiceUnavailable)
	render.JSON(w, r, readiness)
}

func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.LivenessCheck(r.Context()))
}

// Version reports the build that is serving the dashboard.
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Version())
}
