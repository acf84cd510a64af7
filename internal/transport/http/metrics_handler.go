package http

import (
	"net/http"

	apierrors "penyusutan/internal/errors"
)

// MetricsHandler exposes the Prometheus scrape endpoint. It answers 404 when
// metrics export is disabled.
type MetricsHandler struct {
	exporter http.Handler
}

// NewMetricsHandler wraps the exporter's HTTP handler, which may be nil.
func NewMetricsHandler(exporter http.Handler) *MetricsHandler {
	return &MetricsHandler{exporter: exporter}
}

// Enabled reports whether a metrics exporter is configured.
func (h *MetricsHandler) Enabled() bool {
	return h.exporter != nil
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		http.Error(w, apierrors.ErrNotFound.Message, http.StatusNotFound)
		return
	}
	h.exporter.ServeHTTP(w, r)
}
