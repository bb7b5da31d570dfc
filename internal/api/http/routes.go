package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"patient-monitor/internal/domain"
	"patient-monitor/internal/logging"
)

const (
	routeData    = "/data"
	routeHealth  = "/health"
	routeMetrics = "/metrics"
)

// handler contains the HTTP handlers and shared dependencies for the REST API.
type handler struct {
	service domain.SnapshotService
	logger  *logging.Logger
}

func registerRoutes(router chi.Router, h *handler, metrics http.Handler) {
	router.Get(routeData, h.handleGetData)
	router.Get(routeHealth, h.handleHealth)
	if metrics != nil {
		router.Method(http.MethodGet, routeMetrics, metrics)
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Devices int    `json:"devices"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func (h *handler) handleGetData(w http.ResponseWriter, r *http.Request) {
	readings, err := h.service.Snapshot(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if readings == nil {
		readings = []domain.Reading{}
	}

	h.writeJSON(w, http.StatusOK, readings)
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	readings, err := h.service.Snapshot(r.Context())
	if errors.Is(err, domain.ErrNotReady) {
		h.writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "starting"})
		return
	}
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Devices: len(readings)})
}

func (h *handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotReady):
		h.writeError(w, http.StatusServiceUnavailable, "ingestion server is not running")
	default:
		h.logger.Error("snapshot failed", logging.AttachError(err)...)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message, Code: status})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
