package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avidela/folio/internal/contracts"
	"github.com/avidela/folio/internal/scheduler"
	"github.com/avidela/folio/pkg/logger"
)

// SummarySource provides the latest batch summary and scheduler state.
// Satisfied by *scheduler.Scheduler.
type SummarySource interface {
	LastSummary() *contracts.BatchSummary
	Status() scheduler.Status
}

// NewRouter builds the read-only route table. /metrics is only registered
// when metricsEnabled is set.
func NewRouter(source SummarySource, log *logger.Logger, metricsEnabled bool) *mux.Router {
	r := mux.NewRouter()
	h := &handlers{source: source, logger: log.WithField("module", "api")}

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.HandleFunc("/summary", h.summary).Methods(http.MethodGet)
	r.HandleFunc("/scheduler/status", h.schedulerStatus).Methods(http.MethodGet)

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	return r
}

type handlers struct {
	source SummarySource
	logger *logger.Logger
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

func (h *handlers) summary(w http.ResponseWriter, _ *http.Request) {
	summary := h.source.LastSummary()
	if summary == nil {
		h.writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "no batch run completed yet",
		})
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *handlers) schedulerStatus(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.source.Status())
}

func (h *handlers) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}
