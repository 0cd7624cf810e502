package report

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/medcanon/platform/pkg/common/logger"
	"github.com/medcanon/platform/pkg/common/models"
)

// DatasetProvider yields the current canonical record set. The store
// repository satisfies it; tests supply an in-memory stub.
type DatasetProvider interface {
	List(ctx context.Context) ([]models.CleanRecord, error)
}

type HTTPHandler struct {
	provider DatasetProvider
}

func NewHTTPHandler(provider DatasetProvider) *HTTPHandler {
	return &HTTPHandler{provider: provider}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/api/v1/reports/age", h.handleAge).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/reports/gender", h.handleGender).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/reports/length-of-stay", h.handleStay).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/reports/admissions", h.handleTrend).Methods(http.MethodGet)
}

func (h *HTTPHandler) dataset(w http.ResponseWriter, r *http.Request) (*models.CanonicalDataset, bool) {
	records, err := h.provider.List(r.Context())
	if err != nil {
		logger.Log.WithError(err).Error("failed to load canonical dataset")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, false
	}
	return models.NewCanonicalDataset(records), true
}

func (h *HTTPHandler) handleAge(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.dataset(w, r)
	if !ok {
		return
	}
	asOf := time.Now().UTC()
	if param := r.URL.Query().Get("as_of"); param != "" {
		if parsed, err := time.Parse("2006-01-02", param); err == nil {
			asOf = parsed
		}
	}
	writeJSON(w, AgeDistribution(ds, asOf))
}

func (h *HTTPHandler) handleGender(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.dataset(w, r)
	if !ok {
		return
	}
	writeJSON(w, GenderDistribution(ds))
}

func (h *HTTPHandler) handleStay(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.dataset(w, r)
	if !ok {
		return
	}
	writeJSON(w, LengthOfStay(ds))
}

func (h *HTTPHandler) handleTrend(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.dataset(w, r)
	if !ok {
		return
	}
	writeJSON(w, AdmissionTrend(ds))
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}
