package ingest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/medcanon/platform/pkg/common/logger"
	"github.com/medcanon/platform/pkg/common/models"
)

type HTTPHandler struct {
	service *Service
	maxBody int64
}

func NewHTTPHandler(service *Service, maxBody int64) *HTTPHandler {
	return &HTTPHandler{service: service, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/ingest", h.handleIngest).Methods(http.MethodPost)
	router.HandleFunc("/ingest/status/{id}", h.handleStatus).Methods(http.MethodGet)
}

// handleIngest accepts either a JSON IntakeRequest or a raw CSV body with the
// source supplied via query parameter.
func (h *HTTPHandler) handleIngest(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var req models.IntakeRequest
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "text/csv") {
		records, err := ReadCSV(r.Body)
		if err != nil {
			logger.Log.WithError(err).Warn("invalid csv intake payload")
			http.Error(w, "invalid csv body", http.StatusBadRequest)
			return
		}
		req = models.IntakeRequest{
			Source:  r.URL.Query().Get("source"),
			Records: records,
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.WithError(err).Warn("invalid intake payload")
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	resp, err := h.service.Process(r.Context(), req)
	if err != nil {
		if IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Log.WithError(err).Error("failed to process intake batch")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(resp)
}

func (h *HTTPHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	rec, err := h.service.Status(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "intake batch not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to fetch intake status")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}
