package sync

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shiftcal/shiftcal/internal/rest"
	log "github.com/sirupsen/logrus"
)

const defaultRunsLimit = 20

// syncResponse is the JSON envelope returned by the sync trigger endpoint.
// Exactly one of Message and Error is set.
type syncResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// TriggerSync runs one sync cycle. It always answers with a response body;
// failures become a 500 envelope rather than an escaped error.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Run(r.Context())
	timestamp := time.Now().Format(time.RFC3339)

	if err != nil {
		rest.WriteJSON(w, http.StatusInternalServerError, syncResponse{
			Success:   false,
			Error:     err.Error(),
			Timestamp: timestamp,
		})
		return
	}

	message := "sync completed: " +
		strconv.Itoa(report.Created) + " created, " +
		strconv.Itoa(report.Updated) + " updated, " +
		strconv.Itoa(report.Purged) + " purged, " +
		strconv.Itoa(report.Failed) + " failed"
	rest.WriteJSON(w, http.StatusOK, syncResponse{
		Success:   true,
		Message:   message,
		Timestamp: timestamp,
	})
}

// GetRuns returns the most recent run reports.
func (h *Handler) GetRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil || parsed < 1 {
			rest.WriteJSON(w, http.StatusBadRequest, rest.ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = parsed
	}

	reports, err := h.service.RecentRuns(r.Context(), limit)
	if err != nil {
		log.Errorf("failed to load recent runs: %v", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.ErrorResponse{Error: "failed to load recent runs"})
		return
	}
	if reports == nil {
		reports = []Report{}
	}
	rest.WriteJSON(w, http.StatusOK, reports)
}
