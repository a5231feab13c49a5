package api

import (
	"net/http"
	"strconv"

	"github.com/ayusman/handmaze/internal/store"
)

// Event list limits.
const (
	DefaultEventLimit = 50
	MaxEventLimit     = 1000
)

// EventsHandler lists recent pipeline outcomes.
type EventsHandler struct {
	store *store.Store
}

// NewEventsHandler creates an EventsHandler.
func NewEventsHandler(s *store.Store) *EventsHandler {
	return &EventsHandler{store: s}
}

type listEventsResponse struct {
	Events []*store.Event `json:"events"`
	Total  int            `json:"total"`
}

// ServeHTTP handles GET /api/events?limit=N.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := DefaultEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxEventLimit)
	}

	events, err := h.store.Events().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}
	if events == nil {
		events = []*store.Event{}
	}

	total, err := h.store.Events().Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count events")
		return
	}

	writeJSON(w, http.StatusOK, listEventsResponse{Events: events, Total: total})
}
