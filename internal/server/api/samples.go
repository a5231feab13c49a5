package api

import (
	"errors"
	"net/http"

	"github.com/ayusman/handmaze/internal/app"
	"github.com/ayusman/handmaze/internal/detector"
	"github.com/ayusman/handmaze/internal/store"
)

// SamplesHandler records labelled feature vectors for retraining the
// remote model.
type SamplesHandler struct {
	store *store.Store
	app   *app.App
}

// NewSamplesHandler creates a SamplesHandler.
func NewSamplesHandler(s *store.Store, a *app.App) *SamplesHandler {
	return &SamplesHandler{store: s, app: a}
}

// ServeHTTP routes /api/samples and /api/samples/{label}.
func (h *SamplesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	label := itemPath(r, "/api/samples")

	if label == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.counts(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.list(w, r, label)
	case http.MethodPost:
		h.create(w, r, label)
	case http.MethodDelete:
		h.delete(w, r, label)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type createSamplesRequest struct {
	Samples [][][]float64 `json:"samples" validate:"required,min=1,dive,len=21,dive,len=3"`
}

type sampleResponse struct {
	ID        int64             `json:"id"`
	Label     string            `json:"label"`
	Features  detector.Features `json:"features"`
	CreatedAt string            `json:"created_at"`
}

type listSamplesResponse struct {
	Samples []sampleResponse `json:"samples"`
}

type countsResponse struct {
	Counts map[string]int `json:"counts"`
}

type createSamplesResponse struct {
	Label   string `json:"label"`
	Created int    `json:"created"`
}

func (h *SamplesHandler) counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.Samples().Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count samples")
		return
	}
	writeJSON(w, http.StatusOK, countsResponse{Counts: counts})
}

func (h *SamplesHandler) list(w http.ResponseWriter, r *http.Request, label string) {
	samples, err := h.store.Samples().ListByLabel(label)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list samples")
		return
	}

	resp := listSamplesResponse{Samples: make([]sampleResponse, 0, len(samples))}
	for _, s := range samples {
		resp.Samples = append(resp.Samples, sampleResponse{
			ID:        s.ID,
			Label:     s.Label,
			Features:  s.Features,
			CreatedAt: formatTime(s.CreatedAt),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// create converts each posted hand with the live feature mode so samples
// match what the classifier is sent.
func (h *SamplesHandler) create(w http.ResponseWriter, r *http.Request, label string) {
	var req createSamplesRequest
	if !decode(w, r, &req) {
		return
	}

	mode := h.app.FeatureMode()
	features := make([]detector.Features, 0, len(req.Samples))
	for _, triples := range req.Samples {
		hand, err := detector.FromTriples(triples)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		features = append(features, hand.Features(mode))
	}

	if err := h.store.Samples().Create(label, features); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save samples")
		return
	}

	writeJSON(w, http.StatusCreated, createSamplesResponse{Label: label, Created: len(features)})
}

func (h *SamplesHandler) delete(w http.ResponseWriter, r *http.Request, label string) {
	if err := h.store.Samples().DeleteByLabel(label); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No samples for label")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete samples")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
