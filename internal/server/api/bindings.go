package api

import (
	"errors"
	"net/http"

	"github.com/ayusman/handmaze/internal/app"
	"github.com/ayusman/handmaze/internal/maze"
	"github.com/ayusman/handmaze/internal/store"
)

// BindingsHandler manages the label table. Every change is pushed into the
// live resolver.
type BindingsHandler struct {
	store *store.Store
	app   *app.App
}

// NewBindingsHandler creates a BindingsHandler.
func NewBindingsHandler(s *store.Store, a *app.App) *BindingsHandler {
	return &BindingsHandler{store: s, app: a}
}

// ServeHTTP routes /api/bindings and /api/bindings/{label}.
func (h *BindingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	label := itemPath(r, "/api/bindings")

	if label == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, label)
	case http.MethodPut:
		h.put(w, r, label)
	case http.MethodDelete:
		h.delete(w, r, label)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type putBindingRequest struct {
	Direction string `json:"direction" validate:"oneof=none up down left right"`
}

type bindingResponse struct {
	Label     string `json:"label"`
	Direction string `json:"direction"`
	Key       string `json:"key,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type listBindingsResponse struct {
	Bindings []bindingResponse `json:"bindings"`
}

func toBindingResponse(b *store.Binding) bindingResponse {
	return bindingResponse{
		Label:     b.Label,
		Direction: b.Direction.String(),
		Key:       b.Direction.Key(),
		CreatedAt: formatTime(b.CreatedAt),
		UpdatedAt: formatTime(b.UpdatedAt),
	}
}

func (h *BindingsHandler) list(w http.ResponseWriter, r *http.Request) {
	bindings, err := h.store.Bindings().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bindings")
		return
	}

	resp := listBindingsResponse{Bindings: make([]bindingResponse, 0, len(bindings))}
	for _, b := range bindings {
		resp.Bindings = append(resp.Bindings, toBindingResponse(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BindingsHandler) get(w http.ResponseWriter, r *http.Request, label string) {
	b, err := h.store.Bindings().Get(label)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Binding not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get binding")
		return
	}
	writeJSON(w, http.StatusOK, toBindingResponse(b))
}

func (h *BindingsHandler) put(w http.ResponseWriter, r *http.Request, label string) {
	var req putBindingRequest
	if !decode(w, r, &req) {
		return
	}

	dir, err := maze.ParseDirection(req.Direction)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b := &store.Binding{Label: label, Direction: dir}
	if existing, err := h.store.Bindings().Get(label); err == nil {
		b.CreatedAt = existing.CreatedAt
	}
	if err := h.store.Bindings().Upsert(b); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save binding")
		return
	}
	if err := h.app.ReloadBindings(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload bindings")
		return
	}

	writeJSON(w, http.StatusOK, toBindingResponse(b))
}

func (h *BindingsHandler) delete(w http.ResponseWriter, r *http.Request, label string) {
	if err := h.store.Bindings().Delete(label); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Binding not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete binding")
		return
	}
	if err := h.app.ReloadBindings(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload bindings")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
