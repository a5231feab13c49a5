package api

import (
	"net/http"

	"github.com/ayusman/handmaze/internal/app"
	"github.com/ayusman/handmaze/internal/detector"
	"github.com/ayusman/handmaze/internal/store"
)

// SettingsHandler reads and updates runtime settings. Threshold and feature
// mode are persisted; the enabled flag lives only in memory.
type SettingsHandler struct {
	store *store.Store
	app   *app.App
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(s *store.Store, a *app.App) *SettingsHandler {
	return &SettingsHandler{store: s, app: a}
}

type settingsResponse struct {
	MinConfidence float64 `json:"min_confidence"`
	FeatureMode   string  `json:"feature_mode"`
	Enabled       bool    `json:"enabled"`
	Capturing     bool    `json:"capturing"`

	// Stored holds the raw persisted values, keyed by setting name.
	Stored map[string]string `json:"stored"`
}

type updateSettingsRequest struct {
	MinConfidence *float64 `json:"min_confidence" validate:"omitempty,gte=0,lte=1"`
	FeatureMode   *string  `json:"feature_mode" validate:"omitempty,oneof=wrist clamp"`
	Enabled       *bool    `json:"enabled"`
}

// ServeHTTP handles GET and PUT /api/settings.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w)
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) get(w http.ResponseWriter) {
	stored, err := h.store.Settings().All()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	writeJSON(w, http.StatusOK, settingsResponse{
		MinConfidence: h.app.Resolver().MinConfidence(),
		FeatureMode:   string(h.app.FeatureMode()),
		Enabled:       h.app.IsEnabled(),
		Capturing:     h.app.Running(),
		Stored:        stored,
	})
}

func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if !decode(w, r, &req) {
		return
	}

	if req.MinConfidence != nil {
		if err := h.store.Settings().SetFloat(store.SettingMinConfidence, *req.MinConfidence); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save settings")
			return
		}
		h.app.Resolver().SetMinConfidence(*req.MinConfidence)
	}

	if req.FeatureMode != nil {
		mode, err := detector.ParseFeatureMode(*req.FeatureMode)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := h.store.Settings().Set(store.SettingFeatureMode, string(mode)); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save settings")
			return
		}
		h.app.SetFeatureMode(mode)
	}

	if req.Enabled != nil {
		h.app.SetEnabled(*req.Enabled)
	}

	h.get(w)
}
