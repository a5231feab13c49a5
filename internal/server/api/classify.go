package api

import (
	"net/http"

	"github.com/ayusman/handmaze/internal/app"
	"github.com/ayusman/handmaze/internal/maze"
)

// ClassifyHandler runs landmarks posted by a browser through the pipeline.
type ClassifyHandler struct {
	app *app.App
}

// NewClassifyHandler creates a ClassifyHandler.
func NewClassifyHandler(a *app.App) *ClassifyHandler {
	return &ClassifyHandler{app: a}
}

type classifyRequest struct {
	Landmarks [][]float64 `json:"landmarks" validate:"required,len=21,dive,len=3"`
}

type classifyResponse struct {
	Direction   string      `json:"direction"`
	Key         string      `json:"key,omitempty"`
	Reason      maze.Reason `json:"reason"`
	GestureName string      `json:"gesture_name,omitempty"`
	Label       string      `json:"label,omitempty"`
	Confidence  float64     `json:"confidence"`
}

// ServeHTTP handles POST /api/classify. Pipeline failures still answer 200;
// only malformed landmarks are rejected.
func (h *ClassifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req classifyRequest
	if !decode(w, r, &req) {
		return
	}

	out, err := h.app.ProcessPoints(r.Context(), req.Landmarks)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := classifyResponse{
		Direction: out.Decision.Direction.String(),
		Key:       out.Decision.Direction.Key(),
		Reason:    out.Decision.Reason,
	}
	if p := out.Prediction; p != nil {
		resp.GestureName = p.GestureName
		resp.Label = p.MazeAction
		resp.Confidence = p.Confidence
	}

	writeJSON(w, http.StatusOK, resp)
}
