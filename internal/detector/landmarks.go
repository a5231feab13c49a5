// Package detector provides hand landmark types, feature extraction and
// detector implementations.
package detector

import (
	"errors"
	"fmt"
	"math"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// ScaleReference is the landmark whose distance from the wrist defines unit
// length after normalization. The classifier was trained against this point,
// so changing it invalidates every model.
const ScaleReference = MiddleDIP

var (
	// ErrLandmarkCount is returned when input does not hold exactly 21 points.
	ErrLandmarkCount = fmt.Errorf("expected %d landmarks", NumLandmarks)
	// ErrTripleSize is returned when a landmark is not an (x, y, z) triple.
	ErrTripleSize = errors.New("landmark must have exactly 3 coordinates")
)

// Point3D represents a 3D point in space with x, y, z coordinates.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// FromPoints builds a hand from exactly NumLandmarks points.
func FromPoints(points []Point3D) (HandLandmarks, error) {
	var h HandLandmarks
	if len(points) != NumLandmarks {
		return h, fmt.Errorf("%w, got %d", ErrLandmarkCount, len(points))
	}
	copy(h.Points[:], points)
	return h, nil
}

// FromTriples builds a hand from [x, y, z] triples as sent by browser clients.
func FromTriples(triples [][]float64) (HandLandmarks, error) {
	var h HandLandmarks
	if len(triples) != NumLandmarks {
		return h, fmt.Errorf("%w, got %d", ErrLandmarkCount, len(triples))
	}
	for i, t := range triples {
		if len(t) != 3 {
			return h, fmt.Errorf("landmark %d: %w", i, ErrTripleSize)
		}
		h.Points[i] = Point3D{X: t[0], Y: t[1], Z: t[2]}
	}
	return h, nil
}

// distance3D calculates the Euclidean distance between two 3D points.
func distance3D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Normalize returns a copy of the hand translated so the wrist is at the
// origin and scaled so the wrist to ScaleReference distance is 1.0.
// A zero scale leaves the points translated only.
func (h *HandLandmarks) Normalize() *HandLandmarks {
	if h == nil {
		return nil
	}

	normalized := &HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	wrist := h.Points[Wrist]
	scale := distance3D(wrist, h.Points[ScaleReference])
	if scale == 0 {
		scale = 1.0
	}

	for i := 0; i < NumLandmarks; i++ {
		normalized.Points[i] = Point3D{
			X: (h.Points[i].X - wrist.X) / scale,
			Y: (h.Points[i].Y - wrist.Y) / scale,
			Z: (h.Points[i].Z - wrist.Z) / scale,
		}
	}

	return normalized
}

// Triples returns the hand as [x, y, z] triples, the browser wire shape.
func (h HandLandmarks) Triples() [][]float64 {
	out := make([][]float64, NumLandmarks)
	for i, p := range h.Points {
		out[i] = []float64{p.X, p.Y, p.Z}
	}
	return out
}
