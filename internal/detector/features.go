package detector

import (
	"fmt"
	"math"
)

// FeatureLen is the length of a flattened feature vector.
const FeatureLen = NumLandmarks * 3

// Features is the flat x,y,z-per-landmark vector sent to the classifier.
type Features [FeatureLen]float64

// FeatureMode selects how landmarks are turned into features.
type FeatureMode string

const (
	// ModeWrist normalizes around the wrist before flattening.
	ModeWrist FeatureMode = "wrist"
	// ModeClamp flattens raw coordinates clamped into [0,1].
	ModeClamp FeatureMode = "clamp"
)

// ParseFeatureMode maps a config string to a FeatureMode.
// An empty string selects ModeWrist.
func ParseFeatureMode(s string) (FeatureMode, error) {
	switch FeatureMode(s) {
	case "", ModeWrist:
		return ModeWrist, nil
	case ModeClamp:
		return ModeClamp, nil
	}
	return "", fmt.Errorf("unknown feature mode %q", s)
}

// Features flattens the hand into a 63-value vector using the given mode.
func (h *HandLandmarks) Features(mode FeatureMode) Features {
	var f Features
	if h == nil {
		return f
	}

	src := h
	if mode != ModeClamp {
		src = h.Normalize()
	}

	for i, p := range src.Points {
		if mode == ModeClamp {
			p = Point3D{X: clamp01(p.X), Y: clamp01(p.Y), Z: clamp01(p.Z)}
		}
		f[i*3] = p.X
		f[i*3+1] = p.Y
		f[i*3+2] = p.Z
	}
	return f
}

// Slice returns the vector as a slice for JSON encoding.
func (f Features) Slice() []float64 {
	return f[:]
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
