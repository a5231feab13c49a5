package maze

import (
	"sync"

	"github.com/ayusman/handmaze/internal/predict"
)

// DefaultMinConfidence is the acceptance threshold. Low enough that the game
// stays responsive; higher values drop most mid-motion frames.
const DefaultMinConfidence = 0.4

// Reason explains a Decision.
type Reason string

// Decision reasons.
const (
	ReasonAccepted         Reason = "accepted"
	ReasonNoPrediction     Reason = "no_prediction"
	ReasonLowConfidence    Reason = "low_confidence"
	ReasonUnknownLabel     Reason = "unknown_label"
	ReasonNoAction         Reason = "no_action"
	ReasonPredictionFailed Reason = "prediction_failed"
	ReasonThrottled        Reason = "throttled"
	ReasonBusy             Reason = "busy"
	ReasonDisabled         Reason = "disabled"
	ReasonNoHand           Reason = "no_hand"
)

// Table maps classifier labels to directions. Labels present with None are
// recognised gestures that deliberately do nothing.
type Table map[string]Direction

// DefaultTable returns the labels the classifier emits.
func DefaultTable() Table {
	return Table{
		"UP":     Up,
		"DOWN":   Down,
		"LEFT":   Left,
		"RIGHT":  Right,
		"STOP":   None,
		"WAIT":   None,
		"PAUSE":  None,
		"OK":     None,
		"ACTION": None,
		"MUTE":   None,
		"FOUR":   None,
		"THREE":  None,
		"TWO":    None,
	}
}

// Clone returns a copy of the table.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Decision is the outcome of resolving one prediction.
type Decision struct {
	Direction Direction `json:"direction"`
	Reason    Reason    `json:"reason"`
}

// Move reports whether the decision produces a key press.
func (d Decision) Move() bool {
	return d.Direction != None
}

// Skip returns a no-move decision with the given reason.
func Skip(reason Reason) Decision {
	return Decision{Direction: None, Reason: reason}
}

// Resolver gates predictions on confidence and looks labels up in a Table.
// It is safe for concurrent use; the table and threshold can be swapped live.
type Resolver struct {
	mu            sync.RWMutex
	table         Table
	minConfidence float64
}

// NewResolver creates a Resolver. A nil table selects DefaultTable.
func NewResolver(table Table, minConfidence float64) *Resolver {
	if table == nil {
		table = DefaultTable()
	}
	return &Resolver{table: table.Clone(), minConfidence: minConfidence}
}

// SetTable replaces the label table.
func (r *Resolver) SetTable(t Table) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.table = t.Clone()
}

// Table returns a copy of the current label table.
func (r *Resolver) Table() Table {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.table.Clone()
}

// SetMinConfidence replaces the acceptance threshold.
func (r *Resolver) SetMinConfidence(v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.minConfidence = v
}

// MinConfidence returns the acceptance threshold.
func (r *Resolver) MinConfidence() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.minConfidence
}

// Resolve turns a prediction into a Decision. Confidence equal to the
// threshold is accepted; labels are matched exactly.
func (r *Resolver) Resolve(p *predict.Prediction) Decision {
	if p == nil {
		return Skip(ReasonNoPrediction)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if p.Confidence < r.minConfidence {
		return Skip(ReasonLowConfidence)
	}

	dir, ok := r.table[p.MazeAction]
	if !ok {
		return Skip(ReasonUnknownLabel)
	}
	if dir == None {
		return Skip(ReasonNoAction)
	}

	return Decision{Direction: dir, Reason: ReasonAccepted}
}
