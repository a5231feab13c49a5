// Package keys turns maze moves into synthetic keyboard events and delivers
// them to game clients.
package keys

import (
	"context"
	"errors"
	"time"

	"github.com/ayusman/handmaze/internal/maze"
)

// Event types, matching DOM KeyboardEvent.type.
const (
	KeyDown = "keydown"
	KeyUp   = "keyup"
)

// Event is one synthetic keyboard event.
type Event struct {
	Type       string         `json:"type"`
	Key        string         `json:"key"`
	Code       string         `json:"code"`
	KeyCode    int            `json:"keyCode"`
	Direction  maze.Direction `json:"direction"`
	Gesture    string         `json:"gesture,omitempty"`
	Confidence float64        `json:"confidence,omitempty"`
	Timestamp  int64          `json:"timestamp"`
}

// Press returns the keydown/keyup pair for a move. None yields no events.
func Press(dir maze.Direction, gesture string, confidence float64) []Event {
	if dir.Key() == "" {
		return nil
	}

	now := time.Now().UnixMilli()
	base := Event{
		Key:        dir.Key(),
		Code:       dir.Key(),
		KeyCode:    dir.KeyCode(),
		Direction:  dir,
		Gesture:    gesture,
		Confidence: confidence,
		Timestamp:  now,
	}

	down, up := base, base
	down.Type = KeyDown
	up.Type = KeyUp
	return []Event{down, up}
}

// Emitter delivers key events somewhere.
type Emitter interface {
	Emit(ctx context.Context, events []Event) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(ctx context.Context, events []Event) error

// Emit calls f.
func (f EmitterFunc) Emit(ctx context.Context, events []Event) error {
	return f(ctx, events)
}

// Multi fans events out to every emitter, continuing past failures, and
// returns the joined errors.
type Multi []Emitter

// Emit implements Emitter.
func (m Multi) Emit(ctx context.Context, events []Event) error {
	var errs []error
	for _, e := range m {
		if e == nil {
			continue
		}
		if err := e.Emit(ctx, events); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
