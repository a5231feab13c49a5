// Package maze maps classifier labels to maze moves.
package maze

import "fmt"

// Direction is a maze move. The zero value is None.
type Direction string

// Directions.
const (
	None  Direction = ""
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// ParseDirection accepts "up", "down", "left", "right" and "" or "none".
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Up, Down, Left, Right, None:
		return d, nil
	case "none":
		return None, nil
	}
	return None, fmt.Errorf("unknown direction %q", s)
}

// Key returns the DOM KeyboardEvent.key value, or "" for None.
func (d Direction) Key() string {
	switch d {
	case Up:
		return "ArrowUp"
	case Down:
		return "ArrowDown"
	case Left:
		return "ArrowLeft"
	case Right:
		return "ArrowRight"
	}
	return ""
}

// KeyCode returns the legacy DOM keyCode, or 0 for None.
func (d Direction) KeyCode() int {
	switch d {
	case Up:
		return 38
	case Down:
		return 40
	case Left:
		return 37
	case Right:
		return 39
	}
	return 0
}

// String returns "none" for None.
func (d Direction) String() string {
	if d == None {
		return "none"
	}
	return string(d)
}

// MarshalText encodes None as "none".
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts the forms ParseDirection does.
func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
