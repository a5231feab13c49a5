// Package main provides a keyboard plugin for macOS.
// It presses arrow keys via AppleScript so any focused game receives them.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action  string          `json:"action"`
	Gesture string          `json:"gesture"`
	Config  json.RawMessage `json:"config"`
	Params  json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// KeyParams defines parameters for the keypress action.
type KeyParams struct {
	Key       string `json:"key"`
	Direction string `json:"direction"`
}

// arrowKeyCodes maps DOM key names to macOS virtual key codes.
var arrowKeyCodes = map[string]int{
	"ArrowLeft":  123,
	"ArrowRight": 124,
	"ArrowDown":  125,
	"ArrowUp":    126,
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	switch req.Action {
	case "keypress":
		if err := handleKeypress(req.Params); err != nil {
			writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
			return
		}
	default:
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}

	writeSuccessResponse()
}

// handleKeypress presses and releases one arrow key.
func handleKeypress(params json.RawMessage) error {
	var p KeyParams
	if err := json.Unmarshal(params, &p); err != nil {
		return fmt.Errorf("failed to parse params: %w", err)
	}

	script, err := buildKeyCodeScript(p.Key)
	if err != nil {
		return err
	}
	return runAppleScript(script)
}

// buildKeyCodeScript generates an AppleScript that taps the given arrow key.
func buildKeyCodeScript(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("key is required")
	}
	code, ok := arrowKeyCodes[key]
	if !ok {
		return "", fmt.Errorf("unsupported key %q", key)
	}
	return fmt.Sprintf(`tell application "System Events" to key code %d`, code), nil
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}

// runAppleScript executes an AppleScript command and returns any error.
func runAppleScript(script string) error {
	cmd := exec.Command("osascript", "-e", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
