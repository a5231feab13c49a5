package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// scriptPlugin writes a shell script plugin into a temp dir.
func scriptPlugin(t *testing.T, name, script string) *Plugin {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	tmpDir := t.TempDir()
	scriptPath := filepath.Join(tmpDir, name+".sh")
	if err := os.WriteFile(scriptPath, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	return &Plugin{
		Manifest: Manifest{
			Name:       name,
			Version:    "1.0.0",
			Executable: name + ".sh",
			Actions:    []string{ActionKeypress},
		},
		Path:       tmpDir,
		Executable: scriptPath,
	}
}

func keypressRequest(t *testing.T) *Request {
	t.Helper()
	params, err := json.Marshal(KeyParams{Key: "ArrowUp", Direction: "up", KeyCode: 38})
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}
	return &Request{Action: ActionKeypress, Gesture: "point_up", Params: params}
}

func TestExecutor_Execute(t *testing.T) {
	plugin := scriptPlugin(t, "ok-plugin", `#!/bin/sh
cat <<'EOF'
{"success":true,"data":{"message":"pressed"}}
EOF
`)

	response, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, keypressRequest(t))
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	if !response.Success {
		t.Errorf("expected success=true, got false")
	}

	var data map[string]interface{}
	if err := json.Unmarshal(response.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data["message"] != "pressed" {
		t.Errorf("expected message 'pressed', got %v", data["message"])
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	plugin := scriptPlugin(t, "echo-plugin", `#!/bin/sh
INPUT=$(cat)
echo "{\"success\":true,\"data\":{\"received\":$INPUT}}"
`)

	response, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, keypressRequest(t))
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	var data struct {
		Received struct {
			Action  string    `json:"action"`
			Gesture string    `json:"gesture"`
			Params  KeyParams `json:"params"`
		} `json:"received"`
	}
	if err := json.Unmarshal(response.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}

	if data.Received.Action != ActionKeypress {
		t.Errorf("expected action %q, got %q", ActionKeypress, data.Received.Action)
	}
	if data.Received.Gesture != "point_up" {
		t.Errorf("expected gesture 'point_up', got %q", data.Received.Gesture)
	}
	if data.Received.Params.Key != "ArrowUp" || data.Received.Params.KeyCode != 38 {
		t.Errorf("unexpected params %+v", data.Received.Params)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	plugin := scriptPlugin(t, "slow-plugin", `#!/bin/sh
sleep 10
echo '{"success":true}'
`)

	_, err := NewExecutor(100*time.Millisecond).Execute(context.Background(), plugin, keypressRequest(t))
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestExecutor_Execute_ErrorResponse(t *testing.T) {
	plugin := scriptPlugin(t, "error-plugin", `#!/bin/sh
echo '{"success":false,"error":"something went wrong"}'
`)

	response, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, keypressRequest(t))
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if response.Success {
		t.Errorf("expected success=false, got true")
	}
	if response.Error != "something went wrong" {
		t.Errorf("expected error 'something went wrong', got %q", response.Error)
	}
}

func TestExecutor_Execute_InvalidJSON(t *testing.T) {
	plugin := scriptPlugin(t, "bad-plugin", `#!/bin/sh
echo 'not valid json'
`)

	if _, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, keypressRequest(t)); err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestExecutor_Execute_NonZeroExit(t *testing.T) {
	plugin := scriptPlugin(t, "exit-plugin", `#!/bin/sh
echo "Error: something failed" >&2
exit 1
`)

	if _, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, keypressRequest(t)); err == nil {
		t.Fatal("expected error for non-zero exit, got nil")
	}
}

func TestNewExecutor(t *testing.T) {
	if e := NewExecutor(3 * time.Second); e.timeout != 3*time.Second {
		t.Errorf("expected timeout 3s, got %v", e.timeout)
	}
	if e := NewExecutor(0); e.timeout != DefaultTimeout {
		t.Errorf("expected default timeout, got %v", e.timeout)
	}
}

func TestManifest_Supports(t *testing.T) {
	m := Manifest{Actions: []string{"a", ActionKeypress}}
	if !m.Supports(ActionKeypress) {
		t.Error("expected keypress to be supported")
	}
	if m.Supports("b") {
		t.Error("unexpected support for b")
	}
}
