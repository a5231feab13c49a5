package tray

import (
	"sync/atomic"
	"testing"

	"github.com/ayusman/handmaze/internal/maze"
)

type fakePipeline struct {
	enabled atomic.Bool
}

func (f *fakePipeline) SetEnabled(v bool) { f.enabled.Store(v) }
func (f *fakePipeline) IsEnabled() bool   { return f.enabled.Load() }

func TestTray_Toggle(t *testing.T) {
	p := &fakePipeline{}
	p.SetEnabled(true)
	tr := New(p)

	if tr.Toggle() || p.IsEnabled() {
		t.Error("first Toggle should disable")
	}
	if !tr.Toggle() || !p.IsEnabled() {
		t.Error("second Toggle should enable")
	}
}

func TestTray_ShowMove(t *testing.T) {
	tr := New(&fakePipeline{})

	if got := tr.LastTitle(); got != "Last: none" {
		t.Errorf("initial LastTitle() = %q", got)
	}

	tr.ShowMove(maze.Decision{Direction: maze.Left, Reason: maze.ReasonAccepted}, "point_left")
	if got := tr.LastTitle(); got != "Last: ArrowLeft (point_left)" {
		t.Errorf("LastTitle() = %q", got)
	}

	tr.ShowMove(maze.Skip(maze.ReasonLowConfidence), "fist")
	if got := tr.LastTitle(); got != "Last: ArrowLeft (point_left)" {
		t.Errorf("no-move decision changed title to %q", got)
	}

	tr.ShowMove(maze.Decision{Direction: maze.Down, Reason: maze.ReasonAccepted}, "")
	if got := tr.LastTitle(); got != "Last: ArrowDown" {
		t.Errorf("LastTitle() = %q", got)
	}
}

func TestToggleTitle(t *testing.T) {
	if toggleTitle(true) != "● Enabled" || toggleTitle(false) != "○ Disabled" {
		t.Error("unexpected toggle titles")
	}
}
