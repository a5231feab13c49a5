// Package tray provides the macOS menu bar for the maze controller.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/handmaze/internal/maze"
)

// Toggler is the part of the pipeline the tray switches on and off.
type Toggler interface {
	SetEnabled(enabled bool)
	IsEnabled() bool
}

// Tray is the menu bar app.
type Tray struct {
	pipeline   Toggler
	onSettings func()
	onQuit     func()
	mu         sync.Mutex

	menuToggle *systray.MenuItem
	menuLast   *systray.MenuItem
	last       string
}

// New creates a Tray driving the given pipeline.
func New(pipeline Toggler) *Tray {
	return &Tray{pipeline: pipeline, last: lastTitle(maze.None, "")}
}

// OnSettings sets the handler for "Open Settings...".
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the handler for "Quit". It runs before the tray exits.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run blocks until Quit. It must be called from the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit closes the tray from any goroutine.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("handmaze")
	systray.SetTooltip("Hand gesture maze controller")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.pipeline.IsEnabled()), "Toggle gesture control")
	systray.AddSeparator()
	t.menuLast = systray.AddMenuItem(t.last, "Last move")
	t.menuLast.Disable()
	t.mu.Unlock()

	systray.AddSeparator()
	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit handmaze")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.Toggle()
			case <-menuSettings.ClickedCh:
				t.call(&t.onSettings)
			case <-menuQuit.ClickedCh:
				t.call(&t.onQuit)
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) call(fn *func()) {
	t.mu.Lock()
	f := *fn
	t.mu.Unlock()
	if f != nil {
		f()
	}
}

// Toggle flips the pipeline's enabled state and returns the new state.
func (t *Tray) Toggle() bool {
	enabled := !t.pipeline.IsEnabled()
	t.pipeline.SetEnabled(enabled)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	return enabled
}

// ShowMove updates the "Last" item. Decisions without a move are ignored so
// the item keeps showing the last real key.
func (t *Tray) ShowMove(d maze.Decision, gesture string) {
	if !d.Move() {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = lastTitle(d.Direction, gesture)
	if t.menuLast != nil {
		t.menuLast.SetTitle(t.last)
	}
}

// LastTitle returns the current "Last" item text.
func (t *Tray) LastTitle() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func lastTitle(d maze.Direction, gesture string) string {
	if d == maze.None {
		return "Last: none"
	}
	if gesture == "" {
		return fmt.Sprintf("Last: %s", d.Key())
	}
	return fmt.Sprintf("Last: %s (%s)", d.Key(), gesture)
}
