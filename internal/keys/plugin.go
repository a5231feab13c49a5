package keys

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ayusman/handmaze/internal/plugin"
)

// PluginEmitter hands each keydown to the first plugin that supports the
// keypress action, so the host OS sees a real arrow key. Keyup events are
// ignored because the plugin taps the key.
type PluginEmitter struct {
	manager  *plugin.Manager
	executor *plugin.Executor
}

// NewPluginEmitter creates a PluginEmitter.
func NewPluginEmitter(m *plugin.Manager, e *plugin.Executor) *PluginEmitter {
	return &PluginEmitter{manager: m, executor: e}
}

// Emit implements Emitter. Having no keypress plugin installed is not an error.
func (p *PluginEmitter) Emit(ctx context.Context, events []Event) error {
	target, err := p.manager.FindByAction(plugin.ActionKeypress)
	if errors.Is(err, plugin.ErrPluginNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, ev := range events {
		if ev.Type != KeyDown {
			continue
		}

		params, err := json.Marshal(plugin.KeyParams{
			Key:       ev.Key,
			Direction: string(ev.Direction),
			KeyCode:   ev.KeyCode,
		})
		if err != nil {
			return err
		}

		resp, err := p.executor.Execute(ctx, target, &plugin.Request{
			Action:  plugin.ActionKeypress,
			Gesture: ev.Gesture,
			Params:  params,
		})
		if err != nil {
			return err
		}
		if !resp.Success {
			return fmt.Errorf("plugin %s: %s", target.Manifest.Name, resp.Error)
		}
	}
	return nil
}
