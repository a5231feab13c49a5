package capture

import (
	"sync"
	"time"
)

// Frame rates and the quiet period before dropping back to idle.
const (
	IdleFPS     = 5
	ActiveFPS   = 15
	IdleTimeout = 2 * time.Second
)

// Pacer switches between the idle and active frame rate. Motion switches to
// active immediately; a quiet period of Timeout switches back.
type Pacer struct {
	Idle    int
	Active  int
	Timeout time.Duration

	mu         sync.Mutex
	active     bool
	lastMotion time.Time
}

// NewPacer returns a Pacer with the default rates, starting idle.
func NewPacer() *Pacer {
	return &Pacer{Idle: IdleFPS, Active: ActiveFPS, Timeout: IdleTimeout}
}

// Observe records whether the latest frame showed motion and returns the
// frame rate to use next and whether it changed.
func (p *Pacer) Observe(motion bool, now time.Time) (fps int, changed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if motion {
		p.lastMotion = now
		if !p.active {
			p.active = true
			return p.Active, true
		}
		return p.Active, false
	}

	if p.active && now.Sub(p.lastMotion) > p.Timeout {
		p.active = false
		return p.Idle, true
	}
	return p.current(), false
}

// IsActive reports whether the pacer is in active mode.
func (p *Pacer) IsActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Interval returns the delay between frames at the current rate.
func (p *Pacer) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return time.Second / time.Duration(p.current())
}

// Reset returns to idle.
func (p *Pacer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = false
	p.lastMotion = time.Time{}
}

func (p *Pacer) current() int {
	if p.active {
		return p.Active
	}
	return p.Idle
}
