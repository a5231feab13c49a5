package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector returns canned hands. Safe for use from the capture loop and
// a test goroutine at once.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands replaces the hands every later Detect reports.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	m.hands = append([]HandLandmarks(nil), hands...)
	m.mu.Unlock()
}

// SetError makes Detect fail until cleared with nil.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Calls reports how many times Detect ran.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockDetector) Detect(_ *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return append([]HandLandmarks(nil), m.hands...), nil
}

func (m *MockDetector) Close() error { return nil }
