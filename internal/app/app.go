// Package app wires landmarks, the remote classifier, the label table and
// the key emitters into one fail-open pipeline.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/handmaze/internal/capture"
	"github.com/ayusman/handmaze/internal/detector"
	"github.com/ayusman/handmaze/internal/keys"
	"github.com/ayusman/handmaze/internal/logging"
	"github.com/ayusman/handmaze/internal/maze"
	"github.com/ayusman/handmaze/internal/predict"
	"github.com/ayusman/handmaze/internal/store"
)

// DefaultEventRetention is how many outcomes the event log keeps.
const DefaultEventRetention = 1000

// pruneEvery is how many recorded outcomes pass between prunes.
const pruneEvery = 100

// Predictor classifies one feature vector.
type Predictor interface {
	Predict(ctx context.Context, features detector.Features) (*predict.Prediction, error)
}

// Config holds the collaborators of an App. Predictor is required; the rest
// are optional.
type Config struct {
	Predictor    Predictor
	Resolver     *maze.Resolver
	Emitter      keys.Emitter
	Store        *store.Store
	Detector     detector.Detector
	Camera       capture.Camera
	MotionThresh float64
	FeatureMode  detector.FeatureMode
	// EventRetention caps the event log. Zero selects DefaultEventRetention.
	EventRetention int
	Logger         logrus.FieldLogger
}

// Outcome is the result of processing one hand.
type Outcome struct {
	Prediction *predict.Prediction `json:"prediction,omitempty"`
	Decision   maze.Decision       `json:"decision"`
	Err        error               `json:"-"`
	At         time.Time           `json:"at"`
}

// App runs the pipeline.
type App struct {
	config    Config
	predictor Predictor
	resolver  *maze.Resolver
	emitter   keys.Emitter
	log       logrus.FieldLogger

	mode     atomic.Value // detector.FeatureMode
	enabled  atomic.Bool
	inflight atomic.Bool
	recorded atomic.Int64

	mu        sync.RWMutex
	callbacks []func(Outcome)
	last      Outcome
	frame     []byte

	loopMu  sync.Mutex
	motion  *capture.MotionDetector
	pacer   *capture.Pacer
	cancel  context.CancelFunc
	stopped chan struct{}
}

// New creates an App. It starts enabled.
func New(config Config) (*App, error) {
	if config.Predictor == nil {
		return nil, errors.New("app: predictor is required")
	}
	if config.Resolver == nil {
		config.Resolver = maze.NewResolver(nil, maze.DefaultMinConfidence)
	}
	if config.Emitter == nil {
		config.Emitter = keys.Multi{}
	}
	if config.EventRetention <= 0 {
		config.EventRetention = DefaultEventRetention
	}
	log := config.Logger
	if log == nil {
		log = logging.Discard()
	}

	mode, err := detector.ParseFeatureMode(string(config.FeatureMode))
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	a := &App{
		config:    config,
		predictor: config.Predictor,
		resolver:  config.Resolver,
		emitter:   config.Emitter,
		log:       log.WithField("component", "app"),
		pacer:     capture.NewPacer(),
	}
	a.mode.Store(mode)
	a.enabled.Store(true)
	return a, nil
}

// LoadSettings seeds the label table on first run and pushes the stored
// bindings, threshold and feature mode into the pipeline. Without a store it
// does nothing.
func (a *App) LoadSettings() error {
	s := a.config.Store
	if s == nil {
		return nil
	}

	seeded, err := s.Bindings().SeedDefaults()
	if err != nil {
		return fmt.Errorf("seed bindings: %w", err)
	}
	if seeded {
		a.log.Info("seeded default label bindings")
	}

	if err := a.ReloadBindings(); err != nil {
		return err
	}

	minConf, err := s.Settings().GetFloat(store.SettingMinConfidence, a.resolver.MinConfidence())
	if err != nil {
		return fmt.Errorf("load %s: %w", store.SettingMinConfidence, err)
	}
	a.resolver.SetMinConfidence(minConf)

	raw, err := s.Settings().Get(store.SettingFeatureMode)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return fmt.Errorf("load %s: %w", store.SettingFeatureMode, err)
	default:
		mode, err := detector.ParseFeatureMode(raw)
		if err != nil {
			return fmt.Errorf("load %s: %w", store.SettingFeatureMode, err)
		}
		a.SetFeatureMode(mode)
	}

	a.log.WithFields(logrus.Fields{
		"min_confidence": a.resolver.MinConfidence(),
		"feature_mode":   a.FeatureMode(),
	}).Info("settings loaded")
	return nil
}

// ReloadBindings replaces the resolver table with the stored bindings.
func (a *App) ReloadBindings() error {
	if a.config.Store == nil {
		return nil
	}
	table, err := a.config.Store.Bindings().Table()
	if err != nil {
		return fmt.Errorf("load bindings: %w", err)
	}
	a.resolver.SetTable(table)
	a.log.WithField("labels", len(table)).Debug("bindings loaded")
	return nil
}

// Resolver returns the live resolver.
func (a *App) Resolver() *maze.Resolver {
	return a.resolver
}

// Store returns the configured store, or nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}

// SetEnabled enables or disables the pipeline.
func (a *App) SetEnabled(enabled bool) {
	if a.enabled.Swap(enabled) != enabled {
		a.log.WithField("enabled", enabled).Info("pipeline toggled")
	}
}

// IsEnabled reports whether the pipeline is enabled.
func (a *App) IsEnabled() bool {
	return a.enabled.Load()
}

// FeatureMode returns the active feature mode.
func (a *App) FeatureMode() detector.FeatureMode {
	return a.mode.Load().(detector.FeatureMode)
}

// SetFeatureMode switches how landmarks become features.
func (a *App) SetFeatureMode(mode detector.FeatureMode) {
	a.mode.Store(mode)
}

// OnOutcome registers a callback run after every outcome. Callbacks run on
// the processing goroutine and must not block.
func (a *App) OnOutcome(fn func(Outcome)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.callbacks = append(a.callbacks, fn)
}

// LastOutcome returns the most recent outcome.
func (a *App) LastOutcome() Outcome {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last
}

// ProcessPoints validates raw [x, y, z] triples and submits them.
func (a *App) ProcessPoints(ctx context.Context, triples [][]float64) (Outcome, error) {
	hand, err := detector.FromTriples(triples)
	if err != nil {
		return Outcome{}, err
	}
	return a.Submit(ctx, &hand), nil
}

// Submit processes a hand unless another prediction is in flight, in which
// case the hand is dropped with reason busy.
func (a *App) Submit(ctx context.Context, hand *detector.HandLandmarks) Outcome {
	if !a.inflight.CompareAndSwap(false, true) {
		return a.finish(Outcome{Decision: maze.Skip(maze.ReasonBusy), At: time.Now()}, true)
	}
	defer a.inflight.Store(false)
	return a.Process(ctx, hand)
}

// Process runs one hand through the pipeline. It never fails: errors are
// logged and reported in the Outcome with no key press.
func (a *App) Process(ctx context.Context, hand *detector.HandLandmarks) Outcome {
	out := Outcome{At: time.Now()}

	if !a.IsEnabled() {
		out.Decision = maze.Skip(maze.ReasonDisabled)
		return a.finish(out, true)
	}
	if hand == nil {
		out.Decision = maze.Skip(maze.ReasonNoHand)
		return a.finish(out, false)
	}

	features := hand.Features(a.FeatureMode())

	pred, err := a.predictor.Predict(ctx, features)
	if err != nil {
		out.Err = err
		if errors.Is(err, predict.ErrThrottled) {
			out.Decision = maze.Skip(maze.ReasonThrottled)
		} else {
			out.Decision = maze.Skip(maze.ReasonPredictionFailed)
			a.log.WithError(err).Warn("prediction failed")
		}
		return a.finish(out, true)
	}

	out.Prediction = pred
	out.Decision = a.resolver.Resolve(pred)

	entry := a.log.WithFields(logrus.Fields{
		"gesture":    pred.GestureName,
		"label":      pred.MazeAction,
		"confidence": pred.Confidence,
		"reason":     out.Decision.Reason,
	})

	if !out.Decision.Move() {
		entry.Debug("no move")
		return a.finish(out, true)
	}

	entry.WithField("direction", out.Decision.Direction).Info("move")
	events := keys.Press(out.Decision.Direction, pred.GestureName, pred.Confidence)
	if err := a.emitter.Emit(ctx, events); err != nil {
		out.Err = err
		entry.WithError(err).Warn("key emit failed")
	}

	return a.finish(out, true)
}

// finish records the outcome, remembers it and runs callbacks.
func (a *App) finish(out Outcome, record bool) Outcome {
	if record {
		a.record(out)
	}

	a.mu.Lock()
	a.last = out
	callbacks := append([]func(Outcome){}, a.callbacks...)
	a.mu.Unlock()

	for _, fn := range callbacks {
		fn(out)
	}
	return out
}

func (a *App) record(out Outcome) {
	s := a.config.Store
	if s == nil {
		return
	}

	ev := &store.Event{
		Direction: out.Decision.Direction,
		Reason:    out.Decision.Reason,
		CreatedAt: out.At,
	}
	if p := out.Prediction; p != nil {
		ev.GestureName = p.GestureName
		ev.Label = p.MazeAction
		ev.Confidence = p.Confidence
	}

	if err := s.Events().Create(ev); err != nil {
		a.log.WithError(err).Warn("record event failed")
		return
	}

	if a.recorded.Add(1)%pruneEvery == 0 {
		if _, err := s.Events().Prune(a.config.EventRetention); err != nil {
			a.log.WithError(err).Warn("prune events failed")
		}
	}
}

// LatestFrame returns the most recent JPEG seen by the capture loop, or nil.
func (a *App) LatestFrame() []byte {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.frame
}

func (a *App) setFrame(jpeg []byte) {
	a.mu.Lock()
	a.frame = jpeg
	a.mu.Unlock()
}
