package app

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/handmaze/internal/capture"
)

// ErrNoCamera is returned by Start when no camera or detector is configured.
var ErrNoCamera = errors.New("app: capture needs a camera and a detector")

// Start opens the camera and runs the capture loop until Stop or ctx ends.
// Starting a running loop is a no-op.
func (a *App) Start(ctx context.Context) error {
	a.loopMu.Lock()
	defer a.loopMu.Unlock()

	if a.cancel != nil {
		return nil
	}
	if a.config.Camera == nil || a.config.Detector == nil {
		return ErrNoCamera
	}

	if err := a.config.Camera.Open(); err != nil {
		return err
	}
	a.config.Camera.SetFPS(a.pacer.Idle)
	a.pacer.Reset()
	if a.motion == nil {
		a.motion = capture.NewMotionDetector(a.config.MotionThresh)
	}

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.stopped = make(chan struct{})
	go a.run(ctx, a.stopped)

	a.log.Info("capture started")
	return nil
}

// Stop halts the capture loop and releases the camera, motion detector and
// hand detector.
func (a *App) Stop() {
	a.loopMu.Lock()
	defer a.loopMu.Unlock()

	if a.cancel == nil {
		return
	}
	a.cancel()
	<-a.stopped
	a.cancel = nil

	if err := a.config.Camera.Close(); err != nil {
		a.log.WithError(err).Warn("close camera")
	}
	a.motion.Close()
	if err := a.config.Detector.Close(); err != nil {
		a.log.WithError(err).Warn("close detector")
	}

	a.log.Info("capture stopped")
}

// Running reports whether the capture loop is running.
func (a *App) Running() bool {
	a.loopMu.Lock()
	defer a.loopMu.Unlock()
	return a.cancel != nil
}

// Active reports whether the capture loop is at its active frame rate.
func (a *App) Active() bool {
	return a.Running() && a.pacer.IsActive()
}

// run reads frames at the pacer's rate. Every frame goes through hand
// detection; motion or a visible hand keeps the active rate. Only the first
// hand is classified, and each frame is finished before the next is read so
// predictions never overlap.
func (a *App) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	timer := time.NewTimer(a.pacer.Interval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if a.IsEnabled() {
			a.step(ctx)
		}
		timer.Reset(a.pacer.Interval())
	}
}

func (a *App) step(ctx context.Context) {
	frame, err := a.config.Camera.ReadFrame()
	if err != nil {
		a.log.WithError(err).Debug("read frame")
		return
	}
	defer frame.Close()

	if jpeg, err := capture.EncodeJPEG(frame); err == nil {
		a.setFrame(jpeg)
	}

	motion, pct := a.motion.Detect(frame)

	hands, err := a.config.Detector.Detect(frame)
	if err != nil {
		a.log.WithError(err).Warn("hand detection failed")
		hands = nil
	}

	if fps, changed := a.pacer.Observe(motion || len(hands) > 0, time.Now()); changed {
		a.config.Camera.SetFPS(fps)
		a.log.WithFields(logrus.Fields{"fps": fps, "change_pct": pct}).Debug("frame rate changed")
	}

	if err != nil {
		return
	}
	if len(hands) == 0 {
		a.Process(ctx, nil)
		return
	}

	a.Submit(ctx, &hands[0])
}
