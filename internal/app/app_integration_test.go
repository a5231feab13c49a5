package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/handmaze/internal/capture"
	"github.com/ayusman/handmaze/internal/detector"
	"github.com/ayusman/handmaze/internal/keys"
	"github.com/ayusman/handmaze/internal/logging"
	"github.com/ayusman/handmaze/internal/maze"
	"github.com/ayusman/handmaze/internal/predict"
)

// predictServer answers every /predict call with the given label.
func predictServer(t *testing.T, label string, confidence float64) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req predict.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Landmarks) != detector.FeatureLen {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(predict.Prediction{
			MazeAction:  label,
			Confidence:  confidence,
			GestureName: "point_up",
		})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestApp_ProcessAgainstPredictService(t *testing.T) {
	ts := predictServer(t, "UP", 0.93)
	rec := &recorder{}

	a, err := New(Config{
		Predictor: predict.New(predict.Options{BaseURL: ts.URL}),
		Emitter:   rec,
		Store:     newStore(t),
		Logger:    logging.Discard(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := a.LoadSettings(); err != nil {
		t.Fatal(err)
	}

	out, err := a.ProcessPoints(context.Background(), pointUp().Triples())
	if err != nil {
		t.Fatalf("ProcessPoints() error = %v", err)
	}
	if out.Decision.Direction != maze.Up || out.Prediction.Confidence != 0.93 {
		t.Errorf("outcome = %+v", out)
	}
	if len(rec.Events()) != 2 {
		t.Errorf("emitted %d events, want 2", len(rec.Events()))
	}
}

func TestApp_UnreachableServiceFailsOpen(t *testing.T) {
	ts := predictServer(t, "UP", 1)
	url := ts.URL
	ts.Close()

	rec := &recorder{}
	a, err := New(Config{
		Predictor: predict.New(predict.Options{BaseURL: url, Timeout: time.Second}),
		Emitter:   rec,
		Logger:    logging.Discard(),
	})
	if err != nil {
		t.Fatal(err)
	}

	out := a.Process(context.Background(), pointUp())
	if out.Decision.Reason != maze.ReasonPredictionFailed || out.Decision.Move() {
		t.Errorf("outcome = %+v", out.Decision)
	}
	if len(rec.Events()) != 0 {
		t.Error("no keys should be emitted on failure")
	}
}

func TestApp_CaptureLoop(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	black := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer black.Close()
	white := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer white.Close()
	white.SetTo(gocv.NewScalar(255, 255, 255, 0))

	cam := capture.NewMockCamera([]*gocv.Mat{&black, &white}, true)
	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{detector.PointUpLandmarks(), detector.OpenPalmLandmarks()})

	ts := predictServer(t, "UP", 0.9)

	got := make(chan keys.Event, 16)
	emitter := keys.EmitterFunc(func(_ context.Context, events []keys.Event) error {
		for _, ev := range events {
			select {
			case got <- ev:
			default:
			}
		}
		return nil
	})

	a, err := New(Config{
		Predictor: predict.New(predict.Options{BaseURL: ts.URL}),
		Emitter:   emitter,
		Detector:  det,
		Camera:    cam,
		Logger:    logging.Discard(),
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := a.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer a.Stop()

	select {
	case ev := <-got:
		if ev.Key != "ArrowUp" {
			t.Errorf("Key = %q, want ArrowUp", ev.Key)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("capture loop never emitted a key")
	}

	if cam.FPS() != capture.ActiveFPS {
		t.Errorf("camera FPS = %d, want active rate %d", cam.FPS(), capture.ActiveFPS)
	}
	if a.LatestFrame() == nil {
		t.Error("LatestFrame() should hold a JPEG")
	}
}

func TestApp_CaptureLoop_StillHand(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	still := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer still.Close()

	cam := capture.NewMockCamera([]*gocv.Mat{&still}, true)
	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{detector.PointUpLandmarks()})

	ts := predictServer(t, "UP", 0.9)

	got := make(chan keys.Event, 64)
	emitter := keys.EmitterFunc(func(_ context.Context, events []keys.Event) error {
		for _, ev := range events {
			select {
			case got <- ev:
			default:
			}
		}
		return nil
	})

	a, err := New(Config{
		Predictor: predict.New(predict.Options{BaseURL: ts.URL}),
		Emitter:   emitter,
		Detector:  det,
		Camera:    cam,
		Logger:    logging.Discard(),
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := a.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer a.Stop()

	// A held pose never moves the frame; it must keep pressing the key.
	presses := 0
	timeout := time.After(5 * time.Second)
	for presses < 3 {
		select {
		case ev := <-got:
			if ev.Type != keys.KeyDown {
				continue
			}
			if ev.Key != "ArrowUp" {
				t.Fatalf("Key = %q, want ArrowUp", ev.Key)
			}
			presses++
		case <-timeout:
			t.Fatalf("got %d ArrowUp presses from a still hand, want 3", presses)
		}
	}

	if det.Calls() < 3 {
		t.Errorf("detector ran %d times, want at least 3", det.Calls())
	}
	if cam.FPS() != capture.ActiveFPS {
		t.Errorf("camera FPS = %d, want active rate %d while a hand is visible", cam.FPS(), capture.ActiveFPS)
	}
	if !a.Active() {
		t.Error("Active() = false while a hand is visible")
	}
}
