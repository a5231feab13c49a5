package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func solidFrame(t *testing.T, v float64) gocv.Mat {
	t.Helper()
	m := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	if v > 0 {
		m.SetTo(gocv.NewScalar(v, v, v, 0))
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestNewMotionDetector(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1.0, 1.0},
		{5.0, 5.0},
		{0, DefaultMotionThreshold},
		{-2, DefaultMotionThreshold},
	}

	for _, tt := range tests {
		md := NewMotionDetector(tt.in)
		if md.Threshold() != tt.want {
			t.Errorf("NewMotionDetector(%v).Threshold() = %v, want %v", tt.in, md.Threshold(), tt.want)
		}
		if md.primed {
			t.Error("new detector should not be primed")
		}
		md.Close()
	}
}

func TestMotionDetector_Detect(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	black := solidFrame(t, 0)
	white := solidFrame(t, 255)

	if detected, pct := md.Detect(&black); detected || pct != 0 {
		t.Errorf("first frame = %v,%f; want false,0", detected, pct)
	}
	if detected, pct := md.Detect(&black); detected {
		t.Errorf("identical frame detected motion, pct = %f", pct)
	}
	detected, pct := md.Detect(&white)
	if !detected || pct < 50 {
		t.Errorf("black to white = %v,%f; want true,>50", detected, pct)
	}
}

func TestMotionDetector_Reset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	black := solidFrame(t, 0)
	white := solidFrame(t, 255)

	md.Detect(&black)
	if !md.primed {
		t.Fatal("detector should be primed after first Detect")
	}

	md.Reset()
	if md.primed || !md.baseline.Empty() {
		t.Error("Reset should drop the baseline")
	}

	if detected, _ := md.Detect(&white); detected {
		t.Error("first frame after Reset should not detect motion")
	}
}

func TestMotionDetector_NilFrame(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	if detected, pct := md.Detect(nil); detected || pct != 0 {
		t.Errorf("Detect(nil) = %v,%f", detected, pct)
	}
}

func TestMotionDetector_SetThreshold(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	md.SetThreshold(5.0)
	md.SetThreshold(-1.0)
	if md.Threshold() != 5.0 {
		t.Errorf("Threshold() = %f, want 5.0", md.Threshold())
	}
}

func TestMotionDetector_CloseTwice(t *testing.T) {
	md := NewMotionDetector(1.0)
	md.Close()
	md.Close()
}
