package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Frame differencing parameters.
const (
	BlurKernel    = 21
	DiffThreshold = 25
	// DefaultMotionThreshold is the percentage of changed pixels that counts
	// as motion.
	DefaultMotionThreshold = 1.0
)

// MotionDetector reports whether consecutive frames differ by more than a
// percentage of pixels. The first frame after creation or Reset only sets
// the baseline.
type MotionDetector struct {
	threshold float64
	baseline  gocv.Mat
	primed    bool
	mu        sync.Mutex
}

// NewMotionDetector creates a detector. A non-positive threshold selects
// DefaultMotionThreshold.
func NewMotionDetector(threshold float64) *MotionDetector {
	if threshold <= 0 {
		threshold = DefaultMotionThreshold
	}
	return &MotionDetector{
		threshold: threshold,
		baseline:  gocv.NewMat(),
	}
}

// Detect compares frame against the previous one and returns whether motion
// was seen and the percentage of changed pixels.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	blurred := blurGray(frame)
	defer blurred.Close()

	if !m.primed || m.baseline.Empty() {
		blurred.CopyTo(&m.baseline)
		m.primed = true
		return false, 0
	}

	changed := changedPercent(blurred, m.baseline)
	blurred.CopyTo(&m.baseline)

	return changed > m.threshold, changed
}

// blurGray returns a blurred grayscale copy of frame.
func blurGray(frame *gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	out := gocv.NewMat()
	gocv.GaussianBlur(gray, &out, image.Point{X: BlurKernel, Y: BlurKernel}, 0, 0, gocv.BorderDefault)
	return out
}

func changedPercent(a, b gocv.Mat) float64 {
	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(a, b, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, DiffThreshold, 255, gocv.ThresholdBinary)

	total := mask.Rows() * mask.Cols()
	if total == 0 {
		return 0
	}
	return float64(gocv.CountNonZero(mask)) / float64(total) * 100
}

// Reset drops the baseline.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

// Close releases the baseline Mat. The detector stays usable.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

func (m *MotionDetector) release() {
	if !m.baseline.Empty() {
		m.baseline.Close()
		m.baseline = gocv.NewMat()
	}
	m.primed = false
}

// SetThreshold changes the threshold. Non-positive values are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = threshold
}

// Threshold returns the current threshold.
func (m *MotionDetector) Threshold() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.threshold
}
