// Package capture reads webcam frames with GoCV and decides how often to
// read them.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Default camera settings.
const (
	DefaultWidth  = 640
	DefaultHeight = 480
)

// Errors returned by ReadFrame.
var (
	ErrCameraNotOpen = errors.New("camera is not open")
	ErrReadFailed    = errors.New("failed to read frame from camera")
	ErrEmptyFrame    = errors.New("captured frame is empty")
)

// Camera is a frame source. ReadFrame hands ownership of the Mat to the
// caller, who must Close it.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// Device is a Camera backed by a local video device.
type Device struct {
	id      int
	width   int
	height  int
	fps     int
	capture *gocv.VideoCapture
	mu      sync.Mutex
}

// NewCamera returns a Device for the given device ID at 640x480, starting at
// the idle frame rate.
func NewCamera(deviceID int) *Device {
	return &Device{
		id:     deviceID,
		width:  DefaultWidth,
		height: DefaultHeight,
		fps:    IdleFPS,
	}
}

// Open opens the device. Opening an open device is a no-op.
func (d *Device) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.capture != nil {
		return nil
	}

	vc, err := gocv.OpenVideoCapture(d.id)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", d.id, err)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(d.width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(d.height))
	vc.Set(gocv.VideoCaptureFPS, float64(d.fps))

	d.capture = vc
	return nil
}

// Close releases the device.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.capture == nil {
		return nil
	}

	err := d.capture.Close()
	d.capture = nil
	return err
}

// ReadFrame grabs one frame.
func (d *Device) ReadFrame() (*gocv.Mat, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := d.capture.Read(&mat); !ok {
		mat.Close()
		return nil, ErrReadFailed
	}
	if mat.Empty() {
		mat.Close()
		return nil, ErrEmptyFrame
	}

	return &mat, nil
}

// SetFPS changes the requested frame rate. Non-positive values are ignored.
func (d *Device) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.fps = fps
	if d.capture != nil {
		d.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the requested frame rate.
func (d *Device) FPS() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fps
}

// IsOpen reports whether the device is open.
func (d *Device) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.capture != nil
}

// EncodeJPEG encodes a frame as JPEG.
func EncodeJPEG(frame *gocv.Mat) ([]byte, error) {
	if frame == nil || frame.Empty() {
		return nil, ErrEmptyFrame
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}
