package server

import (
	"bytes"
	"fmt"
	"net/http"
	"time"
)

// streamInterval paces the preview at roughly the active capture rate.
const streamInterval = 66 * time.Millisecond

// FrameSource yields the latest encoded JPEG, or nil when none is ready.
type FrameSource interface {
	LatestFrame() []byte
}

// StreamHandler serves the capture loop's frames as MJPEG. It never touches
// the camera itself.
type StreamHandler struct {
	frames FrameSource
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(frames FrameSource) *StreamHandler {
	return &StreamHandler{frames: frames}
}

// ServeHTTP streams frames until the client disconnects.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	var last []byte
	for {
		if frame := h.frames.LatestFrame(); frame != nil && !bytes.Equal(frame, last) {
			if err := writePart(w, frame); err != nil {
				return
			}
			last = frame
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	_, err := fmt.Fprint(w, "\r\n")
	return err
}
