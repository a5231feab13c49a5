// Package predict calls the remote gesture classification service.
package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"github.com/ayusman/handmaze/internal/detector"
)

// Default client settings.
const (
	DefaultTimeout = 2 * time.Second
	DefaultRate    = 10
	PredictPath    = "/predict"

	maxResponseBytes = 1 << 20
)

// ErrThrottled is returned when a call is skipped by the rate limiter.
var ErrThrottled = errors.New("prediction throttled")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("prediction service returned %s", e.Status)
}

// Request is the body sent to the classifier.
type Request struct {
	Landmarks []float64 `json:"landmarks"`
}

// Prediction is the classifier's answer for one feature vector.
type Prediction struct {
	MazeAction  string  `json:"maze_action"`
	Confidence  float64 `json:"confidence" validate:"gte=0,lte=1"`
	GestureName string  `json:"gesture_name"`
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// Rate is the maximum calls per second; 0 disables throttling.
	Rate       float64
	HTTPClient *http.Client
}

// Client posts feature vectors to {BaseURL}/predict.
type Client struct {
	endpoint string
	http     *http.Client
	timeout  time.Duration
	limiter  *rate.Limiter
	validate *validator.Validate
}

// New creates a Client.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	var limiter *rate.Limiter
	if opts.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.Rate), 1)
	}

	return &Client{
		endpoint: strings.TrimRight(opts.BaseURL, "/") + PredictPath,
		http:     httpClient,
		timeout:  timeout,
		limiter:  limiter,
		validate: validator.New(),
	}
}

// Endpoint returns the full prediction URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Predict classifies one feature vector. Calls are never retried and are
// skipped with ErrThrottled rather than queued when over the rate limit.
func (c *Client) Predict(ctx context.Context, features detector.Features) (*Prediction, error) {
	if c.limiter != nil && !c.limiter.Allow() {
		return nil, ErrThrottled
	}

	body, err := json.Marshal(Request{Landmarks: features.Slice()})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call prediction service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	var p Prediction
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode prediction: %w", err)
	}
	if err := c.validate.Struct(p); err != nil {
		return nil, fmt.Errorf("invalid prediction: %w", err)
	}

	return &p, nil
}
