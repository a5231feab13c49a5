// Package server provides the local HTTP surface: the JSON API, the key
// event socket, the camera preview and the maze page.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/handmaze/internal/app"
	"github.com/ayusman/handmaze/internal/keys"
	"github.com/ayusman/handmaze/internal/logging"
	"github.com/ayusman/handmaze/internal/server/api"
)

// Config holds the server configuration. Every field is optional; routes
// whose dependencies are missing are not registered.
type Config struct {
	StaticDir string
	App       *app.App
	Hub       *keys.Hub
	Frames    FrameSource
	Logger    logrus.FieldLogger
}

// Server represents the HTTP server.
type Server struct {
	config  Config
	mux     *http.ServeMux
	handler http.Handler
	log     logrus.FieldLogger
	start   time.Time
	http    *http.Server
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	log := config.Logger
	if log == nil {
		log = logging.Discard()
	}

	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		log:    log.WithField("component", "server"),
		start:  time.Now(),
	}
	s.setupRoutes()
	s.handler = requestLogger(s.log, s.mux)
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if a := s.config.App; a != nil {
		s.mux.Handle("/api/classify", api.NewClassifyHandler(a))

		if st := a.Store(); st != nil {
			bindings := api.NewBindingsHandler(st, a)
			s.mux.Handle("/api/bindings", bindings)
			s.mux.Handle("/api/bindings/", bindings)

			samples := api.NewSamplesHandler(st, a)
			s.mux.Handle("/api/samples", samples)
			s.mux.Handle("/api/samples/", samples)

			s.mux.Handle("/api/events", api.NewEventsHandler(st))
			s.mux.Handle("/api/settings", api.NewSettingsHandler(st, a))
		}
	}

	if s.config.Hub != nil {
		s.mux.Handle("/api/keys", s.config.Hub)
	}

	if s.config.Frames != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Frames))
	}

	if s.config.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).Round(time.Second).String(),
	}
	if a := s.config.App; a != nil {
		response["enabled"] = a.IsEnabled()
		response["capturing"] = a.Running()
		response["active"] = a.Active()
	}
	if s.config.Hub != nil {
		response["key_clients"] = s.config.Hub.Clients()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("listening")
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
