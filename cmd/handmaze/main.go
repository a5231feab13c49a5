package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/handmaze/internal/app"
	"github.com/ayusman/handmaze/internal/capture"
	"github.com/ayusman/handmaze/internal/config"
	"github.com/ayusman/handmaze/internal/detector"
	"github.com/ayusman/handmaze/internal/keys"
	"github.com/ayusman/handmaze/internal/logging"
	"github.com/ayusman/handmaze/internal/maze"
	"github.com/ayusman/handmaze/internal/plugin"
	"github.com/ayusman/handmaze/internal/predict"
	"github.com/ayusman/handmaze/internal/server"
	"github.com/ayusman/handmaze/internal/store"
	"github.com/ayusman/handmaze/internal/tray"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "handmaze:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	addr := flag.String("addr", cfg.Addr, "HTTP listen address")
	withTray := flag.Bool("tray", false, "show the macOS menu bar item")
	withCapture := flag.Bool("capture", cfg.Capture, "read the local webcam and classify hands")
	flag.Parse()

	log, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	hub := keys.NewHub(log)
	hub.AllowOrigins(cfg.KeyOrigins...)
	emitters := keys.Multi{hub}

	plugins := plugin.NewManager(cfg.PluginDir, log)
	if err := plugins.Discover(); err != nil {
		log.WithError(err).Warn("plugin discovery failed")
	} else if _, err := plugins.FindByAction(plugin.ActionKeypress); err == nil {
		emitters = append(emitters, keys.NewPluginEmitter(plugins, plugin.NewExecutor(plugin.DefaultTimeout)))
		log.Info("keypress plugin enabled")
	}

	appCfg := app.Config{
		Predictor: predict.New(predict.Options{
			BaseURL: cfg.PredictURL,
			Timeout: cfg.PredictTimeout,
			Rate:    cfg.PredictRate,
		}),
		Resolver:     maze.NewResolver(nil, cfg.MinConfidence),
		Emitter:      emitters,
		Store:        st,
		MotionThresh: cfg.MotionThresh,
		FeatureMode:  detector.FeatureMode(cfg.FeatureMode),
		Logger:       log,
	}

	if *withCapture {
		det, err := detector.NewMediaPipeDetector(detector.DefaultConfig(), log)
		if err != nil {
			return fmt.Errorf("capture needs MediaPipe: %w", err)
		}
		appCfg.Detector = det
		appCfg.Camera = capture.NewCamera(cfg.CameraID)
	}

	a, err := app.New(appCfg)
	if err != nil {
		return err
	}
	if err := a.LoadSettings(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *withCapture {
		if err := a.Start(ctx); err != nil {
			return fmt.Errorf("start capture: %w", err)
		}
		defer a.Stop()
	}

	srvCfg := server.Config{
		StaticDir: cfg.StaticDir,
		App:       a,
		Hub:       hub,
		Logger:    log,
	}
	if srvCfg.StaticDir == "" {
		srvCfg.StaticDir = findWebDir(cfg.DataDir)
	}
	if *withCapture {
		srvCfg.Frames = a
	}
	if srvCfg.StaticDir != "" {
		log.WithField("dir", srvCfg.StaticDir).Info("serving static files")
	}
	srv := server.New(srvCfg)

	if !*withTray {
		return srv.ListenAndServe(ctx, *addr)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(ctx, *addr) }()
	return runTray(ctx, stop, a, *addr, log, errCh)
}

// runTray blocks on the menu bar until Quit, a signal or a server failure.
func runTray(ctx context.Context, stop context.CancelFunc, a *app.App, addr string, log logrus.FieldLogger, errCh <-chan error) error {
	t := tray.New(a)
	t.OnSettings(func() { openBrowser(settingsURL(addr), log) })
	t.OnQuit(stop)
	a.OnOutcome(func(o app.Outcome) {
		gesture := ""
		if o.Prediction != nil {
			gesture = o.Prediction.GestureName
		}
		t.ShowMove(o.Decision, gesture)
	})

	done := make(chan error, 1)
	go func() {
		var err error
		select {
		case err = <-errCh:
		case <-ctx.Done():
			err = <-errCh
		}
		done <- err
		t.Quit()
	}()

	t.Run()
	stop()
	return <-done
}

func settingsURL(addr string) string {
	host := addr
	if len(host) > 0 && host[0] == ':' {
		host = "localhost" + host
	}
	return "http://" + host + "/"
}

func openBrowser(url string, log logrus.FieldLogger) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.WithError(err).Warn("open browser")
	}
}

// findWebDir looks for the maze page in ./web, ../web, ../../web and
// <dataDir>/web.
func findWebDir(dataDir string) string {
	candidates := []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
