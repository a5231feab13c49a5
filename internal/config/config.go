// Package config loads handmaze settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all process-level settings.
type Config struct {
	Addr string `env:"HANDMAZE_ADDR" envDefault:":8080" validate:"required"`

	PredictURL     string        `env:"HANDMAZE_PREDICT_URL" envDefault:"http://localhost:8001" validate:"required,url"`
	PredictTimeout time.Duration `env:"HANDMAZE_PREDICT_TIMEOUT" envDefault:"2s" validate:"gt=0"`
	PredictRate    float64       `env:"HANDMAZE_PREDICT_RATE" envDefault:"10" validate:"gte=0"`

	MinConfidence float64 `env:"HANDMAZE_MIN_CONFIDENCE" envDefault:"0.4" validate:"gte=0,lte=1"`
	FeatureMode   string  `env:"HANDMAZE_FEATURE_MODE" envDefault:"wrist" validate:"oneof=wrist clamp"`

	DataDir   string `env:"HANDMAZE_DATA_DIR"`
	PluginDir string `env:"HANDMAZE_PLUGIN_DIR"`
	StaticDir string `env:"HANDMAZE_STATIC_DIR"`

	// KeyOrigins lists extra page origins allowed on the key WebSocket.
	KeyOrigins []string `env:"HANDMAZE_KEY_ORIGINS" envSeparator:","`

	Capture      bool    `env:"HANDMAZE_CAPTURE" envDefault:"false"`
	CameraID     int     `env:"HANDMAZE_CAMERA_ID" envDefault:"0" validate:"gte=0"`
	MotionThresh float64 `env:"HANDMAZE_MOTION_THRESH" envDefault:"1.0" validate:"gt=0"`

	LogLevel string `env:"HANDMAZE_LOG_LEVEL" envDefault:"info" validate:"oneof=trace debug info warn warning error"`
	LogFile  string `env:"HANDMAZE_LOG_FILE"`
}

var validate = validator.New()

// Load reads an optional .env file, then the environment, and fills in
// directory defaults under ~/.handmaze.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".handmaze")
	}
	if cfg.PluginDir == "" {
		cfg.PluginDir = filepath.Join(cfg.DataDir, "plugins")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DBPath returns the SQLite database location inside DataDir.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "handmaze.db")
}
