package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const datetimeLayout = "2006-01-02 15:04"

// ErrBadRowCount indicates a non-positive requested row count.
var ErrBadRowCount = errors.New("app: row count must be positive")

// ErrMissingCredentials indicates the object store credentials were
// not provided. Local-only commands never hit this.
var ErrMissingCredentials = errors.New("app: object store credentials must be provided")

// Config holds runtime configuration for the pipeline.
type Config struct {
	AppEnv    string `envconfig:"APP_ENV" default:"development"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	Rows          int    `envconfig:"NUM_ROWS" default:"8000"`
	Seed          uint64 `envconfig:"SEED" default:"42"`
	StartDatetime string `envconfig:"START_DATETIME" default:"2022-01-01 10:30"`
	EndDatetime   string `envconfig:"END_DATETIME" default:"2024-12-31 23:59"`

	DataDir      string `envconfig:"DATA_DIR" default:"data"`
	ArtifactName string `envconfig:"ARTIFACT_NAME" default:"simulated_api_data"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT" default:"localhost:9000"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"sim-api-data"`
	S3UseSSL    bool   `envconfig:"S3_USE_SSL" default:"false"`
	S3URLStyle  string `envconfig:"S3_URL_STYLE" default:"path"`

	UploadMaxRetries    uint64        `envconfig:"UPLOAD_MAX_RETRIES" default:"4"`
	UploadRetryInterval time.Duration `envconfig:"UPLOAD_RETRY_INTERVAL" default:"500ms"`

	windowStart time.Time
	windowEnd   time.Time
}

// LoadConfig reads configuration from environment variables. Every
// configuration error is reported here, before any stage runs.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.Rows <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrBadRowCount, cfg.Rows)
	}
	if cfg.S3URLStyle != "path" && cfg.S3URLStyle != "virtual" {
		return nil, fmt.Errorf("app: unknown S3_URL_STYLE %q", cfg.S3URLStyle)
	}

	start, err := time.Parse(datetimeLayout, cfg.StartDatetime)
	if err != nil {
		return nil, fmt.Errorf("app: parse START_DATETIME: %w", err)
	}
	end, err := time.Parse(datetimeLayout, cfg.EndDatetime)
	if err != nil {
		return nil, fmt.Errorf("app: parse END_DATETIME: %w", err)
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("app: generation window %s..%s is inverted", cfg.StartDatetime, cfg.EndDatetime)
	}
	cfg.windowStart = start
	cfg.windowEnd = end

	return &cfg, nil
}

// ValidateObjectStore checks the settings only commands that touch the
// object store need. Verifying a local artifact skips it.
func (c *Config) ValidateObjectStore() error {
	if c.S3AccessKey == "" || c.S3SecretKey == "" {
		return ErrMissingCredentials
	}
	return nil
}

// Window returns the parsed generation time window.
func (c *Config) Window() (time.Time, time.Time) {
	return c.windowStart, c.windowEnd
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
