package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Backend drivers.
const (
	DriverREST     = "rest"
	DriverPostgres = "postgres"
)

// Storage drivers.
const (
	StorageBackend = "backend"
	StorageS3      = "s3"
	StorageLocal   = "local"
)

// Config holds all configuration for the admin dashboard server.
type Config struct {
	Addr        string `envconfig:"ADDR" default:":8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"INFO"`
	FrontendURL string `envconfig:"FRONTEND_URL" default:"http://localhost:5173"`

	// Remote collections
	BackendDriver string `envconfig:"BACKEND_DRIVER" default:"rest"`
	BackendURL    string `envconfig:"BACKEND_URL"`
	BackendAPIKey string `envconfig:"BACKEND_API_KEY"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`

	// Image storage
	StorageDriver     string `envconfig:"STORAGE_DRIVER" default:"backend"`
	StorageBucket     string `envconfig:"STORAGE_BUCKET" default:"images"`
	S3Region          string `envconfig:"S3_REGION"`
	S3AccessKeyID     string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3PublicBaseURL   string `envconfig:"S3_PUBLIC_BASE_URL"`
	UploadDir         string `envconfig:"UPLOAD_DIR" default:"./uploads"`
	UploadURLPrefix   string `envconfig:"UPLOAD_URL_PREFIX" default:"/uploads"`
	MaxImageBytes     int64  `envconfig:"MAX_IMAGE_BYTES" default:"5242880"`

	// Local persistent store (FAQ cache, proposals, session token)
	BadgerPath string `envconfig:"BADGER_PATH" default:"./data"`

	RequestTimeout        time.Duration `envconfig:"REQUEST_TIMEOUT" default:"15s"`
	ProposalRatePerMinute int           `envconfig:"PROPOSAL_RATE_PER_MINUTE" default:"5"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks driver selections and the settings each driver needs.
func (c *Config) Validate() error {
	switch c.BackendDriver {
	case DriverREST:
		if c.BackendURL == "" {
			return errors.New("config: BACKEND_URL is required for the rest driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("config: unknown BACKEND_DRIVER %q", c.BackendDriver)
	}

	switch c.StorageDriver {
	case StorageBackend:
		if c.BackendURL == "" {
			return errors.New("config: BACKEND_URL is required for backend storage")
		}
	case StorageS3:
		if c.S3Region == "" || c.S3PublicBaseURL == "" {
			return errors.New("config: S3_REGION and S3_PUBLIC_BASE_URL are required for s3 storage")
		}
	case StorageLocal:
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.MaxImageBytes <= 0 {
		return errors.New("config: MAX_IMAGE_BYTES must be positive")
	}
	return nil
}
