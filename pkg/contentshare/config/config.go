package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tendant/content-share/pkg/contentshare"
	"github.com/tendant/content-share/pkg/contentshare/api"
	"github.com/tendant/content-share/pkg/contentshare/objectkey"
	"github.com/tendant/content-share/pkg/contentshare/urlstrategy"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverGorm     = "gorm"

	BackendMemory = "memory"
	BackendFS     = "fs"
	BackendS3     = "s3"
	BackendMinIO  = "minio"

	EventsNone  = "none"
	EventsLog   = "log"
	EventsKafka = "kafka"
	EventsNATS  = "nats"

	EnvProduction = "production"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:        "8080",
		Environment: "development",
		LogLevel:    "info",
		Database: DatabaseConfig{
			Driver: DriverMemory,
		},
		Storage: StorageConfig{
			Backend:     BackendMemory,
			KeyPrefix:   "website-content/",
			KeyLayout:   objectkey.LayoutFlat,
			URLStrategy: urlstrategy.StrategyCDN,
			FSDir:       "./data/storage",
		},
		S3: S3Config{
			Region: "us-east-1",
		},
		MinIO: MinIOConfig{
			Endpoint: "localhost:9000",
		},
		Auth: AuthConfig{
			TokenTTL:   24 * time.Hour,
			CookieName: "auth_token",
		},
		HTTP: HTTPConfig{
			DashboardPageSize:  contentshare.DefaultPageSize,
			AdminPageSize:      20,
			MaxUploadBytes:     512 << 20,
			RateLimitRPS:       5,
			RateLimitBurst:     10,
			CORSAllowedOrigins: []string{"*"},
			RequestTimeout:     60 * time.Second,
		},
		Events: EventsConfig{
			Driver:            EventsLog,
			KafkaTopic:        "content-events",
			NATSURL:           "nats://127.0.0.1:4222",
			NATSSubjectPrefix: "content",
		},
	}
}

// ServerConfig represents the runtime configuration of the content-share server.
// The env tags are read by WithEnv; env-default values mirror defaults().
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"` // development, production, testing
	LogLevel    string `env:"LOG_LEVEL" env-default:"info"`

	Database DatabaseConfig
	Storage  StorageConfig
	S3       S3Config
	MinIO    MinIOConfig
	Auth     AuthConfig
	HTTP     HTTPConfig
	Events   EventsConfig
}

type DatabaseConfig struct {
	Driver  string `env:"DATABASE_DRIVER" env-default:"memory"` // memory, postgres, gorm
	URL     string `env:"DATABASE_URL"`
	Migrate bool   `env:"DATABASE_MIGRATE" env-default:"false"`
}

type StorageConfig struct {
	Backend       string `env:"STORAGE_BACKEND" env-default:"memory"` // memory, fs, s3, minio
	KeyPrefix     string `env:"STORAGE_KEY_PREFIX" env-default:"website-content/"`
	KeyLayout     string `env:"STORAGE_KEY_LAYOUT" env-default:"flat"` // flat, sharded
	PublicBaseURL string `env:"STORAGE_PUBLIC_BASE_URL"`
	URLStrategy   string `env:"STORAGE_URL_STRATEGY" env-default:"cdn"` // cdn, cloudinary
	FSDir         string `env:"STORAGE_FS_DIR" env-default:"./data/storage"`
}

type S3Config struct {
	Endpoint        string `env:"AWS_S3_ENDPOINT"`
	Region          string `env:"AWS_S3_REGION" env-default:"us-east-1"`
	Bucket          string `env:"AWS_S3_BUCKET"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`
	CreateBucket    bool   `env:"AWS_S3_CREATE_BUCKET" env-default:"false"`
}

type MinIOConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT" env-default:"localhost:9000"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET"`
	UseSSL    bool   `env:"MINIO_USE_SSL" env-default:"false"`
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET"`
	TokenTTL   time.Duration `env:"JWT_TTL" env-default:"24h"`
	CookieName string        `env:"AUTH_COOKIE_NAME" env-default:"auth_token"`
}

type HTTPConfig struct {
	DashboardPageSize  int           `env:"DASHBOARD_PAGE_SIZE" env-default:"9"`
	AdminPageSize      int           `env:"ADMIN_PAGE_SIZE" env-default:"20"`
	MaxUploadBytes     int64         `env:"MAX_UPLOAD_BYTES" env-default:"536870912"`
	RateLimitRPS       float64       `env:"RATE_LIMIT_RPS" env-default:"5"`
	RateLimitBurst     int           `env:"RATE_LIMIT_BURST" env-default:"10"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" env-default:"60s"`
}

type EventsConfig struct {
	Driver            string   `env:"EVENTS_DRIVER" env-default:"log"` // none, log, kafka, nats
	KafkaBrokers      []string `env:"KAFKA_BROKERS" env-separator:","`
	KafkaTopic        string   `env:"KAFKA_TOPIC" env-default:"content-events"`
	NATSURL           string   `env:"NATS_URL" env-default:"nats://127.0.0.1:4222"`
	NATSSubjectPrefix string   `env:"NATS_SUBJECT_PREFIX" env-default:"content"`
}

// IsProduction reports whether the server runs in the production environment
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.Database.Driver {
	case DriverMemory:
	case DriverPostgres, DriverGorm:
		if c.Database.URL == "" {
			return fmt.Errorf("database_url is required when using %s", c.Database.Driver)
		}
	default:
		return fmt.Errorf("database driver must be 'memory', 'postgres' or 'gorm', got: %s", c.Database.Driver)
	}
	if c.Database.Migrate && c.Database.Driver == DriverMemory {
		return errors.New("database migrations require a postgres or gorm driver")
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendFS:
		if c.Storage.FSDir == "" {
			return errors.New("STORAGE_FS_DIR is required for the fs storage backend")
		}
	case BackendS3:
		if c.S3.Bucket == "" {
			return errors.New("AWS_S3_BUCKET is required for the s3 storage backend")
		}
	case BackendMinIO:
		if c.MinIO.Endpoint == "" || c.MinIO.Bucket == "" {
			return errors.New("MINIO_ENDPOINT and MINIO_BUCKET are required for the minio storage backend")
		}
	default:
		return fmt.Errorf("storage backend must be 'memory', 'fs', 's3' or 'minio', got: %s", c.Storage.Backend)
	}
	if _, err := urlstrategy.New(c.Storage.URLStrategy, c.Storage.PublicBaseURL); err != nil {
		return err
	}
	if _, err := objectkey.New(c.Storage.KeyLayout, c.Storage.KeyPrefix); err != nil {
		return err
	}

	if c.HTTP.DashboardPageSize < 1 || c.HTTP.DashboardPageSize > contentshare.MaxPageSize {
		return fmt.Errorf("dashboard page size must be between 1 and %d", contentshare.MaxPageSize)
	}
	if c.HTTP.AdminPageSize < 1 || c.HTTP.AdminPageSize > contentshare.MaxPageSize {
		return fmt.Errorf("admin page size must be between 1 and %d", contentshare.MaxPageSize)
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		return errors.New("max upload bytes must be positive")
	}
	if c.HTTP.RateLimitRPS < 0 {
		return errors.New("rate limit must not be negative")
	}

	switch c.Events.Driver {
	case EventsNone, EventsLog:
	case EventsKafka:
		if len(c.Events.KafkaBrokers) == 0 || c.Events.KafkaTopic == "" {
			return errors.New("KAFKA_BROKERS and KAFKA_TOPIC are required for the kafka events driver")
		}
	case EventsNATS:
		if c.Events.NATSURL == "" {
			return errors.New("NATS_URL is required for the nats events driver")
		}
	default:
		return fmt.Errorf("events driver must be 'none', 'log', 'kafka' or 'nats', got: %s", c.Events.Driver)
	}

	if c.IsProduction() && c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required in production")
	}

	return nil
}

// PublicBaseURL returns the configured base URL for stored objects, falling
// back to the backend's own address. Memory and fs objects are served by the
// router under /media.
func (c *ServerConfig) PublicBaseURL() string {
	if c.Storage.PublicBaseURL != "" {
		return c.Storage.PublicBaseURL
	}
	switch c.Storage.Backend {
	case BackendS3:
		if c.S3.Endpoint != "" {
			return fmt.Sprintf("%s/%s", strings.TrimRight(c.S3.Endpoint, "/"), c.S3.Bucket)
		}
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", c.S3.Bucket, c.S3.Region)
	case BackendMinIO:
		scheme := "http"
		if c.MinIO.UseSSL {
			scheme = "https"
		}
		return fmt.Sprintf("%s://%s/%s", scheme, c.MinIO.Endpoint, c.MinIO.Bucket)
	default:
		return api.DefaultMediaPath
	}
}
