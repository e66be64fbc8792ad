package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from the given files (".env" when none are
// given) into the process environment. Missing files are ignored and
// variables already set are kept.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// WithEnv reads the configuration from environment variables. Unset
// variables take their env-default value, so options that must win over
// the environment go after WithEnv.
//
//	Server:   PORT, ENVIRONMENT, LOG_LEVEL
//	Database: DATABASE_DRIVER (memory|postgres|gorm), DATABASE_URL, DATABASE_MIGRATE
//	Storage:  STORAGE_BACKEND (memory|fs|s3|minio), STORAGE_KEY_PREFIX, STORAGE_KEY_LAYOUT (flat|sharded),
//	          STORAGE_PUBLIC_BASE_URL, STORAGE_URL_STRATEGY (cdn|cloudinary), STORAGE_FS_DIR
//	S3:       AWS_S3_ENDPOINT, AWS_S3_REGION, AWS_S3_BUCKET, AWS_ACCESS_KEY_ID,
//	          AWS_SECRET_ACCESS_KEY, AWS_S3_USE_PATH_STYLE, AWS_S3_CREATE_BUCKET
//	MinIO:    MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY, MINIO_BUCKET, MINIO_USE_SSL
//	Auth:     JWT_SECRET, JWT_TTL, AUTH_COOKIE_NAME
//	HTTP:     DASHBOARD_PAGE_SIZE, ADMIN_PAGE_SIZE, MAX_UPLOAD_BYTES, RATE_LIMIT_RPS,
//	          RATE_LIMIT_BURST, CORS_ALLOWED_ORIGINS, REQUEST_TIMEOUT
//	Events:   EVENTS_DRIVER (none|log|kafka|nats), KAFKA_BROKERS, KAFKA_TOPIC,
//	          NATS_URL, NATS_SUBJECT_PREFIX
func WithEnv() Option {
	return func(c *ServerConfig) error {
		if err := cleanenv.ReadEnv(c); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		return nil
	}
}

// Usage returns a description of every supported environment variable
func Usage() (string, error) {
	var cfg ServerConfig
	return cleanenv.GetDescription(&cfg, nil)
}
