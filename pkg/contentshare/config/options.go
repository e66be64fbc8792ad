package config

import (
	"fmt"
	"time"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabase configures the repository driver
func WithDatabase(driver, url string) Option {
	return func(c *ServerConfig) error {
		switch driver {
		case DriverMemory:
			url = ""
		case DriverPostgres, DriverGorm:
			if url == "" {
				return fmt.Errorf("database URL is required for %s", driver)
			}
		default:
			return fmt.Errorf("database driver must be 'memory', 'postgres' or 'gorm', got: %s", driver)
		}
		c.Database.Driver = driver
		c.Database.URL = url
		return nil
	}
}

// WithMigrations toggles applying schema migrations during Build
func WithMigrations(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.Database.Migrate = enabled
		return nil
	}
}

// WithMemoryStorage stores uploads in process memory
func WithMemoryStorage() Option {
	return func(c *ServerConfig) error {
		c.Storage.Backend = BackendMemory
		return nil
	}
}

// WithFilesystemStorage stores uploads under baseDir
func WithFilesystemStorage(baseDir string) Option {
	return func(c *ServerConfig) error {
		if baseDir == "" {
			return fmt.Errorf("filesystem base directory cannot be empty")
		}
		c.Storage.Backend = BackendFS
		c.Storage.FSDir = baseDir
		return nil
	}
}

// WithS3Storage stores uploads in an S3 bucket
func WithS3Storage(cfg S3Config) Option {
	return func(c *ServerConfig) error {
		if cfg.Bucket == "" {
			return fmt.Errorf("s3 bucket cannot be empty")
		}
		if cfg.Region == "" {
			cfg.Region = c.S3.Region
		}
		c.Storage.Backend = BackendS3
		c.S3 = cfg
		return nil
	}
}

// WithMinIOStorage stores uploads in a MinIO bucket
func WithMinIOStorage(cfg MinIOConfig) Option {
	return func(c *ServerConfig) error {
		if cfg.Endpoint == "" || cfg.Bucket == "" {
			return fmt.Errorf("minio endpoint and bucket are required")
		}
		c.Storage.Backend = BackendMinIO
		c.MinIO = cfg
		return nil
	}
}

// WithPublicURL sets the URL strategy and the base URL objects are served from
func WithPublicURL(strategy, baseURL string) Option {
	return func(c *ServerConfig) error {
		c.Storage.URLStrategy = strategy
		c.Storage.PublicBaseURL = baseURL
		return nil
	}
}

// WithKeyPrefix sets the folder prefix of generated object keys
func WithKeyPrefix(prefix string) Option {
	return func(c *ServerConfig) error {
		c.Storage.KeyPrefix = prefix
		return nil
	}
}

// WithKeyLayout selects the flat or sharded object key layout
func WithKeyLayout(layout string) Option {
	return func(c *ServerConfig) error {
		c.Storage.KeyLayout = layout
		return nil
	}
}

// WithJWT sets the token signing secret and lifetime
func WithJWT(secret string, ttl time.Duration) Option {
	return func(c *ServerConfig) error {
		if ttl < 0 {
			return fmt.Errorf("token ttl cannot be negative")
		}
		c.Auth.JWTSecret = secret
		c.Auth.TokenTTL = ttl
		return nil
	}
}

// WithPageSizes sets the dashboard and admin page sizes
func WithPageSizes(dashboard, admin int) Option {
	return func(c *ServerConfig) error {
		c.HTTP.DashboardPageSize = dashboard
		c.HTTP.AdminPageSize = admin
		return nil
	}
}

// WithRateLimit sets the per-client limit for like, view and comment posts.
// A zero rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *ServerConfig) error {
		c.HTTP.RateLimitRPS = rps
		c.HTTP.RateLimitBurst = burst
		return nil
	}
}

// WithEvents selects the event driver
func WithEvents(driver string) Option {
	return func(c *ServerConfig) error {
		c.Events.Driver = driver
		return nil
	}
}

// WithKafkaEvents publishes domain events to a Kafka topic
func WithKafkaEvents(brokers []string, topic string) Option {
	return func(c *ServerConfig) error {
		c.Events.Driver = EventsKafka
		c.Events.KafkaBrokers = brokers
		c.Events.KafkaTopic = topic
		return nil
	}
}

// WithNATSEvents publishes domain events to NATS subjects under prefix
func WithNATSEvents(url, prefix string) Option {
	return func(c *ServerConfig) error {
		c.Events.Driver = EventsNATS
		c.Events.NATSURL = url
		if prefix != "" {
			c.Events.NATSSubjectPrefix = prefix
		}
		return nil
	}
}
