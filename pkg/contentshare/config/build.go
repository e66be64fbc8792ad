package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/content-share/pkg/contentshare"
	"github.com/tendant/content-share/pkg/contentshare/api"
	"github.com/tendant/content-share/pkg/contentshare/auth"
	"github.com/tendant/content-share/pkg/contentshare/events"
	"github.com/tendant/content-share/pkg/contentshare/migrations"
	"github.com/tendant/content-share/pkg/contentshare/objectkey"
	"github.com/tendant/content-share/pkg/contentshare/objectstore"
	"github.com/tendant/content-share/pkg/contentshare/repo/memory"
	"github.com/tendant/content-share/pkg/contentshare/repo/orm"
	repopg "github.com/tendant/content-share/pkg/contentshare/repo/postgres"
	fsstorage "github.com/tendant/content-share/pkg/contentshare/storage/fs"
	memorystorage "github.com/tendant/content-share/pkg/contentshare/storage/memory"
	miniostorage "github.com/tendant/content-share/pkg/contentshare/storage/minio"
	s3storage "github.com/tendant/content-share/pkg/contentshare/storage/s3"
	"github.com/tendant/content-share/pkg/contentshare/urlstrategy"
)

// App holds everything Build wired together
type App struct {
	Service contentshare.Service
	Storage contentshare.ObjectStorage
	Auth    *auth.Manager
	Router  api.RouterConfig

	closers []func() error
}

// Handler returns the HTTP handler for the application
func (a *App) Handler() http.Handler {
	return api.NewRouter(a.Service, a.Storage, a.Router)
}

// Close releases connections in reverse order of creation
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Build creates the repository, object storage, event sink and service
// described by the configuration.
func (c *ServerConfig) Build(ctx context.Context, logger *slog.Logger) (_ *App, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	if c.Database.Migrate {
		logger.Info("Applying database migrations")
		if err := migrations.Up(c.Database.URL); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	repo, err := c.buildRepository(ctx, app, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}

	store, err := c.buildBlobStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build storage backend %s: %w", c.Storage.Backend, err)
	}

	baseURL := c.PublicBaseURL()
	urls, err := urlstrategy.New(c.Storage.URLStrategy, baseURL)
	if err != nil {
		return nil, err
	}
	keys, err := objectkey.New(c.Storage.KeyLayout, c.Storage.KeyPrefix)
	if err != nil {
		return nil, err
	}
	app.Storage = objectstore.New(c.Storage.Backend, store,
		objectstore.WithKeyGenerator(keys),
		objectstore.WithURLStrategy(urls),
		objectstore.WithLogger(logger),
	)

	sink, err := c.buildEventSink(app, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build event sink: %w", err)
	}

	app.Service, err = contentshare.New(
		contentshare.WithRepository(repo),
		contentshare.WithObjectStorage(app.Storage),
		contentshare.WithEventSink(sink),
		contentshare.WithLogger(logger),
		contentshare.WithDefaultPageSize(c.HTTP.DashboardPageSize),
	)
	if err != nil {
		return nil, err
	}

	if c.Auth.JWTSecret != "" {
		app.Auth, err = auth.NewManager(c.Auth.JWTSecret, c.Auth.TokenTTL)
		if err != nil {
			return nil, err
		}
	} else {
		logger.Warn("JWT_SECRET is not set; every request is anonymous and admin routes are closed")
	}

	app.Router = api.RouterConfig{
		Auth:               app.Auth,
		AuthCookieName:     c.Auth.CookieName,
		DashboardPageSize:  c.HTTP.DashboardPageSize,
		AdminPageSize:      c.HTTP.AdminPageSize,
		MaxUploadBytes:     c.HTTP.MaxUploadBytes,
		RateLimitRPS:       c.HTTP.RateLimitRPS,
		RateLimitBurst:     c.HTTP.RateLimitBurst,
		CORSAllowedOrigins: c.HTTP.CORSAllowedOrigins,
		RequestTimeout:     c.HTTP.RequestTimeout,
		Logger:             logger,
	}
	if (c.Storage.Backend == BackendMemory || c.Storage.Backend == BackendFS) && c.Storage.PublicBaseURL == "" {
		app.Router.MediaStore = store
		app.Router.MediaPath = baseURL
	}

	logger.Info("Content service ready",
		"database", c.Database.Driver,
		"storage", c.Storage.Backend,
		"public_base_url", baseURL,
		"events", c.Events.Driver)

	return app, nil
}

func (c *ServerConfig) buildRepository(ctx context.Context, app *App, logger *slog.Logger) (contentshare.Repository, error) {
	switch c.Database.Driver {
	case DriverMemory:
		return memory.New(), nil
	case DriverPostgres:
		pool, err := pgxpool.New(ctx, c.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to create connection pool: %w", err)
		}
		app.closers = append(app.closers, func() error {
			pool.Close()
			return nil
		})
		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return repopg.NewWithPool(pool), nil
	case DriverGorm:
		db, err := orm.Open(c.Database.URL, logger)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, sqlDB.Close)
		return orm.New(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
}

func (c *ServerConfig) buildBlobStore(ctx context.Context) (contentshare.BlobStore, error) {
	switch c.Storage.Backend {
	case BackendMemory:
		return memorystorage.New(), nil
	case BackendFS:
		return fsstorage.New(c.Storage.FSDir)
	case BackendS3:
		return s3storage.New(ctx, s3storage.Config{
			Region:                 c.S3.Region,
			Bucket:                 c.S3.Bucket,
			AccessKeyID:            c.S3.AccessKeyID,
			SecretAccessKey:        c.S3.SecretAccessKey,
			Endpoint:               c.S3.Endpoint,
			UsePathStyle:           c.S3.UsePathStyle,
			CreateBucketIfNotExist: c.S3.CreateBucket,
		})
	case BackendMinIO:
		return miniostorage.New(ctx, miniostorage.Config{
			Endpoint:               c.MinIO.Endpoint,
			AccessKey:              c.MinIO.AccessKey,
			SecretKey:              c.MinIO.SecretKey,
			Bucket:                 c.MinIO.Bucket,
			UseSSL:                 c.MinIO.UseSSL,
			CreateBucketIfNotExist: true,
		})
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", c.Storage.Backend)
	}
}

func (c *ServerConfig) buildEventSink(app *App, logger *slog.Logger) (contentshare.EventSink, error) {
	var publisher events.Publisher
	switch c.Events.Driver {
	case EventsNone:
		return contentshare.NewNoopEventSink(), nil
	case EventsLog:
		publisher = events.NewLogPublisher(logger)
	case EventsKafka:
		kafka, err := events.NewKafkaPublisher(c.Events.KafkaBrokers, c.Events.KafkaTopic)
		if err != nil {
			return nil, err
		}
		publisher = kafka
	case EventsNATS:
		nats, err := events.NewNATSPublisher(c.Events.NATSURL, c.Events.NATSSubjectPrefix, logger)
		if err != nil {
			return nil, err
		}
		publisher = nats
	default:
		return nil, fmt.Errorf("unsupported events driver: %s", c.Events.Driver)
	}

	sink := events.NewSink(publisher)
	app.closers = append(app.closers, sink.Close)
	return sink, nil
}
