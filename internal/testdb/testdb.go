// Package testdb provisions a migrated Postgres database for repository tests.
package testdb

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/tendant/content-share/pkg/contentshare/migrations"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database connection
type TestDB struct {
	URL  string
	Pool *pgxpool.Pool
}

var (
	containerOnce sync.Once
	containerURL  string
	containerErr  error

	migrateOnce sync.Once
	migrateErr  error
)

// databaseURL returns TEST_DATABASE_URL, or starts a throwaway postgres
// container shared by the whole test binary.
func databaseURL(t *testing.T) string {
	t.Helper()

	if url := os.Getenv("TEST_DATABASE_URL"); url != "" {
		return url
	}

	testcontainers.SkipIfProviderIsNotHealthy(t)

	containerOnce.Do(func() {
		ctx := context.Background()
		req := testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "content",
				"POSTGRES_PASSWORD": "pwd",
				"POSTGRES_DB":       "content_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		}

		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if err != nil {
			containerErr = fmt.Errorf("failed to start postgres container: %w", err)
			return
		}

		host, err := container.Host(ctx)
		if err != nil {
			containerErr = err
			return
		}
		port, err := container.MappedPort(ctx, "5432/tcp")
		if err != nil {
			containerErr = err
			return
		}
		containerURL = fmt.Sprintf("postgres://content:pwd@%s:%s/content_test?sslmode=disable", host, port.Port())
	})

	if containerErr != nil {
		t.Skipf("No test database available: %v", containerErr)
	}
	return containerURL
}

// New connects to the test database and applies the embedded migrations
func New(t *testing.T) *TestDB {
	t.Helper()

	url := databaseURL(t)

	migrateOnce.Do(func() {
		migrateErr = migrations.Up(url)
	})
	require.NoError(t, migrateErr, "Failed to migrate test database")

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, pool.Ping(ctx), "Failed to ping test database")

	return &TestDB{URL: url, Pool: pool}
}

// Cleanup removes all test data from the database
func (db *TestDB) Cleanup(t *testing.T) {
	t.Helper()
	_, err := db.Pool.Exec(context.Background(), "TRUNCATE content, content_like, content_comment CASCADE")
	require.NoError(t, err, "Failed to truncate tables")
}

// Close closes the database connection
func (db *TestDB) Close() {
	db.Pool.Close()
}

// RunTest runs a test against a clean, migrated database
func RunTest(t *testing.T, testFunc func(t *testing.T, db *TestDB)) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	db := New(t)
	defer db.Close()

	db.Cleanup(t)
	testFunc(t, db)
}
