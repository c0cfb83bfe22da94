//go:build testcontainers
// +build testcontainers

package integration

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/indieinfra/gallery/config"
	"github.com/indieinfra/gallery/storage/media"
	"github.com/indieinfra/gallery/storage/upload"
)

func newPostgresStore(t *testing.T) media.Store {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	t.Cleanup(func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	store, err := media.NewSQLMediaStore(&config.SQLMediaStrategy{
		DatabaseURL: connStr,
		TablePrefix: stringPtr("test"),
	})
	if err != nil {
		t.Fatalf("failed to create postgres media store: %v", err)
	}

	return store
}

func newMySQLStore(t *testing.T) media.Store {
	t.Helper()

	ctx := context.Background()

	mysqlContainer, err := mysql.Run(ctx,
		"mysql:8.0",
		mysql.WithDatabase("testdb"),
		mysql.WithUsername("testuser"),
		mysql.WithPassword("testpass"),
	)
	if err != nil {
		t.Fatalf("failed to start mysql container: %v", err)
	}

	t.Cleanup(func() {
		if err := mysqlContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate mysql container: %v", err)
		}
	})

	connStr, err := mysqlContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	store, err := media.NewSQLMediaStore(&config.SQLMediaStrategy{
		Driver:      "mysql",
		DSN:         connStr,
		TablePrefix: stringPtr("test"),
	})
	if err != nil {
		t.Fatalf("failed to create mysql media store: %v", err)
	}

	return store
}

func TestPostgres_MediaStoreContract(t *testing.T) {
	store := newPostgresStore(t)
	t.Cleanup(func() { _ = store.Close() })

	exerciseMediaStore(t, store)
}

func TestPostgres_UploadFlow(t *testing.T) {
	h := newMux(newState(t, newPostgresStore(t), upload.NoopUploader{}))

	postImage(t, h, "pg.png", "image/png", []byte("png"))
	postImage(t, h, "pg.gif", "image/gif", []byte("gif"))

	records := listMedia(t, h, "image")
	if len(records) != 2 {
		t.Fatalf("expected two records, got %+v", records)
	}
	if !strings.HasSuffix(records[0].FileURL, ".png") || !strings.HasSuffix(records[1].FileURL, ".gif") {
		t.Fatalf("records out of order: %+v", records)
	}
}

func TestMySQL_MediaStoreContract(t *testing.T) {
	store := newMySQLStore(t)
	t.Cleanup(func() { _ = store.Close() })

	exerciseMediaStore(t, store)
}

func TestMySQL_UploadFlow(t *testing.T) {
	h := newMux(newState(t, newMySQLStore(t), upload.NoopUploader{}))

	postImage(t, h, "my.jpg", "image/jpeg", []byte("jpg"))

	if page := seePage(t, h); !strings.Contains(page, "https://noop.example.org/") {
		t.Fatalf("expected see page to list the uploaded image")
	}
}
