// Package testdb provisions throwaway Postgres instances for integration
// tests. Tests built on it skip themselves in -short mode and when Docker is
// not available.
package testdb

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database"
)

const (
	dbName = "senpaibot_test"
	dbUser = "senpaibot"
	dbPass = "senpaibot"
)

// New starts a disposable Postgres container, initializes the schema and
// returns a connected DB. Container and connections are torn down with the
// test.
func New(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	var container *postgres.PostgresContainer
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Skipf("skipping integration test, container start panicked: %v", r)
			}
		}()
		container, err = postgres.Run(ctx,
			"postgres:15-alpine",
			postgres.WithDatabase(dbName),
			postgres.WithUsername(dbUser),
			postgres.WithPassword(dbPass),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
	}()
	if err != nil {
		t.Skipf("skipping integration test, container start failed: %v", err)
	}
	if container == nil {
		t.Skip("skipping integration test, no container")
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to resolve container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to resolve container port: %v", err)
	}

	db, err := database.New(ctx, database.DBConfig{
		Host:     host,
		Port:     port.Int(),
		User:     dbUser,
		Password: dbPass,
		Database: dbName,
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(db.Close)

	if err := db.InitializeSchema(ctx); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}
	return db
}

// Reset truncates the application tables and re-seeds the rank ladder so test
// groups sharing one container start from a clean slate.
func Reset(t *testing.T, db *database.DB) {
	t.Helper()
	ctx := context.Background()
	if err := db.ResetAppTables(ctx); err != nil {
		t.Fatalf("failed to reset tables: %v", err)
	}
	if err := db.InitializeSchema(ctx); err != nil {
		t.Fatalf("failed to re-seed schema: %v", err)
	}
}
