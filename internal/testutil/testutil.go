// Package testutil provides shared infrastructure helpers for tests that
// need real Redis or Postgres. Tests skip when the backing service is not
// reachable unless TEST_REQUIRE_INFRA forces a failure instead.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	// pgx stdlib driver for database/sql in tests.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/pesaflow/qbo-ui-api/internal/migrate"
)

// TestingTB is the subset of *testing.T these helpers need.
type TestingTB interface {
	Helper()
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Skipf(format string, args ...any)
	Cleanup(func())
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireInfra() bool {
	v := strings.ToLower(os.Getenv("TEST_REQUIRE_INFRA"))
	return v == "1" || v == "true" || v == "yes"
}

// SetupTestRedis returns a Redis client for tests, flushing the configured
// test database first. Skips when Redis is unreachable.
func SetupTestRedis(t TestingTB) *redis.Client {
	t.Helper()

	addr := envOrDefault("TEST_REDIS_ADDR", "localhost:6379")
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 9})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if requireInfra() {
			t.Fatalf("redis required but unreachable at %s: %v", addr, err)
		}
		t.Skipf("redis not available at %s: %v", addr, err)
		return nil
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("flush test redis db: %v", err)
	}

	t.Cleanup(func() { _ = client.Close() })
	return client
}

// SetupTestDB returns a migrated, cleaned Postgres handle for tests. Skips
// when the database is unreachable.
func SetupTestDB(t TestingTB) *sql.DB {
	t.Helper()

	host := envOrDefault("TEST_DB_HOST", "localhost")
	port := envOrDefault("TEST_DB_PORT", "55432")
	user := envOrDefault("TEST_DB_USER", "pesaflow")
	password := envOrDefault("TEST_DB_PASSWORD", "pesaflow")
	name := envOrDefault("TEST_DB_NAME", "pesaflow")

	dsn := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		user, password, net.JoinHostPort(host, port), name)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatal("open test database:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		if requireInfra() {
			t.Fatalf("postgres required but unreachable at %s:%s: %v", host, port, pingErr)
		}
		t.Skipf("postgres not available at %s:%s: %v", host, port, pingErr)
		return nil
	}

	if migrateErr := migrate.Run(ctx, db); migrateErr != nil {
		t.Fatal("run migrations:", migrateErr)
	}
	if _, cleanErr := db.ExecContext(ctx, "DELETE FROM callback_exchanges"); cleanErr != nil {
		t.Fatal("clean callback_exchanges:", cleanErr)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}
