// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"fotoproof/internal/database"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "fotoproof")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "fotoproof")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanUsers removes test users by email. Call in t.Cleanup().
func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM users WHERE email = $1", email)
	}
}

// cleanCustomers removes test customers by code. Grants and their rows
// cascade. Call in t.Cleanup().
func cleanCustomers(t *testing.T, db *sql.DB, codes ...string) {
	t.Helper()
	for _, code := range codes {
		db.Exec("DELETE FROM customers WHERE code = $1", code)
	}
}

// cleanCategories removes test categories by path. Call in t.Cleanup().
func cleanCategories(t *testing.T, db *sql.DB, paths ...string) {
	t.Helper()
	for _, path := range paths {
		db.Exec("DELETE FROM categories WHERE path = $1", path)
	}
}

// cleanOrders removes test orders (and their items, via cascade) by
// customer code. Call in t.Cleanup().
func cleanOrders(t *testing.T, db *sql.DB, customerCodes ...string) {
	t.Helper()
	for _, code := range customerCodes {
		db.Exec("DELETE FROM orders WHERE customer_code = $1", code)
	}
}
