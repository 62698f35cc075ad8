// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL or Valkey are
// unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"fotoproof/internal/cache"
	"fotoproof/internal/config"
	"fotoproof/internal/database"
	"fotoproof/internal/mail"
	"fotoproof/internal/middleware"
	"fotoproof/internal/mirror"
	"fotoproof/internal/models"
	"fotoproof/internal/orders"
	"fotoproof/internal/resolver"
	"fotoproof/internal/session"
	"fotoproof/internal/storage"
	"fotoproof/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "fotoproof")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "fotoproof")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		// Clean up test session and cache keys.
		for _, pattern := range []string{"session:*", "value:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// fakeResizer writes a marker file instead of invoking libvips.
type fakeResizer struct{}

func (fakeResizer) Thumbnail(src, dst string, width int) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, []byte("thumb"), 0o644)
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB         *sql.DB
	Valkey     *redis.Client
	Layout     *storage.Layout
	Sessions   *session.Store
	Users      *store.UserStore
	Customers  *store.CustomerStore
	Access     *store.AccessStore
	Categories *store.CategoryStore
	OrderStore *store.OrderStore
	Resolver   *resolver.Resolver
	Mirror     *mirror.Mirror
	Values     *cache.ValueCache
	Service    *orders.Service

	Auth    *Auth
	Gallery *Gallery
	Admin   *Admin
	Orders  *Orders
}

// newTestEnv creates a complete test environment over a temporary
// storage root. imageFiles are seeded under the categories root.
func newTestEnv(t *testing.T, imageFiles ...string) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	layout, err := storage.NewLayout(t.TempDir())
	if err != nil {
		t.Fatalf("storage.NewLayout: %v", err)
	}
	for _, f := range imageFiles {
		full := filepath.Join(layout.CategoriesRoot(), filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte("jpeg bytes"), 0o644); err != nil {
			t.Fatalf("write image: %v", err)
		}
	}

	sessions := session.NewStore(vk, false)
	users := store.NewUserStore(db)
	customers := store.NewCustomerStore(db)
	access := store.NewAccessStore(db)
	categories := store.NewCategoryStore(db)
	orderStore := store.NewOrderStore(db)

	res := resolver.New(categories, access, customers)
	m := mirror.New(layout, fakeResizer{}, categories, false)
	values := cache.NewValueCache(vk, time.Minute)
	mailer := mail.New(&config.Config{})
	service := orders.NewService(orderStore, customers, categories, res, orders.NewFolders(layout), mailer, nil)

	return &testEnv{
		DB:         db,
		Valkey:     vk,
		Layout:     layout,
		Sessions:   sessions,
		Users:      users,
		Customers:  customers,
		Access:     access,
		Categories: categories,
		OrderStore: orderStore,
		Resolver:   res,
		Mirror:     m,
		Values:     values,
		Service:    service,

		Auth:    NewAuth(sessions, users, customers),
		Gallery: NewGallery(res, categories, m),
		Admin:   NewAdmin(customers, access, categories, m, layout, values),
		Orders:  NewOrders(service, orderStore),
	}
}

// ctxWithPrincipal places a verified principal on the context the way
// the session middleware does.
func ctxWithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, middleware.PrincipalKey, p)
}

// ctxWithSession places raw session data on the context.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withChiURLParams adds several chi URL parameters given as key, value
// pairs.
func withChiURLParams(r *http.Request, pairs ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(pairs); i += 2 {
		rctx.URLParams.Add(pairs[i], pairs[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// writeTestFile creates a small file, with parent directories.
func writeTestFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte("jpeg bytes"), 0o644)
}

// seedAdminUser creates a back-office user so order processing has a
// valid processed_by reference.
func seedAdminUser(t *testing.T, env *testEnv) uuid.UUID {
	t.Helper()

	email := "handler-admin-" + uuid.NewString()[:8] + "@example.com"
	user, err := env.Users.Create(email, "test password", "Handler Admin")
	if err != nil {
		t.Fatalf("seed admin user: %v", err)
	}
	t.Cleanup(func() { cleanUsers(t, env.DB, email) })
	return user.ID
}

func adminPrincipal() models.Principal {
	return models.Principal{Kind: models.PrincipalAdmin, Name: "Studio Admin"}
}

func customerPrincipal(code, name string) models.Principal {
	return models.Principal{Kind: models.PrincipalCustomer, CustomerCode: code, Name: name}
}

// cleanUsers removes test users by email. Call in t.Cleanup().
func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, e := range emails {
		db.Exec("DELETE FROM users WHERE email = $1", e)
	}
}

// cleanCustomers removes test customers by code.
func cleanCustomers(t *testing.T, db *sql.DB, codes ...string) {
	t.Helper()
	for _, c := range codes {
		db.Exec("DELETE FROM customers WHERE code = $1", c)
	}
}

// cleanCategories removes test categories by path.
func cleanCategories(t *testing.T, db *sql.DB, paths ...string) {
	t.Helper()
	for _, p := range paths {
		db.Exec("DELETE FROM categories WHERE path = $1", p)
	}
}

// cleanOrders removes test orders by customer code.
func cleanOrders(t *testing.T, db *sql.DB, customerCodes ...string) {
	t.Helper()
	for _, c := range customerCodes {
		db.Exec("DELETE FROM orders WHERE customer_code = $1", c)
	}
}
