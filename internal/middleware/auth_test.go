package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"fotoproof/internal/models"
)

// ctxWithPrincipal returns a context carrying the given principal using
// the same context key the middleware uses. This simulates the state
// after LoadSession has run without needing a real Valkey store.
func ctxWithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

func adminPrincipal() models.Principal {
	return models.Principal{Kind: models.PrincipalAdmin, UserID: uuid.New(), Name: "Test Admin"}
}

func customerPrincipal() models.Principal {
	return models.Principal{Kind: models.PrincipalCustomer, CustomerCode: "4821", Name: "Maria"}
}

// okHandler is a simple handler that records whether it was invoked.
func okHandler() (http.Handler, *bool) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return h, &called
}

func TestPrincipalFromCtx(t *testing.T) {
	t.Run("returns principal when present", func(t *testing.T) {
		want := customerPrincipal()
		ctx := ctxWithPrincipal(context.Background(), want)

		got, ok := PrincipalFromCtx(ctx)
		if !ok {
			t.Fatal("expected principal, got none")
		}
		if got.CustomerCode != want.CustomerCode {
			t.Errorf("code: got %q, want %q", got.CustomerCode, want.CustomerCode)
		}
	})

	t.Run("reports absence", func(t *testing.T) {
		if _, ok := PrincipalFromCtx(context.Background()); ok {
			t.Error("expected no principal in empty context")
		}
	})

	t.Run("ignores wrong type in context", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), PrincipalKey, "not-a-principal")
		if _, ok := PrincipalFromCtx(ctx); ok {
			t.Error("expected no principal for wrong type")
		}
	})
}

func TestRequirePrincipal(t *testing.T) {
	t.Run("rejects anonymous requests", func(t *testing.T) {
		inner, called := okHandler()
		handler := RequirePrincipal(inner)

		req := httptest.NewRequest(http.MethodGet, "/api/gallery/categories", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if *called {
			t.Error("next handler should NOT have been called")
		}
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want 401", rr.Code)
		}
	})

	t.Run("passes through any principal", func(t *testing.T) {
		for _, p := range []models.Principal{adminPrincipal(), customerPrincipal()} {
			inner, called := okHandler()
			handler := RequirePrincipal(inner)

			req := httptest.NewRequest(http.MethodGet, "/api/gallery/categories", nil)
			req = req.WithContext(ctxWithPrincipal(req.Context(), p))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if !*called {
				t.Errorf("next handler should have been called for %s", p.Kind)
			}
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name           string
		principal      *models.Principal
		wantCode       int
		wantNextCalled bool
	}{
		{"anonymous gets 401", nil, http.StatusUnauthorized, false},
		{"customer gets 403", ptr(customerPrincipal()), http.StatusForbidden, false},
		{"admin passes", ptr(adminPrincipal()), http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner, called := okHandler()
			handler := RequireAdmin(inner)

			req := httptest.NewRequest(http.MethodGet, "/api/admin/customers", nil)
			if tt.principal != nil {
				req = req.WithContext(ctxWithPrincipal(req.Context(), *tt.principal))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if *called != tt.wantNextCalled {
				t.Errorf("next handler called: got %v, want %v", *called, tt.wantNextCalled)
			}
			if rr.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantCode)
			}
		})
	}
}

func TestRequireCustomer(t *testing.T) {
	tests := []struct {
		name           string
		principal      *models.Principal
		wantCode       int
		wantNextCalled bool
	}{
		{"anonymous gets 401", nil, http.StatusUnauthorized, false},
		{"admin gets 403", ptr(adminPrincipal()), http.StatusForbidden, false},
		{"customer passes", ptr(customerPrincipal()), http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner, called := okHandler()
			handler := RequireCustomer(inner)

			req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
			if tt.principal != nil {
				req = req.WithContext(ctxWithPrincipal(req.Context(), *tt.principal))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if *called != tt.wantNextCalled {
				t.Errorf("next handler called: got %v, want %v", *called, tt.wantNextCalled)
			}
			if rr.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantCode)
			}
		})
	}
}

func ptr(p models.Principal) *models.Principal { return &p }
