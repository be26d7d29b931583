package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/poolhaus/fantasy-pool/internal/domain/user"
	"github.com/poolhaus/fantasy-pool/internal/usecase"
)

type stubVerifier struct {
	principal user.Principal
	err       error
	lastToken string
}

func (v *stubVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	v.lastToken = token
	if v.err != nil {
		return user.Principal{}, v.err
	}
	return v.principal, nil
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	verifier := &stubVerifier{principal: user.Principal{UserID: "user-1"}}

	var gotPrincipal user.Principal
	var principalPresent bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPrincipal, principalPresent = principalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireAuth(verifier, next)

	cases := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"empty token", "Bearer   ", http.StatusUnauthorized},
		{"valid bearer", "Bearer token-123", http.StatusNoContent},
		{"case-insensitive scheme", "bearer token-123", http.StatusNoContent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			principalPresent = false
			req := httptest.NewRequest(http.MethodGet, "/v1/pools/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("unexpected status: got=%d want=%d", rec.Code, tc.wantStatus)
			}
			if tc.wantStatus == http.StatusNoContent {
				if !principalPresent || gotPrincipal.UserID != "user-1" {
					t.Fatalf("principal not propagated: present=%t principal=%+v", principalPresent, gotPrincipal)
				}
				if verifier.lastToken != "token-123" {
					t.Fatalf("unexpected token passed to verifier: %q", verifier.lastToken)
				}
			}
		})
	}
}

func TestRequireAuth_VerifierErrorMapped(t *testing.T) {
	t.Parallel()

	verifier := &stubVerifier{err: fmt.Errorf("%w: token expired", usecase.ErrUnauthorized)}
	handler := RequireAuth(verifier, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("next handler reached with a bad token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/pools/me", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusUnauthorized)
	}
}

func TestCORS(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("wildcard", func(t *testing.T) {
		handler := CORS([]string{"*"}, next)
		req := httptest.NewRequest(http.MethodGet, "/v1/pools/pool-1", nil)
		req.Header.Set("Origin", "https://pool.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Fatalf("unexpected allow origin: %q", got)
		}
	})

	t.Run("allow-listed origin echoed with vary", func(t *testing.T) {
		handler := CORS([]string{"https://pool.example.com"}, next)
		req := httptest.NewRequest(http.MethodGet, "/v1/pools/pool-1", nil)
		req.Header.Set("Origin", "https://pool.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://pool.example.com" {
			t.Fatalf("unexpected allow origin: %q", got)
		}
		if got := rec.Header().Get("Vary"); got != "Origin" {
			t.Fatalf("missing Vary header: %q", got)
		}
	})

	t.Run("unlisted origin gets no cors headers", func(t *testing.T) {
		handler := CORS([]string{"https://pool.example.com"}, next)
		req := httptest.NewRequest(http.MethodGet, "/v1/pools/pool-1", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Fatalf("unexpected allow origin: %q", got)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("request blocked instead of passed through: %d", rec.Code)
		}
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		handler := CORS([]string{"*"}, next)
		req := httptest.NewRequest(http.MethodOptions, "/v1/pools/pool-1", nil)
		req.Header.Set("Origin", "https://pool.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("unexpected preflight status: got=%d want=%d", rec.Code, http.StatusNoContent)
		}
		if got := rec.Header().Get("Access-Control-Allow-Methods"); got == "" {
			t.Fatal("preflight missing allow-methods header")
		}
	})

	t.Run("no origin header passes through untouched", func(t *testing.T) {
		handler := CORS([]string{"*"}, next)
		req := httptest.NewRequest(http.MethodGet, "/v1/pools/pool-1", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Fatalf("cors headers on same-origin request: %q", got)
		}
	})
}

func TestShouldTraceRequest(t *testing.T) {
	t.Parallel()

	for path, want := range map[string]bool{
		"/healthz":         false,
		"/readyz":          false,
		"/v1/pools/pool-1": true,
		"/HEALTHZ":         false,
	} {
		if got := shouldTraceRequest(path); got != want {
			t.Fatalf("shouldTraceRequest(%q): got=%t want=%t", path, got, want)
		}
	}
}
