package introspect

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poolhaus/fantasy-pool/internal/domain/user"
	"github.com/poolhaus/fantasy-pool/internal/platform/logging"
	"github.com/poolhaus/fantasy-pool/internal/usecase"
)

func TestVerifyAccessToken_ActiveToken(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/introspect" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"active":true,"user_id":"user-9","email":"pat@example.com","display_name":"Pat"}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL, "/oauth/introspect", logging.NewNop())

	principal, err := client.VerifyAccessToken(context.Background(), "valid-token")
	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}
	want := user.Principal{UserID: "user-9", Email: "pat@example.com", DisplayName: "Pat"}
	if principal != want {
		t.Fatalf("unexpected principal: got=%+v want=%+v", principal, want)
	}
}

func TestVerifyAccessToken_CachesVerifiedPrincipals(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"active":true,"user_id":"user-9"}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL, "/oauth/introspect", logging.NewNop())

	for i := 0; i < 3; i++ {
		if _, err := client.VerifyAccessToken(context.Background(), "hot-token"); err != nil {
			t.Fatalf("VerifyAccessToken call %d: %v", i+1, err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("introspection endpoint called %d times, want 1", got)
	}

	// A different token is a cache miss.
	if _, err := client.VerifyAccessToken(context.Background(), "other-token"); err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("introspection endpoint called %d times, want 2", got)
	}
}

func TestVerifyAccessToken_Rejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		status   int
		body     string
		wantAuth bool
	}{
		{"denied by account service", http.StatusUnauthorized, "", true},
		{"forbidden", http.StatusForbidden, "", true},
		{"inactive token", http.StatusOK, `{"active":false}`, true},
		{"missing user id", http.StatusOK, `{"active":true,"user_id":"  "}`, false},
		{"backend error", http.StatusBadGateway, "oops", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client := NewClient(server.Client(), server.URL, "/oauth/introspect", logging.NewNop())

			_, err := client.VerifyAccessToken(context.Background(), "some-token")
			if err == nil {
				t.Fatal("expected verification to fail")
			}
			if got := errors.Is(err, usecase.ErrUnauthorized); got != tc.wantAuth {
				t.Fatalf("ErrUnauthorized mismatch: got=%t want=%t (err=%v)", got, tc.wantAuth, err)
			}
		})
	}
}

func TestVerifyAccessToken_BlankToken(t *testing.T) {
	t.Parallel()

	client := NewClient(nil, "http://127.0.0.1:0", "/oauth/introspect", logging.NewNop())

	_, err := client.VerifyAccessToken(context.Background(), "   ")
	if !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for blank token, got %v", err)
	}
}

func TestPrincipalCache_ExpiryAndEviction(t *testing.T) {
	t.Parallel()

	cache := newPrincipalCache(time.Millisecond, 2)
	cache.Set("a", user.Principal{UserID: "user-a"})
	if _, ok := cache.Get("a"); !ok {
		t.Fatal("fresh entry missing")
	}

	time.Sleep(5 * time.Millisecond)
	if _, ok := cache.Get("a"); ok {
		t.Fatal("expired entry still served")
	}

	// At capacity the expired entries go first, then an arbitrary one.
	cache = newPrincipalCache(time.Minute, 2)
	cache.Set("a", user.Principal{UserID: "user-a"})
	cache.Set("b", user.Principal{UserID: "user-b"})
	cache.Set("c", user.Principal{UserID: "user-c"})
	if len(cache.entries) != 2 {
		t.Fatalf("cache over capacity: %d entries", len(cache.entries))
	}
	if _, ok := cache.Get("c"); !ok {
		t.Fatal("latest entry evicted")
	}
}

func TestBuildURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		base, path, want string
	}{
		{"https://accounts.example.com/", "/oauth/introspect", "https://accounts.example.com/oauth/introspect"},
		{"https://accounts.example.com", "oauth/introspect", "https://accounts.example.com/oauth/introspect"},
		{"https://accounts.example.com", "", "https://accounts.example.com"},
		{"https://accounts.example.com", "https://override.example.com/check", "https://override.example.com/check"},
	}
	for _, tc := range cases {
		if got := buildURL(tc.base, tc.path); got != tc.want {
			t.Fatalf("buildURL(%q, %q): got=%q want=%q", tc.base, tc.path, got, tc.want)
		}
	}
}
