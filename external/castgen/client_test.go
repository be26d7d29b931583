package castgen

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/poolhaus/fantasy-pool/internal/platform/logging"
	"github.com/poolhaus/fantasy-pool/internal/platform/resilience"
	"github.com/poolhaus/fantasy-pool/internal/usecase"
)

const generatorPayload = `{"profiles":[
	{"name":"  Alice Smith ","age":27,"hometown":" Boise, ID ","occupation":"Nurse","bio":"night shift","photo_url":" https://cdn.example/alice.jpg "},
	{"name":"","age":31,"hometown":"nowhere","occupation":"ghost","bio":"","photo_url":""},
	{"name":"Bruno Diaz","age":33,"hometown":"Tampa, FL","occupation":"Bartender","bio":"","photo_url":""}
]}`

func newTestClient(t *testing.T, serverURL string, maxRetries int, breaker resilience.CircuitBreakerConfig) *Client {
	t.Helper()
	return NewClient(ClientConfig{
		BaseURL:        serverURL,
		APIKey:         "test-key",
		Timeout:        5 * time.Second,
		MaxRetries:     maxRetries,
		Logger:         logging.NewNop(),
		CircuitBreaker: breaker,
	})
}

func TestGenerateProfiles_NormalizesPayload(t *testing.T) {
	t.Parallel()

	var gotAuth, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(generatorPayload))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0, resilience.CircuitBreakerConfig{})

	profiles, err := client.GenerateProfiles(context.Background(), " season 27 ", 3)
	if err != nil {
		t.Fatalf("GenerateProfiles: %v", err)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("unexpected authorization header: %q", gotAuth)
	}
	if gotPath != "/profiles/generate" {
		t.Fatalf("unexpected request path: %q", gotPath)
	}

	// The blank-name profile is dropped, the rest are trimmed.
	if len(profiles) != 2 {
		t.Fatalf("unexpected profile count: got=%d want=2", len(profiles))
	}
	first := profiles[0]
	if first.Name != "Alice Smith" || first.Hometown != "Boise, ID" || first.PhotoURL != "https://cdn.example/alice.jpg" {
		t.Fatalf("profile not normalized: %+v", first)
	}
	if first.Age != 27 || first.Occupation != "Nurse" {
		t.Fatalf("profile fields lost: %+v", first)
	}
}

func TestGenerateProfiles_CapsCount(t *testing.T) {
	t.Parallel()

	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		_, _ = w.Write([]byte(generatorPayload))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0, resilience.CircuitBreakerConfig{})

	if _, err := client.GenerateProfiles(context.Background(), "bb27", 500); err != nil {
		t.Fatalf("GenerateProfiles: %v", err)
	}
	if !strings.Contains(gotBody, `"count":24`) {
		t.Fatalf("count not capped at the per-request maximum: body=%s", gotBody)
	}

	if _, err := client.GenerateProfiles(context.Background(), "bb27", 0); err == nil {
		t.Fatal("expected error for non-positive count")
	}
}

func TestGenerateProfiles_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(generatorPayload))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 1, resilience.CircuitBreakerConfig{})

	profiles, err := client.GenerateProfiles(context.Background(), "bb27", 3)
	if err != nil {
		t.Fatalf("GenerateProfiles: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("unexpected profile count after retry: %d", len(profiles))
	}
	if got := attempts.Load(); got != 2 {
		t.Fatalf("unexpected attempt count: got=%d want=2", got)
	}
}

func TestGenerateProfiles_ClientErrorsNeverRetry(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 3, resilience.CircuitBreakerConfig{})

	_, err := client.GenerateProfiles(context.Background(), "bb27", 3)
	if err == nil {
		t.Fatal("expected error for 4xx response")
	}
	if crerr.Is(err, errCastgenTransient) {
		t.Fatalf("4xx should not be marked transient: %v", err)
	}
	if got := attempts.Load(); got != 1 {
		t.Fatalf("unexpected attempt count: got=%d want=1", got)
	}
}

func TestGenerateProfiles_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	for i := 0; i < 2; i++ {
		if _, err := client.GenerateProfiles(context.Background(), "bb27", 3); err == nil {
			t.Fatal("expected failure from 500 response")
		}
	}
	if got := attempts.Load(); got != 2 {
		t.Fatalf("unexpected attempt count before trip: got=%d want=2", got)
	}

	_, err := client.GenerateProfiles(context.Background(), "bb27", 3)
	if !crerr.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency-unavailable from open circuit, got %v", err)
	}
	if got := attempts.Load(); got != 2 {
		t.Fatalf("open circuit still reached the server: attempts=%d", got)
	}
}

func TestGenerateProfiles_NoUsableProfiles(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"profiles":[{"name":"   "}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0, resilience.CircuitBreakerConfig{})

	if _, err := client.GenerateProfiles(context.Background(), "bb27", 3); err == nil {
		t.Fatal("expected error when every profile is unusable")
	}
}
