// Package castgen calls the cast profile generation service. It produces
// normalized contestant profiles from a free-form season hint.
package castgen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/poolhaus/fantasy-pool/internal/platform/logging"
	"github.com/poolhaus/fantasy-pool/internal/platform/resilience"
	"github.com/poolhaus/fantasy-pool/internal/usecase"
)

const (
	defaultBaseURL    = "https://api.castgen.dev/v1"
	maxProfilesPerReq = 24
)

var errCastgenTransient = crerr.New("castgen transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

var _ usecase.ProfileGenerator = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 30 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)
	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		maxRetries:     maxRetries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type generateRequest struct {
	SeasonHint string `json:"season_hint"`
	Count      int    `json:"count"`
}

type generateResponse struct {
	Profiles []profilePayload `json:"profiles"`
}

type profilePayload struct {
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Hometown   string `json:"hometown"`
	Occupation string `json:"occupation"`
	Bio        string `json:"bio"`
	PhotoURL   string `json:"photo_url"`
}

func (c *Client) GenerateProfiles(ctx context.Context, seasonHint string, count int) ([]usecase.CastProfile, error) {
	if count <= 0 {
		return nil, fmt.Errorf("profile count must be greater than zero")
	}
	if count > maxProfilesPerReq {
		count = maxProfilesPerReq
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "castgen circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: profile generator is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	body, err := sonic.Marshal(generateRequest{
		SeasonHint: strings.TrimSpace(seasonHint),
		Count:      count,
	})
	if err != nil {
		return nil, fmt.Errorf("encode generate request: %w", err)
	}

	raw, reqErr := c.executeRequest(ctx, c.baseURL+"/profiles/generate", body)
	if c.circuitEnabled {
		if reqErr != nil && crerr.Is(reqErr, errCastgenTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	if reqErr != nil {
		return nil, reqErr
	}

	var decoded generateResponse
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode generator payload: %w", err)
	}

	profiles := make([]usecase.CastProfile, 0, len(decoded.Profiles))
	for _, item := range decoded.Profiles {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		profiles = append(profiles, usecase.CastProfile{
			Name:       name,
			Age:        item.Age,
			Hometown:   strings.TrimSpace(item.Hometown),
			Occupation: strings.TrimSpace(item.Occupation),
			Bio:        item.Bio,
			PhotoURL:   strings.TrimSpace(item.PhotoURL),
		})
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("generator returned no usable profiles")
	}
	return profiles, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string, body []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("content-type", "application/json")
		req.Header.Set("accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errCastgenTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errCastgenTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: generator status=%d", errCastgenTransient, resp.StatusCode)
			} else {
				return nil, fmt.Errorf("generator status=%d", resp.StatusCode)
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("generator request failed")
	}
	c.logger.WarnContext(ctx, "castgen request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
