// Package showfeed cross-checks submitted week results against public
// episode coverage. Several sources are scraped in parallel and combined
// with a reliability-weighted majority per field.
package showfeed

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"

	"github.com/poolhaus/fantasy-pool/internal/platform/logging"
	"github.com/poolhaus/fantasy-pool/internal/usecase"
)

const (
	defaultFetchTimeout = 10 * time.Second
	maxResponseBytes    = 4 << 20

	// Consensus below this confidence is not trusted for auto-verification.
	minTrustedConfidence = 0.5
)

var errSourceUnavailable = crerr.New("show feed source unavailable")

// Source is one scrapeable episode recap site. Selectors maps week fields
// ("hoh_winner", "pov_winner", "evicted", ...) to CSS selectors on the recap
// page. Weight reflects observed accuracy and sets the source's vote share.
type Source struct {
	Name      string
	URL       string // printf template taking season then week
	Weight    float64
	Selectors map[string]string
}

func DefaultSources() []Source {
	return []Source{
		{
			Name:   "bigbrothernetwork",
			URL:    "https://bigbrothernetwork.com/season-%d/week-%d",
			Weight: 0.98,
			Selectors: map[string]string{
				"hoh_winner": ".week-summary .hoh-winner",
				"pov_winner": ".week-summary .pov-winner",
				"evicted":    ".week-summary .evicted",
			},
		},
		{
			Name:   "realityrecaps",
			URL:    "https://realityrecaps.example/bb%d/wk%d",
			Weight: 0.82,
			Selectors: map[string]string{
				"hoh_winner": "table.results td[data-field=hoh]",
				"pov_winner": "table.results td[data-field=pov]",
				"evicted":    "table.results td[data-field=evicted]",
			},
		},
		{
			Name:   "fanwiki",
			URL:    "https://fanwiki.example/bigbrother/%d/week/%d",
			Weight: 0.65,
			Selectors: map[string]string{
				"hoh_winner": ".infobox .hoh",
				"pov_winner": ".infobox .veto",
				"evicted":    ".infobox .evicted",
			},
		},
	}
}

type ClientConfig struct {
	Sources      []Source
	FetchTimeout time.Duration
	MaxParallel  int
	Logger       *logging.Logger
}

type Client struct {
	sources      []Source
	fetchTimeout time.Duration
	maxParallel  int
	logger       *logging.Logger
	httpClient   *fasthttp.Client
}

var _ usecase.ShowDataVerifier = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	sources := cfg.Sources
	if len(sources) == 0 {
		sources = DefaultSources()
	}

	fetchTimeout := cfg.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}

	maxParallel := cfg.MaxParallel
	if maxParallel <= 0 {
		maxParallel = len(sources)
	}

	return &Client{
		sources:      sources,
		fetchTimeout: fetchTimeout,
		maxParallel:  maxParallel,
		logger:       logger,
		httpClient: &fasthttp.Client{
			ReadTimeout:         fetchTimeout,
			WriteTimeout:        fetchTimeout,
			MaxResponseBodySize: maxResponseBytes,
		},
	}
}

type sourceResult struct {
	source Source
	fields map[string]string
}

// VerifyWeek scrapes every configured source in parallel and compares the
// submitted values against the weighted consensus per field.
func (c *Client) VerifyWeek(ctx context.Context, season, week int, submitted map[string]string) (usecase.WeekDataReport, error) {
	if season <= 0 || week <= 0 {
		return usecase.WeekDataReport{}, fmt.Errorf("season and week must be greater than zero")
	}

	var mu sync.Mutex
	results := make([]sourceResult, 0, len(c.sources))

	fetchers := pool.New().WithMaxGoroutines(c.maxParallel)
	for _, source := range c.sources {
		source := source
		fetchers.Go(func() {
			fields, err := c.scrapeSource(ctx, source, season, week)
			if err != nil {
				c.logger.WarnContext(ctx, "show feed source failed",
					"source", source.Name,
					"season", season,
					"week", week,
					"error", err,
				)
				return
			}
			mu.Lock()
			results = append(results, sourceResult{source: source, fields: fields})
			mu.Unlock()
		})
	}
	fetchers.Wait()

	if len(results) == 0 {
		return usecase.WeekDataReport{
			ManualEntryRecommended: true,
			Warning:                "no episode sources were reachable",
		}, nil
	}

	report := usecase.WeekDataReport{SourcesConsulted: len(results)}
	lowConfidence := false
	for field, submittedValue := range submitted {
		check := consensusFor(field, submittedValue, results)
		if check.Consensus == "" || check.Confidence < minTrustedConfidence {
			lowConfidence = true
		}
		report.Checks = append(report.Checks, check)
	}
	if lowConfidence {
		report.ManualEntryRecommended = true
		report.Warning = "sources disagree on one or more fields"
	}
	return report, nil
}

func (c *Client) scrapeSource(ctx context.Context, source Source, season, week int) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf(source.URL, season, week))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("accept", "text/html")

	if err := c.httpClient.DoTimeout(req, resp, c.fetchTimeout); err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", errSourceUnavailable, source.Name, err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("%w: %s status=%d", errSourceUnavailable, source.Name, resp.StatusCode())
	}

	// The response buffer is released with resp, so copy the body out
	// through a pooled buffer before parsing.
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.Write(resp.Body()); err != nil {
		return nil, fmt.Errorf("buffer %s response: %w", source.Name, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("parse %s page: %w", source.Name, err)
	}

	fields := make(map[string]string, len(source.Selectors))
	for field, selector := range source.Selectors {
		value := strings.TrimSpace(doc.Find(selector).First().Text())
		if value != "" {
			fields[field] = value
		}
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %s page had no recognizable fields", errSourceUnavailable, source.Name)
	}
	return fields, nil
}

// consensusFor tallies reliability-weighted votes for one field and compares
// the submitted value against the winner.
func consensusFor(field, submitted string, results []sourceResult) usecase.WeekFieldCheck {
	votes := make(map[string]float64)
	display := make(map[string]string)
	var totalWeight float64

	for _, result := range results {
		value, ok := result.fields[field]
		if !ok {
			continue
		}
		key := normalizeValue(value)
		votes[key] += result.source.Weight
		totalWeight += result.source.Weight
		if _, seen := display[key]; !seen {
			display[key] = value
		}
	}

	check := usecase.WeekFieldCheck{
		Field:     field,
		Submitted: submitted,
	}
	if totalWeight == 0 {
		return check
	}

	var bestKey string
	var bestWeight float64
	for key, weight := range votes {
		if weight > bestWeight || (weight == bestWeight && key < bestKey) {
			bestKey = key
			bestWeight = weight
		}
	}

	check.Consensus = display[bestKey]
	check.Confidence = bestWeight / totalWeight
	check.Agrees = normalizeValue(submitted) == bestKey
	return check
}

func normalizeValue(value string) string {
	return strings.ToLower(strings.Join(strings.Fields(value), " "))
}
