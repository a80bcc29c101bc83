// Package llama is the DeFiLlama API client: cache-first fetching with
// rate limiting, a circuit breaker, and stale-cache fallback.
package llama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	cb "github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	endpointProtocols = "/protocols"
	endpointRaises    = "/raises"
)

// ErrFetchFailed marks a run-fatal data source failure: the live fetch
// failed and no cache entry, fresh or stale, could stand in for it.
var ErrFetchFailed = errors.New("data source unreachable and no cached payload available")

// Cache is the slice of the cache store the client needs.
type Cache interface {
	Get(key string) ([]byte, bool)
	GetStale(key string) ([]byte, time.Duration, bool)
	Set(key string, payload []byte, ttl time.Duration) error
}

// Options configures a Client.
type Options struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerMinute int
	MaxRetries    int
	CacheTTL      time.Duration
}

// Client talks to the DeFiLlama public API. All reads are cache-first;
// a fetch failure falls back to a stale cache entry with a warning
// before it is surfaced as ErrFetchFailed.
type Client struct {
	opts    Options
	http    *http.Client
	limiter *rate.Limiter
	breaker *cb.CircuitBreaker
	cache   Cache
}

// NewClient builds a client around the given cache store.
func NewClient(opts Options, cache Cache) *Client {
	settings := cb.Settings{Name: "defillama"}
	settings.Interval = 60 * time.Second
	settings.Timeout = 60 * time.Second
	settings.ReadyToTrip = func(counts cb.Counts) bool {
		return counts.ConsecutiveFailures >= 3
	}

	return &Client{
		opts:    opts,
		http:    &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Limit(float64(opts.RatePerMinute)/60.0), opts.RatePerMinute),
		breaker: cb.NewCircuitBreaker(settings),
		cache:   cache,
	}
}

// Protocols returns the full protocol list, served from cache when fresh.
func (c *Client) Protocols(ctx context.Context, useCache bool) ([]Protocol, error) {
	data, err := c.fetch(ctx, endpointProtocols, useCache)
	if err != nil {
		return nil, err
	}
	var protocols []Protocol
	if err := json.Unmarshal(data, &protocols); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", endpointProtocols, err)
	}
	return protocols, nil
}

// Raises returns all disclosed funding rounds, served from cache when fresh.
func (c *Client) Raises(ctx context.Context, useCache bool) ([]Raise, error) {
	data, err := c.fetch(ctx, endpointRaises, useCache)
	if err != nil {
		return nil, err
	}
	var resp RaisesResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", endpointRaises, err)
	}
	return resp.Raises, nil
}

// ProbeResult reports one endpoint's connectivity check.
type ProbeResult struct {
	Endpoint  string `json:"endpoint"`
	Success   bool   `json:"success"`
	Items     int    `json:"items"`
	LatencyMs int    `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// Probe performs one uncached fetch per endpoint and reports the outcome
// without scoring anything.
func (c *Client) Probe(ctx context.Context) []ProbeResult {
	results := make([]ProbeResult, 0, 2)

	start := time.Now()
	protocols, err := c.Protocols(ctx, false)
	result := ProbeResult{
		Endpoint:  endpointProtocols,
		Success:   err == nil,
		Items:     len(protocols),
		LatencyMs: int(time.Since(start).Milliseconds()),
	}
	if err != nil {
		result.Error = err.Error()
	}
	results = append(results, result)

	start = time.Now()
	raises, err := c.Raises(ctx, false)
	result = ProbeResult{
		Endpoint:  endpointRaises,
		Success:   err == nil,
		Items:     len(raises),
		LatencyMs: int(time.Since(start).Milliseconds()),
	}
	if err != nil {
		result.Error = err.Error()
	}
	return append(results, result)
}

func (c *Client) fetch(ctx context.Context, endpoint string, useCache bool) ([]byte, error) {
	if useCache {
		if data, ok := c.cache.Get(endpoint); ok {
			log.Debug().Str("endpoint", endpoint).Msg("Serving cached payload")
			return data, nil
		}
	}

	data, err := c.request(ctx, endpoint)
	if err == nil {
		if useCache {
			if cerr := c.cache.Set(endpoint, data, c.opts.CacheTTL); cerr != nil {
				log.Warn().Str("endpoint", endpoint).Err(cerr).Msg("Failed to cache payload")
			}
		}
		return data, nil
	}

	// Live source down: a stale entry beats no data, but the caller is
	// told. An explicit cache bypass never falls back.
	if !useCache {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, endpoint, err)
	}
	if stale, age, ok := c.cache.GetStale(endpoint); ok {
		log.Warn().Str("endpoint", endpoint).Dur("age", age).Err(err).
			Msg("Fetch failed, falling back to stale cache")
		return stale, nil
	}
	return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, endpoint, err)
}

func (c *Client) request(ctx context.Context, endpoint string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			log.Debug().Str("endpoint", endpoint).Dur("backoff", backoff).
				Int("attempt", attempt).Msg("Retrying fetch")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, err := c.breaker.Execute(func() (interface{}, error) {
			return c.doGet(ctx, endpoint)
		})
		if err == nil {
			return body.([]byte), nil
		}
		lastErr = err
		if errors.Is(err, cb.ErrOpenState) || errors.Is(err, context.Canceled) {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) doGet(ctx context.Context, endpoint string) ([]byte, error) {
	url := c.opts.BaseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "airdroprun/1.0")

	log.Info().Str("url", url).Msg("Fetching")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
