// Package fetch is the outbound HTTP façade: a JSON fetcher with a TTL
// response cache and sliding-window rate limiting toward the primary
// upstream. Expected failures never escape as errors; every call returns
// a Result value.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"animix/internal/metrics"
)

// Result is the outcome of one fetch. Exactly one of Data or Err is
// meaningful depending on OK. Meta is only present on fresh network calls
// that went through rate-limit admission; cached values carry none.
type Result struct {
	OK   bool
	Data json.RawMessage
	Err  string
	Meta *Meta
}

// Meta carries rate-limit admission details for the call.
type Meta struct {
	WaitMS   int64
	Used     int
	Limit    int
	WindowMS int64
}

// Headers renders the admission details as response header pairs so
// handlers can forward upstream budget usage to their own callers.
func (m *Meta) Headers() map[string]string {
	if m == nil {
		return nil
	}
	return map[string]string{
		"X-RateLimit-Used":      strconv.Itoa(m.Used),
		"X-RateLimit-Limit":     strconv.Itoa(m.Limit),
		"X-RateLimit-Window-Ms": strconv.FormatInt(m.WindowMS, 10),
		"X-RateLimit-Wait-Ms":   strconv.FormatInt(m.WaitMS, 10),
	}
}

// Decode unmarshals a successful result's body into v.
func (r Result) Decode(v any) error {
	if !r.OK {
		return fmt.Errorf("fetch: decode failed result: %s", r.Err)
	}
	return json.Unmarshal(r.Data, v)
}

// Options tunes a single call. Zero values fall back to client defaults.
type Options struct {
	CacheKey string // semantic key override; default "METHOD:url"
	TTL      time.Duration
	ErrorTTL time.Duration
	Header   http.Header
}

// Client wraps outbound JSON calls. Construct once and share: the cache
// and limiter it owns are the process-wide singletons.
type Client struct {
	HTTP    *http.Client
	Cache   *Store
	Limiter *Limiter

	// LimitedBase scopes admission control: only URLs under this prefix
	// consume rate-limit slots.
	LimitedBase string

	DefaultTTL      time.Duration
	DefaultErrorTTL time.Duration
}

// NewClient builds a client around the given cache and limiter.
func NewClient(cache *Store, limiter *Limiter, limitedBase string, ttl, errorTTL time.Duration) *Client {
	return &Client{
		HTTP:            &http.Client{Timeout: 30 * time.Second},
		Cache:           cache,
		Limiter:         limiter,
		LimitedBase:     strings.TrimRight(limitedBase, "/"),
		DefaultTTL:      ttl,
		DefaultErrorTTL: errorTTL,
	}
}

// GetJSON fetches url with GET.
func (c *Client) GetJSON(ctx context.Context, url string, opts *Options) Result {
	return c.do(ctx, http.MethodGet, url, nil, opts)
}

// PostJSON sends body as JSON to url with POST.
func (c *Client) PostJSON(ctx context.Context, url string, body any, opts *Options) Result {
	payload, err := json.Marshal(body)
	if err != nil {
		return Result{OK: false, Err: err.Error()}
	}
	return c.do(ctx, http.MethodPost, url, payload, opts)
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, opts *Options) Result {
	if opts == nil {
		opts = &Options{}
	}
	cacheKey := opts.CacheKey
	if cacheKey == "" {
		cacheKey = method + ":" + url
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = c.DefaultTTL
	}
	errorTTL := opts.ErrorTTL
	if errorTTL <= 0 {
		errorTTL = c.DefaultErrorTTL
	}

	// Cache hit returns without side effects: no admission slot consumed.
	if cached, ok := c.Cache.Get(cacheKey); ok {
		metrics.FetchCacheHits.Inc()
		return cached
	}
	metrics.FetchCacheMisses.Inc()

	var meta *Meta
	if c.shouldLimit(url) {
		adm, err := c.Limiter.Acquire(ctx)
		if err != nil {
			return Result{OK: false, Err: err.Error()}
		}
		meta = &Meta{
			WaitMS:   adm.Wait.Milliseconds(),
			Used:     adm.Used,
			Limit:    adm.Limit,
			WindowMS: adm.Window.Milliseconds(),
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return c.fail(cacheKey, err.Error(), errorTTL, meta, "transport")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return c.fail(cacheKey, err.Error(), errorTTL, meta, "transport")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		msg := fmt.Sprintf("Request failed with %d", resp.StatusCode)
		return c.fail(cacheKey, msg, errorTTL, meta, "http")
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(cacheKey, err.Error(), errorTTL, meta, "transport")
	}
	if !json.Valid(raw) {
		return c.fail(cacheKey, "invalid JSON response", errorTTL, meta, "transport")
	}

	stored := Result{OK: true, Data: raw}
	c.Cache.Set(cacheKey, stored, ttl)

	out := stored
	out.Meta = meta
	return out
}

// fail synthesizes, caches (without meta) and returns an error result.
func (c *Client) fail(cacheKey, msg string, errorTTL time.Duration, meta *Meta, kind string) Result {
	metrics.UpstreamErrorsTotal.WithLabelValues(kind).Inc()
	stored := Result{OK: false, Err: msg}
	c.Cache.Set(cacheKey, stored, errorTTL)

	out := stored
	out.Meta = meta
	return out
}

func (c *Client) shouldLimit(url string) bool {
	if c.Limiter == nil || !c.Limiter.Enabled() {
		return false
	}
	if c.LimitedBase == "" {
		return false
	}
	return strings.HasPrefix(url, c.LimitedBase)
}
