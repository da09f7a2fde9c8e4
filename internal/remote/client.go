// Package remote is the planner's client for the shared bin store: create a
// bin from a trip document, fetch its latest snapshot, and overwrite it.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/pkordes/travel-planner/internal/domain"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultCollection = "bins"
	maxResponseBytes  = 5 << 20
)

// Options configures a Client. Only BaseURL is required.
type Options struct {
	// BaseURL is the store root, e.g. "https://bins.example.com".
	BaseURL string
	// Collection is the path segment holding bins. Defaults to "bins".
	Collection string
	// APIKey, when set, is sent as a bearer token on every request.
	APIKey string
	// RequestsPerSecond bounds the request rate; zero means unlimited.
	RequestsPerSecond float64
	// Burst is the limiter burst size. Defaults to 1.
	Burst int
	// HTTPClient overrides the default client (10s timeout).
	HTTPClient *http.Client
}

// Client talks to the bin store over HTTP. It is safe for concurrent use.
type Client struct {
	base       string
	collection string
	apiKey     string
	http       *http.Client
	limiter    *rate.Limiter
	bust       atomic.Int64
}

// New builds a Client from opts.
func New(opts Options) *Client {
	c := &Client{
		base:       strings.TrimRight(opts.BaseURL, "/"),
		collection: opts.Collection,
		apiKey:     opts.APIKey,
		http:       opts.HTTPClient,
		limiter:    rate.NewLimiter(rate.Inf, 0),
	}
	if c.collection == "" {
		c.collection = defaultCollection
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: defaultTimeout}
	}
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	c.bust.Store(time.Now().UnixNano())
	return c
}

// binResponse is the envelope the store returns for create and fetch.
type binResponse struct {
	Record   *domain.Document `json:"record"`
	Metadata struct {
		ID string `json:"id"`
	} `json:"metadata"`
}

// Create stores doc as a new bin and returns the id the store assigned.
func (c *Client) Create(ctx context.Context, doc domain.Document) (string, error) {
	var out binResponse
	if err := c.do(ctx, http.MethodPost, c.collectionURL(), doc, &out); err != nil {
		return "", fmt.Errorf("remote.Client.Create: %w", err)
	}
	if out.Metadata.ID == "" {
		return "", fmt.Errorf("remote.Client.Create: %w: response carried no id", domain.ErrRemoteUnavailable)
	}
	return out.Metadata.ID, nil
}

// Fetch returns the latest snapshot of bin shareID. Each call carries a fresh
// cacheBust query value so no intermediate cache can answer it.
func (c *Client) Fetch(ctx context.Context, shareID string) (domain.Document, error) {
	u := c.binURL(shareID) + "/latest?" + url.Values{
		"cacheBust": {strconv.FormatInt(c.bust.Add(1), 10)},
	}.Encode()

	var out binResponse
	if err := c.do(ctx, http.MethodGet, u, nil, &out); err != nil {
		return domain.Document{}, fmt.Errorf("remote.Client.Fetch: %w", err)
	}
	if out.Record == nil {
		return domain.Document{}, fmt.Errorf("remote.Client.Fetch: %w: response carried no record", domain.ErrRemoteUnavailable)
	}
	doc := *out.Record
	doc.Normalize()
	return doc, nil
}

// Update overwrites bin shareID with doc. The write is unconditional: there
// is no version check, so the last writer wins.
func (c *Client) Update(ctx context.Context, shareID string, doc domain.Document) error {
	if err := c.do(ctx, http.MethodPut, c.binURL(shareID), doc, nil); err != nil {
		return fmt.Errorf("remote.Client.Update: %w", err)
	}
	return nil
}

func (c *Client) collectionURL() string {
	return c.base + "/" + c.collection
}

func (c *Client) binURL(shareID string) string {
	return c.collectionURL() + "/" + url.PathEscape(shareID)
}

// do performs one request. body, when non-nil, is sent as JSON; out, when
// non-nil, receives the decoded response. Errors wrap
// domain.ErrRemoteNotFound for 404 and domain.ErrRemoteUnavailable otherwise.
func (c *Client) do(ctx context.Context, method, u string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limit: %w", domain.ErrRemoteUnavailable, err)
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("%w: build request: %w", domain.ErrRemoteUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrRemoteNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: unexpected status %d", domain.ErrRemoteUnavailable, resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", domain.ErrRemoteUnavailable, err)
	}
	return nil
}
