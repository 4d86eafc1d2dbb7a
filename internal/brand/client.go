// Package brand looks up logos, colours and socials for a brand's domain.
package brand

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/brandlens/internal/model"
	"github.com/ppiankov/brandlens/internal/util"
)

const (
	defaultBaseURL = "https://api.brand.dev/v1"
	maxAttempts    = 3
	maxBodyBytes   = 2 << 20
)

// retrySleep is replaced in tests
var retrySleep = time.Sleep

// StatusError is returned for a non-2xx lookup response
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %s", e.Status)
}

// Client retrieves brand data from brand.dev
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	userAgent  string
}

// NewClient creates a lookup client. An empty API key is an error.
func NewClient(cfg model.BrandAssetsConfig, httpCfg model.HTTPConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("brand.dev API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	timeout := httpCfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		apiKey:    cfg.APIKey,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: httpCfg.UserAgent,
	}, nil
}

// Retrieve fetches brand data for a website or domain, retrying transient failures
func (c *Client) Retrieve(ctx context.Context, website string) (*Response, error) {
	domain, err := NormalizeDomain(website)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := c.retrieveOnce(ctx, domain)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !isRetryable(err) || attempt == maxAttempts {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		retrySleep(time.Duration(attempt) * time.Second)
	}

	return nil, lastErr
}

// Lookup retrieves and parses assets for website
func (c *Client) Lookup(ctx context.Context, website string) (*Assets, error) {
	resp, err := c.Retrieve(ctx, website)
	if err != nil {
		return nil, err
	}
	assets := ParseAssets(*resp)
	return &assets, nil
}

func (c *Client) retrieveOnce(ctx context.Context, domain string) (*Response, error) {
	endpoint := fmt.Sprintf("%s/brand/retrieve?domain=%s", c.baseURL, url.QueryEscape(domain))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode brand response: %w", err)
	}
	return &out, nil
}

// isRetryable reports whether err is a 429, a 5xx or a transport failure
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
	}

	return strings.HasPrefix(err.Error(), "fetch:")
}
