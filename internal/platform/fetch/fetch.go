// Package fetch retrieves recipe pages and images over HTTP.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrTooLarge is returned when a body exceeds the configured limit.
var ErrTooLarge = errors.New("response body too large")

// Settings configures a Client.
type Settings struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
}

// Page is a fetched document. Non-2xx responses are returned as pages too so
// callers can inspect Status.
type Page struct {
	URL      string
	FinalURL string
	Status   int
	HTML     string
}

// Client fetches pages.
type Client struct {
	http    *resty.Client
	maxBody int64
}

// New creates a Client. Redirects are followed.
func New(s Settings) *Client {
	c := resty.New().
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10)).
		SetHeader("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.8")
	if s.UserAgent != "" {
		c.SetHeader("User-Agent", s.UserAgent)
	}
	if s.Timeout > 0 {
		c.SetTimeout(s.Timeout)
	}
	return &Client{http: c, maxBody: s.MaxBodyBytes}
}

// Fetch downloads rawURL and reports the final URL after redirects.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	body, resp, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	final := rawURL
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		final = raw.Request.URL.String()
	}
	return &Page{
		URL:      rawURL,
		FinalURL: final,
		Status:   resp.StatusCode(),
		HTML:     string(body),
	}, nil
}

// FetchBytes downloads rawURL and fails on any non-2xx status.
func (c *Client) FetchBytes(ctx context.Context, rawURL string) ([]byte, string, error) {
	body, resp, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, "", err
	}
	if !resp.IsSuccess() {
		return nil, "", fmt.Errorf("failed to fetch %s: status %d", rawURL, resp.StatusCode())
	}
	return body, resp.Header().Get("Content-Type"), nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, *resty.Response, error) {
	resp, err := c.http.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	body := resp.Body()
	if c.maxBody > 0 && int64(len(body)) > c.maxBody {
		return nil, nil, fmt.Errorf("failed to fetch %s: %w", rawURL, ErrTooLarge)
	}
	return body, resp, nil
}

