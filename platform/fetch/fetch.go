// Package fetch retrieves remote artifacts: CDN script bundles, package
// wheels, and the WASM engine image. All fetches are plain GETs with no
// request body or authentication.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Options contains configuration for the artifact fetcher.
// Use DefaultOptions() for sensible defaults, then modify as needed.
type Options struct {
	// Timeout specifies a time limit for requests made by the fetcher.
	Timeout time.Duration

	// Headers are added to every request.
	Headers map[string]string

	// MaxBytes caps the response body size. Zero means no cap.
	MaxBytes int64

	// Client overrides the HTTP client entirely. When set, Timeout is
	// ignored.
	Client *http.Client
}

// DefaultOptions returns the default fetcher configuration: a 30 second
// timeout and a 64 MiB body cap (large enough for an interpreter image).
func DefaultOptions() *Options {
	return &Options{
		Timeout:  30 * time.Second,
		Headers:  make(map[string]string),
		MaxBytes: 64 << 20,
	}
}

// Fetcher performs GETs against http/https URLs and returns the body bytes.
type Fetcher struct {
	client  *http.Client
	options *Options
}

// New creates a Fetcher with default options.
func New() *Fetcher {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions creates a Fetcher with the given options.
func NewWithOptions(options *Options) *Fetcher {
	if options == nil {
		options = DefaultOptions()
	}
	client := options.Client
	if client == nil {
		client = &http.Client{Timeout: options.Timeout}
	}
	return &Fetcher{
		client:  client,
		options: options,
	}
}

// Fetch GETs the URL and returns the response body. Non-2xx responses and
// unsupported schemes are errors; the returned error wraps
// ErrArtifactUnavailable or ErrSchemeUnsupported so callers can branch.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse artifact URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: %s", ErrSchemeUnsupported, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range f.options.Headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", "coderunner/artifact-fetcher")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d - %s", ErrArtifactUnavailable, resp.StatusCode, resp.Status)
	}

	body := io.Reader(resp.Body)
	if f.options.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, f.options.MaxBytes)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact body: %w", err)
	}
	return data, nil
}
