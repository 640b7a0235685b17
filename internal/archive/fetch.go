package archive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 5 * time.Minute
	// MaxRedirects bounds redirect chains (release downloads redirect to a CDN).
	MaxRedirects = 10
)

// StatusError reports a non-200 response from the mirror.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status code: %d", e.URL, e.StatusCode)
}

// FetcherConfig configures a Fetcher.
type FetcherConfig struct {
	// Mirror is the base URL resources are resolved against.
	Mirror string
	// UserAgent is sent with every request.
	UserAgent string
	// Client overrides the default HTTP client (tests).
	Client *http.Client
}

// Fetcher retrieves resources from a page mirror
type Fetcher struct {
	client    *http.Client
	mirror    string
	userAgent string
}

// NewFetcher creates a new fetcher
func NewFetcher(cfg FetcherConfig) *Fetcher {
	client := cfg.Client
	if client == nil {
		client = &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= MaxRedirects {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		}
	}

	return &Fetcher{
		client:    client,
		mirror:    strings.TrimRight(cfg.Mirror, "/"),
		userAgent: cfg.UserAgent,
	}
}

// URL returns the absolute URL of a mirror resource.
func (f *Fetcher) URL(name string) string {
	return f.mirror + "/" + name
}

// Fetch reads a small mirror resource fully into memory.
func (f *Fetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	body, err := f.open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// Download streams a mirror resource into w and returns its hex SHA-256
// digest and size.
func (f *Fetcher) Download(ctx context.Context, name string, w io.Writer) (sum string, size int64, err error) {
	body, err := f.open(ctx, name)
	if err != nil {
		return "", 0, err
	}
	defer body.Close()

	hasher := sha256.New()
	size, err = io.Copy(io.MultiWriter(w, hasher), body)
	if err != nil {
		return "", size, fmt.Errorf("copy response body: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), size, nil
}

func (f *Fetcher) open(ctx context.Context, name string) (io.ReadCloser, error) {
	url := f.URL(name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	return resp.Body, nil
}
