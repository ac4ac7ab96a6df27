// Package fetch retrieves raw catalog documents from HTTP(S) URLs or the
// local filesystem.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	DefaultUserAgent = "grid-feeds/dev"
	DefaultTimeout   = 30 * time.Second
	MaxBodySize      = 64 << 20
)

var ErrBodyTooLarge = errors.New("response body exceeds size limit")

type Fetcher interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
}

type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

func NewHTTPFetcher(client *http.Client, userAgent string) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPFetcher{
		client:    client,
		userAgent: userAgent,
	}
}

// Fetch reads source once. http and https sources go over the network;
// file:// URLs and bare paths are read from disk.
func (f *HTTPFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	if path, ok := localPath(source); ok {
		return f.readFile(ctx, source, path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, &FetchError{Source: source, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/xml, text/xml;q=0.9, */*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: source, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{
			Source:     source,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, &FetchError{Source: source, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	if len(data) > MaxBodySize {
		return nil, &FetchError{Source: source, Err: ErrBodyTooLarge}
	}

	return data, nil
}

func (f *HTTPFetcher) readFile(ctx context.Context, source, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Source: source, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FetchError{Source: source, Err: err}
	}
	return data, nil
}

func localPath(source string) (string, bool) {
	if strings.HasPrefix(source, "file://") {
		u, err := url.Parse(source)
		if err != nil {
			return strings.TrimPrefix(source, "file://"), true
		}
		return u.Path, true
	}
	if strings.Contains(source, "://") {
		return "", false
	}
	return source, true
}
