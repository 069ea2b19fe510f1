// Package mirror provides the HTTP client for the language pack mirror
package mirror

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ProbeResult describes what the mirror reports for a pack archive.
type ProbeResult struct {
	Size         int64
	AcceptRanges bool
}

// FetchResult is an open byte stream for a pack archive. The caller owns
// Body and must close it.
type FetchResult struct {
	Body          io.ReadCloser
	StatusCode    int
	ContentLength int64
}

// Client talks to the pack mirror over plain HTTP.
type Client interface {
	Probe(ctx context.Context, url string) (*ProbeResult, error)
	Fetch(ctx context.Context, url string, offset int64) (*FetchResult, error)
}

// HTTPClient is the default mirror client.
type HTTPClient struct {
	httpClient *http.Client
}

// New creates a mirror client. Transfers of multi-hundred-megabyte archives
// can legitimately take a long time, so the stream itself carries no
// overall deadline; stall detection is the downloader's job.
func New() *HTTPClient {
	return &HTTPClient{
		httpClient: &http.Client{},
	}
}

// NewWithClient creates a mirror client around an injected http.Client.
func NewWithClient(httpClient *http.Client) *HTTPClient {
	return &HTTPClient{httpClient: httpClient}
}

// Probe issues a HEAD request for the archive and reports its size and
// whether the mirror honors byte ranges.
func (c *HTTPClient) Probe(ctx context.Context, url string) (*ProbeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create probe request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to probe mirror: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mirror returned status %d", resp.StatusCode)
	}

	return &ProbeResult{
		Size:         resp.ContentLength,
		AcceptRanges: strings.EqualFold(resp.Header.Get("Accept-Ranges"), "bytes"),
	}, nil
}

// Fetch issues a GET for the archive, with a Range header when offset > 0.
// Status validation is left to the caller: a ranged request answered with
// 200 instead of 206 means the mirror ignored the range.
func (c *HTTPClient) Fetch(ctx context.Context, url string, offset int64) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetch request: %w", err)
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from mirror: %w", err)
	}

	return &FetchResult{
		Body:          resp.Body,
		StatusCode:    resp.StatusCode,
		ContentLength: resp.ContentLength,
	}, nil
}
