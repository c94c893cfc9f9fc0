package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPFeedSource downloads the feed from a URL, typically a published
// spreadsheet exported as CSV
type HTTPFeedSource struct {
	url        string
	httpClient *http.Client
}

// NewHTTPFeedSource creates a new HTTPFeedSource
func NewHTTPFeedSource(url string, timeout time.Duration) *HTTPFeedSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPFeedSource{url: url, httpClient: &http.Client{Timeout: timeout}}
}

// Open fetches the feed
func (s *HTTPFeedSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog feed: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrFeedNotFound, s.url)
	case resp.StatusCode >= 400:
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch catalog feed: HTTP %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// Name identifies the source in logs
func (s *HTTPFeedSource) Name() string {
	return s.url
}

var _ FeedSource = (*HTTPFeedSource)(nil)
