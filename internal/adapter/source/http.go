// Package source fetches raw feed documents for the pipeline.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// maxFeedBytes bounds how much of a feed response is read.
const maxFeedBytes = 32 << 20

// ErrFeedTooLarge is returned when a feed response exceeds the size limit.
var ErrFeedTooLarge = errors.New("feed too large")

// HTTPSource fetches the feed from a URL.
type HTTPSource struct {
	url        string
	httpClient *http.Client
	maxBytes   int64
	logger     *slog.Logger
}

// NewHTTPSource creates a source whose requests are bounded by timeout.
func NewHTTPSource(url string, timeout time.Duration, logger *slog.Logger) *HTTPSource {
	return &HTTPSource{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxBytes: maxFeedBytes,
		logger:   logger,
	}
}

// FetchFeed performs a GET and returns the body. Any status other than 200 is an error.
func (s *HTTPSource) FetchFeed(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/atom+xml, application/xml;q=0.9")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("feed error: status %d: %s", resp.StatusCode, body)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}
	if int64(len(body)) > s.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrFeedTooLarge, s.maxBytes)
	}
	s.logger.Debug("feed fetched", "url", s.url, "bytes", len(body), "duration", time.Since(start))
	return body, nil
}

// String identifies the source in logs.
func (s *HTTPSource) String() string {
	return s.url
}
