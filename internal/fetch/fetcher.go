package fetch

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mhadifilms/reverie/internal/fetch/progress"
	"github.com/mhadifilms/reverie/internal/logctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultTimeout   = 60 * time.Second
	progressInterval = 64 * 1024 // bytes between progress callbacks
)

// Fetcher streams the bytes behind a URL into memory, reporting progress as a
// fraction in [0,1]. Implementations must honor context cancellation.
type Fetcher interface {
	Fetch(ctx context.Context, url string, onProgress func(fraction float64)) ([]byte, error)
}

// HTTPFetcher fetches audio bytes over HTTP with an instrumented transport.
type HTTPFetcher struct {
	httpClient *http.Client
}

func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &HTTPFetcher{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string, onProgress func(fraction float64)) ([]byte, error) {
	logger := logctx.LoggerFromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &NetworkError{URL: url, StatusCode: resp.StatusCode}
	}

	total := resp.ContentLength
	logger.Debug("fetching audio stream", "url", url, "size", humanize.Bytes(uint64(max(total, 0))))

	var buf bytes.Buffer
	if total > 0 {
		buf.Grow(int(total))
	}

	pr := progress.NewReader(resp.Body, total, progressInterval, func(read, total int64) {
		if onProgress != nil && total > 0 {
			onProgress(float64(read) / float64(total))
		}
	})

	if _, err := io.Copy(&buf, pr); err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}

	if onProgress != nil {
		onProgress(1)
	}

	logger.Debug("fetched audio stream", "url", url, "bytes", humanize.Bytes(uint64(buf.Len())))

	return buf.Bytes(), nil
}
