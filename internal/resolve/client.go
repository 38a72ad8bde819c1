package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mhadifilms/reverie/internal/logctx"
)

const defaultTimeout = 15 * time.Second

// Client resolves source identifiers against an HTTP stream-resolution
// endpoint. The endpoint returns the audio URL and stream hints as JSON.
type Client struct {
	BaseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		BaseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type streamResponse struct {
	AudioURL        string `json:"audio_url"`
	DurationSeconds int    `json:"duration_seconds"`
	Ext             string `json:"ext"`
}

func (c *Client) Resolve(ctx context.Context, sourceID string) (*Source, error) {
	logger := logctx.LoggerFromContext(ctx).With("source_id", sourceID)

	endpoint := fmt.Sprintf("%s/v1/streams/%s", c.BaseURL, url.PathEscape(sourceID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &ResolutionError{SourceID: sourceID, Reason: "invalid resolver request", Err: err}
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ResolutionError{SourceID: sourceID, Reason: "resolver unreachable", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &ResolutionError{SourceID: sourceID, Reason: "unknown source identifier"}
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logger.Debug("resolver returned non-200", "status", resp.StatusCode, "body", string(body))

		return nil, &ResolutionError{
			SourceID: sourceID,
			Reason:   fmt.Sprintf("resolver returned status %d", resp.StatusCode),
		}
	}

	var sr streamResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, &ResolutionError{SourceID: sourceID, Reason: "malformed resolver response", Err: err}
	}

	if sr.AudioURL == "" {
		return nil, &ResolutionError{SourceID: sourceID, Reason: "resolver response missing audio URL"}
	}

	if sr.Ext == "" {
		sr.Ext = "mp3"
	}

	return &Source{
		AudioURL:        sr.AudioURL,
		DurationSeconds: sr.DurationSeconds,
		Ext:             sr.Ext,
	}, nil
}
