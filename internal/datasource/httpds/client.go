// Package httpds implements an HTTP data source with bounded retry/backoff.
// It is used by the file connector when a delimited export lives behind a URL
// rather than on local disk.
//
// Transient failures (connection errors, 5xx, 429) are retried with
// exponential backoff; 4xx responses other than 429 fail immediately since
// re-requesting the same URL cannot help.
package httpds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Config configures the HTTP data source.
//
// Zero values are given sensible defaults:
//   - Timeout:        30s per attempt
//   - MaxElapsed:     2m across all attempts
//   - InitialBackoff: 200ms
type Config struct {
	URL            string
	Timeout        time.Duration
	MaxElapsed     time.Duration
	InitialBackoff time.Duration

	// Transport is an optional custom RoundTripper for tests.
	Transport http.RoundTripper
}

// Remote fetches bytes from a URL with retry/backoff.
type Remote struct {
	cfg    Config
	client *http.Client
}

// NewRemote constructs a Remote source from Config, applying defaults for
// zero values.
func NewRemote(cfg Config) *Remote {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxElapsed <= 0 {
		cfg.MaxElapsed = 2 * time.Minute
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	client := &http.Client{Timeout: cfg.Timeout}
	if cfg.Transport != nil {
		client.Transport = cfg.Transport
	}
	return &Remote{cfg: cfg, client: client}
}

// Open issues a GET for the configured URL, retrying transient failures, and
// returns the response body for streaming.
func (r *Remote) Open(ctx context.Context) (io.ReadCloser, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.cfg.InitialBackoff
	bo.MaxElapsedTime = r.cfg.MaxElapsed

	var body io.ReadCloser
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.URL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := r.client.Do(req)
		if err != nil {
			return err // transport errors are retryable
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			err := fmt.Errorf("get %s: %s", r.cfg.URL, resp.Status)
			if retryableStatus(resp.StatusCode) {
				return err
			}
			return backoff.Permanent(err)
		}
		body = resp.Body
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return body, nil
}

// retryableStatus reports whether a non-200 status is worth another attempt.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
