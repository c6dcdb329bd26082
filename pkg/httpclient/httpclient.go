// Package httpclient provides the two HTTP operations the installer needs:
// a short timed text fetch for release-source APIs, and a streamed file
// download that reports progress via a callback. It carries no retry,
// cache, or checksum layer — those are explicit non-goals of the core.
package httpclient

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	commonshttp "github.com/flanksource/commons/http"
	"github.com/flanksource/commons/logger"

	"github.com/flanksource/maintenancetool/pkg/errs"
)

const (
	textTimeout     = 8 * time.Second
	streamChunkSize = 8 * 1024
)

// Client wraps a configured *http.Client built the way the teacher pack
// builds one: flanksource/commons/http as the RoundTripper, with optional
// request/response logging at trace level.
type Client struct {
	http *http.Client
}

// New returns a Client with the given total request timeout.
func New(timeout time.Duration) *Client {
	builder := commonshttp.NewClient().Timeout(timeout)
	if logger.IsTraceEnabled() {
		builder = builder.WithHttpLogging(logger.Trace1, logger.Trace2)
	}
	return &Client{http: &http.Client{Transport: builder, Timeout: timeout}}
}

// Default returns a Client sized for release-source API calls (8s).
func Default() *Client {
	return New(textTimeout)
}

// DownloadText performs a GET and returns the response body as a string.
// Non-2xx responses are surfaced as NetworkError.
func (c *Client) DownloadText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &errs.NetworkError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", "maintenancetool")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &errs.NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &errs.NetworkError{URL: url, Err: unexpectedStatus(resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &errs.NetworkError{URL: url, Err: err}
	}
	return string(body), nil
}

// StreamCallback receives each chunk of bytes read from the response body
// and the total size hint (content-length, or 0 if absent). It is never
// invoked after an error.
type StreamCallback func(chunk []byte, totalSizeHint int64) error

// StreamFile fetches url and invokes cb once per ~8 KiB chunk read from the
// response body. Any failure (transport, non-2xx status, callback error)
// aborts the stream.
func (c *Client) StreamFile(ctx context.Context, url string, cb StreamCallback) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &errs.NetworkError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", "maintenancetool")

	resp, err := c.http.Do(req)
	if err != nil {
		return &errs.NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &errs.NetworkError{URL: url, Err: unexpectedStatus(resp.StatusCode)}
	}

	var totalHint int64
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
			totalHint = n
		}
	}

	buf := make([]byte, streamChunkSize)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if cbErr := cb(buf[:n], totalHint); cbErr != nil {
				return cbErr
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return &errs.NetworkError{URL: url, Err: readErr}
		}
	}
}

type unexpectedStatus int

func (s unexpectedStatus) Error() string {
	return "unexpected status " + strconv.Itoa(int(s))
}
