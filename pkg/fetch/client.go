// Package fetch implements the blocking HTTP operations used to
// discover and download remote repository state. It never retries and
// imposes no timeout policy beyond what the caller's context or the
// client's configured timeout provides; a single failure is
// authoritative for the caller.
package fetch

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/arc-language/msys2pkg/pkg/errs"
)

// Client performs HEAD/GET requests against repository URLs.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient builds a Client with the given request timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: "msys2pkg/1.0",
	}
}

// ETag performs a HEAD request and returns the verbatim ETag response
// header. It fails with a DownloadError on any transport error or a
// missing header.
func (c *Client) ETag(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return "", &errs.DownloadError{Op: "fetch.ETag", Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &errs.DownloadError{Op: "fetch.ETag", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &errs.DownloadError{Op: "fetch.ETag", Err: unexpectedStatus(resp.StatusCode)}
	}

	etag := resp.Header.Get("ETag")
	if etag == "" {
		return "", &errs.DownloadError{Op: "fetch.ETag", Err: errMissingETag}
	}
	return etag, nil
}

// Download performs a GET request. Both the ETag header and the body
// must be present or the call fails with a DownloadError.
func (c *Client) Download(ctx context.Context, url string) (string, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", nil, &errs.DownloadError{Op: "fetch.Download", Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, &errs.DownloadError{Op: "fetch.Download", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, &errs.DownloadError{Op: "fetch.Download", Err: unexpectedStatus(resp.StatusCode)}
	}

	etag := resp.Header.Get("ETag")
	if etag == "" {
		return "", nil, &errs.DownloadError{Op: "fetch.Download", Err: errMissingETag}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, &errs.DownloadError{Op: "fetch.Download", Err: err}
	}

	return etag, body, nil
}

type statusError int

func (e statusError) Error() string {
	return "unexpected status " + http.StatusText(int(e))
}

func unexpectedStatus(code int) error { return statusError(code) }

type missingETagError struct{}

func (missingETagError) Error() string { return "response missing ETag header" }

var errMissingETag = missingETagError{}
