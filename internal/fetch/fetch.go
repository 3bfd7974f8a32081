// Package fetch opens the dump source, whether it is a local file or an
// HTTP(S) URL.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/imroc/req/v3"

	"github.com/cidralias/cidralias/internal/apperr"
	"github.com/cidralias/cidralias/internal/version"
)

// NewClient builds the HTTP client used to download dumps. The User-Agent
// defaults to the version-derived identity when userAgent is empty; proxy
// settings come from the standard environment variables. Response bodies
// stream instead of being buffered, so arbitrarily large dumps are fine.
// When verbose is set, every response is logged at DEBUG level.
func NewClient(userAgent string, logger *slog.Logger, verbose bool) *req.Client {
	if userAgent == "" {
		userAgent = version.UserAgent()
	}

	client := req.NewClient().
		SetUserAgent(userAgent).
		SetProxy(http.ProxyFromEnvironment).
		DisableAutoReadResponse()

	attachRetry(client)
	if verbose && logger != nil {
		attachDebugHook(client, logger)
	}
	return client
}

// Open returns a reader over the dump source. http:// and https:// sources
// are downloaded with client; anything else is opened as a local file.
// Stdin ("-") is the caller's business. The caller closes the reader.
func Open(ctx context.Context, client *req.Client, source string) (io.ReadCloser, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return openURL(ctx, client, source)
	}
	return os.Open(source)
}

func openURL(ctx context.Context, client *req.Client, url string) (io.ReadCloser, error) {
	resp, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	if !resp.IsSuccessState() {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %s returned %s", apperr.ErrRequestFailed, url, resp.Status)
	}
	return resp.Body, nil
}

// attachDebugHook registers an OnAfterResponse hook that logs the HTTP
// method, URL, and status code at DEBUG level. The body is left untouched
// because it streams to the dump reader.
func attachDebugHook(client *req.Client, logger *slog.Logger) {
	client.OnAfterResponse(func(_ *req.Client, resp *req.Response) error {
		if resp.Request == nil || resp.Request.RawRequest == nil {
			return nil
		}
		logger.Debug("http response",
			"method", resp.Request.RawRequest.Method,
			"url", resp.Request.RawRequest.URL.String(),
			"status", resp.StatusCode,
		)
		return nil
	})
}
