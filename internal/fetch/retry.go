package fetch

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/imroc/req/v3"
)

const (
	// retryAfterFallback is used when the Retry-After header is absent or unparseable.
	retryAfterFallback = 5 * time.Second
	// retryAfterCap is the maximum sleep duration honoured from a Retry-After header.
	retryAfterCap = 60 * time.Second
	// transportRetryInterval is the wait between retries on transport-level errors.
	transportRetryInterval = 1 * time.Second
)

// attachRetry configures up to 3 retries on HTTP 429 and on transport-level
// failures such as a reset connection. 429 waits honour the Retry-After
// header, capped. Context cancellations and deadlines are never retried.
func attachRetry(client *req.Client) {
	client.SetCommonRetryCount(3)
	client.AddCommonRetryCondition(func(resp *req.Response, _ error) bool {
		return resp != nil && resp.Response != nil && resp.StatusCode == http.StatusTooManyRequests
	})
	client.AddCommonRetryCondition(func(_ *req.Response, err error) bool {
		if err == nil {
			return false
		}
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	})
	client.SetCommonRetryInterval(func(resp *req.Response, _ int) time.Duration {
		if resp == nil || resp.Response == nil {
			return transportRetryInterval
		}
		return parseRetryAfter(resp.Header.Get("Retry-After"))
	})
}

// parseRetryAfter parses a Retry-After header value (integer seconds or
// HTTP-date) and returns a capped sleep duration.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return retryAfterFallback
	}
	if secs, err := strconv.Atoi(header); err == nil {
		d := time.Duration(secs) * time.Second
		return min(d, retryAfterCap)
	}
	if t, err := http.ParseTime(header); err == nil {
		d := max(time.Until(t), 0)
		return min(d, retryAfterCap)
	}
	return retryAfterFallback
}
