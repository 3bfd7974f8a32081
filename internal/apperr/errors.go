package apperr

import "errors"

// ErrMalformedRecord is returned when a dump record is structurally broken
// (fewer fields than the format requires). This is the only input condition
// that aborts a run; there is no safe partial interpretation of such a record.
// Use errors.Is(err, apperr.ErrMalformedRecord) to detect it uniformly.
var ErrMalformedRecord = errors.New("malformed dump record")

// ErrRetriesExhausted is returned when a lookup kept failing with a transient
// error after the configured retry budget was spent.
var ErrRetriesExhausted = errors.New("retries exhausted")

// ErrRequestFailed is returned when fetching a remote dump fails at the
// transport level or the server responds with a non-2xx status code.
var ErrRequestFailed = errors.New("request failed")
