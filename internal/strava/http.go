package strava

import (
	"log/slog"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultRetryMax = 0
)

// HTTPOptions makes the transport policy explicit: one timeout per attempt and
// a retry count that defaults to zero.
type HTTPOptions struct {
	Timeout  time.Duration
	RetryMax int
	Logger   *slog.Logger
}

// NewHTTPClient builds the retryablehttp client shared by the token exchanger
// and the API client. Non-2xx responses are handed back to the caller instead
// of being turned into opaque "giving up" errors.
func NewHTTPClient(o HTTPOptions) *retryablehttp.Client {
	h := retryablehttp.NewClient()
	h.RetryMax = o.RetryMax
	if h.RetryMax < 0 {
		h.RetryMax = 0
	}
	h.HTTPClient.Timeout = o.Timeout
	if h.HTTPClient.Timeout <= 0 {
		h.HTTPClient.Timeout = DefaultTimeout
	}
	h.ErrorHandler = retryablehttp.PassthroughErrorHandler
	// A typed nil *slog.Logger must not reach retryablehttp's interface field.
	h.Logger = nil
	if o.Logger != nil {
		h.Logger = o.Logger
	}
	return h
}
