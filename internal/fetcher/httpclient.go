package fetcher

import (
	"io"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"resty.dev/v3"
)

const (
	// DefaultTimeout bounds a single lookup
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent is a browser-like agent; the metadata API rejects bare clients
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// ClientOptions configures the shared HTTP client.
type ClientOptions struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// PoolSize caps idle and per-host connections; it should match the
	// number of concurrent workers sharing the client.
	PoolSize int
}

// NewHTTPClient creates the HTTP client shared by all workers. It never
// retries: a single attempt per request is authoritative.
func NewHTTPClient(opts ClientOptions) *resty.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	var settings *resty.TransportSettings
	if opts.PoolSize > 0 {
		settings = &resty.TransportSettings{
			MaxIdleConns:        opts.PoolSize,
			MaxIdleConnsPerHost: opts.PoolSize,
		}
	}

	client := resty.NewWithTransportSettings(settings).
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", opts.UserAgent).
		AddContentTypeEncoder("json", encodeJSON).
		AddContentTypeDecoder("json", decodeJSON).
		OnSuccess(successHook).
		OnError(errorHook)

	return client
}

func encodeJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

func decodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec.Decode(v)
}

// successHook logs completed requests for observability
func successHook(_ *resty.Client, r *resty.Response) {
	slog.Debug("request completed",
		"method", r.Request.Method,
		"url", r.Request.URL,
		"status_code", r.StatusCode(),
		"duration", r.Duration())
}

// errorHook logs requests that failed at the transport level or in decoding
func errorHook(r *resty.Request, err error) {
	slog.Debug("request failed",
		"method", r.Method,
		"url", r.URL,
		"error", err.Error())
}
