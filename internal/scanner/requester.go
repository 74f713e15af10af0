package scanner

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-json-experiment/json/jsontext"

	"github.com/maxvaer/apiprobe/internal/config"
	"github.com/maxvaer/apiprobe/internal/logging"
	"github.com/maxvaer/apiprobe/pkg/version"
)

// defaultPoolSize sizes the idle connection pool when fan-out is unbounded.
const defaultPoolSize = 100

// Requester is the session shared by every probe of a batch. It is safe for
// concurrent use and never mutated after construction.
type Requester struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

// NewRequester builds the shared session from the provided options.
func NewRequester(opts *config.Options, logger *slog.Logger) (*Requester, error) {
	client, err := NewClient(opts)
	if err != nil {
		return nil, err
	}
	return NewRequesterWithClient(client, opts.UserAgent, logger), nil
}

// NewRequesterWithClient wraps an existing client. An empty userAgent
// selects the default.
func NewRequesterWithClient(client *http.Client, userAgent string, logger *slog.Logger) *Requester {
	if userAgent == "" {
		userAgent = "apiprobe/" + version.Version
	}
	return &Requester{
		client:    client,
		userAgent: userAgent,
		logger:    logging.OrDefault(logger),
	}
}

// NewClient returns the connection-pooled HTTP client. Per-probe deadlines
// are applied through the request context, so the client itself carries no
// timeout.
func NewClient(opts *config.Options) (*http.Client, error) {
	pool := opts.Threads
	if pool <= 0 {
		pool = defaultPoolSize
	}

	dialer := &net.Dialer{
		Timeout:   opts.Timeout,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: true},
		DialContext:         dialer.DialContext,
		MaxIdleConns:        pool,
		MaxIdleConnsPerHost: pool,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	if opts.Proxy != "" {
		if err := configureProxy(transport, opts.Proxy, dialer); err != nil {
			return nil, err
		}
	}

	// Redirects are followed up to the net/http limit of 10 hops; exceeding
	// it is a transport failure.
	client := &http.Client{Transport: transport}
	if opts.NoFollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return client, nil
}

// Do probes one work item. It never returns an error: a transport failure is
// logged and encoded in the result, and body read or JSON decode failures
// only leave the corresponding field empty.
func (r *Requester) Do(ctx context.Context, item WorkItem) ScanResult {
	result := ScanResult{
		BaseURL: item.BaseURL,
		Word:    item.Word,
		URL:     item.URL,
	}

	if item.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, item.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.URL, nil)
	if err != nil {
		return r.fail(result, err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	for k, v := range item.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		result.Duration = time.Since(start)
		return r.fail(result, err)
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	result.Duration = time.Since(start)
	if err != nil {
		r.logger.Debug("reading response body", "url", item.URL, "error", err)
		return result
	}
	result.Body = body
	result.JSON = decodeJSON(body)

	r.logger.Debug("probe done", "url", item.URL, "status", resp.StatusCode, "size", len(body))
	return result
}

func (r *Requester) fail(result ScanResult, err error) ScanResult {
	r.logger.Error("probe failed", "url", result.URL, "error", err)
	result.Err = fmt.Errorf("GET %s: %w", result.URL, err)
	return result
}

// decodeJSON returns the body as a compacted JSON value, or nil if it is
// empty or not JSON. Numbers and member order are kept verbatim, and
// duplicate member names are accepted as RFC 8259 allows.
func decodeJSON(body []byte) jsontext.Value {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	v := jsontext.Value(bytes.Clone(body))
	if !v.IsValid(jsontext.AllowDuplicateNames(true)) {
		return nil
	}
	if err := v.Compact(); err != nil {
		return nil
	}
	return v
}
