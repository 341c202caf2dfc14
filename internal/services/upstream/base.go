package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"StockLens/pkg/config"
	xhttp "StockLens/pkg/http"
)

var (
	// ErrNotFound is returned when the backend answers 404 for a ticker.
	ErrNotFound = errors.New("upstream: not found")
	// ErrRejected is returned when the envelope carries success=false.
	ErrRejected = errors.New("upstream: request rejected")
)

// envelope is the wrapper every backend response is sent in.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// HTTPServiceBase centralizes client construction, envelope decoding and
// retries for backend GET requests.
type HTTPServiceBase struct {
	baseURL         string
	client          *xhttp.Client
	retryInitial    time.Duration
	retryMaxElapsed time.Duration
}

// NewHTTPServiceBase builds an HTTP client with timeout, base URL and retry
// budget from config.
func NewHTTPServiceBase(cfg *config.Config) *HTTPServiceBase {
	return &HTTPServiceBase{
		baseURL:         strings.TrimRight(cfg.Upstream.BaseURL, "/"),
		client:          xhttp.NewClient(xhttp.WithTimeout(cfg.Upstream.Timeout), xhttp.WithUserAgent("stocklens/1")),
		retryInitial:    cfg.Upstream.RetryInitial,
		retryMaxElapsed: cfg.Upstream.RetryMaxElapse,
	}
}

// GetJSON performs one GET against path and decodes the envelope's data into dest.
func (b *HTTPServiceBase) GetJSON(ctx context.Context, path string, query url.Values, dest interface{}) error {
	if b.client == nil || b.baseURL == "" {
		return fmt.Errorf("upstream http client not initialized")
	}
	var env envelope
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         b.baseURL + path,
		QueryParams: query,
	}, &env)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) && se.Code == 404 {
			return fmt.Errorf("get %s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("get %s: %w", path, err)
	}
	if !env.Success {
		return fmt.Errorf("get %s: %w: %s", path, ErrRejected, env.Message)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// GetJSONWithRetry retries GetJSON with exponential backoff. Client errors
// (4xx other than 429) and decode failures are not retried.
func (b *HTTPServiceBase) GetJSONWithRetry(ctx context.Context, path string, query url.Values, dest interface{}) error {
	policy := backoff.NewExponentialBackOff()
	if b.retryInitial > 0 {
		policy.InitialInterval = b.retryInitial
	}
	policy.MaxElapsedTime = b.retryMaxElapsed

	op := func() error {
		err := b.GetJSON(ctx, path, query, dest)
		if err == nil || retryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}
	return backoff.Retry(op, backoff.WithContext(policy, ctx))
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrRejected) {
		return false
	}
	var syn *json.SyntaxError
	var typ *json.UnmarshalTypeError
	return !errors.As(err, &syn) && !errors.As(err, &typ)
}
