package riot

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apierrors "riotstats/pkg/errors"
	"riotstats/pkg/logger"
	"riotstats/pkg/ratelimit"
	"riotstats/pkg/retry"
)

const (
	// DefaultTimeout is the fixed per-request timeout
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRetries is the retry budget for transient failures
	DefaultMaxRetries = 3

	// defaultRetryAfter is used when a 429 carries no Retry-After header
	defaultRetryAfter = 5 * time.Second
)

// Options configures a Client. The zero value selects the Riot
// developer-key defaults.
type Options struct {
	// Region is the platform region code (na1, euw1, kr, ...)
	Region string
	// Timeout is the per-request HTTP timeout
	Timeout time.Duration
	// MaxRetries bounds attempts for timeouts and server errors
	MaxRetries int
	// DisableRateLimit turns off client-side rate limiting
	DisableRateLimit bool
	// RequestsPerSecond and RequestsPerWindow override the default
	// 20/s and 100 per Window quotas
	RequestsPerSecond int
	RequestsPerWindow int
	Window            time.Duration
	// Logger receives request diagnostics; defaults to the global logger
	Logger logger.Logger
}

// Client is a rate-limited Riot API client. Each client owns its
// limiter, so independent clients do not share quota state.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	region      string
	platformURL string
	regionalURL string
	maxRetries  int
	limiter     ratelimit.Limiter
	backoff     retry.BackoffStrategy
	logger      logger.Logger

	// wait is retry.Wait, overridable so tests can record sleeps
	wait func(ctx context.Context, d time.Duration) error
}

// NewClient creates a Riot API client for the given key and region.
// An unknown region fails immediately with an error listing valid codes.
func NewClient(apiKey string, opts Options) (*Client, error) {
	region := opts.Region
	if region == "" {
		region = "na1"
	}

	platformURL, regionalURL, err := Routing(region)
	if err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}

	var limiter ratelimit.Limiter
	if !opts.DisableRateLimit {
		perSecond := opts.RequestsPerSecond
		if perSecond <= 0 {
			perSecond = 20
		}
		perWindow := opts.RequestsPerWindow
		if perWindow <= 0 {
			perWindow = 100
		}
		window := opts.Window
		if window <= 0 {
			window = 2 * time.Minute
		}
		limiter = ratelimit.NewDualWindow(perSecond, perWindow, window)
	}

	c := &Client{
		httpClient:  &http.Client{Timeout: timeout},
		apiKey:      apiKey,
		region:      region,
		platformURL: platformURL,
		regionalURL: regionalURL,
		maxRetries:  maxRetries,
		limiter:     limiter,
		backoff:     retry.DefaultExponentialBackoff(),
		logger:      log,
		wait:        retry.Wait,
	}

	log.InfoWithFields("riot client initialized", map[string]interface{}{
		"region":  region,
		"api_key": maskKey(apiKey),
	})

	return c, nil
}

// Region returns the platform region code the client was built for
func (c *Client) Region() string { return c.region }

// failure is the outcome of one failed attempt. The class tells the
// dispatch loop whether to stop, consume a retry-budget slot, or retry
// for free after the given delay.
type failure struct {
	class apierrors.RetryClass
	delay time.Duration
	err   *apierrors.Error
}

// execute issues one logical GET, consulting the limiter before every
// attempt and classifying each outcome. Rate-limit responses (429) are
// retried without consuming the budget; timeouts and 5xx consume it with
// exponential backoff between attempts.
func (c *Client) execute(ctx context.Context, rawurl string, params url.Values) ([]byte, error) {
	attempt := 0

	for {
		if c.limiter != nil {
			c.limiter.Acquire()
		}

		body, fail := c.send(ctx, rawurl, params)
		if fail == nil {
			return body, nil
		}

		switch fail.class {
		case apierrors.Terminal:
			return nil, fail.err

		case apierrors.FreeRetry:
			c.logger.WarnWithFields("rate limited by server", map[string]interface{}{
				"url":         rawurl,
				"retry_after": fail.delay,
			})
			if err := c.wait(ctx, fail.delay); err != nil {
				return nil, fmt.Errorf("retry cancelled: %w", err)
			}
			// attempt counter untouched: 429 backoff is free

		case apierrors.ConsumesBudget:
			attempt++
			if attempt >= c.maxRetries {
				c.logger.ErrorWithFields("retry budget exhausted", map[string]interface{}{
					"url":      rawurl,
					"attempts": attempt,
					"error":    fail.err.Error(),
				})
				fail.err.Message = fmt.Sprintf("failed after %d attempts: %s", attempt, fail.err.Message)
				return nil, fail.err
			}

			delay := c.backoff.NextDelay(attempt)
			c.logger.WarnWithFields("retrying request", map[string]interface{}{
				"url":     rawurl,
				"attempt": attempt,
				"delay":   delay,
				"error":   fail.err.Error(),
			})
			if err := c.wait(ctx, delay); err != nil {
				return nil, fmt.Errorf("retry cancelled: %w", err)
			}
		}
	}
}

// send performs a single HTTP GET and classifies the outcome
func (c *Client) send(ctx context.Context, rawurl string, params url.Values) ([]byte, *failure) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return nil, terminal(&apierrors.Error{
			Kind:    apierrors.KindUnexpected,
			Message: fmt.Sprintf("failed to create request: %v", err),
		})
	}
	if params != nil {
		req.URL.RawQuery = params.Encode()
	}

	req.Header.Set("X-Riot-Token", c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		return nil, c.classifyTransportError(ctx, rawurl, err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, terminal(&apierrors.Error{
			Kind:    apierrors.KindNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", readErr),
			Code:    resp.StatusCode,
		})
	}

	c.logger.DebugWithFields("request completed", map[string]interface{}{
		"url":      rawurl,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil

	case resp.StatusCode == http.StatusNotFound:
		return nil, terminal(&apierrors.Error{
			Kind:    apierrors.KindNotFound,
			Message: fmt.Sprintf("resource not found: %s", rawurl),
			Code:    resp.StatusCode,
		})

	case resp.StatusCode == http.StatusForbidden:
		c.logger.ErrorWithFields("request forbidden", map[string]interface{}{
			"url":     rawurl,
			"api_key": maskKey(c.apiKey),
			"status":  resp.StatusCode,
		})
		return nil, terminal(&apierrors.Error{
			Kind:    apierrors.KindForbidden,
			Message: fmt.Sprintf("invalid or forbidden API key %s: %s", maskKey(c.apiKey), string(body)),
			Code:    resp.StatusCode,
		})

	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &failure{
			class: apierrors.FreeRetry,
			delay: retryAfter(resp.Header),
			err: &apierrors.Error{
				Kind:    apierrors.KindRateLimited,
				Message: "rate limit exceeded",
				Code:    resp.StatusCode,
			},
		}

	case resp.StatusCode >= 500:
		return nil, &failure{
			class: apierrors.ConsumesBudget,
			err: &apierrors.Error{
				Kind:    apierrors.KindServerError,
				Message: fmt.Sprintf("server error %d", resp.StatusCode),
				Code:    resp.StatusCode,
			},
		}

	default:
		return nil, terminal(&apierrors.Error{
			Kind:    apierrors.KindUnexpected,
			Message: fmt.Sprintf("unexpected status code %d: %s", resp.StatusCode, string(body)),
			Code:    resp.StatusCode,
		})
	}
}

// classifyTransportError sorts network-level failures into caller
// cancellation (terminal), timeouts (retryable) and other network
// errors (terminal). Caller cancellation is detected through ctx, not
// through errors.Is(err, context.DeadlineExceeded): an http.Client
// timeout expiry also satisfies that check but is a per-request
// timeout that must consume the retry budget, not end the call.
func (c *Client) classifyTransportError(ctx context.Context, rawurl string, err error) *failure {
	if ctx.Err() != nil {
		return terminal(&apierrors.Error{
			Kind:    apierrors.KindTimeout,
			Message: fmt.Sprintf("request cancelled: %v", err),
		})
	}

	var urlErr *url.Error
	if stderrors.As(err, &urlErr) && urlErr.Timeout() {
		c.logger.WarnWithFields("request timed out", map[string]interface{}{
			"url": rawurl,
		})
		return &failure{
			class: apierrors.ConsumesBudget,
			err: &apierrors.Error{
				Kind:    apierrors.KindTimeout,
				Message: "request timed out",
			},
		}
	}

	return terminal(&apierrors.Error{
		Kind:    apierrors.KindNetwork,
		Message: fmt.Sprintf("network error: %v", err),
	})
}

func terminal(err *apierrors.Error) *failure {
	return &failure{class: apierrors.Terminal, err: err}
}

// retryAfter reads the Retry-After header, defaulting to 5 seconds
func retryAfter(h http.Header) time.Duration {
	if v := h.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultRetryAfter
}

// getJSON executes a request and decodes the body into target. A body
// that does not match the expected shape surfaces as a malformed-result
// error from the calling endpoint method.
func (c *Client) getJSON(ctx context.Context, rawurl string, params url.Values, target interface{}) error {
	body, err := c.execute(ctx, rawurl, params)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, target); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse response", map[string]interface{}{
			"url":          rawurl,
			"error":        err.Error(),
			"body_preview": preview,
		})
		return &apierrors.Error{
			Kind:    apierrors.KindMalformed,
			Message: fmt.Sprintf("failed to parse response: %v", err),
		}
	}

	return nil
}

// maskKey truncates a credential to a bounded-length prefix for logs
// and error messages.
func maskKey(key string) string {
	if len(key) <= 10 {
		return "**********"
	}
	return key[:10] + "..."
}
