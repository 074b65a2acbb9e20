package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-station/internal/weather"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func (b BackoffConfig) delay(attempt int) time.Duration {
	d := b.InitialInterval << uint(attempt)
	if b.MaxInterval > 0 && (d > b.MaxInterval || d <= 0) {
		d = b.MaxInterval
	}
	return d
}

var errNoHTTPClient = errors.New("http client not configured")

// statusError is a non-2xx provider response.
type statusError struct {
	code       int
	retryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.code, http.StatusText(e.code))
}

// temporary reports whether the same request may succeed later.
func (e *statusError) temporary() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}

// resilientClient sends GET requests through a rate limiter, a circuit
// breaker and an exponential backoff loop. Every failure it returns wraps
// weather.ErrNetwork.
type resilientClient struct {
	http    *http.Client
	backoff BackoffConfig
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// newResilientClient creates a client. rps <= 0 disables throttling.
func newResilientClient(name string, client *http.Client, backoff BackoffConfig, rps float64) *resilientClient {
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	return &resilientClient{
		http:    client,
		backoff: backoff,
		limiter: limiter,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
			// A rejected request says nothing about the provider's health.
			IsSuccessful: func(err error) bool {
				var se *statusError
				return err == nil || (errors.As(err, &se) && !se.temporary())
			},
		}),
	}
}

func (c *resilientClient) get(ctx context.Context, rawURL string) (*http.Response, error) {
	if c.http == nil {
		return nil, fmt.Errorf("%w: %w", weather.ErrNetwork, errNoHTTPClient)
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("%w: rate limit wait: %v", weather.ErrNetwork, err)
			}
		}

		resp, err := c.once(ctx, rawURL)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil || !retryable(err) {
			return nil, fmt.Errorf("%w: %w", weather.ErrNetwork, err)
		}
		lastErr = err
		if attempt >= c.backoff.MaxRetries {
			break
		}

		wait := c.backoff.delay(attempt)
		var se *statusError
		if errors.As(err, &se) && se.retryAfter > wait {
			wait = se.retryAfter
			if c.backoff.MaxInterval > 0 && wait > c.backoff.MaxInterval {
				wait = c.backoff.MaxInterval
			}
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %v", weather.ErrNetwork, ctx.Err())
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("%w: giving up after %d attempts: %w", weather.ErrNetwork, c.backoff.MaxRetries+1, lastErr)
}

func (c *resilientClient) once(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}
		resp.Body.Close()
		return nil, &statusError{
			code:       resp.StatusCode,
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	})
	if err != nil {
		return nil, err
	}
	return out.(*http.Response), nil
}

func retryable(err error) bool {
	var se *statusError
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return false
	case errors.As(err, &se):
		return se.temporary()
	default:
		return true
	}
}

// parseRetryAfter understands the delay-seconds form only.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
