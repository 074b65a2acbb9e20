package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-station/internal/weather"
)

func TestBackoffDelay(t *testing.T) {
	b := BackoffConfig{InitialInterval: 500 * time.Millisecond, MaxInterval: 3 * time.Second}

	want := []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second}
	for attempt, w := range want {
		if got := b.delay(attempt); got != w {
			t.Errorf("delay(%d) = %s, want %s", attempt, got, w)
		}
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := map[string]time.Duration{
		"":                              0,
		"3":                             3 * time.Second,
		"-1":                            0,
		"Wed, 21 Oct 2015 07:28:00 GMT": 0,
	}
	for in, want := range tests {
		if got := parseRetryAfter(in); got != want {
			t.Errorf("parseRetryAfter(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"transport", errors.New("connection reset"), true},
		{"rate limited", &statusError{code: http.StatusTooManyRequests}, true},
		{"server error", &statusError{code: http.StatusBadGateway}, true},
		{"unauthorized", &statusError{code: http.StatusUnauthorized}, false},
		{"not found", &statusError{code: http.StatusNotFound}, false},
		{"breaker open", gobreaker.ErrOpenState, false},
	}

	for _, tt := range tests {
		if got := retryable(tt.err); got != tt.want {
			t.Errorf("%s: retryable = %v, want %v", tt.name, got, tt.want)
		}
	}
}

// Rejected requests must not open the breaker for later, valid ones.
func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newResilientClient("test", srv.Client(), BackoffConfig{InitialInterval: time.Millisecond}, 0)
	for i := 0; i < 10; i++ {
		_, err := c.get(context.Background(), srv.URL)
		if !errors.Is(err, weather.ErrNetwork) {
			t.Fatalf("attempt %d: expected ErrNetwork, got %v", i, err)
		}
		if errors.Is(err, gobreaker.ErrOpenState) {
			t.Fatalf("attempt %d: breaker opened on client errors", i)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 10 {
		t.Fatalf("expected 10 requests to reach the server, got %d", got)
	}
}

func TestServerErrorsTripBreaker(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newResilientClient("test", srv.Client(), BackoffConfig{InitialInterval: time.Millisecond}, 0)
	var last error
	for i := 0; i < 10; i++ {
		_, last = c.get(context.Background(), srv.URL)
	}
	if !errors.Is(last, gobreaker.ErrOpenState) {
		t.Fatalf("expected open breaker, got %v", last)
	}
	if got := atomic.LoadInt32(&calls); got != 6 {
		t.Fatalf("expected 6 requests before the breaker opened, got %d", got)
	}
}

func TestGetWithoutHTTPClient(t *testing.T) {
	c := newResilientClient("test", nil, BackoffConfig{InitialInterval: time.Millisecond}, 0)
	if _, err := c.get(context.Background(), "http://example.invalid"); !errors.Is(err, errNoHTTPClient) {
		t.Fatalf("expected errNoHTTPClient, got %v", err)
	}
}
