// Package timesync keeps a wall clock corrected against an NTP server and
// reports it in the display timezone.
package timesync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/beevik/ntp"
	"go.uber.org/zap"

	"github.com/i474232898/weather-station/internal/weather"
)

// QueryFunc queries an NTP server. It matches ntp.QueryWithOptions.
type QueryFunc func(host string, opt ntp.QueryOptions) (*ntp.Response, error)

// Clock is an NTP-corrected clock.
type Clock struct {
	server  string
	timeout time.Duration
	loc     *time.Location
	query   QueryFunc
	logger  *zap.SugaredLogger

	mu       sync.RWMutex
	offset   time.Duration
	lastSync time.Time
}

// NewClock creates a Clock for server reporting times in loc.
func NewClock(server string, timeout time.Duration, loc *time.Location, logger *zap.SugaredLogger) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Clock{
		server:  server,
		timeout: timeout,
		loc:     loc,
		query:   ntp.QueryWithOptions,
		logger:  logger.With("component", "timesync"),
	}
}

// WithQuery replaces the NTP query function, mainly for tests.
func (c *Clock) WithQuery(q QueryFunc) *Clock {
	c.query = q
	return c
}

// Sync queries the server and stores the clock offset. On failure the
// previous offset is kept.
func (c *Clock) Sync(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", weather.ErrNetwork, err)
	}

	resp, err := c.query(c.server, ntp.QueryOptions{Timeout: c.timeout})
	if err != nil {
		return fmt.Errorf("%w: ntp query %s: %v", weather.ErrNetwork, c.server, err)
	}
	if err := resp.Validate(); err != nil {
		return fmt.Errorf("%w: ntp response from %s: %v", weather.ErrNetwork, c.server, err)
	}

	c.mu.Lock()
	c.offset = resp.ClockOffset
	c.lastSync = time.Now()
	c.mu.Unlock()

	c.logger.Infow("time synchronized",
		"server", c.server,
		"offset", resp.ClockOffset.String(),
		"localTime", c.Now().Format("2006-01-02 15:04:05"))
	return nil
}

// Now returns the corrected current time in the display timezone.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	offset := c.offset
	c.mu.RUnlock()

	return time.Now().Add(offset).In(c.loc)
}

// LastSync returns when the last successful sync happened.
func (c *Clock) LastSync() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSync
}

// Location returns the display timezone.
func (c *Clock) Location() *time.Location {
	return c.loc
}
