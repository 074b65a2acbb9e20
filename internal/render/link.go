package render

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/i474232898/weather-station/internal/weather"
)

// Link brings up (or verifies) network connectivity.
type Link interface {
	Up(ctx context.Context) error
}

// DialLink considers the network up when a TCP connection to Addr succeeds.
type DialLink struct {
	Addr    string
	Timeout time.Duration
}

func (l DialLink) Up(ctx context.Context) error {
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", l.Addr)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %v", weather.ErrNetwork, l.Addr, err)
	}
	return conn.Close()
}
