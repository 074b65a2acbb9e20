package render

import (
	"time"

	"github.com/i474232898/weather-station/internal/display"
)

// TimeFormat selects the on-screen clock and date layout.
type TimeFormat struct {
	Time string
	Date string
}

var (
	// FormatEU renders "14:55" and "23.08.2022".
	FormatEU = TimeFormat{Time: "15:04", Date: "02.01.2006"}
	// FormatUS renders "02:55 pm" and "08/23/2022".
	FormatUS = TimeFormat{Time: "03:04 pm", Date: "01/02/2006"}
)

// Clock region geometry, portrait 240 wide.
const (
	clockTop    = 235
	clockHeight = 88
)

// ClockFace draws the time and date region and remembers the last rendered
// time string so unchanged minutes are not redrawn.
// It is not safe for concurrent use; callers hold the render lock.
type ClockFace struct {
	surface display.Surface
	format  TimeFormat
	last    string
}

// NewClockFace creates a ClockFace drawing onto surface.
func NewClockFace(surface display.Surface, format TimeFormat) *ClockFace {
	if format.Time == "" {
		format = FormatEU
	}
	return &ClockFace{surface: surface, format: format}
}

// Draw renders the clock for now. Unless force is set, nothing is drawn when
// the formatted time equals the last rendered one. It reports whether it drew.
func (c *ClockFace) Draw(now time.Time, force bool) (bool, error) {
	text := now.Format(c.format.Time)
	if !force && c.last != "" && text == c.last {
		return false, nil
	}

	centerX := c.surface.Width() / 2
	c.surface.FillRect(0, clockTop, c.surface.Width(), clockHeight)
	c.surface.DrawText(centerX, clockTop, 64, text)
	c.surface.DrawText(centerX, clockTop+65, 12, now.Weekday().String()+", "+now.Format(c.format.Date))

	c.last = text
	return true, c.surface.Flush()
}

// Last returns the last rendered time string.
func (c *ClockFace) Last() string {
	return c.last
}
