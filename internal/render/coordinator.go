// Package render sequences a full screen refresh and draws the clock region.
package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/weather-station/internal/display"
	"github.com/i474232898/weather-station/internal/weather"
)

// TimeSource synchronizes and reports wall-clock time.
type TimeSource interface {
	Sync(ctx context.Context) error
	Now() time.Time
}

// DataService refreshes and exposes stored weather data.
type DataService interface {
	UpdateCurrent(ctx context.Context) error
	UpdateForecast(ctx context.Context) error
	Snapshot() weather.Snapshot
}

// Archiver persists the last good snapshot.
type Archiver interface {
	Save(ctx context.Context, snap weather.Snapshot) error
}

// Options configures a Coordinator.
type Options struct {
	Location *time.Location
	Metric   bool
	// Archive is optional.
	Archive Archiver
}

// Report summarizes one refresh cycle.
type Report struct {
	CycleID         string        `json:"cycleId"`
	StartedAt       time.Time     `json:"startedAt"`
	Duration        time.Duration `json:"duration"`
	LinkUp          bool          `json:"linkUp"`
	TimeSynced      bool          `json:"timeSynced"`
	CurrentUpdated  bool          `json:"currentUpdated"`
	ForecastUpdated bool          `json:"forecastUpdated"`
	Days            int           `json:"days"`
}

// Coordinator runs the full refresh cycle: progress, network, time sync,
// fetches, aggregation, icon selection and the full-screen draw.
type Coordinator struct {
	surface display.Surface
	link    Link
	clock   TimeSource
	data    DataService
	face    *ClockFace
	opts    Options
	logger  *zap.SugaredLogger
}

// NewCoordinator creates a Coordinator. link may be nil.
func NewCoordinator(surface display.Surface, link Link, clock TimeSource, data DataService, face *ClockFace, opts Options, logger *zap.SugaredLogger) *Coordinator {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Coordinator{
		surface: surface,
		link:    link,
		clock:   clock,
		data:    data,
		face:    face,
		opts:    opts,
		logger:  logger.With("component", "render"),
	}
}

// Refresh runs one full refresh cycle. Every step is best effort: failures
// are logged and the cycle always ends with a full draw of whatever data is
// stored. onPhase is called on each phase transition and may be nil.
func (c *Coordinator) Refresh(ctx context.Context, cycleID string, onPhase func(Phase)) Report {
	enter := func(p Phase) {
		if onPhase != nil {
			onPhase(p)
		}
	}
	log := c.logger.With("cycle", cycleID)
	report := Report{CycleID: cycleID, StartedAt: time.Now()}

	enter(PhaseSyncingTime)
	c.surface.Clear()

	c.progress(log, "Starting WiFi...", 10)
	if c.link != nil {
		if err := c.link.Up(ctx); err != nil {
			log.Warnw("network bring-up failed", "error", err)
		} else {
			report.LinkUp = true
		}
	}

	c.progress(log, "Synchronizing time...", 30)
	if err := c.clock.Sync(ctx); err != nil {
		log.Warnw("time sync failed, using unsynchronized clock", "error", err)
	} else {
		report.TimeSynced = true
	}

	enter(PhaseFetchingWeather)
	c.progress(log, "Updating weather...", 70)
	if err := c.data.UpdateCurrent(ctx); err != nil {
		log.Warnw("current weather update failed, keeping stored data", "error", err)
	} else {
		report.CurrentUpdated = true
	}

	enter(PhaseFetchingForecast)
	c.progress(log, "Updating forecast...", 90)
	if err := c.data.UpdateForecast(ctx); err != nil {
		switch {
		case errors.Is(err, weather.ErrPartialData):
			log.Warnw("forecast incomplete", "error", err)
			report.ForecastUpdated = !errors.Is(err, weather.ErrEmptyForecast)
		default:
			log.Warnw("forecast update failed, keeping stored data", "error", err)
		}
	} else {
		report.ForecastUpdated = true
	}

	snap := c.data.Snapshot()
	if c.opts.Archive != nil && (report.CurrentUpdated || report.ForecastUpdated) {
		if err := c.opts.Archive.Save(ctx, snap); err != nil {
			log.Warnw("failed to archive snapshot", "error", err)
		}
	}

	enter(PhaseRendering)
	c.progress(log, "Ready", 100)

	days := weather.AggregateDays(snap.ForecastSlice(), c.opts.Location, weather.DaySummaries)
	report.Days = len(days)
	for _, d := range days {
		log.Debugw("day forecast",
			"weekday", d.Weekday.String(),
			"code", d.Code,
			"hour", d.Hour,
			"min", d.MinTemp,
			"max", d.MaxTemp)
	}

	c.surface.Clear()
	c.drawCurrentWeather(log, snap.Current)
	c.surface.DrawHLine(10, 120+currentTop, c.surface.Width()-30)
	c.drawForecast(log, days)
	c.surface.DrawHLine(10, clockTop-5, c.surface.Width()-30)

	if _, err := c.face.Draw(c.clock.Now(), true); err != nil {
		log.Warnw("failed to flush frame", "error", err)
	}

	report.Duration = time.Since(report.StartedAt)
	return report
}

// Screen layout, portrait 240x320.
const (
	currentTop  = 0
	forecastTop = 130
	progressTop = 210
	progressBar = 260
)

func (c *Coordinator) progress(log *zap.SugaredLogger, text string, percent int) {
	w := c.surface.Width()
	c.surface.FillRect(0, progressTop, w, 40)
	c.surface.DrawText(w/2, progressTop, 18, text)
	c.surface.DrawProgressBar(50, progressBar, w-100, 15, percent)
	if err := c.surface.Flush(); err != nil {
		log.Debugw("failed to flush progress", "error", err)
	}
}

func (c *Coordinator) drawCurrentWeather(log *zap.SugaredLogger, cur weather.CurrentWeather) {
	w := c.surface.Width()
	centerX := w / 2

	if cur.IsZero() {
		c.surface.DrawText(centerX, 30+currentTop, 22, "No weather data")
		return
	}

	c.surface.DrawBitmap(display.Asset{Set: display.SetWeather, Name: string(c.icon(log, cur.Condition()))}, 10, 30+currentTop)
	c.surface.DrawText(centerX, currentTop, 22, cur.Description)
	c.surface.DrawText(centerX+10, 30+currentTop, 32, fmt.Sprintf("%.1f°", cur.Temperature))
	c.surface.DrawText(centerX+20, 68+currentTop, 16, fmt.Sprintf("%d %%", cur.Humidity))
	c.surface.DrawText(centerX+5, 90+currentTop, 16, fmt.Sprintf("%d hPa", cur.Pressure))

	c.surface.DrawBitmap(display.Asset{Set: display.SetWind, Name: weather.WindDirection(cur.WindDeg)}, w-60, 35+currentTop)
	unit := "mph"
	if c.opts.Metric {
		unit = "m/s"
	}
	c.surface.DrawText(w-40, 90+currentTop, 16, fmt.Sprintf("%.0f %s", cur.WindSpeed, unit))
}

func (c *Coordinator) drawForecast(log *zap.SugaredLogger, days []weather.DaySummary) {
	w := c.surface.Width()
	if len(days) == 0 {
		c.surface.DrawText(w/2, 25+forecastTop, 16, "No forecast data")
		return
	}

	widthEighth := w / 8
	for i, d := range days {
		x := widthEighth * (i*2 + 1)
		c.surface.DrawText(x, forecastTop, 18, strings.ToUpper(d.Weekday.String()[:3]))
		c.surface.DrawText(x, 25+forecastTop, 16, fmt.Sprintf("%.0f-%.0f°", d.MinTemp, d.MaxTemp))
		icon := c.icon(log, weather.ForecastCondition(d.Code))
		c.surface.DrawBitmap(display.Asset{Set: display.SetWeatherSmall, Name: string(icon)}, x-25, 45+forecastTop)
	}
}

func (c *Coordinator) icon(log *zap.SugaredLogger, cond weather.Condition) weather.Icon {
	icon := weather.ResolveIcon(cond)
	if icon == weather.IconUnknown {
		log.Warnw("no icon for condition", "code", cond.Code, "night", cond.Night, "error", weather.ErrUnknownCondition)
	}
	return icon
}
