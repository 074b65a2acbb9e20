package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/i474232898/weather-station/internal/render"
)

const (
	tagFullRefresh = "full-refresh"
	tagClock       = "clock"

	DefaultUpdateInterval = 10 * time.Minute
	DefaultClockInterval  = 30 * time.Second
)

// ErrRefreshInProgress is returned when a refresh is requested while one runs.
var ErrRefreshInProgress = errors.New("full refresh already in progress")

// Refresher runs one full refresh cycle.
type Refresher interface {
	Refresh(ctx context.Context, cycleID string, onPhase func(render.Phase)) render.Report
}

// ClockDrawer redraws the clock region when the formatted time changed.
type ClockDrawer interface {
	Draw(now time.Time, force bool) (bool, error)
}

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// Config holds scheduler timing.
type Config struct {
	UpdateInterval time.Duration
	ClockInterval  time.Duration
	Location       *time.Location
}

// State is a point-in-time view of the refresh state.
type State struct {
	Phase       string         `json:"phase"`
	InProgress  bool           `json:"inProgress"`
	Primed      bool           `json:"primed"`
	LastCycleID string         `json:"lastCycleId,omitempty"`
	LastReport  *render.Report `json:"lastReport,omitempty"`
}

// Scheduler drives the full refresh and the clock refresh against one shared
// render target. Both take the render lock; the clock job only ever tries it
// and skips its turn when a full refresh holds it.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	face      ClockDrawer
	clock     Clock
	cfg       Config
	logger    *zap.SugaredLogger

	ctx context.Context

	renderMu   sync.Mutex
	inProgress *atomic.Bool
	primed     *atomic.Bool
	phase      *atomic.Int32
	lastCycle  *atomic.String

	reportMu   sync.RWMutex
	lastReport *render.Report
}

// New creates a new Scheduler.
func New(refresher Refresher, face ClockDrawer, clock Clock, cfg Config, logger *zap.SugaredLogger) *Scheduler {
	if cfg.UpdateInterval <= 0 {
		cfg.UpdateInterval = DefaultUpdateInterval
	}
	if cfg.ClockInterval <= 0 {
		cfg.ClockInterval = DefaultClockInterval
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Scheduler{
		scheduler:  gocron.NewScheduler(cfg.Location),
		refresher:  refresher,
		face:       face,
		clock:      clock,
		cfg:        cfg,
		logger:     logger.With("component", "scheduler"),
		ctx:        context.Background(),
		inProgress: atomic.NewBool(false),
		primed:     atomic.NewBool(false),
		phase:      atomic.NewInt32(int32(render.PhaseIdle)),
		lastCycle:  atomic.NewString(""),
	}
}

// Start schedules both jobs and starts the underlying scheduler. The full
// refresh runs once immediately, then every UpdateInterval.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx = ctx

	_, err := s.scheduler.Every(s.cfg.UpdateInterval).Tag(tagFullRefresh).SingletonMode().Do(func() {
		s.RunFullRefresh(s.ctx)
	})
	if err != nil {
		return err
	}

	_, err = s.scheduler.Every(s.cfg.ClockInterval).Tag(tagClock).Do(func() {
		s.TickClock()
	})
	if err != nil {
		return err
	}

	s.logger.Infow("scheduler starting",
		"updateInterval", s.cfg.UpdateInterval.String(),
		"clockInterval", s.cfg.ClockInterval.String())
	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// RunFullRefresh runs one full refresh cycle while holding the render lock.
// The in-progress flag is set for the whole cycle.
func (s *Scheduler) RunFullRefresh(ctx context.Context) render.Report {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()

	s.inProgress.Store(true)
	defer func() {
		s.phase.Store(int32(render.PhaseIdle))
		s.inProgress.Store(false)
	}()

	cycleID := uuid.NewString()
	s.lastCycle.Store(cycleID)
	log := s.logger.With("cycle", cycleID)
	log.Infow("running full refresh")

	report := s.refresher.Refresh(ctx, cycleID, func(p render.Phase) {
		s.phase.Store(int32(p))
		log.Debugw("refresh phase", "phase", p.String())
	})

	s.reportMu.Lock()
	s.lastReport = &report
	s.reportMu.Unlock()
	s.primed.Store(true)

	log.Infow("completed full refresh",
		"duration", report.Duration.String(),
		"currentUpdated", report.CurrentUpdated,
		"forecastUpdated", report.ForecastUpdated,
		"days", report.Days)
	return report
}

// TickClock redraws the clock region if no full refresh is running and the
// formatted time changed. A skipped tick is not retried. It reports whether
// anything was drawn.
func (s *Scheduler) TickClock() bool {
	// Nothing to draw onto until the first full screen exists.
	if !s.primed.Load() {
		return false
	}
	if s.inProgress.Load() {
		s.logger.Debugw("clock tick skipped, full refresh in progress")
		return false
	}
	if !s.renderMu.TryLock() {
		s.logger.Debugw("clock tick skipped, render target busy")
		return false
	}
	defer s.renderMu.Unlock()

	drew, err := s.face.Draw(s.clock.Now(), false)
	if err != nil {
		s.logger.Warnw("clock draw failed", "error", err)
	}
	return drew
}

// TriggerRefresh runs the full refresh job now.
func (s *Scheduler) TriggerRefresh() error {
	if s.inProgress.Load() {
		return ErrRefreshInProgress
	}
	return s.scheduler.RunByTag(tagFullRefresh)
}

// InProgress reports whether a full refresh currently holds the render target.
func (s *Scheduler) InProgress() bool {
	return s.inProgress.Load()
}

// State returns the current refresh state.
func (s *Scheduler) State() State {
	s.reportMu.RLock()
	var last *render.Report
	if s.lastReport != nil {
		r := *s.lastReport
		last = &r
	}
	s.reportMu.RUnlock()

	return State{
		Phase:       render.Phase(s.phase.Load()).String(),
		InProgress:  s.inProgress.Load(),
		Primed:      s.primed.Load(),
		LastCycleID: s.lastCycle.Load(),
		LastReport:  last,
	}
}
