package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/weather-station/internal/render"
)

type blockingRefresher struct {
	entered chan string
	release chan struct{}
	calls   int32
}

func newBlockingRefresher(block bool) *blockingRefresher {
	r := &blockingRefresher{entered: make(chan string, 8)}
	if block {
		r.release = make(chan struct{})
	}
	return r
}

func (r *blockingRefresher) Refresh(ctx context.Context, cycleID string, onPhase func(render.Phase)) render.Report {
	atomic.AddInt32(&r.calls, 1)
	onPhase(render.PhaseFetchingWeather)
	r.entered <- cycleID
	if r.release != nil {
		<-r.release
	}
	onPhase(render.PhaseRendering)
	return render.Report{CycleID: cycleID, Days: 4}
}

type countingFace struct {
	draws int32
	last  string
}

func (f *countingFace) Draw(now time.Time, force bool) (bool, error) {
	text := now.Format("15:04")
	if !force && text == f.last {
		return false, nil
	}
	atomic.AddInt32(&f.draws, 1)
	f.last = text
	return true, nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func waitFor(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case id := <-ch:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for refresh")
		return ""
	}
}

func TestTickClockBeforeFirstRefresh(t *testing.T) {
	face := &countingFace{}
	s := New(newBlockingRefresher(false), face, fixedClock{time.Now()}, Config{}, nil)

	if s.TickClock() {
		t.Fatal("clock must not draw before the first full refresh")
	}
	if atomic.LoadInt32(&face.draws) != 0 {
		t.Fatalf("expected no draws, got %d", face.draws)
	}
}

func TestTickClockRedrawsOnlyOnChange(t *testing.T) {
	face := &countingFace{}
	s := New(newBlockingRefresher(false), face, fixedClock{time.Date(2022, 8, 23, 14, 55, 0, 0, time.UTC)}, Config{}, nil)

	s.RunFullRefresh(context.Background())
	if !s.State().Primed {
		t.Fatal("expected scheduler to be primed after a full refresh")
	}

	if !s.TickClock() {
		t.Fatal("expected first tick to draw")
	}
	if s.TickClock() {
		t.Fatal("expected unchanged minute to be skipped")
	}
	if got := atomic.LoadInt32(&face.draws); got != 1 {
		t.Fatalf("expected 1 draw, got %d", got)
	}
}

func TestClockSkipsWhileFullRefreshRuns(t *testing.T) {
	face := &countingFace{}
	refresher := newBlockingRefresher(true)
	s := New(refresher, face, fixedClock{time.Now()}, Config{}, nil)

	// Prime with a first, non-blocking cycle.
	close(refresher.release)
	s.RunFullRefresh(context.Background())
	<-refresher.entered
	refresher.release = make(chan struct{})
	face.last = ""

	done := make(chan struct{})
	go func() {
		s.RunFullRefresh(context.Background())
		close(done)
	}()
	cycleID := waitFor(t, refresher.entered)

	for i := 0; i < 5; i++ {
		if s.TickClock() {
			t.Fatal("clock drew during a full refresh")
		}
	}
	if got := atomic.LoadInt32(&face.draws); got != 0 {
		t.Fatalf("expected no clock draws during refresh, got %d", got)
	}

	st := s.State()
	if !st.InProgress || st.Phase != render.PhaseFetchingWeather.String() || st.LastCycleID != cycleID {
		t.Fatalf("unexpected state during refresh: %+v", st)
	}
	if err := s.TriggerRefresh(); !errors.Is(err, ErrRefreshInProgress) {
		t.Fatalf("expected ErrRefreshInProgress, got %v", err)
	}

	close(refresher.release)
	<-done

	st = s.State()
	if st.InProgress || st.Phase != render.PhaseIdle.String() {
		t.Fatalf("unexpected state after refresh: %+v", st)
	}
	if st.LastReport == nil || st.LastReport.CycleID != cycleID {
		t.Fatalf("expected last report for %s, got %+v", cycleID, st.LastReport)
	}
	if !s.TickClock() {
		t.Fatal("expected clock to draw once the refresh finished")
	}
}

func TestStartRunsRefreshImmediately(t *testing.T) {
	refresher := newBlockingRefresher(false)
	s := New(refresher, &countingFace{}, fixedClock{time.Now()}, Config{
		UpdateInterval: time.Hour,
		ClockInterval:  time.Hour,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	first := waitFor(t, refresher.entered)

	deadline := time.Now().Add(2 * time.Second)
	for s.InProgress() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if err := s.TriggerRefresh(); err != nil {
		t.Fatalf("trigger: %v", err)
	}
	second := waitFor(t, refresher.entered)
	if first == second {
		t.Fatal("expected a new cycle id for the manual refresh")
	}
}
