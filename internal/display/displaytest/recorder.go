// Package displaytest provides a display.Surface that records calls.
package displaytest

import (
	"fmt"
	"strings"
	"sync"

	"github.com/i474232898/weather-station/internal/display"
)

// Call is one recorded surface operation.
type Call struct {
	Op   string
	Args string
}

func (c Call) String() string {
	return c.Op + "(" + c.Args + ")"
}

// Recorder is a display.Surface that records every call. It is safe for
// concurrent use so tests can detect overlapping writers.
type Recorder struct {
	W, H int

	mu    sync.Mutex
	calls []Call
	// FlushErr is returned by Flush when set.
	FlushErr error
}

var _ display.Surface = (*Recorder)(nil)

// NewRecorder creates a 240x320 recorder.
func NewRecorder() *Recorder {
	return &Recorder{W: 240, H: 320}
}

func (r *Recorder) record(op string, format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: op, Args: fmt.Sprintf(format, args...)})
}

func (r *Recorder) Width() int  { return r.W }
func (r *Recorder) Height() int { return r.H }

func (r *Recorder) Clear() { r.record("Clear", "") }

func (r *Recorder) FillRect(x, y, w, h int) { r.record("FillRect", "%d,%d,%d,%d", x, y, w, h) }

func (r *Recorder) DrawText(x, y, size int, text string) {
	r.record("DrawText", "%d,%d,%d,%s", x, y, size, text)
}

func (r *Recorder) DrawBitmap(asset display.Asset, x, y int) {
	r.record("DrawBitmap", "%s,%d,%d", asset.String(), x, y)
}

func (r *Recorder) DrawProgressBar(x, y, w, h, percent int) {
	r.record("DrawProgressBar", "%d,%d,%d,%d,%d", x, y, w, h, percent)
}

func (r *Recorder) DrawHLine(x, y, w int) { r.record("DrawHLine", "%d,%d,%d", x, y, w) }

func (r *Recorder) Flush() error {
	r.record("Flush", "")
	return r.FlushErr
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Count returns how many calls of op were recorded.
func (r *Recorder) Count(op string) int {
	n := 0
	for _, c := range r.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Texts returns the text argument of every DrawText call.
func (r *Recorder) Texts() []string {
	var out []string
	for _, c := range r.Calls() {
		if c.Op != "DrawText" {
			continue
		}
		parts := strings.SplitN(c.Args, ",", 4)
		if len(parts) == 4 {
			out = append(out, parts[3])
		}
	}
	return out
}

// Bitmaps returns the asset of every DrawBitmap call.
func (r *Recorder) Bitmaps() []string {
	var out []string
	for _, c := range r.Calls() {
		if c.Op != "DrawBitmap" {
			continue
		}
		out = append(out, strings.SplitN(c.Args, ",", 2)[0])
	}
	return out
}

// Reset drops all recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
