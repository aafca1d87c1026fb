// Package progress reports how far a launched simulation has advanced
// without flooding the terminal. Updates are throttled with a token
// bucket so the observer stays cheap no matter how fast steps land.
package progress

import (
	"fmt"
	"io"
	"sync"

	"golang.org/x/time/rate"

	"github.com/simpilot/simpilot/internal/ode"
)

// updatesPerSecond caps how often the reporter repaints its line.
const updatesPerSecond = 10

// Reporter renders a single carriage-return progress line for one run.
// A nil Reporter is valid and does nothing.
type Reporter struct {
	w     io.Writer
	name  string
	start float64
	span  float64

	limiter *rate.Limiter

	mu      sync.Mutex
	records int
}

// New builds a reporter for a run covering start to end. A nil writer
// yields a nil reporter, so callers can pass one through unconditionally.
func New(w io.Writer, name string, start, end float64) *Reporter {
	if w == nil {
		return nil
	}
	return &Reporter{
		w:       w,
		name:    name,
		start:   start,
		span:    end - start,
		limiter: rate.NewLimiter(rate.Limit(updatesPerSecond), 1),
	}
}

// Observe is the per-record callback handed to a running simulation.
// It repaints at most a few times per second and never blocks.
func (r *Reporter) Observe(t float64, y ode.State) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records++
	if !r.limiter.Allow() {
		return
	}
	r.paint(t)
}

// Done paints the final position and terminates the line. It must be
// called once the run has finished, whatever the outcome.
func (r *Reporter) Done(t float64) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paint(t)
	fmt.Fprintln(r.w)
}

func (r *Reporter) paint(t float64) {
	fmt.Fprintf(r.w, "\r%s  t=%-12.4f %5.1f%%  %d records", r.name, t, r.percent(t), r.records)
}

func (r *Reporter) percent(t float64) float64 {
	if r.span <= 0 {
		return 100
	}
	p := (t - r.start) / r.span * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
