package integrators

import (
	"fmt"

	"github.com/simpilot/simpilot/internal/ode"
)

// Leapfrog is a symplectic kick-drift-kick engine for separable systems.
// It expects the state laid out as positions followed by velocities, with
// the model's derivative returning velocities then accelerations.
type Leapfrog struct {
	step     float64
	maxSteps int

	t, end float64
	y      ode.State
	ready  bool

	dy, dyNew, scratch ode.State
}

func NewLeapfrog(step float64, maxSteps int) *Leapfrog {
	return &Leapfrog{step: step, maxSteps: maxSteps}
}

func (l *Leapfrog) ensureScratch(n int) {
	if len(l.scratch) != n {
		l.dy = make(ode.State, n)
		l.dyNew = make(ode.State, n)
		l.scratch = make(ode.State, n)
	}
}

func (l *Leapfrog) Initialize(start, end float64, y0 ode.State) error {
	if end <= start {
		return fmt.Errorf("final time %g must be after initial time %g", end, start)
	}
	if len(y0) == 0 {
		return fmt.Errorf("empty initial state")
	}
	l.t, l.end = start, end
	l.y = y0.Clone()
	l.ready = true
	return nil
}

func (l *Leapfrog) Integrate(sys ode.System) (ode.Stats, error) {
	var stats ode.Stats
	if !l.ready {
		return stats, ode.ErrNotInitialized
	}
	n := sys.Dim()
	if len(l.y) != n {
		return stats, fmt.Errorf("%w: state has %d components, model wants %d",
			ode.ErrDimensionMismatch, len(l.y), n)
	}
	if n%2 != 0 {
		return stats, fmt.Errorf("leapfrog needs positions followed by velocities, got odd dimension %d", n)
	}
	half := n / 2
	l.ensureScratch(n)

	if err := sys.Record(l.t, l.y); err != nil {
		return stats, fmt.Errorf("recording state at t=%g: %w", l.t, err)
	}

	for l.t < l.end {
		if stats.Steps >= l.maxSteps {
			return stats, &ode.StepLimitError{Time: l.t, Steps: l.maxSteps}
		}
		dt := l.step
		if l.t+dt > l.end {
			dt = l.end - l.t
		}
		halfDt := dt * 0.5

		sys.Derivative(l.t, l.y, l.dy)

		for i := 0; i < half; i++ {
			l.scratch[half+i] = l.y[half+i] + l.dy[half+i]*halfDt
		}
		for i := 0; i < half; i++ {
			l.scratch[i] = l.y[i] + l.scratch[half+i]*dt
		}

		sys.Derivative(l.t+dt, l.scratch, l.dyNew)

		for i := 0; i < half; i++ {
			l.y[i] = l.scratch[i]
			l.y[half+i] = l.scratch[half+i] + l.dyNew[half+i]*halfDt
		}
		l.t += dt
		stats.Steps++
		stats.Accepted++
		stats.Evals += 2

		if !l.y.IsValid() {
			return stats, fmt.Errorf("at t=%g: %w", l.t, ode.ErrInvalidState)
		}
		if err := sys.Record(l.t, l.y); err != nil {
			return stats, fmt.Errorf("recording state at t=%g: %w", l.t, err)
		}
	}
	return stats, nil
}

func (l *Leapfrog) Snapshot() (ode.Snapshot, bool) {
	if !l.ready {
		return ode.Snapshot{}, false
	}
	return ode.Snapshot{Time: l.t, End: l.end, State: l.y.Clone(), Step: l.step}, true
}

func (l *Leapfrog) Restore(s ode.Snapshot) error {
	if len(s.State) == 0 {
		return fmt.Errorf("snapshot carries no state")
	}
	l.t, l.end = s.Time, s.End
	l.y = s.State.Clone()
	if s.Step > 0 {
		l.step = s.Step
	}
	l.ready = true
	return nil
}
