package integrators

import (
	"fmt"

	"github.com/simpilot/simpilot/internal/ode"
)

// Euler is the forward Euler engine. First order, fixed step; mostly useful
// as a baseline.
type Euler struct {
	step     float64
	maxSteps int

	t, end float64
	y      ode.State
	ready  bool

	dy ode.State
}

func NewEuler(step float64, maxSteps int) *Euler {
	return &Euler{step: step, maxSteps: maxSteps}
}

func (e *Euler) Initialize(start, end float64, y0 ode.State) error {
	if end <= start {
		return fmt.Errorf("final time %g must be after initial time %g", end, start)
	}
	if len(y0) == 0 {
		return fmt.Errorf("empty initial state")
	}
	e.t, e.end = start, end
	e.y = y0.Clone()
	e.ready = true
	return nil
}

func (e *Euler) Integrate(sys ode.System) (ode.Stats, error) {
	var stats ode.Stats
	if !e.ready {
		return stats, ode.ErrNotInitialized
	}
	n := sys.Dim()
	if len(e.y) != n {
		return stats, fmt.Errorf("%w: state has %d components, model wants %d",
			ode.ErrDimensionMismatch, len(e.y), n)
	}
	if len(e.dy) != n {
		e.dy = make(ode.State, n)
	}

	if err := sys.Record(e.t, e.y); err != nil {
		return stats, fmt.Errorf("recording state at t=%g: %w", e.t, err)
	}

	for e.t < e.end {
		if stats.Steps >= e.maxSteps {
			return stats, &ode.StepLimitError{Time: e.t, Steps: e.maxSteps}
		}
		dt := e.step
		if e.t+dt > e.end {
			dt = e.end - e.t
		}

		sys.Derivative(e.t, e.y, e.dy)
		for i := 0; i < n; i++ {
			e.y[i] += dt * e.dy[i]
		}
		e.t += dt
		stats.Steps++
		stats.Accepted++
		stats.Evals++

		if !e.y.IsValid() {
			return stats, fmt.Errorf("at t=%g: %w", e.t, ode.ErrInvalidState)
		}
		if err := sys.Record(e.t, e.y); err != nil {
			return stats, fmt.Errorf("recording state at t=%g: %w", e.t, err)
		}
	}
	return stats, nil
}

func (e *Euler) Snapshot() (ode.Snapshot, bool) {
	if !e.ready {
		return ode.Snapshot{}, false
	}
	return ode.Snapshot{Time: e.t, End: e.end, State: e.y.Clone(), Step: e.step}, true
}

func (e *Euler) Restore(s ode.Snapshot) error {
	if len(s.State) == 0 {
		return fmt.Errorf("snapshot carries no state")
	}
	e.t, e.end = s.Time, s.End
	e.y = s.State.Clone()
	if s.Step > 0 {
		e.step = s.Step
	}
	e.ready = true
	return nil
}
