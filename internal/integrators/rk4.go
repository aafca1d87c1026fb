package integrators

import (
	"fmt"

	"github.com/simpilot/simpilot/internal/ode"
)

// RK4 is the classical fourth-order Runge-Kutta engine with a fixed step.
type RK4 struct {
	step     float64
	maxSteps int

	t, end float64
	y      ode.State
	ready  bool

	k1, k2, k3, k4 ode.State
	scratch        ode.State
}

func NewRK4(step float64, maxSteps int) *RK4 {
	return &RK4{step: step, maxSteps: maxSteps}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(ode.State, n)
		r.k2 = make(ode.State, n)
		r.k3 = make(ode.State, n)
		r.k4 = make(ode.State, n)
		r.scratch = make(ode.State, n)
	}
}

func (r *RK4) Initialize(start, end float64, y0 ode.State) error {
	if end <= start {
		return fmt.Errorf("final time %g must be after initial time %g", end, start)
	}
	if len(y0) == 0 {
		return fmt.Errorf("empty initial state")
	}
	r.t, r.end = start, end
	r.y = y0.Clone()
	r.ready = true
	return nil
}

func (r *RK4) Integrate(sys ode.System) (ode.Stats, error) {
	var stats ode.Stats
	if !r.ready {
		return stats, ode.ErrNotInitialized
	}
	n := sys.Dim()
	if len(r.y) != n {
		return stats, fmt.Errorf("%w: state has %d components, model wants %d",
			ode.ErrDimensionMismatch, len(r.y), n)
	}
	r.ensureScratch(n)

	if err := sys.Record(r.t, r.y); err != nil {
		return stats, fmt.Errorf("recording state at t=%g: %w", r.t, err)
	}

	for r.t < r.end {
		if stats.Steps >= r.maxSteps {
			return stats, &ode.StepLimitError{Time: r.t, Steps: r.maxSteps}
		}
		dt := r.step
		if r.t+dt > r.end {
			dt = r.end - r.t
		}

		sys.Derivative(r.t, r.y, r.k1)

		for i := 0; i < n; i++ {
			r.scratch[i] = r.y[i] + dt*0.5*r.k1[i]
		}
		sys.Derivative(r.t+dt*0.5, r.scratch, r.k2)

		for i := 0; i < n; i++ {
			r.scratch[i] = r.y[i] + dt*0.5*r.k2[i]
		}
		sys.Derivative(r.t+dt*0.5, r.scratch, r.k3)

		for i := 0; i < n; i++ {
			r.scratch[i] = r.y[i] + dt*r.k3[i]
		}
		sys.Derivative(r.t+dt, r.scratch, r.k4)

		dt6 := dt / 6.0
		for i := 0; i < n; i++ {
			r.y[i] += dt6 * (r.k1[i] + 2*r.k2[i] + 2*r.k3[i] + r.k4[i])
		}
		r.t += dt
		stats.Steps++
		stats.Accepted++
		stats.Evals += 4

		if !r.y.IsValid() {
			return stats, fmt.Errorf("at t=%g: %w", r.t, ode.ErrInvalidState)
		}
		if err := sys.Record(r.t, r.y); err != nil {
			return stats, fmt.Errorf("recording state at t=%g: %w", r.t, err)
		}
	}
	return stats, nil
}

func (r *RK4) Snapshot() (ode.Snapshot, bool) {
	if !r.ready {
		return ode.Snapshot{}, false
	}
	return ode.Snapshot{Time: r.t, End: r.end, State: r.y.Clone(), Step: r.step}, true
}

func (r *RK4) Restore(s ode.Snapshot) error {
	if len(s.State) == 0 {
		return fmt.Errorf("snapshot carries no state")
	}
	r.t, r.end = s.Time, s.End
	r.y = s.State.Clone()
	if s.Step > 0 {
		r.step = s.Step
	}
	r.ready = true
	return nil
}
