package integrators

import (
	"fmt"
	"math"

	"github.com/simpilot/simpilot/internal/ode"
)

// Dormand-Prince coefficients (5th order, embedded 4th-order error estimate)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// Dopri5 is the adaptive Dormand-Prince 5(4) engine. The step size is
// grown and shrunk to keep the embedded error estimate under the
// tolerance; rejected attempts count against the step budget.
type Dopri5 struct {
	tol      float64
	maxSteps int

	safety   float64
	minScale float64
	maxScale float64

	t, end float64
	y      ode.State
	h      float64
	ready  bool

	k1, k2, k3, k4, k5, k6, k7 ode.State
	ynew, scratch              ode.State
}

func NewDopri5(tol float64, maxSteps int) *Dopri5 {
	return &Dopri5{
		tol:      tol,
		maxSteps: maxSteps,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (d *Dopri5) ensureScratch(n int) {
	if len(d.k1) != n {
		d.k1 = make(ode.State, n)
		d.k2 = make(ode.State, n)
		d.k3 = make(ode.State, n)
		d.k4 = make(ode.State, n)
		d.k5 = make(ode.State, n)
		d.k6 = make(ode.State, n)
		d.k7 = make(ode.State, n)
		d.ynew = make(ode.State, n)
		d.scratch = make(ode.State, n)
	}
}

func (d *Dopri5) Initialize(start, end float64, y0 ode.State) error {
	if end <= start {
		return fmt.Errorf("final time %g must be after initial time %g", end, start)
	}
	if len(y0) == 0 {
		return fmt.Errorf("empty initial state")
	}
	d.t, d.end = start, end
	d.y = y0.Clone()
	d.h = 0
	d.ready = true
	return nil
}

func (d *Dopri5) Integrate(sys ode.System) (ode.Stats, error) {
	var stats ode.Stats
	if !d.ready {
		return stats, ode.ErrNotInitialized
	}
	n := sys.Dim()
	if len(d.y) != n {
		return stats, fmt.Errorf("%w: state has %d components, model wants %d",
			ode.ErrDimensionMismatch, len(d.y), n)
	}
	d.ensureScratch(n)

	if d.h <= 0 {
		d.h = (d.end - d.t) / 100
	}
	hMin := (d.end - d.t) * 1e-14

	if err := sys.Record(d.t, d.y); err != nil {
		return stats, fmt.Errorf("recording state at t=%g: %w", d.t, err)
	}

	for d.t < d.end {
		if stats.Steps >= d.maxSteps {
			return stats, &ode.StepLimitError{Time: d.t, Steps: d.maxSteps}
		}
		h := d.h
		if d.t+h > d.end {
			h = d.end - d.t
		}

		sys.Derivative(d.t, d.y, d.k1)

		for i := 0; i < n; i++ {
			d.scratch[i] = d.y[i] + h*b21*d.k1[i]
		}
		sys.Derivative(d.t+a2*h, d.scratch, d.k2)

		for i := 0; i < n; i++ {
			d.scratch[i] = d.y[i] + h*(b31*d.k1[i]+b32*d.k2[i])
		}
		sys.Derivative(d.t+a3*h, d.scratch, d.k3)

		for i := 0; i < n; i++ {
			d.scratch[i] = d.y[i] + h*(b41*d.k1[i]+b42*d.k2[i]+b43*d.k3[i])
		}
		sys.Derivative(d.t+a4*h, d.scratch, d.k4)

		for i := 0; i < n; i++ {
			d.scratch[i] = d.y[i] + h*(b51*d.k1[i]+b52*d.k2[i]+b53*d.k3[i]+b54*d.k4[i])
		}
		sys.Derivative(d.t+a5*h, d.scratch, d.k5)

		for i := 0; i < n; i++ {
			d.scratch[i] = d.y[i] + h*(b61*d.k1[i]+b62*d.k2[i]+b63*d.k3[i]+b64*d.k4[i]+b65*d.k5[i])
		}
		sys.Derivative(d.t+h, d.scratch, d.k6)

		for i := 0; i < n; i++ {
			d.ynew[i] = d.y[i] + h*(c1*d.k1[i]+c3*d.k3[i]+c4*d.k4[i]+c5*d.k5[i]+c6*d.k6[i])
		}
		sys.Derivative(d.t+h, d.ynew, d.k7)

		stats.Steps++
		stats.Evals += 7

		errMax := 0.0
		for i := 0; i < n; i++ {
			errEst := h * (dc1*d.k1[i] + dc3*d.k3[i] + dc4*d.k4[i] + dc5*d.k5[i] + dc6*d.k6[i] + dc7*d.k7[i])
			scale := math.Abs(d.y[i]) + math.Abs(h*d.k1[i]) + 1e-10
			errMax = math.Max(errMax, math.Abs(errEst)/scale)
		}
		errRatio := errMax / d.tol

		if errRatio > 1 {
			stats.Rejected++
			d.h = h * math.Max(d.minScale, d.safety*math.Pow(errRatio, -0.25))
			if d.h < hMin {
				return stats, fmt.Errorf("at t=%g: %w", d.t, ode.ErrStepTooSmall)
			}
			continue
		}

		stats.Accepted++
		copy(d.y, d.ynew)
		d.t += h
		if errRatio > 0 {
			d.h = h * math.Min(d.maxScale, d.safety*math.Pow(errRatio, -0.2))
		} else {
			d.h = h * d.maxScale
		}

		if !d.y.IsValid() {
			return stats, fmt.Errorf("at t=%g: %w", d.t, ode.ErrInvalidState)
		}
		if err := sys.Record(d.t, d.y); err != nil {
			return stats, fmt.Errorf("recording state at t=%g: %w", d.t, err)
		}
	}
	return stats, nil
}

func (d *Dopri5) Snapshot() (ode.Snapshot, bool) {
	if !d.ready {
		return ode.Snapshot{}, false
	}
	return ode.Snapshot{Time: d.t, End: d.end, State: d.y.Clone(), Step: d.h}, true
}

func (d *Dopri5) Restore(s ode.Snapshot) error {
	if len(s.State) == 0 {
		return fmt.Errorf("snapshot carries no state")
	}
	d.t, d.end = s.Time, s.End
	d.y = s.State.Clone()
	if s.Step > 0 {
		d.h = s.Step
	}
	d.ready = true
	return nil
}
