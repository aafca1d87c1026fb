package ode

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Model is the right-hand side of an ODE system. Derivative writes
// f(t, y) into dy; implementations must not retain y or dy.
type Model interface {
	Dim() int
	Derivative(t float64, y State, dy State)
}

// Hamiltonian is implemented by models with a conserved energy. Recorded
// alongside the state when available.
type Hamiltonian interface {
	Energy(y State) float64
}

// System is what an integration engine drives during a run: the model plus
// the recording of accepted steps.
type System interface {
	Model
	Record(t float64, y State) error
}

// Integrator runs a system from its initial conditions to the final time.
// Initialize establishes bounds and initial state; Integrate is the single
// long blocking call of a run. Engines are single-use per run.
type Integrator interface {
	Initialize(start, end float64, y0 State) error
	Integrate(sys System) (Stats, error)
}

// Snapshotter is implemented by engines whose progress can be captured and
// restored, enabling resumed runs.
type Snapshotter interface {
	Snapshot() (Snapshot, bool)
	Restore(Snapshot) error
}

// Snapshot is a serializable capture of engine progress. End is the final
// time the interrupted run was heading for; a restored engine continues
// toward it without a fresh Initialize.
type Snapshot struct {
	Time  float64 `json:"time"`
	End   float64 `json:"end"`
	State State   `json:"state"`
	Step  float64 `json:"step"`
}

// Stats summarizes a finished integration.
type Stats struct {
	Steps    int
	Accepted int
	Rejected int
	Evals    int
}

func (s Stats) String() string {
	if s.Rejected > 0 {
		return fmt.Sprintf("%d steps (%d accepted, %d rejected), %d evaluations",
			s.Steps, s.Accepted, s.Rejected, s.Evals)
	}
	return fmt.Sprintf("%d steps, %d evaluations", s.Steps, s.Evals)
}
