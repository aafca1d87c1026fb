package sim

import (
	"fmt"

	"github.com/simpilot/simpilot/internal/fsutil"
	"github.com/simpilot/simpilot/internal/ode"
)

// energyReporter is the optional capability a universe payload can expose
// when only some of its models carry a conserved energy.
type energyReporter interface {
	Energy(y ode.State) (float64, bool)
}

// System bundles the universe payload with the run's result sink. It is
// what the engine drives: derivative evaluations go to the universe,
// accepted steps land in the sink as JSON lines. The sink's ownership
// transfers into the System and ends when the System is closed.
type System[U ode.Model] struct {
	universe U
	sink     *fsutil.OutputFile
	energy   func(y ode.State) (float64, bool)
	observer func(t float64, y ode.State)
}

// NewSystem takes ownership of sink and pairs it with the universe.
func NewSystem[U ode.Model](sink *fsutil.OutputFile, universe U) *System[U] {
	s := &System[U]{universe: universe, sink: sink}
	switch h := any(universe).(type) {
	case energyReporter:
		s.energy = h.Energy
	case ode.Hamiltonian:
		s.energy = func(y ode.State) (float64, bool) { return h.Energy(y), true }
	}
	return s
}

func (s *System[U]) Dim() int { return s.universe.Dim() }

func (s *System[U]) Derivative(t float64, y, dy ode.State) {
	s.universe.Derivative(t, y, dy)
}

type record struct {
	T      float64   `json:"t"`
	Y      ode.State `json:"y"`
	Energy *float64  `json:"energy,omitempty"`
}

// Record appends one accepted step to the result sink.
func (s *System[U]) Record(t float64, y ode.State) error {
	if s.sink == nil {
		return fmt.Errorf("result sink already closed")
	}
	rec := record{T: t, Y: y}
	if s.energy != nil {
		if e, ok := s.energy(y); ok {
			rec.Energy = &e
		}
	}
	if err := s.sink.WriteRecord(rec); err != nil {
		return err
	}
	if s.observer != nil {
		s.observer(t, y)
	}
	return nil
}

// Observe registers a callback invoked after each recorded step. Used for
// progress reporting; must be cheap.
func (s *System[U]) Observe(fn func(t float64, y ode.State)) {
	s.observer = fn
}

// Close flushes and closes the result sink. Safe to call more than once.
func (s *System[U]) Close() error {
	if s.sink == nil {
		return nil
	}
	err := s.sink.Close()
	s.sink = nil
	return err
}
