// Package universe provides the bundled simulation payloads. A [Spec] is
// the "universe" section of a configuration file: it names a model and
// carries its parameters, and hands the run lifecycle an [ode.Model] plus
// the initial state to integrate from.
package universe

import (
	"encoding/json"
	"fmt"

	"github.com/simpilot/simpilot/internal/ode"
)

type model interface {
	ode.Model
	InitialState() ode.State
	normalize()
	validate() error
}

// Spec selects one of the bundled models. Exactly one parameter section may
// be present; a missing section means model defaults. Unknown model names
// fail at parse time, before any run artifacts exist.
type Spec struct {
	Model    string    `json:"model"`
	Pendulum *Pendulum `json:"pendulum,omitempty"`
	Lorenz   *Lorenz   `json:"lorenz,omitempty"`
	TwoBody  *TwoBody  `json:"twobody,omitempty"`
}

func (s *Spec) active() model {
	switch s.Model {
	case "pendulum":
		if s.Pendulum != nil {
			return s.Pendulum
		}
	case "lorenz":
		if s.Lorenz != nil {
			return s.Lorenz
		}
	case "twobody":
		if s.TwoBody != nil {
			return s.TwoBody
		}
	}
	return nil
}

func (s *Spec) UnmarshalJSON(data []byte) error {
	type plain Spec
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("parsing universe: %w", err)
	}
	*s = Spec(p)
	return s.Validate()
}

// Validate checks the model name, rejects parameter sections that do not
// belong to it, and fills defaults so the re-serialized spec records the
// values that actually run.
func (s *Spec) Validate() error {
	sections := 0
	for _, present := range []bool{s.Pendulum != nil, s.Lorenz != nil, s.TwoBody != nil} {
		if present {
			sections++
		}
	}
	if sections > 1 {
		return fmt.Errorf("universe: more than one parameter section given")
	}

	switch s.Model {
	case "":
		return fmt.Errorf("universe: missing model name")
	case "pendulum", "lorenz", "twobody":
	default:
		return fmt.Errorf("universe: unknown model %q", s.Model)
	}

	if sections == 1 && s.active() == nil {
		return fmt.Errorf("universe: parameter section does not match model %q", s.Model)
	}

	switch s.Model {
	case "pendulum":
		if s.Pendulum == nil {
			s.Pendulum = &Pendulum{}
		}
	case "lorenz":
		if s.Lorenz == nil {
			s.Lorenz = &Lorenz{}
		}
	case "twobody":
		if s.TwoBody == nil {
			s.TwoBody = &TwoBody{}
		}
	}

	m := s.active()
	m.normalize()
	if err := m.validate(); err != nil {
		return fmt.Errorf("universe %s: %w", s.Model, err)
	}
	return nil
}

func (s *Spec) Dim() int {
	if m := s.active(); m != nil {
		return m.Dim()
	}
	return 0
}

func (s *Spec) Derivative(t float64, y, dy ode.State) {
	s.active().Derivative(t, y, dy)
}

// InitialState returns the state vector the model starts from.
func (s *Spec) InitialState() ode.State {
	if m := s.active(); m != nil {
		return m.InitialState()
	}
	return nil
}

// Energy reports the conserved energy of the current model, when it has
// one.
func (s *Spec) Energy(y ode.State) (float64, bool) {
	if h, ok := s.active().(ode.Hamiltonian); ok {
		return h.Energy(y), true
	}
	return 0, false
}
