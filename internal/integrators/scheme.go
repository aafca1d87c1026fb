// Package integrators provides the numerical engines behind a simulation
// run: fixed-step Euler, RK4 and leapfrog, and the adaptive Dormand-Prince
// 5(4) method. Engines implement [ode.Integrator] and are selected through
// a [Scheme] value embedded in the simulation configuration.
package integrators

import (
	"encoding/json"
	"fmt"
)

const (
	defaultStepSize  = 0.01
	defaultTolerance = 1e-6
	defaultMaxSteps  = 100000
)

// Scheme selects and parameterizes an integration engine. In configuration
// files it accepts either a bare scheme name ("rk4") or an object form
// ({"scheme": "dopri5", "tolerance": 1e-9}); it always re-serializes as the
// object form with defaults filled in, so the persisted copy of a
// configuration records the values that actually ran.
type Scheme struct {
	Name      string  `json:"scheme"`
	StepSize  float64 `json:"step_size,omitempty"`
	Tolerance float64 `json:"tolerance,omitempty"`
	MaxSteps  int     `json:"max_steps"`
	Snapshot  string  `json:"snapshot,omitempty"`
}

func knownScheme(name string) bool {
	switch name {
	case "euler", "rk4", "leapfrog", "dopri5":
		return true
	}
	return false
}

func (s *Scheme) setDefaults() {
	switch s.Name {
	case "euler", "rk4", "leapfrog":
		if s.StepSize == 0 {
			s.StepSize = defaultStepSize
		}
	case "dopri5":
		if s.Tolerance == 0 {
			s.Tolerance = defaultTolerance
		}
	}
	if s.MaxSteps == 0 {
		s.MaxSteps = defaultMaxSteps
	}
}

// Validate checks the scheme names a known engine and its parameters are
// usable.
func (s Scheme) Validate() error {
	if !knownScheme(s.Name) {
		return fmt.Errorf("unknown integration scheme %q", s.Name)
	}
	if s.StepSize < 0 {
		return fmt.Errorf("scheme %s: step size must be positive, got %g", s.Name, s.StepSize)
	}
	if s.Tolerance < 0 {
		return fmt.Errorf("scheme %s: tolerance must be positive, got %g", s.Name, s.Tolerance)
	}
	if s.MaxSteps < 0 {
		return fmt.Errorf("scheme %s: max steps must be positive, got %d", s.Name, s.MaxSteps)
	}
	return nil
}

func (s *Scheme) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*s = Scheme{Name: name}
	} else {
		type plain Scheme
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("parsing integrator scheme: %w", err)
		}
		*s = Scheme(p)
	}
	if err := s.Validate(); err != nil {
		return err
	}
	s.setDefaults()
	return nil
}
