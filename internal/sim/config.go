package sim

import (
	"fmt"

	"github.com/simpilot/simpilot/internal/integrators"
	"github.com/simpilot/simpilot/internal/ode"
)

// Config is a simulation definition as read from a .conf file. U is the
// universe payload handed to the engine's derivative calls; everything the
// model needs must live inside it.
type Config[U ode.Model] struct {
	Resume      bool               `json:"resume"`
	InitialTime float64            `json:"initial_time"`
	FinalTime   float64            `json:"final_time"`
	Integrator  integrators.Scheme `json:"integrator"`
	Universe    U                  `json:"universe"`
}

// Validate checks the run bounds. The integrator scheme and the universe
// validate themselves while parsing.
func (c *Config[U]) Validate() error {
	if c.InitialTime >= c.FinalTime {
		return fmt.Errorf("final_time %g must be greater than initial_time %g",
			c.FinalTime, c.InitialTime)
	}
	return nil
}
