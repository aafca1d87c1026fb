package config

import (
	"sort"

	"github.com/simpilot/simpilot/internal/integrators"
	"github.com/simpilot/simpilot/internal/sim"
	"github.com/simpilot/simpilot/internal/universe"
)

// Starters are ready to run simulation configs for the init command,
// keyed by model and variant.
var Starters = map[string]map[string]*sim.Config[*universe.Spec]{
	"pendulum": {
		"default": {
			FinalTime:  10,
			Integrator: integrators.Scheme{Name: "rk4", StepSize: 0.01, MaxSteps: 100000},
			Universe: &universe.Spec{Model: "pendulum", Pendulum: &universe.Pendulum{
				Mass: 1, Length: 1, Damping: 0.1, Gravity: 9.81, Theta: 0.5,
			}},
		},
		"undamped": {
			FinalTime:  30,
			Integrator: integrators.Scheme{Name: "leapfrog", StepSize: 0.005, MaxSteps: 100000},
			Universe: &universe.Spec{Model: "pendulum", Pendulum: &universe.Pendulum{
				Mass: 1, Length: 1, Gravity: 9.81, Theta: 2.5,
			}},
		},
		"spinning": {
			FinalTime:  30,
			Integrator: integrators.Scheme{Name: "rk4", StepSize: 0.01, MaxSteps: 100000},
			Universe: &universe.Spec{Model: "pendulum", Pendulum: &universe.Pendulum{
				Mass: 1, Length: 1, Damping: 0.05, Gravity: 9.81, Theta: 0.1, Omega: 8,
			}},
		},
	},
	"lorenz": {
		"default": {
			FinalTime:  50,
			Integrator: integrators.Scheme{Name: "dopri5", Tolerance: 1e-6, MaxSteps: 500000},
			Universe: &universe.Spec{Model: "lorenz", Lorenz: &universe.Lorenz{
				Sigma: 10, Rho: 28, Beta: 8.0 / 3.0, X: 1, Y: 1, Z: 1,
			}},
		},
		"gentle": {
			FinalTime:  50,
			Integrator: integrators.Scheme{Name: "rk4", StepSize: 0.01, MaxSteps: 100000},
			Universe: &universe.Spec{Model: "lorenz", Lorenz: &universe.Lorenz{
				Sigma: 10, Rho: 14, Beta: 8.0 / 3.0, X: 1, Y: 1, Z: 1,
			}},
		},
	},
	"twobody": {
		"default": {
			FinalTime:  20,
			Integrator: integrators.Scheme{Name: "leapfrog", StepSize: 0.001, MaxSteps: 500000},
			Universe: &universe.Spec{Model: "twobody", TwoBody: &universe.TwoBody{
				M1: 1, M2: 1, G: 1, Separation: 1,
			}},
		},
		"heavy": {
			FinalTime:  20,
			Integrator: integrators.Scheme{Name: "dopri5", Tolerance: 1e-9, MaxSteps: 500000},
			Universe: &universe.Spec{Model: "twobody", TwoBody: &universe.TwoBody{
				M1: 10, M2: 0.1, G: 1, Softening: 0.01, Separation: 2,
			}},
		},
	},
}

// GetStarter returns the named starter config, nil when unknown.
func GetStarter(model, variant string) *sim.Config[*universe.Spec] {
	variants, ok := Starters[model]
	if !ok {
		return nil
	}
	cfg, ok := variants[variant]
	if !ok {
		return nil
	}
	return cfg
}

// ListStarters names the variants available for a model, sorted.
func ListStarters(model string) []string {
	variants, ok := Starters[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StarterModels names the models that ship with starters, sorted.
func StarterModels() []string {
	models := make([]string, 0, len(Starters))
	for name := range Starters {
		models = append(models, name)
	}
	sort.Strings(models)
	return models
}
