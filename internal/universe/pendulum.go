package universe

import (
	"fmt"
	"math"

	"github.com/simpilot/simpilot/internal/ode"
)

// Pendulum is a damped planar pendulum. State: [theta, omega].
type Pendulum struct {
	Mass    float64 `json:"mass"`
	Length  float64 `json:"length"`
	Damping float64 `json:"damping"`
	Gravity float64 `json:"gravity"`
	Theta   float64 `json:"theta"`
	Omega   float64 `json:"omega"`
}

func (p *Pendulum) normalize() {
	if p.Mass == 0 {
		p.Mass = 1.0
	}
	if p.Length == 0 {
		p.Length = 1.0
	}
	if p.Gravity == 0 {
		p.Gravity = 9.81
	}
	if p.Theta == 0 && p.Omega == 0 {
		p.Theta = 0.5
	}
}

func (p *Pendulum) validate() error {
	if p.Mass <= 0 {
		return fmt.Errorf("mass must be positive, got %g", p.Mass)
	}
	if p.Length <= 0 {
		return fmt.Errorf("length must be positive, got %g", p.Length)
	}
	if p.Damping < 0 {
		return fmt.Errorf("damping must not be negative, got %g", p.Damping)
	}
	return nil
}

func (p *Pendulum) Dim() int { return 2 }

func (p *Pendulum) Derivative(t float64, y, dy ode.State) {
	theta, omega := y[0], y[1]
	dy[0] = omega
	dy[1] = (-p.Damping*omega - p.Mass*p.Gravity*p.Length*math.Sin(theta)) /
		(p.Mass * p.Length * p.Length)
}

func (p *Pendulum) InitialState() ode.State {
	return ode.State{p.Theta, p.Omega}
}

func (p *Pendulum) Energy(y ode.State) float64 {
	v := p.Length * y[1]
	ke := 0.5 * p.Mass * v * v
	pe := p.Mass * p.Gravity * p.Length * (1.0 - math.Cos(y[0]))
	return ke + pe
}
