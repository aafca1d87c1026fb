package universe

import (
	"fmt"

	"github.com/simpilot/simpilot/internal/ode"
)

// Lorenz is the classic butterfly attractor. State: [x, y, z]. No conserved
// energy.
type Lorenz struct {
	Sigma float64 `json:"sigma"`
	Rho   float64 `json:"rho"`
	Beta  float64 `json:"beta"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
}

func (l *Lorenz) normalize() {
	if l.Sigma == 0 {
		l.Sigma = 10.0
	}
	if l.Rho == 0 {
		l.Rho = 28.0
	}
	if l.Beta == 0 {
		l.Beta = 8.0 / 3.0
	}
	if l.X == 0 && l.Y == 0 && l.Z == 0 {
		l.X, l.Y, l.Z = 1.0, 1.0, 1.0
	}
}

func (l *Lorenz) validate() error {
	if l.Sigma <= 0 {
		return fmt.Errorf("sigma must be positive, got %g", l.Sigma)
	}
	if l.Beta <= 0 {
		return fmt.Errorf("beta must be positive, got %g", l.Beta)
	}
	return nil
}

func (l *Lorenz) Dim() int { return 3 }

func (l *Lorenz) Derivative(t float64, y, dy ode.State) {
	dy[0] = l.Sigma * (y[1] - y[0])
	dy[1] = y[0]*(l.Rho-y[2]) - y[1]
	dy[2] = y[0]*y[1] - l.Beta*y[2]
}

func (l *Lorenz) InitialState() ode.State {
	return ode.State{l.X, l.Y, l.Z}
}
