package universe

import (
	"fmt"
	"math"

	"github.com/simpilot/simpilot/internal/ode"
)

// TwoBody is a planar gravitational two-body problem started on a circular
// mutual orbit. State: [x1, y1, x2, y2, vx1, vy1, vx2, vy2] with all
// positions before all velocities, so symplectic engines can split it.
type TwoBody struct {
	M1         float64 `json:"m1"`
	M2         float64 `json:"m2"`
	G          float64 `json:"g"`
	Softening  float64 `json:"softening"`
	Separation float64 `json:"separation"`
}

func (b *TwoBody) normalize() {
	if b.M1 == 0 {
		b.M1 = 1.0
	}
	if b.M2 == 0 {
		b.M2 = 1.0
	}
	if b.G == 0 {
		b.G = 1.0
	}
	if b.Separation == 0 {
		b.Separation = 1.0
	}
}

func (b *TwoBody) validate() error {
	if b.M1 <= 0 || b.M2 <= 0 {
		return fmt.Errorf("masses must be positive, got %g and %g", b.M1, b.M2)
	}
	if b.G <= 0 {
		return fmt.Errorf("gravitational constant must be positive, got %g", b.G)
	}
	if b.Softening < 0 {
		return fmt.Errorf("softening must not be negative, got %g", b.Softening)
	}
	if b.Separation <= 0 {
		return fmt.Errorf("separation must be positive, got %g", b.Separation)
	}
	return nil
}

func (b *TwoBody) Dim() int { return 8 }

func (b *TwoBody) Derivative(t float64, y, dy ode.State) {
	x1, y1, x2, y2 := y[0], y[1], y[2], y[3]

	dx := x2 - x1
	dyy := y2 - y1
	r := math.Sqrt(dx*dx + dyy*dyy + b.Softening*b.Softening)
	r3 := r * r * r

	dy[0] = y[4]
	dy[1] = y[5]
	dy[2] = y[6]
	dy[3] = y[7]
	dy[4] = b.G * b.M2 * dx / r3
	dy[5] = b.G * b.M2 * dyy / r3
	dy[6] = -b.G * b.M1 * dx / r3
	dy[7] = -b.G * b.M1 * dyy / r3
}

// InitialState places both bodies on a circular orbit about their common
// center of mass, separated by Separation.
func (b *TwoBody) InitialState() ode.State {
	total := b.M1 + b.M2
	r1 := b.Separation * b.M2 / total
	r2 := b.Separation * b.M1 / total

	vRel := math.Sqrt(b.G * total / b.Separation)
	v1 := vRel * b.M2 / total
	v2 := vRel * b.M1 / total

	return ode.State{
		-r1, 0, r2, 0,
		0, -v1, 0, v2,
	}
}

func (b *TwoBody) Energy(y ode.State) float64 {
	ke := 0.5*b.M1*(y[4]*y[4]+y[5]*y[5]) + 0.5*b.M2*(y[6]*y[6]+y[7]*y[7])

	dx := y[2] - y[0]
	dyy := y[3] - y[1]
	r := math.Sqrt(dx*dx + dyy*dyy + b.Softening*b.Softening)
	return ke - b.G*b.M1*b.M2/r
}
