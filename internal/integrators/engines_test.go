package integrators_test

import (
	"errors"
	"math"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/simpilot/simpilot/internal/fsutil"
	"github.com/simpilot/simpilot/internal/integrators"
	"github.com/simpilot/simpilot/internal/ode"
)

// oscillator is the harmonic oscillator y'' = -y, whose exact solution from
// (1, 0) is (cos t, -sin t).
type oscillator struct {
	times []float64
	last  ode.State
}

func (o *oscillator) Dim() int { return 2 }

func (o *oscillator) Derivative(t float64, y, dy ode.State) {
	dy[0] = y[1]
	dy[1] = -y[0]
}

func (o *oscillator) Record(t float64, y ode.State) error {
	o.times = append(o.times, t)
	o.last = y.Clone()
	return nil
}

// decay is a three-dimensional exponential decay, used where an
// even-dimensional state must be ruled out.
type decay struct{}

func (d *decay) Dim() int { return 3 }

func (d *decay) Derivative(t float64, y, dy ode.State) {
	for i := range y {
		dy[i] = -y[i]
	}
}

func (d *decay) Record(t float64, y ode.State) error { return nil }

var _ = Describe("engines", func() {
	DescribeTable("track the harmonic oscillator over one time unit",
		func(engine ode.Integrator, tol float64) {
			sys := &oscillator{}
			Expect(engine.Initialize(0, 1, ode.State{1, 0})).To(Succeed())

			stats, err := engine.Integrate(sys)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Accepted).To(BeNumerically(">", 0))
			Expect(sys.last[0]).To(BeNumerically("~", math.Cos(1), tol))
			Expect(sys.last[1]).To(BeNumerically("~", -math.Sin(1), tol))
		},
		Entry("euler", integrators.NewEuler(1e-4, 1000000), 1e-3),
		Entry("rk4", integrators.NewRK4(0.01, 100000), 1e-6),
		Entry("leapfrog", integrators.NewLeapfrog(0.001, 1000000), 1e-4),
		Entry("dopri5", integrators.NewDopri5(1e-9, 100000), 1e-6),
	)

	It("records the initial point and lands on the final time", func() {
		sys := &oscillator{}
		engine := integrators.NewRK4(0.01, 100000)
		Expect(engine.Initialize(0, 1, ode.State{1, 0})).To(Succeed())

		_, err := engine.Integrate(sys)
		Expect(err).NotTo(HaveOccurred())
		Expect(sys.times[0]).To(Equal(0.0))
		Expect(sys.times[len(sys.times)-1]).To(BeNumerically("~", 1.0, 1e-12))
	})

	It("refuses to integrate before initialization", func() {
		sys := &oscillator{}
		_, err := integrators.NewRK4(0.01, 100).Integrate(sys)
		Expect(err).To(MatchError(ode.ErrNotInitialized))
	})

	It("rejects inverted time bounds", func() {
		engine := integrators.NewRK4(0.01, 100)
		Expect(engine.Initialize(5, 5, ode.State{1, 0})).NotTo(Succeed())
		Expect(engine.Initialize(5, 2, ode.State{1, 0})).NotTo(Succeed())
	})

	It("rejects a state that does not match the model dimension", func() {
		sys := &oscillator{}
		engine := integrators.NewRK4(0.01, 100)
		Expect(engine.Initialize(0, 1, ode.State{1, 0, 0})).To(Succeed())

		_, err := engine.Integrate(sys)
		Expect(err).To(MatchError(ode.ErrDimensionMismatch))
	})

	It("gives up with a step limit error once the budget is spent", func() {
		sys := &oscillator{}
		engine := integrators.NewRK4(0.01, 10)
		Expect(engine.Initialize(0, 100, ode.State{1, 0})).To(Succeed())

		stats, err := engine.Integrate(sys)
		var sle *ode.StepLimitError
		Expect(errors.As(err, &sle)).To(BeTrue(), "expected StepLimitError, got %v", err)
		Expect(sle.Steps).To(Equal(10))
		Expect(sle.Time).To(BeNumerically("~", 0.1, 1e-9))
		Expect(stats.Steps).To(Equal(10))
	})

	It("requires an even-dimensional state for leapfrog", func() {
		engine := integrators.NewLeapfrog(0.01, 100)
		Expect(engine.Initialize(0, 1, ode.State{1, 1, 1})).To(Succeed())

		_, err := engine.Integrate(&decay{})
		Expect(err).To(MatchError(ContainSubstring("leapfrog")))
	})

	It("surfaces NaN states as invalid rather than recording them", func() {
		engine := integrators.NewEuler(0.1, 1000)
		Expect(engine.Initialize(0, 10, ode.State{1, 1})).To(Succeed())

		_, err := engine.Integrate(&explosive{})
		Expect(err).To(MatchError(ode.ErrInvalidState))
	})
})

var _ = Describe("snapshots", func() {
	It("resume an interrupted run to its recorded final time", func() {
		first := &oscillator{}
		engine := integrators.NewRK4(0.01, 40)
		Expect(engine.Initialize(0, 1, ode.State{1, 0})).To(Succeed())

		_, err := engine.Integrate(first)
		var sle *ode.StepLimitError
		Expect(errors.As(err, &sle)).To(BeTrue())

		snap, ok := engine.Snapshot()
		Expect(ok).To(BeTrue())
		Expect(snap.Time).To(BeNumerically("~", 0.4, 1e-9))
		Expect(snap.End).To(Equal(1.0))

		second := &oscillator{}
		restored := integrators.NewRK4(0.01, 100000)
		Expect(restored.Restore(snap)).To(Succeed())

		_, err = restored.Integrate(second)
		Expect(err).NotTo(HaveOccurred())
		Expect(second.times[0]).To(BeNumerically("~", 0.4, 1e-9))
		Expect(second.last[0]).To(BeNumerically("~", math.Cos(1), 1e-6))
	})

	It("are empty before initialization", func() {
		_, ok := integrators.NewDopri5(1e-6, 100).Snapshot()
		Expect(ok).To(BeFalse())
	})

	It("reject a capture without state", func() {
		err := integrators.NewRK4(0.01, 100).Restore(ode.Snapshot{Time: 1, End: 2})
		Expect(err).To(HaveOccurred())
	})

	It("restore through the scheme's snapshot path", func() {
		engine := integrators.NewEuler(0.001, 500)
		Expect(engine.Initialize(0, 1, ode.State{1, 0})).To(Succeed())
		_, err := engine.Integrate(&oscillator{})
		var sle *ode.StepLimitError
		Expect(errors.As(err, &sle)).To(BeTrue())

		snap, ok := engine.Snapshot()
		Expect(ok).To(BeTrue())
		path := filepath.Join(GinkgoT().TempDir(), "run.snap.json")
		Expect(fsutil.WriteJSON(snap, path)).To(Succeed())

		restored, err := integrators.Build(integrators.Scheme{
			Name:     "euler",
			StepSize: 0.001,
			MaxSteps: 100000,
			Snapshot: path,
		})
		Expect(err).NotTo(HaveOccurred())

		sys := &oscillator{}
		_, err = restored.Integrate(sys)
		Expect(err).NotTo(HaveOccurred())
		Expect(sys.times[0]).To(BeNumerically("~", snap.Time, 1e-9))
		Expect(sys.times[len(sys.times)-1]).To(BeNumerically("~", 1.0, 1e-9))
	})
})

var _ = Describe("adaptive stepping", func() {
	It("takes far fewer steps than a fixed fine grid", func() {
		sys := &oscillator{}
		engine := integrators.NewDopri5(1e-8, 100000)
		Expect(engine.Initialize(0, 10, ode.State{1, 0})).To(Succeed())

		stats, err := engine.Integrate(sys)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Accepted).To(BeNumerically("<", 2000))
		Expect(stats.Evals).To(Equal(stats.Steps * 7))
		Expect(sys.last[0]).To(BeNumerically("~", math.Cos(10), 1e-5))
	})
})

// explosive blows up in finite time: y' = y*y from y=1 diverges at t=1.
type explosive struct{}

func (e *explosive) Dim() int { return 2 }

func (e *explosive) Derivative(t float64, y, dy ode.State) {
	dy[0] = y[0] * y[0]
	dy[1] = y[1] * y[1]
}

func (e *explosive) Record(t float64, y ode.State) error { return nil }
