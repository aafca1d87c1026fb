package integrators

import (
	"fmt"

	"github.com/simpilot/simpilot/internal/fsutil"
	"github.com/simpilot/simpilot/internal/ode"
)

// Build constructs the engine a scheme describes. If the scheme names a
// snapshot file the engine state is restored from it, so a subsequent
// Integrate continues the captured run.
func Build(s Scheme) (ode.Integrator, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	var engine ode.Integrator
	switch s.Name {
	case "euler":
		engine = NewEuler(s.StepSize, s.MaxSteps)
	case "rk4":
		engine = NewRK4(s.StepSize, s.MaxSteps)
	case "leapfrog":
		engine = NewLeapfrog(s.StepSize, s.MaxSteps)
	case "dopri5":
		engine = NewDopri5(s.Tolerance, s.MaxSteps)
	default:
		return nil, fmt.Errorf("unknown integration scheme %q", s.Name)
	}

	if s.Snapshot != "" {
		snap, err := fsutil.ReadJSON[ode.Snapshot](s.Snapshot)
		if err != nil {
			return nil, fmt.Errorf("loading snapshot: %w", err)
		}
		sn, ok := engine.(ode.Snapshotter)
		if !ok {
			return nil, fmt.Errorf("scheme %s does not support snapshots", s.Name)
		}
		if err := sn.Restore(snap); err != nil {
			return nil, fmt.Errorf("restoring snapshot %s: %w", s.Snapshot, err)
		}
	}

	return engine, nil
}
