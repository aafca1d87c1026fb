package sim

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/simpilot/simpilot/internal/fsutil"
	"github.com/simpilot/simpilot/internal/integrators"
	"github.com/simpilot/simpilot/internal/ode"
)

// Simulation is one fully set-up run: validated definition, built engine,
// exclusive run directory and result sink. It launches exactly once and
// never moves to another output location.
type Simulation[U ode.Model] struct {
	Name        string
	Resume      bool
	InitialTime float64
	FinalTime   float64
	Scheme      integrators.Scheme
	RunDir      string

	engine   ode.Integrator
	system   *System[U]
	launched bool
}

// Observe registers a per-step callback on the underlying system.
func (s *Simulation[U]) Observe(fn func(t float64, y ode.State)) {
	s.system.Observe(fn)
}

// Discard closes the result sink of a simulation that will never launch.
// Used when a later member of a batch fails setup.
func (s *Simulation[U]) Discard() {
	s.system.Close()
}

// Launch drives the run to completion and classifies the result. It is
// single-shot; the result sink is closed before it returns.
//
// For a fresh run the engine is initialized with the given bounds and
// initial state; a resumed engine already holds its position from the
// restored snapshot, so initialization is skipped. A failed initialization
// means the run could never start: it is returned as an error, and nothing
// is logged as started. Every other failure is folded into the Outcome so
// the rest of a batch keeps going.
func (s *Simulation[U]) Launch(logger *slog.Logger, start, end float64, y0 ode.State) (Outcome, error) {
	if s.launched {
		return Outcome{}, fmt.Errorf("simulation %s already launched", s.Name)
	}
	s.launched = true

	if !s.Resume {
		if err := s.engine.Initialize(start, end, y0); err != nil {
			s.system.Close()
			return Outcome{}, fmt.Errorf("initializing simulation %s: %w", s.Name, err)
		}
	}

	logger.Info("starting simulation",
		"name", s.Name,
		"from", s.InitialTime,
		"to", s.FinalTime,
		"span", s.FinalTime-s.InitialTime)

	stats, err := s.engine.Integrate(s.system)
	outcome := s.report(logger, stats, err)

	s.writeSnapshot(logger)
	if cerr := s.system.Close(); cerr != nil {
		logger.Warn("closing result sink", "name", s.Name, "error", cerr.Error())
	}
	return outcome, nil
}

// writeSnapshot persists the engine position so a later run can resume it.
// Best-effort: a failure here is only worth a warning.
func (s *Simulation[U]) writeSnapshot(logger *slog.Logger) {
	sn, ok := s.engine.(ode.Snapshotter)
	if !ok {
		return
	}
	snap, ok := sn.Snapshot()
	if !ok {
		return
	}
	path := filepath.Join(s.RunDir, s.Name+".snap.json")
	if err := fsutil.WriteJSON(snap, path); err != nil {
		logger.Warn("could not write snapshot", "name", s.Name, "error", err.Error())
	}
}
