package sim

import (
	"fmt"
	"path/filepath"

	"github.com/simpilot/simpilot/internal/fsutil"
	"github.com/simpilot/simpilot/internal/integrators"
	"github.com/simpilot/simpilot/internal/ode"
)

// Build assembles a runnable Simulation from a validated source. The engine
// is built first so a bad scheme or snapshot leaves no artifacts; only then
// is the numbered run directory created, the re-serialized configuration
// persisted next to the future results, and the result sink opened.
func Build[U ode.Model](src Source[U], outputDir string) (*Simulation[U], error) {
	engine, err := integrators.Build(src.Config.Integrator)
	if err != nil {
		return nil, fmt.Errorf("simulation %s: building integrator: %w", src.Name, err)
	}

	runDir, err := fsutil.CreateIncrementedDirectory(outputDir)
	if err != nil {
		return nil, fmt.Errorf("simulation %s: %w", src.Name, err)
	}

	confPath := filepath.Join(runDir, src.Name+ConfExt)
	if err := fsutil.WriteJSON(&src.Config, confPath); err != nil {
		return nil, fmt.Errorf("simulation %s: persisting config copy: %w", src.Name, err)
	}

	sink, err := fsutil.OpenOutput(filepath.Join(runDir, src.Name+".jsonl"))
	if err != nil {
		return nil, fmt.Errorf("simulation %s: %w", src.Name, err)
	}

	return &Simulation[U]{
		Name:        src.Name,
		Resume:      src.Config.Resume,
		InitialTime: src.Config.InitialTime,
		FinalTime:   src.Config.FinalTime,
		Scheme:      src.Config.Integrator,
		RunDir:      runDir,
		engine:      engine,
		system:      NewSystem(sink, src.Config.Universe),
	}, nil
}

// BuildAll builds simulations in source order. The first failure closes the
// sinks of the already-built simulations and aborts the batch.
func BuildAll[U ode.Model](sources []Source[U], outputDir string) ([]*Simulation[U], error) {
	sims := make([]*Simulation[U], 0, len(sources))
	for _, src := range sources {
		s, err := Build(src, outputDir)
		if err != nil {
			for _, built := range sims {
				built.Discard()
			}
			return nil, err
		}
		sims = append(sims, s)
	}
	return sims, nil
}
