package sim

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/simpilot/simpilot/internal/fsutil"
	"github.com/simpilot/simpilot/internal/logging"
	"github.com/simpilot/simpilot/internal/ode"
)

func buildFromConf(t *testing.T, conf string) (*Simulation[*testModel], string) {
	t.Helper()
	srcDir, outDir := t.TempDir(), t.TempDir()
	path := writeConf(t, srcDir, "decay.conf", conf)

	src, err := LoadSource[*testModel](path)
	if err != nil {
		t.Fatal(err)
	}
	s, err := Build(src, outDir)
	if err != nil {
		t.Fatal(err)
	}
	return s, outDir
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return strings.Count(string(data), "\n")
}

func TestLaunchCompletes(t *testing.T) {
	conf := `{"resume": false, "initial_time": 0, "final_time": 1,
		"integrator": "rk4", "universe": {"rate": 1}}`
	s, _ := buildFromConf(t, conf)

	var buf bytes.Buffer
	logger := logging.New("info", &buf)

	out, err := s.Launch(logger, 0, 1, ode.State{1, 1})
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	if out.Status != StatusCompleted {
		t.Fatalf("got status %s, expected completed", out.Status)
	}
	if out.FinalTime != 1 {
		t.Errorf("got final time %g, expected 1", out.FinalTime)
	}
	if out.Stats.Steps != 100 {
		t.Errorf("got %d steps, expected 100", out.Stats.Steps)
	}

	log := buf.String()
	if !strings.Contains(log, "starting simulation") || !strings.Contains(log, "completed simulation") {
		t.Errorf("missing lifecycle log lines: %s", log)
	}
	if !strings.Contains(log, "name=decay") {
		t.Errorf("log should carry the simulation name: %s", log)
	}

	// Initial point plus one record per step.
	if n := countLines(t, filepath.Join(s.RunDir, "decay.jsonl")); n != 101 {
		t.Errorf("got %d result lines, expected 101", n)
	}

	snap, err := fsutil.ReadJSON[ode.Snapshot](filepath.Join(s.RunDir, "decay.snap.json"))
	if err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}
	if snap.Time < 1-1e-9 {
		t.Errorf("snapshot time %g should be at the final time", snap.Time)
	}
}

func TestLaunchIsSingleShot(t *testing.T) {
	conf := `{"resume": false, "initial_time": 0, "final_time": 1,
		"integrator": "rk4", "universe": {"rate": 1}}`
	s, _ := buildFromConf(t, conf)

	var buf bytes.Buffer
	logger := logging.New("info", &buf)

	if _, err := s.Launch(logger, 0, 1, ode.State{1, 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Launch(logger, 0, 1, ode.State{1, 1}); err == nil {
		t.Fatal("second launch should fail")
	}
}

func TestLaunchStepLimitIsAWarningNotAnError(t *testing.T) {
	conf := `{"resume": false, "initial_time": 0, "final_time": 10,
		"integrator": {"scheme": "rk4", "step_size": 0.01, "max_steps": 5},
		"universe": {"rate": 1}}`
	s, _ := buildFromConf(t, conf)

	var buf bytes.Buffer
	logger := logging.New("info", &buf)

	out, err := s.Launch(logger, 0, 10, ode.State{1, 1})
	if err != nil {
		t.Fatalf("step limit must not surface as a launch error, got %v", err)
	}
	if out.Status != StatusStepLimit {
		t.Fatalf("got status %s, expected step-limit", out.Status)
	}
	if out.FinalTime < 0.049 || out.FinalTime > 0.051 {
		t.Errorf("got time reached %g, expected about 0.05", out.FinalTime)
	}

	log := buf.String()
	if !strings.Contains(log, "level=WARN") || !strings.Contains(log, "step limit") {
		t.Errorf("expected a step limit warning, got: %s", log)
	}
	if !strings.Contains(log, "max_steps=5") {
		t.Errorf("warning should carry the budget: %s", log)
	}
}

func TestLaunchFailureIsLoggedNotReturned(t *testing.T) {
	conf := `{"resume": false, "initial_time": 0, "final_time": 1000,
		"integrator": "euler", "universe": {"rate": -50}}`
	s, _ := buildFromConf(t, conf)

	var buf bytes.Buffer
	logger := logging.New("info", &buf)

	out, err := s.Launch(logger, 0, 1000, ode.State{1, 1})
	if err != nil {
		t.Fatalf("integration failure must not surface as a launch error, got %v", err)
	}
	if out.Status != StatusFailed {
		t.Fatalf("got status %s, expected failed", out.Status)
	}
	if !strings.Contains(out.Message, "aborting simulation decay") {
		t.Errorf("message should name the simulation: %q", out.Message)
	}
	if !strings.Contains(out.Message, "invalid state") {
		t.Errorf("message should carry the flattened cause: %q", out.Message)
	}
	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Errorf("expected an error log entry: %s", buf.String())
	}
}

func TestLaunchInitializeFailureIsReturned(t *testing.T) {
	conf := `{"resume": false, "initial_time": 0, "final_time": 1,
		"integrator": "rk4", "universe": {"rate": 1}}`
	s, _ := buildFromConf(t, conf)

	var buf bytes.Buffer
	logger := logging.New("info", &buf)

	_, err := s.Launch(logger, 5, 1, ode.State{1, 1})
	if err == nil {
		t.Fatal("expected initialization failure to be returned")
	}
	if !strings.Contains(err.Error(), "initializing simulation decay") {
		t.Errorf("unexpected error: %v", err)
	}
	if strings.Contains(buf.String(), "starting simulation") {
		t.Errorf("a run that cannot start must not log a start: %s", buf.String())
	}
}

func TestLaunchResumeSkipsInitialize(t *testing.T) {
	snapDir := t.TempDir()
	snapPath := filepath.Join(snapDir, "decay.snap.json")
	snap := ode.Snapshot{Time: 0.5, End: 1, State: ode.State{0.6, 0.6}, Step: 0.01}
	if err := fsutil.WriteJSON(snap, snapPath); err != nil {
		t.Fatal(err)
	}

	conf := `{"resume": true, "initial_time": 0, "final_time": 1,
		"integrator": {"scheme": "rk4", "step_size": 0.01, "snapshot": ` +
		strconv.Quote(snapPath) + `},
		"universe": {"rate": 1}}`
	s, _ := buildFromConf(t, conf)

	var buf bytes.Buffer
	logger := logging.New("info", &buf)

	// Degenerate bounds and a nil state would make Initialize fail, so a
	// completed run proves it was skipped.
	out, err := s.Launch(logger, 0, 0, nil)
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	if out.Status != StatusCompleted {
		t.Fatalf("got status %s, expected completed", out.Status)
	}

	data, err := os.ReadFile(filepath.Join(s.RunDir, "decay.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	first := strings.SplitN(string(data), "\n", 2)[0]
	if !strings.Contains(first, `"t":0.5`) {
		t.Errorf("resumed run should continue from the snapshot time: %s", first)
	}
}

func TestObserveSeesEveryRecord(t *testing.T) {
	conf := `{"resume": false, "initial_time": 0, "final_time": 1,
		"integrator": "rk4", "universe": {"rate": 1}}`
	s, _ := buildFromConf(t, conf)

	var times []float64
	s.Observe(func(tm float64, y ode.State) {
		times = append(times, tm)
	})

	var buf bytes.Buffer
	if _, err := s.Launch(logging.New("info", &buf), 0, 1, ode.State{1, 1}); err != nil {
		t.Fatal(err)
	}
	if len(times) != 101 {
		t.Fatalf("observer saw %d records, expected 101", len(times))
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			t.Fatalf("times not increasing at %d: %g then %g", i, times[i-1], times[i])
		}
	}
}
