package viz

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

const watchConf = `{
  "resume": false,
  "initial_time": 0,
  "final_time": 1,
  "integrator": {"scheme": "rk4", "step_size": 0.01, "max_steps": 100000},
  "universe": {"model": "pendulum"}
}`

const watchRecords = `{"t":0,"y":[1,0],"energy":0.5}
{"t":0.5,"y":[0.88,-0.48],"energy":0.5}
{"t":1,"y":[0.54,-0.84],"energy":0.5}
`

func writeRun(t *testing.T, root, number, name string) string {
	t.Helper()
	dir := filepath.Join(root, number)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("creating run dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".conf"), []byte(watchConf), 0o644); err != nil {
		t.Fatalf("writing conf: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".jsonl"), []byte(watchRecords), 0o644); err != nil {
		t.Fatalf("writing records: %v", err)
	}
	return dir
}

func TestListRunsNewestFirst(t *testing.T) {
	root := t.TempDir()
	writeRun(t, root, "0001", "swing")
	writeRun(t, root, "0002", "orbit")
	if err := os.MkdirAll(filepath.Join(root, "notes"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	items, err := listRuns(root)
	if err != nil {
		t.Fatalf("listRuns returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, expected 2", len(items))
	}
	first := items[0].(runItem)
	if !strings.HasPrefix(first.title, "0002") {
		t.Errorf("got %q first, expected the newest run", first.title)
	}
}

func TestNewModelOnRunDirStartsTailing(t *testing.T) {
	dir := writeRun(t, t.TempDir(), "0001", "swing")

	m := NewModel(dir)
	if m.state != stateTail {
		t.Fatalf("expected tail state for a run directory")
	}
	if len(m.fields) == 0 {
		t.Fatalf("expected fields after the first refresh")
	}
	if m.fields[0] != "t" {
		t.Errorf("got first field %q, expected t", m.fields[0])
	}
}

func TestNewModelOnOutputDirShowsPicker(t *testing.T) {
	root := t.TempDir()
	writeRun(t, root, "0001", "swing")

	m := NewModel(root)
	if m.state != statePick {
		t.Fatalf("expected picker state for an output directory")
	}
	if len(m.picker.Items()) != 1 {
		t.Errorf("got %d picker items, expected 1", len(m.picker.Items()))
	}
}

func TestTailViewShowsCompletion(t *testing.T) {
	dir := writeRun(t, t.TempDir(), "0001", "swing")

	m := NewModel(dir)
	view := m.View()
	if !strings.Contains(view, "SWING") {
		t.Errorf("view does not carry the run name:\n%s", view)
	}
	if !strings.Contains(view, "COMPLETED") {
		t.Errorf("view does not mark a finished run:\n%s", view)
	}
	if !strings.Contains(view, "3") {
		t.Errorf("view does not show the record count:\n%s", view)
	}
}

func TestTailViewWhileRunning(t *testing.T) {
	dir := writeRun(t, t.TempDir(), "0001", "swing")
	records := "{\"t\":0,\"y\":[1,0],\"energy\":0.5}\n{\"t\":0.4,\"y\":[0.9,-0.4],\"energy\":0.5}\n"
	if err := os.WriteFile(filepath.Join(dir, "swing.jsonl"), []byte(records), 0o644); err != nil {
		t.Fatalf("rewriting records: %v", err)
	}

	m := NewModel(dir)
	if view := m.View(); !strings.Contains(view, "RUNNING") {
		t.Errorf("view does not mark an unfinished run:\n%s", view)
	}
}

func TestCycleFieldWraps(t *testing.T) {
	m := Model{fields: []string{"t", "y.0", "y.1"}}

	m.cycleField(-1)
	if m.selected != 2 {
		t.Errorf("got %d, expected wrap to the last field", m.selected)
	}
	m.cycleField(1)
	if m.selected != 0 {
		t.Errorf("got %d, expected wrap to the first field", m.selected)
	}
}

func TestSpaceTogglesPause(t *testing.T) {
	dir := writeRun(t, t.TempDir(), "0001", "swing")

	m := NewModel(dir)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	m = updated.(Model)
	if !m.paused {
		t.Errorf("expected space to pause tailing")
	}
	if view := m.View(); !strings.Contains(view, "paused") {
		t.Errorf("view does not mention the pause:\n%s", view)
	}
}

func TestTickRefreshesGrowingRun(t *testing.T) {
	dir := writeRun(t, t.TempDir(), "0001", "swing")

	m := NewModel(dir)
	before := len(m.columns[0])

	grown := watchRecords + "{\"t\":1.5,\"y\":[0.1,-0.99],\"energy\":0.5}\n"
	if err := os.WriteFile(filepath.Join(dir, "swing.jsonl"), []byte(grown), 0o644); err != nil {
		t.Fatalf("growing records: %v", err)
	}
	updated, _ := m.Update(TickMsg{})
	m = updated.(Model)
	if len(m.columns[0]) != before+1 {
		t.Errorf("got %d records after tick, expected %d", len(m.columns[0]), before+1)
	}
}

func TestPlot(t *testing.T) {
	chart, err := Plot([]float64{0, 1, 4, 9, 16}, "y.0", 40, 6)
	if err != nil {
		t.Fatalf("Plot returned error: %v", err)
	}
	if !strings.Contains(chart, "y.0") {
		t.Errorf("chart does not carry its caption:\n%s", chart)
	}

	if _, err := Plot([]float64{1}, "t", 40, 6); err == nil {
		t.Errorf("expected error for a one point series")
	}
}

func TestProgressBarClamps(t *testing.T) {
	full := ProgressBar(1.5, 10)
	if !strings.Contains(full, strings.Repeat("█", 10)) {
		t.Errorf("expected a full bar for percent above one")
	}
	empty := ProgressBar(-0.3, 10)
	if !strings.Contains(empty, strings.Repeat("░", 10)) {
		t.Errorf("expected an empty bar for negative percent")
	}
}

func TestSparklineFlatSeries(t *testing.T) {
	line := Sparkline([]float64{2, 2, 2, 2}, 4)
	if line == "" {
		t.Errorf("expected output for a flat series")
	}
	if empty := Sparkline(nil, 4); !strings.Contains(empty, "────") {
		t.Errorf("got %q, expected a placeholder for an empty series", empty)
	}
}
