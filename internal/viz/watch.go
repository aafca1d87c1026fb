package viz

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/simpilot/simpilot/internal/results"
)

const (
	statePick = iota
	stateTail
)

// refreshInterval is how often the tail view re-reads the result file.
const refreshInterval = 500 * time.Millisecond

type TickMsg time.Time

// runItem is one entry of the run picker.
type runItem struct {
	dir   string
	title string
	desc  string
}

func (r runItem) Title() string       { return r.title }
func (r runItem) Description() string { return r.desc }
func (r runItem) FilterValue() string { return r.title }

// Model is the watcher application. It starts on a run picker when
// pointed at an output directory, or directly on the tail view when
// pointed at a single run directory.
type Model struct {
	root          string
	state         int
	picker        list.Model
	width, height int

	dir      string
	info     results.ConfInfo
	fields   []string
	columns  [][]float64
	selected int
	paused   bool
	lastErr  error
}

// NewModel prepares a watcher rooted at dir.
func NewModel(dir string) Model {
	m := Model{root: dir, width: 80, height: 24}

	if info, err := results.Conf(dir); err == nil {
		m.info = info
		m.enterRun(dir)
		return m
	}

	picker := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	picker.Title = "runs in " + dir
	items, err := listRuns(dir)
	if err != nil {
		m.lastErr = err
	}
	picker.SetItems(items)
	m.picker = picker
	return m
}

func (m Model) Init() tea.Cmd { return tick() }

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.picker.SetSize(msg.Width-4, msg.Height-4)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		if m.state == stateTail && !m.paused {
			m.refresh()
		}
		return m, tick()
	}
	if m.state == statePick {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case statePick:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "enter":
			item, ok := m.picker.SelectedItem().(runItem)
			if !ok {
				return m, nil
			}
			if info, err := results.Conf(item.dir); err == nil {
				m.info = info
			} else {
				m.info = results.ConfInfo{Name: filepath.Base(item.dir)}
			}
			m.enterRun(item.dir)
			return m, nil
		}
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	case stateTail:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if len(m.picker.Items()) == 0 {
				return m, tea.Quit
			}
			m.state = statePick
			return m, nil
		case "tab", "right", "l":
			m.cycleField(1)
		case "shift+tab", "left", "h":
			m.cycleField(-1)
		case " ":
			m.paused = !m.paused
		}
	}
	return m, nil
}

func (m *Model) cycleField(dir int) {
	if len(m.fields) == 0 {
		return
	}
	m.selected = (m.selected + dir + len(m.fields)) % len(m.fields)
}

func (m *Model) enterRun(dir string) {
	m.dir = dir
	m.state = stateTail
	m.selected = 0
	m.fields = nil
	m.columns = nil
	m.lastErr = nil
	m.refresh()
}

// refresh re-reads the run's result file. Failures are kept for the
// view rather than returned, the file may simply not have records yet.
func (m *Model) refresh() {
	path, err := results.File(m.dir)
	if err != nil {
		m.lastErr = err
		return
	}
	fields, err := results.Fields(path)
	if err != nil {
		m.lastErr = err
		return
	}
	columns, err := results.Table(path, fields...)
	if err != nil {
		m.lastErr = err
		return
	}
	m.fields = fields
	m.columns = columns
	if m.selected >= len(fields) {
		m.selected = 0
	}
	m.lastErr = nil
}

func (m Model) View() string {
	if m.state == statePick {
		if len(m.picker.Items()) == 0 {
			msg := "no runs under " + m.root
			if m.lastErr != nil {
				msg = m.lastErr.Error()
			}
			return dimStyle.Render(msg) + helpStyle.Render("\nq quit")
		}
		return m.picker.View()
	}
	return m.viewTail()
}

func (m Model) viewTail() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(strings.ToUpper(m.info.Name)) + dimStyle.Render("  "+m.dir) + "\n")

	if len(m.columns) == 0 || len(m.columns[0]) == 0 {
		b.WriteString(dimStyle.Render("waiting for records") + "\n")
		if m.lastErr != nil {
			b.WriteString(dimStyle.Render(m.lastErr.Error()) + "\n")
		}
		b.WriteString(m.helpLine())
		return b.String()
	}

	records := len(m.columns[0])
	t := m.latest("t")
	status := statusRunning.Render("RUNNING")
	if m.info.FinalTime > m.info.InitialTime && t >= m.info.FinalTime-1e-12 {
		status = statusDone.Render("COMPLETED")
	}
	if m.paused {
		status += dimStyle.Render("  (tail paused)")
	}
	b.WriteString(status + "\n\n")

	if m.info.FinalTime > m.info.InitialTime {
		percent := (t - m.info.InitialTime) / (m.info.FinalTime - m.info.InitialTime)
		b.WriteString(ProgressBar(percent, 40) + valueStyle.Render(fmt.Sprintf("  t=%.4g / %g", t, m.info.FinalTime)) + "\n")
	}

	chart, err := Plot(m.columns[m.selected], m.fields[m.selected], m.plotWidth(), m.plotHeight())
	if err == nil {
		b.WriteString(graphStyle.Render(chart) + "\n")
	}

	for i, field := range m.fields {
		col := m.columns[i]
		line := fmt.Sprintf("%-8s %12.5g  ", field, col[len(col)-1])
		if i == m.selected {
			b.WriteString(activeStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + labelStyle.Render(line) + Sparkline(tailOf(col, 120), 24) + "\n")
		}
	}

	b.WriteString("\n" + labelStyle.Render("records  ") + valueStyle.Render(strconv.Itoa(records)))
	if m.info.Scheme != "" {
		b.WriteString(labelStyle.Render("   scheme  ") + valueStyle.Render(m.info.Scheme))
	}
	b.WriteString("\n" + m.helpLine())
	return b.String()
}

func (m Model) helpLine() string {
	return helpStyle.Render("tab field  space pause  esc back  q quit")
}

func (m Model) plotWidth() int {
	w := m.width - 12
	if w > 100 {
		w = 100
	}
	if w < 30 {
		w = 30
	}
	return w
}

func (m Model) plotHeight() int {
	h := m.height - 12 - len(m.fields)
	if h > 16 {
		h = 16
	}
	if h < 4 {
		h = 4
	}
	return h
}

// latest returns the newest value of the named field, NaN when absent.
func (m Model) latest(field string) float64 {
	for i, f := range m.fields {
		if f == field && len(m.columns[i]) > 0 {
			return m.columns[i][len(m.columns[i])-1]
		}
	}
	return math.NaN()
}

func tailOf(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

// listRuns collects the run directories under root, newest first.
func listRuns(root string) ([]list.Item, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}
	var items []list.Item
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		if !entry.IsDir() {
			continue
		}
		if _, err := strconv.Atoi(entry.Name()); err != nil {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		info, err := results.Conf(dir)
		if err != nil {
			continue
		}
		items = append(items, runItem{
			dir:   dir,
			title: entry.Name() + "  " + info.Name,
			desc:  fmt.Sprintf("%s  t=%g..%g", info.Scheme, info.InitialTime, info.FinalTime),
		})
	}
	return items, nil
}

// RunWatch starts the watcher over dir and blocks until it quits.
func RunWatch(dir string) error {
	_, err := tea.NewProgram(NewModel(dir), tea.WithAltScreen()).Run()
	return err
}
