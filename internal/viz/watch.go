package viz

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/latticeflow/internal/lbm"
	"github.com/san-kum/latticeflow/internal/render"
	"github.com/san-kum/latticeflow/internal/sim"
)

const historyCapacity = 600

var (
	mapStyle   = lipgloss.NewStyle().Padding(1, 2)
	statsStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(44)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	graphStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
)

type TickMsg time.Time

type Options struct {
	Title        string
	MaxSteps     int
	StepsPerTick int
	Field        string
	SnapshotDir  string
	FPS          int
}

// Model steps a solver on every tick and renders one of its fields.
type Model struct {
	sim    *sim.Simulator
	solver *lbm.Solver
	title  string

	maxSteps     int
	stepsPerTick int
	field        int
	phase        bool
	running      bool
	showHelp     bool
	frame        int
	fps          int

	width, height int

	last     lbm.Diagnosis
	halted   error
	norms    []float64
	mass0    float64
	massHist []float64

	snapshotDir string
	message     string
}

func NewModel(s *lbm.Solver, opts Options) Model {
	m := Model{
		sim:          sim.New(s, nil),
		solver:       s,
		title:        opts.Title,
		maxSteps:     opts.MaxSteps,
		stepsPerTick: max(opts.StepsPerTick, 1),
		running:      true,
		fps:          opts.FPS,
		width:        60,
		height:       20,
		mass0:        s.Mass(),
		snapshotDir:  opts.SnapshotDir,
		norms:        make([]float64, 0, historyCapacity),
		massHist:     make([]float64, 0, historyCapacity),
	}
	if m.fps <= 0 {
		m.fps = 20
	}
	if m.title == "" {
		m.title = "latticeflow"
	}
	for i, name := range render.Names {
		if name == opts.Field {
			m.field = i
		}
	}
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles key input and advances the solver on ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.advance(1)
			}
		case "f", "tab":
			m.nextField()
		case "p":
			m.phase = !m.phase
		case "+", "=":
			m.stepsPerTick = min(m.stepsPerTick*2, 1024)
		case "-", "_":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		case "s":
			m.message = m.snapshot()
		case "t":
			SetTheme(NextTheme())
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.width = max(msg.Width-52, 10)
		m.height = max(msg.Height-4, 4)
	case TickMsg:
		m.frame++
		if m.running {
			m.advance(m.stepsPerTick)
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) nextField() {
	for range render.Names {
		m.field = (m.field + 1) % len(render.Names)
		if _, err := render.FromFields(m.solver.Fields(), render.Names[m.field]); err == nil {
			return
		}
	}
}

// advance runs up to n steps, stopping at the step limit or a halt.
func (m *Model) advance(n int) {
	if m.halted != nil || m.done() {
		m.running = false
		return
	}
	limit := m.solver.Timestep() + n
	if m.maxSteps > 0 {
		limit = min(limit, m.maxSteps)
	}
	err := m.sim.RunWithCallback(context.Background(), limit, func(st lbm.StepResult, d lbm.Diagnosis) bool {
		m.last = d
		m.push(d.Norm, st.Mass)
		return true
	})
	if err != nil {
		m.halted = err
		m.running = false
	}
}

func (m *Model) push(norm, mass float64) {
	m.norms = append(m.norms, norm)
	if len(m.norms) > historyCapacity {
		m.norms = m.norms[1:]
	}
	drift := 0.
	if m.mass0 != 0 {
		drift = (mass - m.mass0) / m.mass0
	}
	m.massHist = append(m.massHist, drift)
	if len(m.massHist) > historyCapacity {
		m.massHist = m.massHist[1:]
	}
}

func (m Model) done() bool {
	return m.maxSteps > 0 && m.solver.Timestep() >= m.maxSteps
}

func (m Model) snapshot() string {
	name := render.Names[m.field]
	field, err := render.FromFields(m.solver.Fields(), name)
	if err != nil {
		return err.Error()
	}
	dir := m.snapshotDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err.Error()
	}
	path := filepath.Join(dir, fmt.Sprintf("lb_%06d_%s.png", m.solver.Timestep(), name))
	title := fmt.Sprintf("%s step %d", name, m.solver.Timestep())
	if err := render.Save(path, field, render.Options{Title: title}); err != nil {
		return err.Error()
	}
	return "saved " + path
}

func (m Model) fieldView() string {
	name := render.Names[m.field]
	field, err := render.FromFields(m.solver.Fields(), name)
	if err != nil {
		return err.Error()
	}
	if m.phase {
		rho, err := render.FromFields(m.solver.Fields(), "rho")
		if err != nil {
			return err.Error()
		}
		lo, hi := rho.Range()
		return PhaseMap(rho, m.width, m.height, (lo+hi)/2).String()
	}
	return HeatMap(field, m.width, m.height, CurrentTheme)
}

// View renders the field and the stats panel.
func (m Model) View() string {
	mapView := mapStyle.Render(m.fieldView())

	var s strings.Builder
	s.WriteString(HeaderStyle.Render(GradientText(strings.ToUpper(m.title), CurrentTheme.Ramp[0], CurrentTheme.Ramp[2])) + "\n")

	switch {
	case m.halted != nil:
		s.WriteString(lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Error).Render("HALTED") + "\n")
	case m.done():
		s.WriteString(StatusPaused.Render("DONE") + "\n")
	case m.running:
		s.WriteString(StatusRunning.Render(AnimatedSpinner(m.frame)+" RUNNING") + "\n")
	default:
		s.WriteString(StatusPaused.Render("PAUSED") + "\n")
	}
	if m.maxSteps > 0 {
		s.WriteString(ProgressBar(float64(m.solver.Timestep())/float64(m.maxSteps), 30) + "\n")
	}
	s.WriteString("\n")

	if len(m.norms) > 1 {
		chart := asciigraph.Plot(m.norms, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("density norm"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + MetricValue.Render(value) + "\n")
	}
	view := render.Names[m.field]
	if m.phase {
		view = "phase"
	}
	row("Field", view)
	row("Step", fmt.Sprintf("%d", m.solver.Timestep()))
	row("Steps/frame", fmt.Sprintf("%d", m.stepsPerTick))
	row("Norm", fmt.Sprintf("%.6f", m.last.Norm))
	delta := fmt.Sprintf("%.3e", m.last.DeltaNorm)
	if m.last.Warn {
		delta = lipgloss.NewStyle().Foreground(CurrentTheme.Warning).Render(delta)
	}
	s.WriteString(labelStyle.Render("Delta") + delta + "\n")
	row("Mass", fmt.Sprintf("%.4f", m.solver.Mass()))
	if len(m.massHist) > 0 {
		s.WriteString(labelStyle.Render("Drift") + SparklineChart(m.massHist, 30) + "\n")
	}
	if lo, hi := fieldRange(m); !math.IsNaN(lo) {
		row("Range", fmt.Sprintf("%.3g .. %.3g", lo, hi))
	}
	if m.halted != nil {
		s.WriteString(MetricLabel.Render(m.halted.Error()) + "\n")
	}
	if m.message != "" {
		s.WriteString(Subtle.Render(m.message) + "\n")
	}
	s.WriteString("\n" + Separator(30) + "\n")
	s.WriteString(KeyHint.Render("SP:Pause N:Step Q:Quit\nF:Field P:Phase S:Save\n+/-:Speed T:Theme ?:Help"))

	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, mapView, statsView)
	if m.showHelp {
		help := GradientTitle.Render("KEYBOARD SHORTCUTS") + "\n\n" +
			"  Space  Pause/Resume\n" +
			"  N      Single step while paused\n" +
			"  F/Tab  Cycle field\n" +
			"  P      Toggle phase map\n" +
			"  +/-    Steps per frame\n" +
			"  S      Save field as PNG\n" +
			"  T      Cycle themes\n" +
			"  Q      Quit"
		return GlassPanel.Render(help) + "\n\n" + mainView
	}
	return mainView
}

func fieldRange(m Model) (lo, hi float64) {
	field, err := render.FromFields(m.solver.Fields(), render.Names[m.field])
	if err != nil {
		return math.NaN(), math.NaN()
	}
	return field.Range()
}

// Run starts the watch program in the alternate screen.
func Run(s *lbm.Solver, opts Options) (Model, error) {
	final, err := tea.NewProgram(NewModel(s, opts), tea.WithAltScreen()).Run()
	if err != nil {
		return Model{}, err
	}
	return final.(Model), nil
}

// Halted returns the stability error that stopped the view, if any.
func (m Model) Halted() error { return m.halted }
