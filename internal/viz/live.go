package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/rxnsim/internal/chem"
	"github.com/san-kum/rxnsim/internal/sim"
)

const (
	frameRate       = 60
	historyCapacity = 240
	maxSpeed        = 1 << 16
)

var (
	statsStyle = lipgloss.NewStyle().Padding(0, 1)
	nameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// LiveModel steps a simulation a few steps per frame and draws the tracked
// concentrations as they evolve.
type LiveModel struct {
	initial *sim.Simulation
	sim     *sim.Simulation
	tracked []chem.Chemical
	cfg     sim.Config
	title   string

	steps   int
	taken   int
	speed   int
	running bool
	err     error
	theme   int

	history [][]float64
}

// NewLive takes ownership of s. An empty tracked list shows every chemical.
func NewLive(s *sim.Simulation, tracked []chem.Chemical, cfg sim.Config, title string) LiveModel {
	if len(tracked) == 0 {
		tracked = s.Chemicals()
	}
	steps := cfg.Steps()
	m := LiveModel{
		initial: s.Clone(),
		sim:     s,
		tracked: tracked,
		cfg:     cfg,
		title:   title,
		steps:   steps,
		speed:   max(1, steps/(5*frameRate)),
		running: true,
	}
	m.resetHistory()
	return m
}

func (m LiveModel) Init() tea.Cmd {
	return tick()
}

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "+", "=":
			m.speed = min(m.speed*2, maxSpeed)
		case "-", "_":
			m.speed = max(m.speed/2, 1)
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
		}
	case TickMsg:
		if m.running && !m.Done() {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

// advance runs up to speed steps and samples the tracked chemicals once.
func (m *LiveModel) advance() {
	for i := 0; i < m.speed && m.taken < m.steps; i++ {
		if err := m.sim.Step(m.cfg.Dt); err != nil {
			m.err = err
			m.running = false
			return
		}
		m.taken++
	}
	m.sample()
}

func (m *LiveModel) sample() {
	for i, c := range m.tracked {
		h := append(m.history[i], m.sim.Concentration(c))
		if len(h) > historyCapacity {
			h = h[len(h)-historyCapacity:]
		}
		m.history[i] = h
	}
}

func (m *LiveModel) reset() {
	m.sim = m.initial.Clone()
	m.taken = 0
	m.err = nil
	m.running = true
	m.resetHistory()
}

func (m *LiveModel) resetHistory() {
	m.history = make([][]float64, len(m.tracked))
	m.sample()
}

func (m LiveModel) Done() bool                  { return m.taken >= m.steps }
func (m LiveModel) Running() bool               { return m.running }
func (m LiveModel) Speed() int                  { return m.speed }
func (m LiveModel) Taken() int                  { return m.taken }
func (m LiveModel) Err() error                  { return m.err }
func (m LiveModel) Theme() Theme                { return Themes[m.theme] }
func (m LiveModel) Simulation() *sim.Simulation { return m.sim }

func (m LiveModel) status() string {
	switch {
	case m.err != nil:
		return StatusError.Render("ERROR")
	case m.Done():
		return StatusDone.Render("DONE")
	case m.running:
		return StatusRunning.Render("RUNNING")
	}
	return StatusPaused.Render("PAUSED")
}

func (m LiveModel) View() string {
	theme := m.Theme()
	var b strings.Builder

	header := theme.title().Render(m.title) + "  " + m.status()
	b.WriteString(header + "\n")

	progress := float64(m.taken) / float64(max(m.steps, 1))
	fmt.Fprintf(&b, "%s %s %s\n",
		ProgressBar(progress, 40),
		theme.value().Render(fmt.Sprintf("t = %.4f / %g", m.sim.Elapsed(), m.cfg.Duration)),
		theme.label().Render(fmt.Sprintf("x%d", m.speed)),
	)

	var stats strings.Builder
	names := make([]string, len(m.tracked))
	for i, c := range m.tracked {
		names[i] = c.Name()
		fmt.Fprintf(&stats, "%s %s %s\n",
			nameStyle.Render(c.Name()),
			theme.accent().Render(fmt.Sprintf("%-12.6g", m.sim.Concentration(c))),
			theme.label().Render(Sparkline(m.history[i], 30)),
		)
	}
	b.WriteString(statsStyle.Render(strings.TrimRight(stats.String(), "\n")) + "\n")

	opts := DefaultPlotOptions()
	opts.Width, opts.Height, opts.Theme = 60, 10, theme
	b.WriteString(PlotSeries(m.history, names, "concentration", opts) + "\n")

	if m.err != nil {
		b.WriteString(StatusError.Render(m.err.Error()) + "\n")
	}
	b.WriteString(helpStyle.Render(KeyHint.Render("space pause · r reset · +/- speed · t theme · q quit")))
	return b.String()
}

// RunLive starts the interactive view and blocks until the user quits.
func RunLive(m LiveModel) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
