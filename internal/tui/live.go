// Package tui hosts the interactive live view of the rig. It steps the
// physics in real time inside a bubbletea program and charts the joint
// rates with asciigraph, which makes the approach to gimbal lock
// watchable without rendering video.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/gimlock/internal/physics"
	"github.com/san-kum/gimlock/internal/rig"
)

const (
	historyCapacity = 240
	graphWidth      = 70
	graphHeight     = 8
	tickRate        = time.Second / 30
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model steps the articulation engine on every tick and charts recent
// joint velocities for one environment.
type Model struct {
	engine    *rig.ArticulationEngine
	newEngine func() (*rig.ArticulationEngine, error)
	overrides []rig.Override
	dt        float64
	env       int
	steps     int
	running   bool
	err       error

	yawRateHist   []float64
	pitchHist     []float64
	rotorRateHist []float64
}

// NewModel builds the live view. newEngine is called once now and again
// on reset, so the rig restarts from its configured initial state.
func NewModel(newEngine func() (*rig.ArticulationEngine, error), overrides []rig.Override, dt float64) (Model, error) {
	engine, err := newEngine()
	if err != nil {
		return Model{}, err
	}
	return Model{
		engine:        engine,
		newEngine:     newEngine,
		overrides:     overrides,
		dt:            dt,
		running:       true,
		yawRateHist:   make([]float64, 0, historyCapacity),
		pitchHist:     make([]float64, 0, historyCapacity),
		rotorRateHist: make([]float64, 0, historyCapacity),
	}, nil
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "tab":
			m.env = (m.env + 1) % m.engine.NumEnvs()
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.step()
		}
		return m, tea.Tick(tickRate, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

// step advances the rig by one real-time tick worth of physics.
func (m *Model) step() {
	substeps := int(tickRate.Seconds()/m.dt + 0.5)
	if substeps < 1 {
		substeps = 1
	}
	for i := 0; i < substeps; i++ {
		js := m.engine.JointState()
		rig.ApplyOverrides(js, m.overrides, m.steps == 0)
		if err := m.engine.WriteJointState(js); err != nil {
			m.err = err
			return
		}
		if err := m.engine.Step(m.dt); err != nil {
			m.err = err
			return
		}
		m.steps++
	}

	js := m.engine.JointState()
	m.yawRateHist = pushSample(m.yawRateHist, js.Vel[m.env][physics.JointYaw])
	m.pitchHist = pushSample(m.pitchHist, js.Pos[m.env][physics.JointPitch])
	m.rotorRateHist = pushSample(m.rotorRateHist, js.Vel[m.env][physics.JointRotor])
}

func pushSample(hist []float64, v float64) []float64 {
	hist = append(hist, v)
	if len(hist) > historyCapacity {
		hist = hist[1:]
	}
	return hist
}

func (m *Model) reset() {
	engine, err := m.newEngine()
	if err != nil {
		m.err = err
		return
	}
	m.engine = engine
	m.steps = 0
	m.err = nil
	m.yawRateHist = m.yawRateHist[:0]
	m.pitchHist = m.pitchHist[:0]
	m.rotorRateHist = m.rotorRateHist[:0]
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("GIMBAL RIG") + "\n")

	status := "RUNNING"
	if m.err != nil {
		status = warnStyle.Render(fmt.Sprintf("STOPPED: %v", m.err))
	} else if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n\n")

	js := m.engine.JointState()
	s.WriteString(labelStyle.Render("time") + valueStyle.Render(fmt.Sprintf("%.3f s", m.engine.Time())) + "\n")
	s.WriteString(labelStyle.Render("env") + valueStyle.Render(fmt.Sprintf("%d / %d", m.env, m.engine.NumEnvs())) + "\n")
	for j, name := range m.engine.JointNames() {
		line := fmt.Sprintf("%9.3f rad  %10.3f rad/s", js.Pos[m.env][j], js.Vel[m.env][j])
		s.WriteString(labelStyle.Render(name) + valueStyle.Render(line) + "\n")
	}
	s.WriteString(labelStyle.Render("energy") + valueStyle.Render(fmt.Sprintf("%.3f J", m.engine.Energy(m.env))) + "\n")

	s.WriteString(m.graph("yaw rate", m.yawRateHist))
	s.WriteString(m.graph("pitch angle", m.pitchHist))
	s.WriteString(m.graph("rotor rate", m.rotorRateHist))

	s.WriteString(helpStyle.Render("space pause  r reset  tab env  q quit"))
	return s.String()
}

func (m Model) graph(caption string, hist []float64) string {
	if len(hist) < 2 {
		return ""
	}
	g := asciigraph.Plot(hist,
		asciigraph.Height(graphHeight),
		asciigraph.Width(graphWidth),
		asciigraph.Caption(caption),
	)
	return graphStyle.Render(g) + "\n"
}

// Run starts the live view and blocks until the user quits.
func Run(m Model) error {
	p := tea.NewProgram(m)
	_, err := p.Run()
	return err
}
