// Package ui is the bubbletea front end: a source browser and the live
// sweep chart view.
package ui

import (
	"context"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/sweep/internal/render"
	"github.com/olivier-w/sweep/internal/signal"
	"github.com/olivier-w/sweep/internal/sweep"
)

const (
	minWindowMs = 100
	maxWindowMs = 120_000

	// rows and columns taken by everything around the plot
	chromeRows = 6
	chromeCols = 6
)

// Options wires a Model to its chart and source.
type Options struct {
	Chart    *sweep.Chart
	Canvas   *render.Canvas
	Producer signal.Producer
	Logger   *slog.Logger
	FPS      int
}

// Model is the Bubbletea model for the live chart.
type Model struct {
	chart    *sweep.Chart
	canvas   *render.Canvas
	producer signal.Producer
	logger   *slog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	fps      int
	ringBar  progress.Model

	frozen     bool
	lead       bool
	width      int
	height     int
	quitting   bool
	sourceDone bool
	sourceErr  error
}

// New creates a Model. The producer starts in Init and stops on quit.
func New(opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	fps := opts.FPS
	if fps < 1 {
		fps = 30
	}
	return Model{
		chart:    opts.Chart,
		canvas:   opts.Canvas,
		producer: opts.Producer,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		fps:      fps,
		ringBar:  newRingBar(),
		lead:     true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		frameCmd(m.fps),
		runSource(m.ctx, m.producer, m.chart, m.logger),
		tea.SetWindowTitle(m.producer.Name()+" · sweep"),
	)
}

func runSource(ctx context.Context, p signal.Producer, chart *sweep.Chart, logger *slog.Logger) tea.Cmd {
	return func() tea.Msg {
		return sourceDoneMsg{err: signal.Pump(ctx, p, chart, logger)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isQuit(msg) {
			m.quitting = true
			m.cancel()
			return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
		}
		switch msg.String() {
		case " ":
			m.frozen = !m.frozen
		case "c":
			m.chart.Clear()
		case "m":
			m.chart.SetPrimitive(m.chart.Primitive().Next())
		case "+", "=":
			m.setWindow(m.chart.TimeRange() * 2)
		case "-", "_":
			m.setWindow(m.chart.TimeRange() / 2)
		case "v":
			m.lead = !m.lead
		}
		return m, nil

	case frameMsg:
		if !m.frozen {
			m.chart.Draw()
		}
		return m, frameCmd(m.fps)

	case sourceDoneMsg:
		m.sourceDone = true
		m.sourceErr = msg.err
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		cols, rows := m.plotSize()
		m.chart.SetGeometry(render.Geometry(cols, rows))
		m.logger.Info("geometry rebuilt", "cols", cols, "rows", rows)
		return m, nil
	}

	return m, nil
}

func (m Model) setWindow(ms float64) {
	m.chart.SetTimeRange(min(max(ms, minWindowMs), maxWindowMs))
}

// plotSize is the braille cell area left for the chart.
func (m Model) plotSize() (cols, rows int) {
	w, h := m.width, m.height
	if w == 0 || h == 0 {
		w, h = 80, 24
	}
	return max(w-chromeCols, 1), max(h-chromeRows, 1)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	cols, rows := m.plotSize()
	head := render.Head{
		X:       m.chart.LastPlottedX(),
		Y:       m.chart.LastPlottedY(),
		Visible: m.lead && !m.frozen,
	}
	plot := plotStyle.Render(m.canvas.Render(cols, rows, head))

	header := headerStyle.Render("sweep") + "  " + titleStyle.Render(m.producer.Name())
	if m.frozen {
		header += "  " + frozenStyle.Render("FROZEN")
	}

	st := m.chart.Stats()
	status := statusStyle.Render(renderStatus(st, m.chart.TimeRange(), m.chart.Primitive())) +
		"  " + renderRing(m.ringBar, st.Buffered, st.RingCap)
	switch {
	case m.sourceErr != nil:
		status += "  " + errorStyle.Render("source error: "+m.sourceErr.Error())
	case m.sourceDone:
		status += "  " + helpStyle.Render("source ended")
	}

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(indentBlock(plot, "  "))
	b.WriteString("\n  ")
	b.WriteString(status)
	b.WriteString("\n  ")
	b.WriteString(helpStyle.Render(helpText(m.frozen)))
	return b.String()
}

func indentBlock(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		if lines[i] != "" {
			lines[i] = prefix + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
