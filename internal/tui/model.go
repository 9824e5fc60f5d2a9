// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/keyflash/internal/engine"
	"github.com/verte-zerg/keyflash/internal/flow"
	"github.com/verte-zerg/keyflash/internal/model"
	"github.com/verte-zerg/keyflash/internal/store"
)

const blinkInterval = 530 * time.Millisecond

// Options wires a Model to its run controller and persistence.
type Options struct {
	Controller flow.Controller
	// Countdown is set for timed runs.
	Countdown *flow.Timer
	// Quiz is set for flashcard runs.
	Quiz     *flow.Quiz
	Store    *store.Store
	Logger   *slog.Logger
	Practice model.Config
	Source   string
}

type blinkMsg struct{}

// Model implements the Bubble Tea typing UI.
type Model struct {
	opts    Options
	ctrl    flow.Controller
	session *engine.Session
	store   *store.Store
	logger  *slog.Logger
	bridge  *bridge
	keys    keyMap
	help    help.Model

	timer   timer.Model
	timerOn bool

	width  int
	height int

	view     engine.View
	blinkOn  bool
	loading  bool
	item     int
	lastItem *engine.Result
	summary  *flow.Summary
	err      error

	lastWPM float64
	lastAcc float64
	hasLast bool

	allWPMSum float64
	allAccSum float64
	allCount  int
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle        = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#C89A3A")).
				Padding(1, 3)
)

// NewModel starts the controller and returns the typing UI for it.
func NewModel(opts Options) (*Model, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &Model{
		opts:    opts,
		ctrl:    opts.Controller,
		session: opts.Controller.Session(),
		store:   opts.Store,
		logger:  logger,
		bridge:  newBridge(),
		keys:    defaultKeyMap(),
		help:    help.New(),
	}
	m.resetTimer()
	m.session.Subscribe(m.bridge.onSession)
	m.ctrl.Subscribe(m.bridge.onFlow)
	if err := m.ctrl.Start(context.Background()); err != nil {
		m.shutdown()
		return nil, err
	}
	m.loadFooterStats()
	m.refresh()
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.bridge.wait(), blink())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case sessionMsg:
		cmd := m.handleSession(msg.ev)
		return m, tea.Batch(cmd, m.bridge.wait())
	case flowMsg:
		cmd := m.handleFlow(msg.ev)
		return m, tea.Batch(cmd, m.bridge.wait())
	case blinkMsg:
		m.blinkOn = !m.blinkOn
		return m, blink()
	default:
		var cmd tea.Cmd
		m.timer, cmd = m.timer.Update(msg)
		return m, cmd
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	act := m.keys.actionFor(msg)
	switch act {
	case actionQuit:
		m.shutdown()
		return tea.Quit
	case actionRetry:
		return m.restart(false)
	case actionNext:
		return m.restart(true)
	}
	if m.summary != nil {
		if act == actionEnter {
			return m.restart(false)
		}
		return nil
	}
	if m.loading {
		return nil
	}
	applyKey(m.session, act, msg)
	m.refresh()
	return nil
}

func (m *Model) handleSession(ev engine.Event) tea.Cmd {
	var cmd tea.Cmd
	if ev.Kind == engine.EventStarted && m.opts.Countdown != nil && !m.timerOn {
		m.timerOn = true
		cmd = m.timer.Init()
	}
	m.refresh()
	return cmd
}

func (m *Model) handleFlow(ev flow.Event) tea.Cmd {
	var cmd tea.Cmd
	switch ev.Kind {
	case flow.EventLoading:
		m.loading = true
	case flow.EventItemStarted:
		m.loading = false
		m.item = ev.Item
	case flow.EventPhaseChanged:
		m.item = ev.Item
		if ev.Phase == engine.PhaseQuestion {
			m.lastItem = nil
		}
	case flow.EventItemDone:
		res := ev.Result
		m.lastItem = &res
	case flow.EventError:
		m.err = ev.Err
		m.logger.Error("text source failed", "err", ev.Err)
	case flow.EventFinished:
		m.loading = false
		summary := ev.Summary
		m.summary = &summary
		m.persist(summary)
		if m.opts.Countdown != nil {
			cmd = m.timer.Stop()
		}
	}
	m.refresh()
	return cmd
}

func (m *Model) restart(next bool) tea.Cmd {
	m.summary = nil
	m.lastItem = nil
	m.err = nil
	m.resetTimer()
	ctx := context.Background()
	var err error
	if next {
		err = m.ctrl.Start(ctx)
	} else {
		err = m.ctrl.Restart(ctx)
	}
	if err != nil {
		m.err = err
		m.logger.Error("failed to restart run", "err", err)
	}
	m.refresh()
	return nil
}

func (m *Model) resetTimer() {
	m.timerOn = false
	if m.opts.Countdown != nil {
		m.timer = timer.NewWithInterval(m.opts.Countdown.Duration(), time.Second)
	}
}

func (m *Model) refresh() {
	m.view = m.session.Snapshot()
}

func (m *Model) shutdown() {
	m.ctrl.Stop()
	m.session.Close()
	m.bridge.close()
}

func blink() tea.Cmd {
	return tea.Tick(blinkInterval, func(time.Time) tea.Msg { return blinkMsg{} })
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch {
	case m.summary != nil:
		content = m.renderResults(*m.summary)
	case m.err != nil:
		content = errorStyle.Render("error: " + m.err.Error())
	default:
		content = m.renderTyping()
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	footerHeight := lipgloss.Height(footer)
	body := lipgloss.Place(m.width, max(1, m.height-footerHeight), lipgloss.Center, lipgloss.Center, content)
	return body + "\n" + lipgloss.PlaceHorizontal(m.width, lipgloss.Center, footer)
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	ratio := 0.70
	if m.view.Mode == engine.ModeCode {
		ratio = 0.90
	}
	return max(1, int(float64(m.width)*ratio))
}

func (m *Model) renderTyping() string {
	if m.loading {
		return pendingStyle.Render("loading…")
	}
	showCursor := !m.view.Idle || m.blinkOn
	runes := buildStyledRunes(m.view.Classification, showCursor)
	width := m.contentWidth()
	lines, cursorLine := wrapStyledRunes(runes, width)
	header := m.renderHeader()
	if m.height > 0 {
		reserved := 3
		if header != "" {
			reserved += lipgloss.Height(header) + 1
		}
		lines = visibleLines(lines, cursorLine, m.height-reserved)
	}
	text := lipgloss.JoinVertical(lipgloss.Left, lines...)
	if width > 0 {
		text = lipgloss.NewStyle().Width(width).Render(text)
	}
	if header == "" {
		return text
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, "", text)
}
