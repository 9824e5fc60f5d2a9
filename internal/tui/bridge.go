package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/keyflash/internal/engine"
	"github.com/verte-zerg/keyflash/internal/flow"
)

const bridgeBuffer = 64

type sessionMsg struct {
	ev engine.Event
}

type flowMsg struct {
	ev flow.Event
}

// bridge carries engine and flow callbacks, which may run on timer
// goroutines, into the Bubble Tea update loop.
type bridge struct {
	ch   chan tea.Msg
	done chan struct{}
}

func newBridge() *bridge {
	return &bridge{
		ch:   make(chan tea.Msg, bridgeBuffer),
		done: make(chan struct{}),
	}
}

func (b *bridge) send(msg tea.Msg) {
	select {
	case b.ch <- msg:
	case <-b.done:
	}
}

// onSession forwards the events the view reacts to. Per-keystroke input
// events are skipped; Update re-reads the session after each key.
func (b *bridge) onSession(ev engine.Event) {
	if ev.Kind == engine.EventInput {
		return
	}
	b.send(sessionMsg{ev: ev})
}

func (b *bridge) onFlow(ev flow.Event) {
	b.send(flowMsg{ev: ev})
}

func (b *bridge) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.ch:
			return msg
		case <-b.done:
			return nil
		}
	}
}

func (b *bridge) close() {
	select {
	case <-b.done:
	default:
		close(b.done)
	}
}
