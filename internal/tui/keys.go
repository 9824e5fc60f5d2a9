package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/keyflash/internal/engine"
)

type keyMap struct {
	Quit       key.Binding
	Retry      key.Binding
	Next       key.Binding
	DeleteWord key.Binding
	Backspace  key.Binding
	Tab        key.Binding
	Enter      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:       key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
		Retry:      key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "retry")),
		Next:       key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "next")),
		DeleteWord: key.NewBinding(key.WithKeys("ctrl+w", "ctrl+h", "alt+backspace"), key.WithHelp("ctrl+w", "delete word")),
		Backspace:  key.NewBinding(key.WithKeys("backspace")),
		Tab:        key.NewBinding(key.WithKeys("tab")),
		Enter:      key.NewBinding(key.WithKeys("enter")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Retry, k.Next, k.DeleteWord, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type action int

const (
	actionNone action = iota
	actionQuit
	actionRetry
	actionNext
	actionDeleteWord
	actionBackspace
	actionTab
	actionEnter
	actionRunes
)

func (k keyMap) actionFor(msg tea.KeyMsg) action {
	switch {
	case key.Matches(msg, k.Quit):
		return actionQuit
	case key.Matches(msg, k.Retry):
		return actionRetry
	case key.Matches(msg, k.Next):
		return actionNext
	case key.Matches(msg, k.DeleteWord):
		return actionDeleteWord
	case key.Matches(msg, k.Backspace):
		return actionBackspace
	case key.Matches(msg, k.Tab):
		return actionTab
	case key.Matches(msg, k.Enter):
		return actionEnter
	}
	switch msg.Type {
	case tea.KeySpace, tea.KeyRunes:
		if !msg.Alt {
			return actionRunes
		}
	}
	return actionNone
}

// applyKey forwards a typing action to the session.
func applyKey(session *engine.Session, act action, msg tea.KeyMsg) {
	switch act {
	case actionDeleteWord:
		session.HandleKey(engine.Key{Code: engine.KeyBackspace, Ctrl: true})
	case actionBackspace:
		session.Backspace()
	case actionTab:
		if !session.HandleKey(engine.Key{Code: engine.KeyTab}) {
			session.TypeRunes([]rune{'\t'})
		}
	case actionEnter:
		if !session.HandleKey(engine.Key{Code: engine.KeyEnter}) {
			session.TypeRunes([]rune{'\n'})
		}
	case actionRunes:
		if msg.Type == tea.KeySpace {
			session.TypeRunes([]rune{' '})
			return
		}
		session.TypeRunes(msg.Runes)
	}
}
