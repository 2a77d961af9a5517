// Package ui is the terminal interface. It renders the countdown streamed
// by a Backend and turns key presses into commands.
package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"sleepat/internal/i18n"
	"sleepat/internal/timer"
)

// languagePoll is how often the language is re-read, since other clients
// may change it and the state stream does not carry it.
const languagePoll = 5 * time.Second

var errStreamClosed = errors.New("lost connection to the timer")

// Backend is satisfied by the in-process host service and by the HTTP
// client of a running daemon.
type Backend interface {
	Watch(ctx context.Context) (<-chan timer.State, error)
	Start(ctx context.Context, minutes int) error
	Stop(ctx context.Context) error
	Extend(ctx context.Context) error
	SetDuration(ctx context.Context, minutes int) error
	SetLanguage(ctx context.Context, code string) error
	CurrentLanguage(ctx context.Context) (string, error)
}

type watchStartedMsg struct {
	states <-chan timer.State
}

type stateMsg timer.State

type streamClosedMsg struct{}

type errMsg struct {
	err error
}

// languageSetMsg confirms a language change made from this UI.
type languageSetMsg string

type languagePolledMsg struct {
	language string
	err      error
}

type Model struct {
	State    timer.State
	Language string
	Err      error

	backend  Backend
	catalog  *i18n.Catalog
	ctx      context.Context
	states   <-chan timer.State
	keys     keyMap
	help     help.Model
	progress progress.Model
	width    int
}

func NewModel(ctx context.Context, backend Backend, catalog *i18n.Catalog, language string) *Model {
	if language == "" {
		language = catalog.Fallback()
	}
	m := &Model{
		Language: language,
		backend:  backend,
		catalog:  catalog,
		ctx:      ctx,
		keys:     defaultKeys(),
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient()),
		width:    80,
	}
	m.progress.Width = 40
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.connect, m.pollLanguage)
}

func (m *Model) connect() tea.Msg {
	states, err := m.backend.Watch(m.ctx)
	if err != nil {
		return errMsg{err}
	}
	return watchStartedMsg{states: states}
}

func (m *Model) pollLanguage() tea.Msg {
	lang, err := m.backend.CurrentLanguage(m.ctx)
	return languagePolledMsg{language: lang, err: err}
}

func (m *Model) schedulePoll() tea.Cmd {
	return tea.Tick(languagePoll, func(time.Time) tea.Msg {
		return m.pollLanguage()
	})
}

func waitForState(states <-chan timer.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-states
		if !ok {
			return streamClosedMsg{}
		}
		return stateMsg(st)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case watchStartedMsg:
		m.states = msg.states
		return m, waitForState(m.states)
	case stateMsg:
		m.State = timer.State(msg)
		return m, waitForState(m.states)
	case streamClosedMsg:
		m.Err = errStreamClosed
		return m, nil
	case errMsg:
		m.Err = msg.err
		return m, nil
	case languageSetMsg:
		m.Language = string(msg)
		return m, nil
	case languagePolledMsg:
		// a failed poll keeps the last known language; a dead daemon is
		// reported by the state stream
		if msg.err == nil && msg.language != "" {
			m.Language = msg.language
		}
		return m, m.schedulePoll()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.progress.Width = max(min(msg.Width-10, 60), 10)
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Less):
		return m, m.adjust(-1)
	case key.Matches(msg, m.keys.More):
		return m, m.adjust(1)
	case key.Matches(msg, m.keys.LessFive):
		return m, m.adjust(-5)
	case key.Matches(msg, m.keys.MoreFive):
		return m, m.adjust(5)
	case key.Matches(msg, m.keys.Toggle):
		if m.State.Running {
			return m, m.call(m.backend.Stop)
		}
		minutes := m.State.SelectedMinutes()
		return m, m.call(func(ctx context.Context) error {
			return m.backend.Start(ctx, minutes)
		})
	case key.Matches(msg, m.keys.Extend):
		if !m.State.Running {
			return m, nil
		}
		return m, m.call(m.backend.Extend)
	case key.Matches(msg, m.keys.Language):
		next := m.catalog.Next(m.Language)
		return m, func() tea.Msg {
			if err := m.backend.SetLanguage(m.ctx, next); err != nil {
				return errMsg{err}
			}
			return languageSetMsg(next)
		}
	}
	return m, nil
}

// adjust changes the selected duration by delta minutes, clamped to
// [1, timer.MaxMinutes]. It does nothing while the countdown runs.
func (m *Model) adjust(delta int) tea.Cmd {
	if m.State.Running {
		return nil
	}
	current := m.State.SelectedMinutes()
	minutes := max(min(current+delta, timer.MaxMinutes), 1)
	if minutes == current {
		return nil
	}
	return m.call(func(ctx context.Context) error {
		return m.backend.SetDuration(ctx, minutes)
	})
}

func (m *Model) call(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(m.ctx); err != nil {
			return errMsg{err}
		}
		return nil
	}
}
