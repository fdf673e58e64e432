package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/malonaz/qachat/chat"
	"github.com/malonaz/qachat/internal/api"
)

// Messages forwarded from store observers.
type (
	routeChangedMsg   struct{}
	chatChangedMsg    struct{}
	sessionChangedMsg struct{}
)

// routeMsg reports the route a navigation landed on.
type routeMsg struct {
	err error
}

// authDoneMsg ends a login or register attempt.
type authDoneMsg struct {
	err error
}

// actionDoneMsg ends a conversation action. An error is shown in the status line.
type actionDoneMsg struct {
	err error
}

// streamEventMsg carries one event of the answer being streamed.
type streamEventMsg struct {
	event *api.StreamEvent
}

// streamDoneMsg ends an answer stream.
type streamDoneMsg struct {
	err error
}

func (m *Model) navigate(path string) tea.Cmd {
	r := m.router
	return func() tea.Msg {
		_, err := r.Push(path)
		return routeMsg{err: err}
	}
}

func (m *Model) refreshRoute() tea.Cmd {
	r := m.router
	return func() tea.Msg {
		_, err := r.Refresh()
		return routeMsg{err: err}
	}
}

func (m *Model) authenticate(register bool) tea.Cmd {
	username := strings.TrimSpace(m.username.Value())
	password := m.password.Value()
	authStore := m.auth
	ctx := m.ctx
	m.authenticating = true
	return func() tea.Msg {
		var err error
		if register {
			_, err = authStore.Register(ctx, username, password)
		} else {
			_, err = authStore.Login(ctx, username, password)
		}
		return authDoneMsg{err: err}
	}
}

func (m *Model) logout() tea.Cmd {
	if m.cancelStream != nil {
		m.cancelStream()
	}
	m.auth.Logout()
	m.chat.Reset()
	m.cursor = 0
	return m.refreshRoute()
}

// action runs fn against the chat store off the update loop.
func (m *Model) action(fn func(ctx context.Context, s *chat.Store) error) tea.Cmd {
	ctx := m.ctx
	s := m.chat
	return func() tea.Msg {
		return actionDoneMsg{err: fn(ctx, s)}
	}
}

func (m *Model) fetchConversations() tea.Cmd {
	return m.action(func(ctx context.Context, s *chat.Store) error {
		return s.FetchConversations(ctx)
	})
}

func (m *Model) selectConversation(id string) tea.Cmd {
	return m.action(func(ctx context.Context, s *chat.Store) error {
		return s.SelectConversation(ctx, id)
	})
}

func (m *Model) reloadMessages(id string) tea.Cmd {
	return m.action(func(ctx context.Context, s *chat.Store) error {
		return s.LoadMessages(ctx, id)
	})
}

func (m *Model) createConversation() tea.Cmd {
	return m.action(func(ctx context.Context, s *chat.Store) error {
		_, err := s.CreateConversation(ctx)
		return err
	})
}

func (m *Model) deleteConversation(id string) tea.Cmd {
	return m.action(func(ctx context.Context, s *chat.Store) error {
		return s.DeleteConversation(ctx, id)
	})
}

func (m *Model) renameConversation(id, title string) tea.Cmd {
	return m.action(func(ctx context.Context, s *chat.Store) error {
		return s.RenameConversation(ctx, id, title)
	})
}

func (m *Model) sendMessage() tea.Cmd {
	question := strings.TrimSpace(m.textarea.Value())
	if question == "" || m.cancelStream != nil || m.chat.Streaming() || m.chat.Loading() {
		return nil
	}

	m.history.Add(question)
	m.historyNavigating = false
	m.textarea.Reset()
	m.currentReasoning.Reset()
	m.currentAnswer.Reset()
	m.err = nil

	streamCtx, cancel := context.WithCancel(m.ctx)
	m.cancelStream = cancel
	opts := chat.AskOptions{
		DisableThinking: m.config.Chat.DisableThinking,
		TopK:            m.config.Chat.TopK,
	}
	s := m.chat
	return func() tea.Msg {
		defer cancel()
		err := s.Ask(streamCtx, question, opts, func(event *api.StreamEvent) {
			m.send(streamEventMsg{event: event})
		})
		return streamDoneMsg{err: err}
	}
}
