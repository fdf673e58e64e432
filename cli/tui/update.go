package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"go.dalton.dog/bubbleup"
	"golang.design/x/clipboard"

	"github.com/malonaz/qachat/internal/api"
	"github.com/malonaz/qachat/router"
)

type KeyMapSession struct {
	Quit   key.Binding
	Logout key.Binding
}

type KeyMapLogin struct {
	CycleInput key.Binding
	Login      key.Binding
	Register   key.Binding
}

type KeyMapChat struct {
	CycleFocus      key.Binding
	NewConversation key.Binding
	Copy            key.Binding
	ScrollUp        key.Binding
	ScrollDown      key.Binding
}

type KeyMapSidebar struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Reload key.Binding
	Rename key.Binding
	Delete key.Binding
}

type InputKeyMap struct {
	Send                 key.Binding
	PreviousHistoryEntry key.Binding
	NextHistoryEntry     key.Binding
}

var keyMapSession = KeyMapSession{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
	),
	Logout: key.NewBinding(
		key.WithKeys("ctrl+l"),
	),
}

var keyMapLogin = KeyMapLogin{
	CycleInput: key.NewBinding(
		key.WithKeys("tab", "shift+tab", "up", "down"),
	),
	Login: key.NewBinding(
		key.WithKeys("enter"),
	),
	Register: key.NewBinding(
		key.WithKeys("ctrl+r"),
	),
}

var keyMapChat = KeyMapChat{
	CycleFocus: key.NewBinding(
		key.WithKeys("tab"),
	),
	NewConversation: key.NewBinding(
		key.WithKeys("ctrl+n"),
	),
	Copy: key.NewBinding(
		key.WithKeys("alt+w"),
	),
	// Scrolling.
	ScrollUp: key.NewBinding(
		key.WithKeys("pgup"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("pgdown"),
	),
}

var keyMapSidebar = KeyMapSidebar{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
	),
	Reload: key.NewBinding(
		key.WithKeys("ctrl+r", "g"),
	),
	Rename: key.NewBinding(
		key.WithKeys("r"),
	),
	Delete: key.NewBinding(
		key.WithKeys("ctrl+d", "d"),
	),
}

var inputKeyMap = InputKeyMap{
	Send: key.NewBinding(
		key.WithKeys("ctrl+j"),
	),
	PreviousHistoryEntry: key.NewBinding(
		key.WithKeys("alt+p"),
	),
	NextHistoryEntry: key.NewBinding(
		key.WithKeys("alt+n"),
	),
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Always update the alert model with every message
	outAlert, alertCmd := m.alert.Update(msg)
	m.alert = outAlert.(bubbleup.AlertModel)
	if alertCmd != nil {
		cmds = append(cmds, alertCmd)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalculateLayout()
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case routeChangedMsg:
		if route, ok := m.router.Current(); ok && route != m.route {
			cmds = append(cmds, m.enterRoute(route))
		}
		return m, tea.Batch(cmds...)

	case routeMsg:
		if msg.err != nil {
			m.err = msg.err
		}
		return m, tea.Batch(cmds...)

	case sessionChangedMsg:
		return m, tea.Batch(cmds...)

	case authDoneMsg:
		m.authenticating = false
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Batch(cmds...)
		}
		cmds = append(cmds, m.refreshRoute())
		return m, tea.Batch(cmds...)

	case chatChangedMsg:
		m.clampCursor()
		if m.chat.Streaming() != m.layoutStreaming {
			m.recalculateLayout()
		} else {
			m.refreshViewport()
		}
		return m, tea.Batch(cmds...)

	case actionDoneMsg:
		if msg.err != nil {
			cmds = append(cmds, m.handleError(msg.err))
		}
		return m, tea.Batch(cmds...)

	case streamEventMsg:
		m.applyStreamEvent(msg.event)
		m.refreshViewport()
		return m, tea.Batch(cmds...)

	case streamDoneMsg:
		m.cancelStream = nil
		m.currentReasoning.Reset()
		m.currentAnswer.Reset()
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			cmds = append(cmds, m.handleError(msg.err))
		}
		m.recalculateLayout()
		return m, tea.Batch(cmds...)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, keyMapSession.Quit):
			if m.cancelStream != nil {
				m.cancelStream()
				return m, tea.Batch(cmds...)
			}
			m.quitting = true
			return m, tea.Quit
		}
	}

	switch m.route.Name {
	case router.Login.Name:
		cmds = append(cmds, m.updateLogin(msg)...)
	case router.Chat.Name:
		cmds = append(cmds, m.updateChat(msg)...)
	}
	return m, tea.Batch(cmds...)
}

// handleError shows err, and leaves the chat screen when the session was rejected.
func (m *Model) handleError(err error) tea.Cmd {
	m.err = err
	var authErr *api.AuthError
	if errors.As(err, &authErr) {
		log.Info("session rejected", "error", err)
		return m.logout()
	}
	return nil
}

func (m *Model) updateLogin(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, keyMapLogin.CycleInput):
			if m.username.Focused() {
				m.username.Blur()
				m.password.Focus()
			} else {
				m.password.Blur()
				m.username.Focus()
			}
			return append(cmds, textinput.Blink)

		case key.Matches(keyMsg, keyMapLogin.Login), key.Matches(keyMsg, keyMapLogin.Register):
			if m.authenticating {
				return cmds
			}
			if m.username.Value() == "" || m.password.Value() == "" {
				m.err = errors.New("username and password are required")
				return cmds
			}
			m.err = nil
			return append(cmds, m.authenticate(key.Matches(keyMsg, keyMapLogin.Register)))
		}
	}

	var cmd tea.Cmd
	m.username, cmd = m.username.Update(msg)
	cmds = append(cmds, cmd)
	m.password, cmd = m.password.Update(msg)
	return append(cmds, cmd)
}

func (m *Model) updateChat(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	keyMsg, isKey := msg.(tea.KeyMsg)
	if isKey && m.renaming {
		return m.updateRename(keyMsg)
	}
	if isKey && m.confirmDelete {
		m.confirmDelete = false
		if keyMsg.String() == "y" || keyMsg.String() == "Y" {
			if id, _, ok := m.selectedConversation(); ok {
				return append(cmds, m.deleteConversation(id))
			}
		}
		return cmds
	}

	if isKey {
		switch {
		case key.Matches(keyMsg, keyMapSession.Logout):
			return append(cmds, m.logout())

		case key.Matches(keyMsg, keyMapChat.CycleFocus):
			if m.focusedComponent == FocusTextarea {
				m.focusSidebar()
				return cmds
			}
			m.focusTextarea()
			return append(cmds, textarea.Blink)

		case key.Matches(keyMsg, keyMapChat.NewConversation):
			if m.chat.Streaming() {
				return cmds
			}
			m.cursor = 0
			return append(cmds, m.createConversation())

		case key.Matches(keyMsg, keyMapChat.Copy):
			if content, ok := m.lastAnswer(); ok {
				clipboard.Write(clipboard.FmtText, []byte(content))
				return append(cmds, m.alert.NewAlertCmd(bubbleup.InfoKey, "Copied to clipboard!"))
			}
			return cmds

		case key.Matches(keyMsg, keyMapChat.ScrollUp):
			m.viewport.LineUp(max(m.viewport.Height/2, 1))
			return cmds

		case key.Matches(keyMsg, keyMapChat.ScrollDown):
			m.viewport.LineDown(max(m.viewport.Height/2, 1))
			return cmds
		}
	}

	switch m.focusedComponent {
	case FocusSidebar:
		if isKey {
			cmds = append(cmds, m.updateSidebar(keyMsg)...)
		}
		return cmds

	case FocusTextarea:
		if isKey {
			km := inputKeyMap
			switch {
			case key.Matches(keyMsg, km.Send):
				return append(cmds, m.sendMessage())
			case key.Matches(keyMsg, km.PreviousHistoryEntry):
				if entry, ok := m.history.Previous(m.textarea.Value()); ok {
					m.textarea.SetValue(entry)
					m.historyNavigating = true
					m.adjustTextareaHeight()
				}
				return cmds
			case key.Matches(keyMsg, km.NextHistoryEntry):
				if entry, ok := m.history.Next(); ok {
					m.textarea.SetValue(entry)
					m.historyNavigating = true
					m.adjustTextareaHeight()
				}
				return cmds
			}
			if m.historyNavigating {
				switch keyMsg.Type {
				case tea.KeyRunes, tea.KeyBackspace, tea.KeyDelete, tea.KeyEnter:
					m.history.Reset()
					m.historyNavigating = false
				}
			}
		}
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
		m.adjustTextareaHeight()
	}
	return cmds
}

func (m *Model) updateSidebar(msg tea.KeyMsg) []tea.Cmd {
	km := keyMapSidebar
	switch {
	case key.Matches(msg, km.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, km.Down):
		m.cursor++
		m.clampCursor()
	case key.Matches(msg, km.Select):
		if id, _, ok := m.selectedConversation(); ok {
			m.err = nil
			return []tea.Cmd{m.selectConversation(id)}
		}
	case key.Matches(msg, km.Reload):
		if id, ok := m.chat.Active(); ok {
			m.err = nil
			return []tea.Cmd{m.reloadMessages(id)}
		}
		return []tea.Cmd{m.fetchConversations()}
	case key.Matches(msg, km.Rename):
		if _, title, ok := m.selectedConversation(); ok {
			m.renaming = true
			m.rename.SetValue(title)
			m.rename.CursorEnd()
			m.rename.Focus()
			return []tea.Cmd{textinput.Blink}
		}
	case key.Matches(msg, km.Delete):
		if _, _, ok := m.selectedConversation(); ok {
			m.confirmDelete = true
		}
	}
	return nil
}

func (m *Model) updateRename(msg tea.KeyMsg) []tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.renaming = false
		m.rename.Blur()
		return nil
	case tea.KeyEnter:
		m.renaming = false
		m.rename.Blur()
		if id, _, ok := m.selectedConversation(); ok {
			return []tea.Cmd{m.renameConversation(id, m.rename.Value())}
		}
		return nil
	}
	var cmd tea.Cmd
	m.rename, cmd = m.rename.Update(msg)
	return []tea.Cmd{cmd}
}

// applyStreamEvent accumulates the answer being streamed for display.
func (m *Model) applyStreamEvent(event *api.StreamEvent) {
	switch event.Type {
	case api.EventReasoning:
		if text, err := event.Text(); err == nil {
			m.currentReasoning.WriteString(text)
		}
	case api.EventAnswer:
		if text, err := event.Text(); err == nil {
			m.currentAnswer.WriteString(text)
		}
	case api.EventAnswerFinal:
		// The store now holds the final answer.
		m.currentReasoning.Reset()
		m.currentAnswer.Reset()
	}
}
