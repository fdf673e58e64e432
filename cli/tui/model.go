package tui

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.dalton.dog/bubbleup"

	"github.com/malonaz/qachat/auth"
	"github.com/malonaz/qachat/chat"
	"github.com/malonaz/qachat/cli/tui/styles"
	"github.com/malonaz/qachat/internal/api"
	"github.com/malonaz/qachat/internal/configuration"
	"github.com/malonaz/qachat/internal/debug"
	"github.com/malonaz/qachat/internal/history"
	"github.com/malonaz/qachat/internal/markdown"
	"github.com/malonaz/qachat/router"
)

var log *slog.Logger

// FocusedComponent of the chat screen.
type FocusedComponent int

const (
	FocusTextarea FocusedComponent = iota
	FocusSidebar
)

// Model is the Bubble Tea model of the whole application. The router decides
// whether the login or the chat screen is shown.
type Model struct {
	// Core dependencies
	ctx    context.Context
	config *configuration.Config
	auth   *auth.Store
	chat   *chat.Store
	router *router.Router

	// Routing
	route router.Route

	// Login screen
	username       textinput.Model
	password       textinput.Model
	authenticating bool

	// Chat screen
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *markdown.Renderer
	rename   textinput.Model

	// Chat state
	cursor        int
	renaming      bool
	confirmDelete bool

	// In-flight answer, until the store appends the final one.
	currentReasoning strings.Builder
	currentAnswer    strings.Builder
	cancelStream     context.CancelFunc

	// UI state
	width            int
	height           int
	ready            bool
	layoutStreaming  bool
	err              error
	quitting         bool
	focusedComponent FocusedComponent

	// Alert notifications.
	alert bubbleup.AlertModel

	// Program reference for sending messages from goroutines
	program   *tea.Program
	programMu sync.Mutex

	// Input history
	history           *history.History
	historyNavigating bool

	unsubscribe []func()
}

// New creates the application model.
func New(ctx context.Context, config *configuration.Config, authStore *auth.Store, chatStore *chat.Store, r *router.Router) (*Model, error) {
	log = debug.GetLogger()

	username := textinput.New()
	username.Placeholder = "username"
	username.Prompt = "user  "
	username.CharLimit = 64

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "pass  "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	rename := textinput.New()
	rename.Placeholder = "new title"
	rename.CharLimit = 50

	ta := textarea.New()
	ta.Placeholder = "Ask a question... (Ctrl+J to send, Alt+P/N for history, Tab to switch focus)"
	ta.CharLimit = 0
	ta.SetWidth(styles.DefaultTextareaWidth)
	ta.SetHeight(styles.MinTextareaHeight)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(true)
	ta.Prompt = ""

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	renderer, err := markdown.NewRenderer(styles.DefaultTextareaWidth)
	if err != nil {
		return nil, err
	}

	m := &Model{
		ctx:              ctx,
		config:           config,
		auth:             authStore,
		chat:             chatStore,
		router:           r,
		username:         username,
		password:         password,
		rename:           rename,
		textarea:         ta,
		spinner:          sp,
		renderer:         renderer,
		alert:            *bubbleup.NewAlertModel(25, true, 1),
		history:          history.New(config.HistoryFile),
		focusedComponent: FocusTextarea,
	}
	return m, nil
}

// SetProgram sets the tea.Program reference and forwards store changes to it.
func (m *Model) SetProgram(p *tea.Program) {
	m.programMu.Lock()
	m.program = p
	m.programMu.Unlock()

	m.unsubscribe = append(m.unsubscribe,
		m.router.Subscribe(func() { m.notify(routeChangedMsg{}) }),
		m.chat.Subscribe(func() { m.notify(chatChangedMsg{}) }),
		m.auth.Subscribe(func() { m.notify(sessionChangedMsg{}) }),
	)
}

// Close stops forwarding store changes.
func (m *Model) Close() {
	for _, unsubscribe := range m.unsubscribe {
		unsubscribe()
	}
	m.unsubscribe = nil
}

// getProgram safely gets the program reference.
func (m *Model) getProgram() *tea.Program {
	m.programMu.Lock()
	defer m.programMu.Unlock()
	return m.program
}

// send delivers msg to the program, blocking until it is accepted.
func (m *Model) send(msg tea.Msg) {
	if p := m.getProgram(); p != nil {
		p.Send(msg)
	}
}

// notify delivers msg without blocking. Stores notify from inside Update too.
func (m *Model) notify(msg tea.Msg) {
	if p := m.getProgram(); p != nil {
		go p.Send(msg)
	}
}

// Init navigates to the chat route; the guard sends us to login without a session.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.navigate(router.Chat.Path),
		textarea.Blink,
		m.spinner.Tick,
		m.alert.Init(),
	)
}

// enterRoute prepares the screen of route.
func (m *Model) enterRoute(route router.Route) tea.Cmd {
	previous := m.route
	m.route = route
	m.err = nil
	switch route.Name {
	case router.Login.Name:
		m.textarea.Blur()
		m.password.SetValue("")
		m.password.Blur()
		m.username.Focus()
		return textinput.Blink
	case router.Chat.Name:
		m.username.Blur()
		m.password.Blur()
		m.focusTextarea()
		m.recalculateLayout()
		if previous.Name != router.Chat.Name {
			return tea.Batch(m.fetchConversations(), textarea.Blink)
		}
	}
	return nil
}

func (m *Model) focusTextarea() {
	m.focusedComponent = FocusTextarea
	m.textarea.Focus()
}

func (m *Model) focusSidebar() {
	m.focusedComponent = FocusSidebar
	m.textarea.Blur()
}

// selectedConversation returns the conversation under the sidebar cursor.
func (m *Model) selectedConversation() (id, title string, ok bool) {
	conversations := m.chat.Conversations()
	if m.cursor < 0 || m.cursor >= len(conversations) {
		return "", "", false
	}
	return conversations[m.cursor].ID, conversations[m.cursor].Title, true
}

// clampCursor keeps the sidebar cursor inside the conversation list.
func (m *Model) clampCursor() {
	count := len(m.chat.Conversations())
	if m.cursor >= count {
		m.cursor = count - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// lastAnswer returns the content of the most recent assistant message.
func (m *Model) lastAnswer() (string, bool) {
	messages := m.chat.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != api.RoleUser {
			return messages[i].Content, true
		}
	}
	return "", false
}
