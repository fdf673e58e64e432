package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malonaz/qachat/auth"
	"github.com/malonaz/qachat/chat"
	"github.com/malonaz/qachat/internal/api"
	"github.com/malonaz/qachat/internal/configuration"
	"github.com/malonaz/qachat/router"
)

const (
	idA = "65a000000000000000000001"
	idB = "65a000000000000000000002"
)

type memoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

func (s *memoryStorage) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *memoryStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *memoryStorage) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

type fakeBackend struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) Register(ctx context.Context, username, password string) (*api.TokenResponse, error) {
	f.record("register " + username)
	return &api.TokenResponse{AccessToken: "tok", UserID: "u1", Username: username}, nil
}

func (f *fakeBackend) Login(ctx context.Context, username, password string) (*api.TokenResponse, error) {
	f.record("login " + username)
	if password != "secret" {
		return nil, &api.AuthError{StatusCode: 401, Detail: "Incorrect username or password"}
	}
	return &api.TokenResponse{AccessToken: "tok", UserID: "u1", Username: username}, nil
}

func (f *fakeBackend) ListConversations(ctx context.Context) ([]*api.Conversation, error) {
	f.record("list")
	return []*api.Conversation{{ID: idA, Title: "First"}, {ID: idB, Title: "Second"}}, nil
}

func (f *fakeBackend) CreateConversation(ctx context.Context) (*api.Conversation, error) {
	f.record("create")
	return &api.Conversation{ID: "65a000000000000000000003", Title: "New"}, nil
}

func (f *fakeBackend) DeleteConversation(ctx context.Context, id string) error {
	f.record("delete " + id)
	return nil
}

func (f *fakeBackend) RenameConversation(ctx context.Context, id, title string) error {
	f.record("rename " + id + " " + title)
	return nil
}

func (f *fakeBackend) ListMessages(ctx context.Context, id string) ([]*api.Message, error) {
	f.record("messages " + id)
	return []*api.Message{
		{Role: api.RoleUser, Content: "question " + id},
		{Role: api.RoleAssistant, Content: "answer " + id},
	}, nil
}

func (f *fakeBackend) Stream(ctx context.Context, request *api.AskRequest, fn func(*api.StreamEvent) error) error {
	f.record("stream " + request.Question)
	for _, event := range []*api.StreamEvent{
		{Type: api.EventAnswer, Data: []byte(`"partial"`)},
		{Type: api.EventAnswerFinal, Data: []byte(`"final answer"`)},
	} {
		if err := fn(event); err != nil {
			return err
		}
	}
	return nil
}

type fixture struct {
	model   *Model
	backend *fakeBackend
	auth    *auth.Store
	chat    *chat.Store
	router  *router.Router
}

func newFixture(t *testing.T, loggedIn bool) *fixture {
	t.Helper()
	backend := &fakeBackend{}
	storage := &memoryStorage{values: map[string]string{}}
	if loggedIn {
		storage.values[auth.TokenKey] = "tok"
		storage.values[auth.UserIDKey] = "u1"
		storage.values[auth.UsernameKey] = "alice"
	}
	authStore := auth.New(backend, storage)
	chatStore := chat.New(backend)
	r := router.New(authStore)
	config := &configuration.Config{Chat: &configuration.ChatConfig{TopK: 8}}

	m, err := New(context.Background(), config, authStore, chatStore, r)
	require.NoError(t, err)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return &fixture{model: m, backend: backend, auth: authStore, chat: chatStore, router: r}
}

// navigate pushes path and delivers the route change the router observer would send.
func (f *fixture) navigate(t *testing.T, path string) {
	t.Helper()
	_, err := f.router.Push(path)
	require.NoError(t, err)
	f.model.Update(routeChangedMsg{})
}

// runCmd executes cmd and every command it batches, returning the messages produced
// within a short deadline. Timers such as the spinner tick are dropped.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	result := make(chan tea.Msg, 1)
	go func() { result <- cmd() }()
	var msg tea.Msg
	select {
	case msg = <-result:
	case <-time.After(200 * time.Millisecond):
		return nil
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, cmd := range batch {
			msgs = append(msgs, runCmd(cmd)...)
		}
		return msgs
	}
	return []tea.Msg{msg}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+j":
		return tea.KeyMsg{Type: tea.KeyCtrlJ}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and feeds back every message its commands produce.
func (f *fixture) press(s string) {
	_, cmd := f.model.Update(keyPress(s))
	f.deliver(cmd)
}

func (f *fixture) deliver(cmd tea.Cmd) {
	for _, msg := range runCmd(cmd) {
		switch msg.(type) {
		case actionDoneMsg, authDoneMsg, routeMsg, streamDoneMsg:
			_, next := f.model.Update(msg)
			f.deliver(next)
		}
	}
}

func TestWithoutSessionShowsLogin(t *testing.T) {
	f := newFixture(t, false)
	f.navigate(t, router.Chat.Path)

	assert.Equal(t, router.Login, f.model.route)
	assert.Contains(t, f.model.View(), "register")
}

func TestWithSessionShowsChat(t *testing.T) {
	f := newFixture(t, true)
	f.navigate(t, router.Login.Path)

	assert.Equal(t, router.Chat, f.model.route)
}

func TestLoginRequiresCredentials(t *testing.T) {
	f := newFixture(t, false)
	f.navigate(t, router.Chat.Path)

	f.press("enter")
	require.Error(t, f.model.err)
	assert.Empty(t, f.backend.Calls())
}

func TestLoginEntersChat(t *testing.T) {
	f := newFixture(t, false)
	f.navigate(t, router.Chat.Path)
	f.model.username.SetValue("alice")
	f.model.password.SetValue("secret")

	f.press("enter")
	require.True(t, f.auth.IsLoggedIn())
	// No program forwards the router notification in tests.
	f.model.Update(routeChangedMsg{})
	assert.Equal(t, router.Chat, f.model.route)
}

func TestLoginFailureStaysOnLogin(t *testing.T) {
	f := newFixture(t, false)
	f.navigate(t, router.Chat.Path)
	f.model.username.SetValue("alice")
	f.model.password.SetValue("wrong")

	f.press("enter")
	assert.False(t, f.auth.IsLoggedIn())
	require.Error(t, f.model.err)
	assert.Contains(t, f.model.err.Error(), "Incorrect username or password")
	assert.Equal(t, router.Login, f.model.route)
}

func TestRegister(t *testing.T) {
	f := newFixture(t, false)
	f.navigate(t, router.Chat.Path)
	f.model.username.SetValue("bob")
	f.model.password.SetValue("pw")

	f.press("ctrl+r")
	assert.Equal(t, []string{"register bob"}, f.backend.Calls())
	assert.True(t, f.auth.IsLoggedIn())
}

func TestSelectConversationFromSidebar(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.chat.FetchConversations(context.Background()))
	f.navigate(t, router.Chat.Path)

	f.press("tab")
	assert.Equal(t, FocusSidebar, f.model.focusedComponent)
	f.press("j")
	f.press("enter")

	active, ok := f.chat.Active()
	require.True(t, ok)
	assert.Equal(t, idB, active)
	assert.Contains(t, f.backend.Calls(), "messages "+idB)
	f.model.Update(chatChangedMsg{})
	assert.Contains(t, f.model.renderMessages(), idB)
}

func TestRenameFromSidebar(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.chat.FetchConversations(context.Background()))
	f.navigate(t, router.Chat.Path)

	f.press("tab")
	f.press("r")
	require.True(t, f.model.renaming)
	assert.Equal(t, "First", f.model.rename.Value())
	f.model.rename.SetValue("Renamed")
	f.press("enter")

	assert.False(t, f.model.renaming)
	assert.Contains(t, f.backend.Calls(), "rename "+idA+" Renamed")
	assert.Equal(t, "Renamed", f.chat.Conversations()[0].Title)
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.chat.FetchConversations(context.Background()))
	f.navigate(t, router.Chat.Path)

	f.press("tab")
	f.press("d")
	assert.True(t, f.model.confirmDelete)
	f.press("n")
	assert.NotContains(t, f.backend.Calls(), "delete "+idA)

	f.press("d")
	f.press("y")
	assert.Contains(t, f.backend.Calls(), "delete "+idA)
	assert.Len(t, f.chat.Conversations(), 1)
}

func TestNewConversation(t *testing.T) {
	f := newFixture(t, true)
	f.navigate(t, router.Chat.Path)

	f.press("ctrl+n")
	active, ok := f.chat.Active()
	require.True(t, ok)
	assert.Equal(t, "65a000000000000000000003", active)
}

func TestAskAppendsAnswer(t *testing.T) {
	f := newFixture(t, true)
	f.navigate(t, router.Chat.Path)
	require.NoError(t, f.chat.LoadMessages(context.Background(), idA))

	f.model.textarea.SetValue("why?")
	f.press("ctrl+j")

	assert.Contains(t, f.backend.Calls(), "stream why?")
	messages := f.chat.Messages()
	require.Len(t, messages, 4)
	assert.Equal(t, "final answer", messages[3].Content)
	assert.Empty(t, f.model.textarea.Value())
	assert.Nil(t, f.model.cancelStream)
	content, ok := f.model.lastAnswer()
	require.True(t, ok)
	assert.Equal(t, "final answer", content)
}

func TestLogoutReturnsToLogin(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.chat.FetchConversations(context.Background()))
	f.navigate(t, router.Chat.Path)

	f.press("ctrl+l")
	assert.False(t, f.auth.IsLoggedIn())
	assert.Empty(t, f.chat.Conversations())
	f.model.Update(routeChangedMsg{})
	assert.Equal(t, router.Login, f.model.route)
}

func TestRejectedSessionLogsOut(t *testing.T) {
	f := newFixture(t, true)
	f.navigate(t, router.Chat.Path)

	_, cmd := f.model.Update(actionDoneMsg{err: &api.AuthError{StatusCode: 401, Detail: "expired"}})
	f.deliver(cmd)
	assert.False(t, f.auth.IsLoggedIn())
	f.model.Update(routeChangedMsg{})
	assert.Equal(t, router.Login, f.model.route)
}
