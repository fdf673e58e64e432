package command

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/malonaz/qachat/internal/configuration"
)

type backend struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	requests []string
	tokens   []string
	asks     []map[string]any
}

// createdID is the conversation the backend creates for a question asked outside one.
const createdID = "65a0000000000000000000aa"

func newBackend(t *testing.T, conversations []map[string]string) *backend {
	t.Helper()
	b := &backend{t: t}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]string{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail": "Incorrect username or password"}`))
			return
		}
		b.write(w, map[string]string{"access_token": "tok", "token_type": "bearer", "user_id": "u1", "username": body["username"]})
	})
	mux.HandleFunc("GET /api/chat/conversations", func(w http.ResponseWriter, r *http.Request) {
		b.write(w, conversations)
	})
	mux.HandleFunc("DELETE /api/chat/conversations/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/chat/conversations/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		b.write(w, []map[string]any{
			{"role": "user", "content": "what is a pod?"},
			{"role": "assistant", "content": "The smallest deployable unit.", "thinking": "recall the docs", "sources": []string{"k8s.pdf"}},
		})
	})
	mux.HandleFunc("POST /api/chat/stream", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		b.mu.Lock()
		b.asks = append(b.asks, body)
		b.mu.Unlock()
		lines := []string{
			`{"event": "reasoning", "data": "checking the docs"}`,
			`{"event": "answer", "data": "Pods share "}`,
			`{"event": "answer", "data": "a network namespace."}`,
			`{"event": "sources", "data": ["k8s.pdf"]}`,
			`{"event": "answer_final", "data": "Pods share a network namespace."}`,
		}
		if body["conversation_id"] == nil {
			lines = append(lines, `{"event": "conversation_id", "data": "`+createdID+`"}`)
		}
		lines = append(lines, `{"event": "done", "data": true}`)
		w.Header().Set("Content-Type", "application/x-ndjson")
		for _, line := range lines {
			w.Write([]byte(line + "\n"))
		}
	})
	mux.HandleFunc("GET /api/memory", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"entities": [{"id": "e1", "entity_type": "PERSON", "entity_name": "Alice", "properties": {}}],
			"relations": [{"id": "r1", "source": "Alice", "relation": "WORKS_AT", "target": "Acme"}]
		}`))
	})
	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, r.Method+" "+r.URL.Path)
		b.tokens = append(b.tokens, r.Header.Get("Authorization"))
		b.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.server.Close)
	return b
}

func (b *backend) write(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	require.NoError(b.t, json.NewEncoder(w).Encode(v))
}

func (b *backend) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

func (b *backend) Asks() []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]map[string]any(nil), b.asks...)
}

func newTestApp(t *testing.T, b *backend) *App {
	t.Helper()
	config := &configuration.Config{
		APIHost:        b.server.URL + "/api",
		RequestTimeout: 5,
		Database:       filepath.Join(t.TempDir(), "session.db"),
		Chat:           &configuration.ChatConfig{TopK: 8},
	}
	app, err := NewApp(config)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app
}

// run executes a fresh root command, capturing both cobra and colored output.
func run(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	previous := color.Output
	color.Output = out
	defer func() { color.Output = previous }()
	root := NewRootCmd(app)
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCommandsRequireSession(t *testing.T) {
	b := newBackend(t, nil)
	app := newTestApp(t, b)

	for _, args := range [][]string{
		{"whoami"},
		{"conversations", "list"},
		{"messages", primitive.NewObjectID().Hex()},
		{"ask", "hello"},
		{"memory", "show"},
	} {
		_, err := run(t, app, args...)
		assert.ErrorIs(t, err, ErrNotLoggedIn, args)
	}
	assert.Empty(t, b.Requests())
}

func TestLoginThenListConversations(t *testing.T) {
	b := newBackend(t, []map[string]string{
		{"id": "65a000000000000000000001", "title": "Kubernetes networking", "updated_at": "2024-03-01T10:00:00.123Z"},
		{"id": "65a000000000000000000002", "title": "", "updated_at": ""},
	})
	app := newTestApp(t, b)

	_, err := run(t, app, "login", "-u", "alice", "-p", "secret")
	require.NoError(t, err)
	assert.True(t, app.Auth.IsLoggedIn())
	assert.Equal(t, "alice", app.Auth.Session().Username)

	out, err := run(t, app, "conversations", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "65a000000000000000000001  Kubernetes networking  2024-03-01 10:00:00")
	assert.Contains(t, out, "65a000000000000000000002  (untitled)")
	assert.Equal(t, []string{"", "Bearer tok"}, b.tokens)
}

func TestLoginFailureKeepsLoggedOut(t *testing.T) {
	b := newBackend(t, nil)
	app := newTestApp(t, b)

	_, err := run(t, app, "login", "-u", "alice", "-p", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect username or password")
	assert.False(t, app.Auth.IsLoggedIn())
}

func TestSessionSurvivesRestart(t *testing.T) {
	b := newBackend(t, nil)
	app := newTestApp(t, b)
	_, err := run(t, app, "login", "-u", "alice", "-p", "secret")
	require.NoError(t, err)
	require.NoError(t, app.Close())

	restarted, err := NewApp(app.Config)
	require.NoError(t, err)
	defer restarted.Close()
	_, err = run(t, restarted, "whoami")
	require.NoError(t, err)

	_, err = run(t, restarted, "logout")
	require.NoError(t, err)
	_, err = run(t, restarted, "whoami")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestDeleteDeduplicatesIDs(t *testing.T) {
	b := newBackend(t, nil)
	app := newTestApp(t, b)
	_, err := run(t, app, "login", "-u", "alice", "-p", "secret")
	require.NoError(t, err)

	a, c := primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex()
	_, err = run(t, app, "conversations", "delete", "--yes", a, c, a)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"POST /api/auth/login",
		"DELETE /api/chat/conversations/" + a,
		"DELETE /api/chat/conversations/" + c,
	}, b.Requests())
}

func TestDeleteRejectsInvalidID(t *testing.T) {
	b := newBackend(t, nil)
	app := newTestApp(t, b)
	_, err := run(t, app, "login", "-u", "alice", "-p", "secret")
	require.NoError(t, err)

	_, err = run(t, app, "conversations", "delete", "--yes", "not-an-id")
	require.Error(t, err)
	assert.Equal(t, []string{"POST /api/auth/login"}, b.Requests())
}

func TestMemoryShow(t *testing.T) {
	b := newBackend(t, nil)
	app := newTestApp(t, b)
	_, err := run(t, app, "login", "-u", "alice", "-p", "secret")
	require.NoError(t, err)

	out, err := run(t, app, "memory", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Alice (person)")
	assert.Contains(t, out, "Alice -[works_at]-> Acme")
}

func TestAskPrintsStreamedAnswer(t *testing.T) {
	b := newBackend(t, []map[string]string{{"id": createdID, "title": "What is a pod?", "updated_at": "2024-03-01T10:00:00Z"}})
	app := newTestApp(t, b)
	_, err := run(t, app, "login", "-u", "alice", "-p", "secret")
	require.NoError(t, err)

	out, err := run(t, app, "ask", "--no-think", "-k", "3", "what", "is", "a", "pod?")
	require.NoError(t, err)
	assert.Contains(t, out, "checking the docs")
	assert.Contains(t, out, "Pods share a network namespace.")
	assert.Contains(t, out, "sources: k8s.pdf")
	assert.Contains(t, out, "conversation: "+createdID)

	active, ok := app.Chat.Active()
	assert.True(t, ok)
	assert.Equal(t, createdID, active)
	messages := app.Chat.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "Pods share a network namespace.", messages[1].Content)
	assert.Equal(t, "What is a pod?", app.Chat.Conversations()[0].Title)

	asks := b.Asks()
	require.Len(t, asks, 1)
	assert.Equal(t, "what is a pod?", asks[0]["question"])
	assert.Equal(t, false, asks[0]["think_mode"])
	assert.Equal(t, float64(3), asks[0]["top_k"])
	assert.Equal(t, []string{
		"POST /api/auth/login",
		"POST /api/chat/stream",
		"GET /api/chat/conversations",
	}, b.Requests())
}

func TestAskContinuesConversation(t *testing.T) {
	b := newBackend(t, nil)
	app := newTestApp(t, b)
	_, err := run(t, app, "login", "-u", "alice", "-p", "secret")
	require.NoError(t, err)

	id := primitive.NewObjectID().Hex()
	out, err := run(t, app, "ask", "-c", id, "and services?")
	require.NoError(t, err)
	assert.Contains(t, out, "conversation: "+id)
	assert.Len(t, app.Chat.Messages(), 4)

	asks := b.Asks()
	require.Len(t, asks, 1)
	assert.Equal(t, id, asks[0]["conversation_id"])
	assert.Equal(t, true, asks[0]["think_mode"])
	assert.Equal(t, float64(8), asks[0]["top_k"])
	assert.Equal(t, []string{
		"POST /api/auth/login",
		"GET /api/chat/conversations/" + id + "/messages",
		"POST /api/chat/stream",
	}, b.Requests())
}

func TestMessagesPrintsConversation(t *testing.T) {
	b := newBackend(t, nil)
	app := newTestApp(t, b)
	_, err := run(t, app, "login", "-u", "alice", "-p", "secret")
	require.NoError(t, err)

	id := primitive.NewObjectID().Hex()
	out, err := run(t, app, "messages", "--thinking", id)
	require.NoError(t, err)
	assert.Contains(t, out, "what is a pod?")
	assert.Contains(t, out, "recall the docs")
	assert.Contains(t, out, "The smallest deployable unit.")
	assert.Contains(t, out, "sources: k8s.pdf")

	_, err = run(t, app, "messages", "not-an-id")
	require.Error(t, err)
}
