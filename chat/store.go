package chat

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/malonaz/qachat/internal/api"
	"github.com/malonaz/qachat/internal/debug"
	"github.com/malonaz/qachat/internal/observer"
)

var (
	// ErrInvalidConversationID is returned for ids the backend could never have issued.
	ErrInvalidConversationID = errors.New("invalid conversation id")
	// ErrInvalidTitle is returned when a title is empty or too long.
	ErrInvalidTitle = errors.New("title must be between 1 and 50 characters")
	// ErrEmptyQuestion is returned when asking a blank question.
	ErrEmptyQuestion = errors.New("question cannot be empty")
	// ErrStreamInProgress is returned when asking while an answer is still streaming.
	ErrStreamInProgress = errors.New("an answer is already streaming")
	// ErrLoadInProgress is returned when asking while the active conversation's messages are loading.
	ErrLoadInProgress = errors.New("messages are still loading")
)

// Client is the subset of the API client the chat store needs.
type Client interface {
	ListConversations(ctx context.Context) ([]*api.Conversation, error)
	CreateConversation(ctx context.Context) (*api.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
	RenameConversation(ctx context.Context, id, title string) error
	ListMessages(ctx context.Context, id string) ([]*api.Message, error)
	Stream(ctx context.Context, request *api.AskRequest, fn func(*api.StreamEvent) error) error
}

// Store owns the conversation list, the active conversation and its messages.
// It is safe for concurrent use. Network calls never hold the lock.
type Store struct {
	client    Client
	log       *slog.Logger
	observers observer.Registry

	mu            sync.Mutex
	conversations []*api.Conversation
	// Empty when no conversation is active.
	activeID string
	messages []*api.Message
	// Advanced by every message load, and by every transition that must void in-flight loads.
	loadSeq   uint64
	loading   bool
	streaming bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New returns an empty store.
func New(client Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		log:    debug.GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn to be called after every state change.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	return s.observers.Subscribe(fn)
}

// Conversations returns a copy of the conversation list.
func (s *Store) Conversations() []api.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	conversations := make([]api.Conversation, 0, len(s.conversations))
	for _, conversation := range s.conversations {
		conversations = append(conversations, *conversation)
	}
	return conversations
}

// Active returns the id of the active conversation, if any.
func (s *Store) Active() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID, s.activeID != ""
}

// Messages returns a copy of the active conversation's messages.
func (s *Store) Messages() []api.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	messages := make([]api.Message, 0, len(s.messages))
	for _, message := range s.messages {
		messages = append(messages, *message)
	}
	return messages
}

// Loading returns true while the most recent message load is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Streaming returns true while an answer is streaming.
func (s *Store) Streaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streaming
}

// Reset forgets every conversation, e.g. when the user logs out. In-flight loads are voided.
func (s *Store) Reset() {
	s.mu.Lock()
	s.conversations = nil
	s.activeID = ""
	s.messages = nil
	s.voidLoadsLocked()
	s.mu.Unlock()
	s.observers.Notify()
}

// voidLoadsLocked makes every in-flight load stale. s.mu must be held.
func (s *Store) voidLoadsLocked() {
	s.loadSeq++
	s.loading = false
}

func validateID(id string) error {
	if !primitive.IsValidObjectID(id) {
		return errors.Wrapf(ErrInvalidConversationID, "%q", id)
	}
	return nil
}
