package auth

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pkg/errors"

	"github.com/malonaz/qachat/internal/api"
	"github.com/malonaz/qachat/internal/debug"
	"github.com/malonaz/qachat/internal/observer"
)

// Durable storage keys. They are always written and removed together.
const (
	TokenKey    = "token"
	UserIDKey   = "userId"
	UsernameKey = "username"
)

// Authenticator exchanges credentials for a session token.
type Authenticator interface {
	Register(ctx context.Context, username, password string) (*api.TokenResponse, error)
	Login(ctx context.Context, username, password string) (*api.TokenResponse, error)
}

// Storage is the durable key/value mirror of the session.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(keys ...string) error
}

// Store owns the session.
type Store struct {
	authenticator Authenticator
	storage       Storage
	log           *slog.Logger
	observers     observer.Registry

	mu      sync.RWMutex
	session Session
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New returns a store whose session is restored from storage.
func New(authenticator Authenticator, storage Storage, opts ...Option) *Store {
	s := &Store{
		authenticator: authenticator,
		storage:       storage,
		log:           debug.GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.session = Session{
		Token:    s.restore(TokenKey),
		UserID:   s.restore(UserIDKey),
		Username: s.restore(UsernameKey),
	}
	return s
}

func (s *Store) restore(key string) string {
	value, _, err := s.storage.Get(key)
	if err != nil {
		s.log.Warn("restoring session", "key", key, "error", err)
		return ""
	}
	return value
}

// Subscribe registers fn to be called after every session change.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	return s.observers.Subscribe(fn)
}

// Session returns a copy of the current session.
func (s *Store) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Token returns the current access token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

// IsLoggedIn returns true if a session token is present.
func (s *Store) IsLoggedIn() bool {
	return s.Token() != ""
}

// Register creates an account and starts its session.
func (s *Store) Register(ctx context.Context, username, password string) (*api.TokenResponse, error) {
	response, err := s.authenticator.Register(ctx, username, password)
	if err != nil {
		s.log.Debug("register failed", "username", username, "error", err)
		return nil, errors.Wrap(err, "registering")
	}
	s.setSession(response)
	return response, nil
}

// Login starts a session.
func (s *Store) Login(ctx context.Context, username, password string) (*api.TokenResponse, error) {
	response, err := s.authenticator.Login(ctx, username, password)
	if err != nil {
		s.log.Debug("login failed", "username", username, "error", err)
		return nil, errors.Wrap(err, "logging in")
	}
	s.setSession(response)
	return response, nil
}

// Logout clears the session and its durable mirror. It makes no network call.
func (s *Store) Logout() {
	s.mu.Lock()
	s.session = Session{}
	s.mu.Unlock()

	if err := s.storage.Delete(TokenKey, UserIDKey, UsernameKey); err != nil {
		s.log.Warn("clearing persisted session", "error", err)
	}
	s.observers.Notify()
}

func (s *Store) setSession(response *api.TokenResponse) {
	session := Session{
		Token:    response.AccessToken,
		UserID:   response.UserID,
		Username: response.Username,
	}
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	// Storage only mirrors the session, a failed write is not fatal.
	for _, kv := range [][2]string{
		{TokenKey, session.Token},
		{UserIDKey, session.UserID},
		{UsernameKey, session.Username},
	} {
		if err := s.storage.Set(kv[0], kv[1]); err != nil {
			s.log.Warn("persisting session", "key", kv[0], "error", err)
		}
	}
	s.observers.Notify()
}
