package command

import (
	"fmt"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/malonaz/qachat/auth"
	"github.com/malonaz/qachat/chat"
	"github.com/malonaz/qachat/internal/api"
	"github.com/malonaz/qachat/internal/cli"
	"github.com/malonaz/qachat/internal/configuration"
	"github.com/malonaz/qachat/internal/debug"
	"github.com/malonaz/qachat/router"
	"github.com/malonaz/qachat/store"
)

// ErrNotLoggedIn is returned by commands that need a session when there is none.
var ErrNotLoggedIn = errors.New("not logged in")

// App holds the dependencies every command shares.
type App struct {
	Config *configuration.Config
	Client *api.Client
	Store  *store.Store
	Auth   *auth.Store
	Chat   *chat.Store
	Router *router.Router

	log            *slog.Logger
	configFilepath string
}

// NewApp wires the api client, the session mirror and the stores from config.
func NewApp(config *configuration.Config) (*App, error) {
	log := debug.GetLogger()
	s, err := store.New(config.Database)
	if err != nil {
		return nil, errors.Wrap(err, "opening session store")
	}
	client := api.New(config.APIHost, api.WithTimeout(config.Timeout()), api.WithLogger(log))
	authStore := auth.New(client, s, auth.WithLogger(log))
	client.SetTokenSource(authStore)
	return &App{
		Config: config,
		Client: client,
		Store:  s,
		Auth:   authStore,
		Chat:   chat.New(client, chat.WithLogger(log)),
		Router: router.New(authStore),
		log:    log,
	}, nil
}

// wire parses the configuration file and wires the app, unless it is wired already.
func (a *App) wire() error {
	if a.Config != nil {
		return nil
	}
	config, err := configuration.Parse(a.configFilepath)
	if err != nil {
		return errors.Wrap(err, "parsing configuration")
	}
	if err := debug.Configure(config.DebugLog); err != nil {
		return err
	}
	wired, err := NewApp(config)
	if err != nil {
		return err
	}
	*a = *wired
	return nil
}

// Close releases the session store, if it was opened.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

// requireSession navigates to the chat route and fails unless the guard let us in.
func (a *App) requireSession() error {
	route, err := a.Router.Push(router.Chat.Path)
	if err != nil {
		return err
	}
	if route.Name != router.Chat.Name {
		return ErrNotLoggedIn
	}
	return nil
}

// printSession prints who is logged in.
func printSession(session auth.Session) {
	cli.Info("logged in as %s", session.Username)
	if expiresAt, ok := session.ExpiresAt(); ok {
		cli.Muted(" (token expires %s)", expiresAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Println()
}
