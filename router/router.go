package router

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/malonaz/qachat/internal/observer"
)

// ErrNotFound is returned when navigating to a path no route serves.
var ErrNotFound = errors.New("no route for path")

// Route maps a path to a screen.
type Route struct {
	Name         string
	Path         string
	RequiresAuth bool
}

var (
	// Login is the public login screen.
	Login = Route{Name: "Login", Path: "/login"}
	// Chat is the conversation screen. It requires a session.
	Chat = Route{Name: "Chat", Path: "/", RequiresAuth: true}

	routes = []Route{Login, Chat}
)

// Session reports whether a session token is present.
type Session interface {
	IsLoggedIn() bool
}

// Guard returns the route to redirect to before entering to, if any.
// The two rules cannot both apply, since the login route requires no session.
func Guard(loggedIn bool, to Route) (Route, bool) {
	if to.RequiresAuth && !loggedIn {
		return Login, true
	}
	if to.Name == Login.Name && loggedIn {
		return Chat, true
	}
	return Route{}, false
}

// Resolve returns the route serving path.
func Resolve(path string) (Route, error) {
	for _, route := range routes {
		if route.Path == path {
			return route, nil
		}
	}
	return Route{}, errors.Wrapf(ErrNotFound, "%q", path)
}

// Router tracks the current route and guards every navigation.
type Router struct {
	session   Session
	observers observer.Registry

	mu      sync.Mutex
	current Route
	started bool
}

// New returns a router that has not navigated yet.
func New(session Session) *Router {
	return &Router{session: session}
}

// Subscribe registers fn to be called after every navigation.
func (r *Router) Subscribe(fn func()) (unsubscribe func()) {
	return r.observers.Subscribe(fn)
}

// Current returns the current route, and false before the first navigation.
func (r *Router) Current() (Route, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current, r.started
}

// Push navigates to path and returns the route actually entered after the guard ran.
func (r *Router) Push(path string) (Route, error) {
	to, err := Resolve(path)
	if err != nil {
		return Route{}, err
	}
	if redirect, ok := Guard(r.session.IsLoggedIn(), to); ok {
		to = redirect
	}

	r.mu.Lock()
	r.current = to
	r.started = true
	r.mu.Unlock()
	r.observers.Notify()
	return to, nil
}

// Refresh re-runs the guard on the current route, e.g. after a login or logout.
func (r *Router) Refresh() (Route, error) {
	current, ok := r.Current()
	if !ok {
		current = Chat
	}
	return r.Push(current.Path)
}
