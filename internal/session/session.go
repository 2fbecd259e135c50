// Package session guards the dashboard behind the presence of a session token.
package session

import (
	"log/slog"
	"sync"
)

// Views the guard navigates between.
const (
	LoginView     = "/admin-login"
	DashboardView = "/admin-dashboard"
)

// Store persists the operator's session token.
type Store interface {
	// Token returns the stored token and whether one is present.
	Token() (string, bool, error)
	Set(token string) error
	Clear() error
}

// Navigator moves the operator to another view.
type Navigator interface {
	Navigate(view string)
}

// Guard owns the session token. Only Guard clears it.
type Guard struct {
	store Store
	nav   Navigator
	log   *slog.Logger
}

// NewGuard creates a Guard over the given store and navigator.
func NewGuard(store Store, nav Navigator, log *slog.Logger) *Guard {
	if log == nil {
		log = slog.Default()
	}
	return &Guard{store: store, nav: nav, log: log}
}

// Check reports whether a session token exists. When it does not, the
// operator is sent to the login view.
func (g *Guard) Check() bool {
	if _, ok := g.Token(); ok {
		return true
	}
	g.nav.Navigate(LoginView)
	return false
}

// Token returns the current token. A store read failure counts as absent.
func (g *Guard) Token() (string, bool) {
	token, ok, err := g.store.Token()
	if err != nil {
		g.log.Error("session: read token failed", "error", err)
		return "", false
	}
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// Login stores a token handed over by the login view and opens the dashboard.
func (g *Guard) Login(token string) error {
	if err := g.store.Set(token); err != nil {
		return err
	}
	g.nav.Navigate(DashboardView)
	return nil
}

// Logout clears the token and sends the operator to the login view.
func (g *Guard) Logout() {
	if err := g.store.Clear(); err != nil {
		g.log.Error("session: clear token failed", "error", err)
	}
	g.nav.Navigate(LoginView)
}

// Router is a Navigator that remembers the current view.
type Router struct {
	mu      sync.Mutex
	current string
}

// NewRouter returns a Router positioned at view.
func NewRouter(view string) *Router {
	return &Router{current: view}
}

func (r *Router) Navigate(view string) {
	r.mu.Lock()
	r.current = view
	r.mu.Unlock()
}

// Current returns the view most recently navigated to.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// MemoryStore is a Store held in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

func (m *MemoryStore) Token() (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.token != "", nil
}

func (m *MemoryStore) Set(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear() error {
	return m.Set("")
}
