// Package session tracks the currently signed-in identity. The session
// is persisted as a signed token under a single file path, so a restart
// restores the signed-in state until the token expires.
package session

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/loankeeper/internal/logging"
	"github.com/dmitrijs2005/loankeeper/internal/models"
)

// Manager is the session boundary consumed by the rest of the
// application: current user, sign-in/out, and change callbacks.
type Manager struct {
	path     string
	secret   []byte
	validity time.Duration
	logger   logging.Logger

	mu      sync.Mutex
	current *models.Session
	subs    map[int]func(*models.Session)
	nextSub int
}

func NewManager(path string, secret []byte, validity time.Duration, logger logging.Logger) *Manager {
	return &Manager{
		path:     path,
		secret:   secret,
		validity: validity,
		logger:   logger.With("component", "session"),
		subs:     make(map[int]func(*models.Session)),
	}
}

// Restore loads the persisted session token, if any. An unreadable,
// expired or tampered token simply leaves the manager signed out.
func (m *Manager) Restore(ctx context.Context) {
	raw, err := os.ReadFile(m.path)
	if err != nil {
		return
	}

	sess, err := ParseToken(strings.TrimSpace(string(raw)), m.secret)
	if err != nil {
		m.logger.Warn(ctx, "stored session rejected", "error", err)
		_ = os.Remove(m.path)
		return
	}

	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()
}

// CurrentUser returns the signed-in identity, or nil when signed out.
func (m *Manager) CurrentUser() *models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// SignIn persists a fresh session token and notifies subscribers. A
// failed token write still signs the user in for this process.
func (m *Manager) SignIn(ctx context.Context, sess *models.Session) error {
	token, err := GenerateToken(sess, m.secret, m.validity)
	if err != nil {
		return err
	}
	if err := os.WriteFile(m.path, []byte(token), 0o600); err != nil {
		m.logger.Error(ctx, "persist session", "path", m.path, "error", err)
	}

	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()

	m.notify(sess)
	return nil
}

// SignOut removes the persisted token and notifies subscribers.
func (m *Manager) SignOut(ctx context.Context) error {
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		m.logger.Error(ctx, "remove session file", "path", m.path, "error", err)
	}

	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	m.notify(nil)
	return nil
}

// OnChange registers a callback invoked immediately with the current
// session and again on every sign-in/out. Returns an unsubscribe func.
func (m *Manager) OnChange(fn func(*models.Session)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	current := m.current
	m.mu.Unlock()

	fn(current)

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *Manager) notify(sess *models.Session) {
	m.mu.Lock()
	subs := make([]func(*models.Session), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(sess)
	}
}
