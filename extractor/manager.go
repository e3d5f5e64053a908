package extractor

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"

	"github.com/mihai888nextlab/ecotag/models"
)

// SessionFactory opens a page session for a URL. Keeping it a function lets
// callers run the manager without a browser.
type SessionFactory func(pageURL string, notifier Notifier) (PageSession, error)

// LiveSessionFactory builds sessions backed by a shared browser.
func LiveSessionFactory(browser *rod.Browser, debounce, pollEvery time.Duration) SessionFactory {
	return func(pageURL string, notifier Notifier) (PageSession, error) {
		return NewSession(browser, pageURL, notifier, debounce, pollEvery)
	}
}

// Manager owns the set of open page sessions, one engine instance per page
// context.
type Manager struct {
	open     SessionFactory
	notifier Notifier

	mu       sync.Mutex
	sessions map[string]PageSession
}

func NewManager(open SessionFactory, notifier Notifier) *Manager {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Manager{
		open:     open,
		notifier: notifier,
		sessions: make(map[string]PageSession),
	}
}

// Open starts a live session for the URL and registers it.
func (m *Manager) Open(pageURL string) (PageSession, error) {
	sess, err := m.open(pageURL, m.notifier)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[sess.ID()] = sess
	m.mu.Unlock()
	return sess, nil
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (PageSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// List returns all open sessions.
func (m *Manager) List() []PageSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PageSession, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, sess)
	}
	return out
}

// Close tears down one session. It reports whether the id was known.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		sess.Close()
	}
	return ok
}

// CloseAll tears down every open session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]PageSession)
	m.mu.Unlock()
	for _, sess := range sessions {
		sess.Close()
	}
}

// ExtractOnce runs a single synchronous extraction pass against the URL
// using an ephemeral, unregistered session. No proactive updates are pushed
// from one-shot passes.
func (m *Manager) ExtractOnce(pageURL string) (*models.ProductRecord, error) {
	sess, err := m.open(pageURL, nopNotifier{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page session: %v", err)
	}
	defer sess.Close()
	return sess.ExtractNow()
}
