// Package session tracks authenticated screening sessions in memory: one
// logical session per candidate, each owning the live transcript until it is
// handed back to the account store at session end.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prasanna1256/HiringScout-An-AI-Hiring-Assistant/internal/account"
)

type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

var ErrNotFound = errors.New("session not found")

// Session is one authenticated screening. User is a redacted copy of the
// stored record (no password digest); Transcript is the live turn sequence,
// seeded from the stored chat history at login.
type Session struct {
	ID             string                     `json:"session_id"`
	User           account.UserRecord         `json:"user"`
	Status         Status                     `json:"status"`
	Transcript     []account.ConversationTurn `json:"-"`
	StartedAt      time.Time                  `json:"started_at"`
	LastActivityAt time.Time                  `json:"last_activity_at"`
}

// Email is the session's identity key.
func (s *Session) Email() string { return s.User.Email }

type Manager struct {
	mu                sync.RWMutex
	sessions          map[string]*Session
	sessionByEmail    map[string]string
	inactivityTimeout time.Duration
	onEnd             func(*Session)
}

func NewManager(inactivityTimeout time.Duration) *Manager {
	if inactivityTimeout <= 0 {
		inactivityTimeout = 30 * time.Minute
	}
	return &Manager{
		sessions:          make(map[string]*Session),
		sessionByEmail:    make(map[string]string),
		inactivityTimeout: inactivityTimeout,
	}
}

// SetEndHook installs a callback invoked with a snapshot of every session
// that ends, whether explicitly or by janitor expiry. Main wires this to the
// chat-history persister.
func (m *Manager) SetEndHook(hook func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEnd = hook
}

// Create opens a session for an authenticated user, seeding the live
// transcript from the stored chat history. An existing active session for
// the same email is replaced: one logical session per identity.
func (m *Manager) Create(user account.UserRecord) *Session {
	now := time.Now().UTC()
	u := user.Redacted()
	u.ChatHistory = nil
	s := &Session{
		ID:             uuid.NewString(),
		User:           u,
		Status:         StatusActive,
		Transcript:     cloneTranscript(user.ChatHistory),
		StartedAt:      now,
		LastActivityAt: now,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if oldID, ok := m.sessionByEmail[u.Email]; ok {
		delete(m.sessions, oldID)
	}
	m.sessions[s.ID] = s
	m.sessionByEmail[u.Email] = s.ID
	return clone(s)
}

func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(s), nil
}

func (m *Manager) Touch(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	s.LastActivityAt = time.Now().UTC()
	return nil
}

// Transcript returns a copy of the session's current turn sequence.
func (m *Manager) Transcript(sessionID string) ([]account.ConversationTurn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneTranscript(s.Transcript), nil
}

// SetTranscript replaces the session's turn sequence wholesale. The
// orchestrator owns the in-memory turns and hands them back by value.
func (m *Manager) SetTranscript(sessionID string, turns []account.ConversationTurn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	s.Transcript = cloneTranscript(turns)
	s.LastActivityAt = time.Now().UTC()
	return nil
}

// End closes the session and returns its final state, transcript included.
// The end hook fires exactly once per session.
func (m *Manager) End(sessionID string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if !ok {
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	s.Status = StatusEnded
	s.LastActivityAt = time.Now().UTC()
	if m.sessionByEmail[s.User.Email] == s.ID {
		delete(m.sessionByEmail, s.User.Email)
	}
	snapshot := clone(s)
	delete(m.sessions, s.ID)
	hook := m.onEnd
	m.mu.Unlock()

	if hook != nil {
		hook(snapshot)
	}
	return snapshot, nil
}

func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.expireInactive()
			}
		}
	}()
}

func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, s := range m.sessions {
		if s.Status == StatusActive {
			count++
		}
	}
	return count
}

func (m *Manager) expireInactive() {
	now := time.Now().UTC()
	var expired []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		if s.Status != StatusActive {
			continue
		}
		if now.Sub(s.LastActivityAt) < m.inactivityTimeout {
			continue
		}
		s.Status = StatusEnded
		s.LastActivityAt = now
		expired = append(expired, clone(s))
		if m.sessionByEmail[s.User.Email] == s.ID {
			delete(m.sessionByEmail, s.User.Email)
		}
		delete(m.sessions, id)
	}
	hook := m.onEnd
	m.mu.Unlock()

	if hook != nil {
		for _, s := range expired {
			hook(s)
		}
	}
}

func clone(s *Session) *Session {
	c := *s
	c.Transcript = cloneTranscript(s.Transcript)
	return &c
}

func cloneTranscript(turns []account.ConversationTurn) []account.ConversationTurn {
	out := make([]account.ConversationTurn, len(turns))
	copy(out, turns)
	return out
}
