package session

import (
	"sort"
	"sync"
	"time"

	"github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/config"
	nerrors "github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/errors"
)

// Manager holds sessions by ID with thread-safe access.
type Manager struct {
	cfg      *config.Config
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewManager creates a manager whose sessions are built from cfg.
func NewManager(cfg *config.Config) *Manager {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Manager{
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
}

// Create builds and registers a new session.
func (m *Manager) Create(name string) (*Session, error) {
	s, err := New(name, m.cfg)
	if err != nil {
		return nil, err
	}
	m.Add(s)
	return s, nil
}

// Add registers an existing session, replacing any with the same ID.
func (m *Manager) Add(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
}

// Get retrieves a session by ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, nerrors.SessionError(nerrors.ErrSessionNotFound, "session not found").
			WithContext("session", id).
			WithSuggestion("List sessions with GET /api/sessions")
	}
	return s, nil
}

// Summary describes a session for listings.
type Summary struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	IsActive  bool       `json:"is_active"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Stats     Stats      `json:"stats"`
}

// Summarize returns the listing view of s.
func Summarize(s *Session) Summary {
	s.mu.RLock()
	sum := Summary{
		ID:        s.ID,
		Name:      s.Name,
		IsActive:  s.EndedAt == nil,
		StartedAt: s.StartedAt,
		EndedAt:   s.EndedAt,
	}
	s.mu.RUnlock()
	sum.Stats = s.Stats()
	return sum
}

// List returns summaries ordered by start time.
func (m *Manager) List() []Summary {
	// Copy sessions to avoid holding the lock during stats computation
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.Before(sessions[j].StartedAt)
	})

	out := make([]Summary, len(sessions))
	for i, s := range sessions {
		out[i] = Summarize(s)
	}
	return out
}

// Delete ends and removes a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return nerrors.SessionError(nerrors.ErrSessionNotFound, "session not found").
			WithContext("session", id)
	}
	s.End()
	return nil
}

// Len returns the number of registered sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
