package session

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/moonlit-games/werewolf/internal/engine"
	"github.com/moonlit-games/werewolf/internal/game"
)

var (
	ErrNotFound     = errors.New("session not found")
	ErrUnauthorized = errors.New("invalid session token")
)

// Session holds one live interactive game behind a join code. The engine is
// single-writer; Do serializes access to it.
type Session struct {
	Code      string
	CreatedAt time.Time
	Token     string

	mu sync.Mutex
	it *engine.Interactive
}

// Do runs fn with exclusive access to the session's engine.
func (s *Session) Do(fn func(it *engine.Interactive) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.it)
}

// Snapshot returns the current game state without holding the lock afterwards.
func (s *Session) Snapshot() game.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.it.Game()
}

type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Create registers an interactive game and returns its join code and the
// token that authorizes moves on it.
func (m *Manager) Create(it *engine.Interactive) (code, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	code = randomCode(5)
	for m.sessions[code] != nil {
		code = randomCode(5)
	}
	token = uuid.NewString()
	m.sessions[code] = &Session{
		Code:      code,
		CreatedAt: time.Now().UTC(),
		Token:     token,
		it:        it,
	}
	return code, token
}

func (m *Manager) Get(code string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.sessions[code]
	if s == nil {
		return nil, ErrNotFound
	}
	return s, nil
}

// Authorized fetches a session and checks the caller's token against it.
func (m *Manager) Authorized(code, token string) (*Session, error) {
	s, err := m.Get(code)
	if err != nil {
		return nil, err
	}
	if token != s.Token {
		return nil, ErrUnauthorized
	}
	return s, nil
}

func (m *Manager) Remove(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, code)
}

// Codes lists the registered join codes.
func (m *Manager) Codes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.sessions))
	for code := range m.sessions {
		out = append(out, code)
	}
	return out
}

func randomCode(n int) string {
	letters := []rune("ABCDEFGHJKLMNPQRSTUVWXYZ23456789")
	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}
