// internal/session/session.go
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNotAuthorized is returned when no active session key covers an action.
	ErrNotAuthorized  = errors.New("session not authorized")
	ErrNoSession      = fmt.Errorf("%w: no session key", ErrNotAuthorized)
	ErrSessionExpired = fmt.Errorf("%w: session key expired", ErrNotAuthorized)
	ErrScopeDenied    = fmt.Errorf("%w: target outside session scope", ErrNotAuthorized)
)

// Session is a temporary signing credential limited to a set of scopes.
type Session struct {
	ID                  string
	AppName             string
	Scopes              []string
	CreatedAt           time.Time
	LastActiveAt        time.Time
	MaxInactiveInterval time.Duration
}

// Active reports whether the session has been used recently enough.
func (s Session) Active(now time.Time) bool {
	if s.MaxInactiveInterval <= 0 {
		return true
	}
	return now.Sub(s.LastActiveAt) < s.MaxInactiveInterval
}

// ExpiresAt returns the moment the session lapses without further activity.
func (s Session) ExpiresAt() time.Time {
	return s.LastActiveAt.Add(s.MaxInactiveInterval)
}

// Allows reports whether a function target such as 0x3::transfer::transfer_coin
// is covered by one of the session scopes.
func (s Session) Allows(target string) bool {
	for _, scope := range s.Scopes {
		if scopeMatches(scope, target) {
			return true
		}
	}
	return false
}

// Gate decides whether a gated action may run for target.
type Gate interface {
	Authorized(target string) error
}

// WithAuthorizedSession runs action only inside an authorized session.
// Without one the action is skipped and the gate's error is returned.
func WithAuthorizedSession(gate Gate, target string, action func() error) error {
	if gate == nil {
		return ErrNoSession
	}
	if err := gate.Authorized(target); err != nil {
		return err
	}
	return action()
}

// Manager holds the portal's current session key.
type Manager struct {
	mu      sync.RWMutex
	current *Session
	now     func() time.Time
	logger  *zap.Logger
}

// NewManager creates a manager without an active session.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		now:    time.Now,
		logger: logger.Named("session"),
	}
}

// SetClock replaces the time source, used by tests.
func (m *Manager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Authorize creates a new session key, replacing any previous one.
func (m *Manager) Authorize(appName string, scopes []string, maxInactive time.Duration) Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	s := &Session{
		ID:                  uuid.New().String(),
		AppName:             appName,
		Scopes:              append([]string(nil), scopes...),
		CreatedAt:           now,
		LastActiveAt:        now,
		MaxInactiveInterval: maxInactive,
	}
	m.current = s

	m.logger.Info("Session key authorized",
		zap.String("session_id", s.ID),
		zap.String("app", appName),
		zap.Strings("scopes", s.Scopes),
		zap.Duration("max_inactive", maxInactive))

	return *s
}

// Revoke drops the current session key.
func (m *Manager) Revoke() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.logger.Info("Session key revoked", zap.String("session_id", m.current.ID))
	}
	m.current = nil
}

// Current returns a copy of the session if one is still active.
func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil || !m.current.Active(m.now()) {
		return Session{}, false
	}
	return *m.current, true
}

// Authorized implements Gate. A successful check counts as session activity.
func (m *Manager) Authorized(target string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return ErrNoSession
	}

	now := m.now()
	if !m.current.Active(now) {
		m.logger.Debug("Session key expired",
			zap.String("session_id", m.current.ID),
			zap.Time("expired_at", m.current.ExpiresAt()))
		m.current = nil
		return ErrSessionExpired
	}
	if !m.current.Allows(target) {
		return fmt.Errorf("%w: %s", ErrScopeDenied, target)
	}

	m.current.LastActiveAt = now
	return nil
}

func scopeMatches(scope, target string) bool {
	sp := strings.Split(scope, "::")
	tp := strings.Split(target, "::")
	if len(sp) != 3 || len(tp) != 3 {
		return false
	}

	if sp[0] != "*" && normalizeHexAddress(sp[0]) != normalizeHexAddress(tp[0]) {
		return false
	}
	for i := 1; i < 3; i++ {
		if sp[i] != "*" && sp[i] != tp[i] {
			return false
		}
	}
	return true
}

// normalizeHexAddress makes 0x3 and 0x0000…0003 compare equal.
func normalizeHexAddress(addr string) string {
	a := strings.ToLower(strings.TrimSpace(addr))
	a = strings.TrimPrefix(a, "0x")
	a = strings.TrimLeft(a, "0")
	if a == "" {
		return "0"
	}
	return a
}
