// Package session resolves bearer tokens to user ids.
//
// Sessions live in an in-memory cache with a fixed TTL; expired entries are
// rejected on read and removed. The clock is injected so expiry is testable
// without sleeping.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/smarslabs/assistd/internal/config"
)

// ErrUnknownToken is returned for tokens that are absent or expired.
var ErrUnknownToken = errors.New("unknown or expired session token")

type entry struct {
	userID    string
	expiresAt time.Time
}

// Store is a TTL-bounded token→user cache.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// Option configures the store.
type Option func(*Store)

// WithClock replaces the wall clock. Tests use this to control expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a session store. Static tokens from the configuration
// are pre-registered and refreshed on every resolution, so they never
// expire in practice.
func NewStore(cfg config.SessionConfig, opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]entry),
		ttl:     cfg.TTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	for token, userID := range cfg.StaticTokens {
		s.Put(token, userID)
	}
	return s
}

// Put registers a token for the user, valid for one TTL from now.
func (s *Store) Put(token, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[token] = entry{userID: userID, expiresAt: s.now().Add(s.ttl)}
}

// Resolve returns the user id for a live token and extends its lifetime.
// Expired tokens are deleted and reported as unknown.
func (s *Store) Resolve(token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[token]
	if !ok {
		return "", ErrUnknownToken
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, token)
		return "", ErrUnknownToken
	}

	e.expiresAt = s.now().Add(s.ttl)
	s.entries[token] = e
	return e.userID, nil
}

// Revoke removes a token immediately.
func (s *Store) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, token)
}

// Sweep removes every expired entry and returns how many were dropped.
// Callers run this periodically; Resolve already drops expired entries
// lazily.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	dropped := 0
	for token, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, token)
			dropped++
		}
	}
	return dropped
}

// Len reports the live entry count, expired entries included until swept.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
