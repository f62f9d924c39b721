package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarslabs/assistd/internal/config"
)

// fakeClock is an adjustable clock for expiry tests.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(ttl time.Duration, clock *fakeClock) *Store {
	return NewStore(config.SessionConfig{TTL: ttl}, WithClock(clock.now))
}

func TestResolveLiveToken(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, time.February, 1, 12, 0, 0, 0, time.UTC)}
	s := newTestStore(30*time.Minute, clock)

	s.Put("tok-1", "user-1")

	userID, err := s.Resolve("tok-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestResolveUnknownToken(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	s := newTestStore(30*time.Minute, clock)

	_, err := s.Resolve("nope")
	assert.ErrorIs(t, err, ErrUnknownToken)
}

func TestResolveExpiredToken(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	s := newTestStore(30*time.Minute, clock)

	s.Put("tok-1", "user-1")
	clock.advance(31 * time.Minute)

	_, err := s.Resolve("tok-1")
	assert.ErrorIs(t, err, ErrUnknownToken)
	// Expired entry is gone, not just rejected.
	assert.Equal(t, 0, s.Len())
}

func TestResolveExtendsLifetime(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	s := newTestStore(30*time.Minute, clock)

	s.Put("tok-1", "user-1")

	clock.advance(20 * time.Minute)
	_, err := s.Resolve("tok-1")
	require.NoError(t, err)

	// 20 more minutes is past the original expiry but inside the extension.
	clock.advance(20 * time.Minute)
	userID, err := s.Resolve("tok-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestStaticTokensFromConfig(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	s := NewStore(config.SessionConfig{
		TTL:          30 * time.Minute,
		StaticTokens: map[string]string{"dev-token": "dev-user"},
	}, WithClock(clock.now))

	userID, err := s.Resolve("dev-token")
	require.NoError(t, err)
	assert.Equal(t, "dev-user", userID)
}

func TestRevoke(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	s := newTestStore(30*time.Minute, clock)

	s.Put("tok-1", "user-1")
	s.Revoke("tok-1")

	_, err := s.Resolve("tok-1")
	assert.ErrorIs(t, err, ErrUnknownToken)
}

func TestSweep(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	s := newTestStore(30*time.Minute, clock)

	s.Put("old", "u1")
	clock.advance(20 * time.Minute)
	s.Put("fresh", "u2")
	clock.advance(15 * time.Minute)

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())

	_, err := s.Resolve("fresh")
	assert.NoError(t, err)
}
