package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/interaction"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/logger"
)

// ErrSessionNotFound is returned for unknown or expired session ids
var ErrSessionNotFound = errors.New("session not found")

// DefaultTTL is the idle time after which a session expires
const DefaultTTL = 30 * time.Minute

// Store holds sessions in a TTL cache. Every access extends the session's
// lifetime by the store TTL.
type Store struct {
	sessions  *cache.Cache
	neighbors interaction.NeighborFinder
	ttl       time.Duration
	opts      []interaction.Option
}

// NewStore creates a session store whose controllers resolve neighbors
// with the given finder
func NewStore(neighbors interaction.NeighborFinder, ttl time.Duration, opts ...interaction.Option) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c := cache.New(ttl, ttl/2)
	c.OnEvicted(func(key string, _ interface{}) {
		logger.Debug("Session evicted", "session_id", key)
	})

	return &Store{
		sessions:  c,
		neighbors: neighbors,
		ttl:       ttl,
		opts:      opts,
	}
}

// Create starts a new session
func (st *Store) Create() *Session {
	s := newSession(st.neighbors, st.opts...)
	st.sessions.Set(s.ID.String(), s, st.ttl)
	return s
}

// Get returns the session for id and refreshes its expiration
func (st *Store) Get(id string) (*Session, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	key := parsed.String()
	v, found := st.sessions.Get(key)
	if !found {
		return nil, ErrSessionNotFound
	}

	s := v.(*Session)
	st.sessions.Set(key, s, st.ttl)
	return s, nil
}

// Delete removes a session. Unknown ids are ignored.
func (st *Store) Delete(id string) {
	if parsed, err := uuid.Parse(id); err == nil {
		st.sessions.Delete(parsed.String())
	}
}

// Count returns the number of live sessions
func (st *Store) Count() int {
	return st.sessions.ItemCount()
}
