package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dev-x-infinite/imagestudio"
)

// Session is one browser's state: its history, an optional API key and
// the flag that keeps a second flow from starting while one runs.
type Session struct {
	ID      string
	History *imagestudio.HistoryStore

	mu       sync.Mutex
	apiKey   string
	lastSeen time.Time

	busy sync.Mutex
}

// APIKey returns the key the user supplied for this session, if any.
func (s *Session) APIKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiKey
}

// SetAPIKey replaces the session key. An empty key clears it.
func (s *Session) SetAPIKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKey = key
}

// TryBegin marks the session busy. It returns false if a flow is already
// running; otherwise the caller must call End.
func (s *Session) TryBegin() bool {
	return s.busy.TryLock()
}

// End clears the busy mark set by TryBegin.
func (s *Session) End() {
	s.busy.Unlock()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SessionStore keeps sessions in memory. Sessions idle longer than ttl
// are dropped lazily during lookups.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	onEvict  func(id string)
}

// NewSessionStore creates an empty store.
func NewSessionStore(ttl time.Duration, now func() time.Time) *SessionStore {
	if now == nil {
		now = time.Now
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      now,
	}
}

// OnEvict registers a callback run for every evicted session.
func (st *SessionStore) OnEvict(fn func(id string)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.onEvict = fn
}

// Lookup returns the live session with id, or a new one when id is empty,
// unknown or expired. created reports whether a new session was made.
func (st *SessionStore) Lookup(id string) (sess *Session, created bool) {
	now := st.now()

	st.mu.Lock()
	evicted := st.evictLocked(now)
	sess, ok := st.sessions[id]
	if !ok {
		sess = &Session{
			ID:      uuid.NewString(),
			History: imagestudio.NewHistoryStore(),
		}
		st.sessions[sess.ID] = sess
		created = true
	}
	onEvict := st.onEvict
	st.mu.Unlock()

	sess.touch(now)
	if onEvict != nil {
		for _, id := range evicted {
			onEvict(id)
		}
	}
	return sess, created
}

// Len returns the number of stored sessions, expired ones included.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *SessionStore) evictLocked(now time.Time) []string {
	if st.ttl <= 0 {
		return nil
	}
	var evicted []string
	for id, sess := range st.sessions {
		if now.Sub(sess.idleSince()) > st.ttl {
			delete(st.sessions, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}
