package state

import (
	"errors"
	"sync"
	"time"

	"ahab-backend/internal/models"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or expired session ids
var ErrSessionNotFound = errors.New("session not found")

// Session holds one generated dataset and the curves computed for it
type Session struct {
	ID        string
	CreatedAt time.Time
	Filename  string

	Candidates []models.Candidate
	byID       map[string]int

	mu     sync.Mutex
	curves map[string][]models.ROCPoint
}

// Candidate looks up a candidate of this session by id
func (s *Session) Candidate(id string) (models.Candidate, bool) {
	i, ok := s.byID[id]
	if !ok {
		return models.Candidate{}, false
	}
	return s.Candidates[i], true
}

// Curve returns the memoized curve for key, building it on first use.
// A failed build is not cached.
func (s *Session) Curve(key string, build func() ([]models.ROCPoint, error)) ([]models.ROCPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if points, ok := s.curves[key]; ok {
		return points, nil
	}
	points, err := build()
	if err != nil {
		return nil, err
	}
	s.curves[key] = points
	return points, nil
}

// CachedCurves reports how many curves are memoized
func (s *Session) CachedCurves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.curves)
}

// Store keeps sessions in memory. Sessions older than the ttl are dropped
// lazily, and the oldest session is evicted once maxSessions is reached.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	maxSessions int
	ttl         time.Duration
	now         func() time.Time
}

// NewStore creates a store. maxSessions <= 0 means unbounded, ttl <= 0 means
// sessions never expire.
func NewStore(maxSessions int, ttl time.Duration) *Store {
	return &Store{
		sessions:    make(map[string]*Session),
		maxSessions: maxSessions,
		ttl:         ttl,
		now:         time.Now,
	}
}

// Create registers a new session for the generated candidates
func (st *Store) Create(filename string, candidates []models.Candidate) *Session {
	byID := make(map[string]int, len(candidates))
	for i, c := range candidates {
		byID[c.ID] = i
	}

	sess := &Session{
		ID:         uuid.New().String(),
		CreatedAt:  st.now(),
		Filename:   filename,
		Candidates: candidates,
		byID:       byID,
		curves:     make(map[string][]models.ROCPoint),
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	st.pruneLocked()
	for st.maxSessions > 0 && len(st.sessions) >= st.maxSessions {
		st.evictOldestLocked()
	}
	st.sessions[sess.ID] = sess
	return sess
}

// Get retrieves a live session
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	sess, ok := st.sessions[id]
	st.mu.RUnlock()

	if !ok || st.expired(sess) {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Delete drops a session
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(st.sessions, id)
	return nil
}

// Len returns the number of stored sessions, expired ones included
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func (st *Store) expired(sess *Session) bool {
	return st.ttl > 0 && st.now().Sub(sess.CreatedAt) > st.ttl
}

func (st *Store) pruneLocked() {
	for id, sess := range st.sessions {
		if st.expired(sess) {
			delete(st.sessions, id)
		}
	}
}

func (st *Store) evictOldestLocked() {
	var oldest *Session
	for _, sess := range st.sessions {
		if oldest == nil || sess.CreatedAt.Before(oldest.CreatedAt) {
			oldest = sess
		}
	}
	if oldest != nil {
		delete(st.sessions, oldest.ID)
	}
}
