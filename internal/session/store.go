package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"server/internal/domain"
	"server/internal/pipeline"
)

// Session holds the single in-flight creative context: the current artifact,
// the cached reference analysis, and the stage tracker. Nothing here survives
// a process restart.
type Session struct {
	ID      string
	Stages  *pipeline.Tracker
	Created time.Time

	mu                  sync.Mutex
	artifact            *domain.Artifact
	analysisNotes       string
	analysisFingerprint string
	lastActivity        time.Time
}

// SetArtifact replaces the current artifact atomically.
func (s *Session) SetArtifact(artifact *domain.Artifact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifact = artifact
	s.lastActivity = time.Now()
}

// Artifact returns the current artifact, or nil when none was generated yet.
func (s *Session) Artifact() *domain.Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.artifact
}

// SetAnalysis caches analysis notes keyed by the reference fingerprint they
// were computed from.
func (s *Session) SetAnalysis(fingerprint, notes string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analysisFingerprint = fingerprint
	s.analysisNotes = notes
	s.lastActivity = time.Now()
}

// Analysis returns the cached notes when they belong to the given reference
// fingerprint. Analysis is idempotent for a given reference image, so a match
// means re-analysis can be skipped.
func (s *Session) Analysis(fingerprint string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fingerprint == "" || fingerprint != s.analysisFingerprint {
		return "", false
	}
	return s.analysisNotes, true
}

func (s *Session) touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = time.Now()
}

func (s *Session) idleSince(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActivity) > ttl
}

// Options configures the store.
type Options struct {
	TTL time.Duration
}

// Store is the in-memory session registry. It also enforces the single-flight
// rule: at most one generation or refinement may run per session at a time.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	busy     map[string]bool
	ttl      time.Duration
}

// NewStore creates a store; idle sessions expire after the configured TTL.
func NewStore(opts Options) *Store {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Store{
		sessions: make(map[string]*Session),
		busy:     make(map[string]bool),
		ttl:      ttl,
	}
}

// Create registers a fresh session with every stage pending.
func (s *Store) Create() *Session {
	now := time.Now()
	sess := &Session{
		ID:           uuid.NewString(),
		Stages:       pipeline.NewTracker(),
		Created:      now,
		lastActivity: now,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(now)
	s.sessions[sess.ID] = sess
	return sess
}

// Get returns the session with the given id.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(time.Now())
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	sess.touch()
	return sess, nil
}

// Delete removes the session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	delete(s.busy, id)
}

// Acquire takes the session's single-flight slot. It fails with
// ErrSessionBusy while another generation or refinement is in flight.
func (s *Store) Acquire(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if s.busy[id] {
		return nil, domain.ErrSessionBusy
	}
	s.busy[id] = true
	sess.touch()
	return sess, nil
}

// Release frees the single-flight slot taken by Acquire.
func (s *Store) Release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.busy, id)
}

func (s *Store) pruneLocked(now time.Time) {
	for id, sess := range s.sessions {
		if s.busy[id] {
			continue
		}
		if sess.idleSince(now, s.ttl) {
			delete(s.sessions, id)
		}
	}
}
