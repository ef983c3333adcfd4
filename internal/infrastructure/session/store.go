// Package session holds the only mutable shared state of the pipeline:
// the per-session document map and conversation history. All mutation goes
// through a per-session mutex; readers get isolated snapshots. Sessions
// are evicted after an idle TTL, which is how "session end" happens when
// the client never says goodbye.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/inklyn/docchat/internal/core/domain"
)

type Store struct {
	cache *gocache.Cache
	ttl   time.Duration
}

type entry struct {
	mu   sync.Mutex
	sess *domain.Session
}

func NewStore(idleTTL time.Duration) *Store {
	if idleTTL <= 0 {
		idleTTL = 30 * time.Minute
	}
	return &Store{
		cache: gocache.New(idleTTL, idleTTL/2),
		ttl:   idleTTL,
	}
}

func (s *Store) Create(_ context.Context) (*domain.Session, error) {
	sess := &domain.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	s.cache.Set(sess.ID, &entry{sess: sess}, gocache.DefaultExpiration)
	return copySession(sess), nil
}

func (s *Store) Exists(_ context.Context, sessionID string) error {
	if _, ok := s.cache.Get(sessionID); !ok {
		return domain.WrapError(domain.ErrSessionNotFound, "lookup session", fmt.Errorf("id %q", sessionID))
	}
	return nil
}

// AddDocument appends a fully-formed record. The record becomes visible to
// snapshots atomically; concurrent uploads to one session serialize here.
func (s *Store) AddDocument(_ context.Context, sessionID string, rec domain.DocumentRecord) error {
	e, err := s.entry(sessionID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.sess.Documents = append(e.sess.Documents, copyRecord(&rec))
	e.mu.Unlock()

	s.touch(sessionID, e)
	return nil
}

func (s *Store) AppendTurn(_ context.Context, sessionID string, turn domain.ConversationTurn) error {
	e, err := s.entry(sessionID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.sess.Turns = append(e.sess.Turns, turn)
	e.mu.Unlock()

	s.touch(sessionID, e)
	return nil
}

// Snapshot returns a deep copy taken under the session lock. Budgeting and
// assembly work on the copy and never block ingestion.
func (s *Store) Snapshot(_ context.Context, sessionID string) (*domain.Session, error) {
	e, err := s.entry(sessionID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return copySession(e.sess), nil
}

func (s *Store) Delete(_ context.Context, sessionID string) error {
	if _, ok := s.cache.Get(sessionID); !ok {
		return domain.WrapError(domain.ErrSessionNotFound, "delete session", fmt.Errorf("id %q", sessionID))
	}
	s.cache.Delete(sessionID)
	return nil
}

func (s *Store) entry(sessionID string) (*entry, error) {
	v, ok := s.cache.Get(sessionID)
	if !ok {
		return nil, domain.WrapError(domain.ErrSessionNotFound, "lookup session", fmt.Errorf("id %q", sessionID))
	}
	return v.(*entry), nil
}

// touch resets the idle TTL so active sessions stay alive.
func (s *Store) touch(sessionID string, e *entry) {
	s.cache.Set(sessionID, e, gocache.DefaultExpiration)
}

func copySession(sess *domain.Session) *domain.Session {
	out := &domain.Session{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt,
		Documents: make([]domain.DocumentRecord, 0, len(sess.Documents)),
		Turns:     make([]domain.ConversationTurn, len(sess.Turns)),
	}
	for i := range sess.Documents {
		out.Documents = append(out.Documents, copyRecord(&sess.Documents[i]))
	}
	copy(out.Turns, sess.Turns)
	return out
}

func copyRecord(rec *domain.DocumentRecord) domain.DocumentRecord {
	out := *rec
	out.Blocks = make([]domain.ExtractedBlock, len(rec.Blocks))
	copy(out.Blocks, rec.Blocks)
	return out
}
