package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/eadteachers/teachkit/internal/assessment"
)

// ErrSessionNotFound is returned for unknown or expired assessment ids.
var ErrSessionNotFound = errors.New("assessment not found")

// SessionStore keeps assessment attempts between requests. Grading is split
// into Begin and Finish so the model call runs outside any store lock, and
// BeginGrading must refuse an item that is already pending.
type SessionStore interface {
	Create(ctx context.Context, a *assessment.Assessment) error
	Load(ctx context.Context, id string) (*assessment.State, error)
	SelectAnswer(ctx context.Context, id string, itemID, option int) error
	SetShortAnswer(ctx context.Context, id string, itemID int, text string) error
	BeginGrading(ctx context.Context, id string, itemID int) (assessment.ShortAnswerItem, string, error)
	FinishGrading(ctx context.Context, id string, itemID int, slot assessment.FeedbackSlot) error
}

type memoryEntry struct {
	session  *assessment.Session
	lastSeen time.Time
}

// MemoryStore is a process-local SessionStore. Sessions idle for longer
// than the TTL are dropped when new ones are created.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*memoryEntry
	now      func() time.Time
}

// NewMemoryStore creates a MemoryStore. A zero ttl keeps sessions forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]*memoryEntry),
		now:      time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context, a *assessment.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if s.ttl > 0 {
		for id, e := range s.sessions {
			if now.Sub(e.lastSeen) > s.ttl {
				delete(s.sessions, id)
			}
		}
	}
	s.sessions[a.ID] = &memoryEntry{session: assessment.NewSession(a), lastSeen: now}
	return nil
}

func (s *MemoryStore) session(id string) (*assessment.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.ttl > 0 && s.now().Sub(e.lastSeen) > s.ttl {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	e.lastSeen = s.now()
	return e.session, nil
}

func (s *MemoryStore) Load(_ context.Context, id string) (*assessment.State, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	return sess.Snapshot(), nil
}

func (s *MemoryStore) SelectAnswer(_ context.Context, id string, itemID, option int) error {
	sess, err := s.session(id)
	if err != nil {
		return err
	}
	return sess.SelectAnswer(itemID, option)
}

func (s *MemoryStore) SetShortAnswer(_ context.Context, id string, itemID int, text string) error {
	sess, err := s.session(id)
	if err != nil {
		return err
	}
	return sess.SetShortAnswer(itemID, text)
}

func (s *MemoryStore) BeginGrading(_ context.Context, id string, itemID int) (assessment.ShortAnswerItem, string, error) {
	sess, err := s.session(id)
	if err != nil {
		return assessment.ShortAnswerItem{}, "", err
	}
	return sess.BeginGrading(itemID)
}

func (s *MemoryStore) FinishGrading(_ context.Context, id string, itemID int, slot assessment.FeedbackSlot) error {
	sess, err := s.session(id)
	if err != nil {
		return err
	}
	sess.FinishGrading(itemID, slot)
	return nil
}
