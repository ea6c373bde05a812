package session

import (
	"context"
	"sync"
	"time"

	"github.com/glovera/consult/internal/chat"
	"github.com/glovera/consult/internal/profile"
)

// MemoryStore is an in-memory session store for the chat CLI and tests.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// Insert stores a new session document.
func (s *MemoryStore) Insert(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = cloneSession(sess)
	return nil
}

// FindByID retrieves a session; unknown ids yield a NotFoundError.
func (s *MemoryStore) FindByID(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return cloneSession(sess), nil
}

// AppendMessages pushes messages onto a session's history.
func (s *MemoryStore) AppendMessages(_ context.Context, id string, messages []chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	sess.Messages = append(sess.Messages, messages...)
	sess.UpdatedAt = time.Now().UTC()
	return nil
}

// SetStatus updates a session's lifecycle status.
func (s *MemoryStore) SetStatus(_ context.Context, id string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	sess.Status = status
	sess.UpdatedAt = time.Now().UTC()
	return nil
}

// ListByOwner returns all sessions owned by ownerID.
func (s *MemoryStore) ListByOwner(_ context.Context, ownerID string) ([]*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Session
	for _, sess := range s.sessions {
		if sess.OwnerID == ownerID {
			out = append(out, cloneSession(sess))
		}
	}
	return out, nil
}

// ListIdleActive returns active sessions not updated since the cutoff.
func (s *MemoryStore) ListIdleActive(_ context.Context, cutoff time.Time) ([]*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Session
	for _, sess := range s.sessions {
		if sess.Status == StatusActive && sess.UpdatedAt.Before(cutoff) {
			out = append(out, cloneSession(sess))
		}
	}
	return out, nil
}

func cloneSession(sess *Session) *Session {
	out := *sess
	out.Messages = make([]chat.Message, len(sess.Messages))
	copy(out.Messages, sess.Messages)
	if sess.Profile != nil {
		out.Profile = make(profile.Profile, len(sess.Profile))
		for k, v := range sess.Profile {
			out.Profile[k] = v
		}
	}
	return &out
}
