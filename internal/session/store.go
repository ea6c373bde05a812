package session

import (
	"context"
	"time"

	"github.com/glovera/consult/internal/chat"
)

// Store persists session documents. No transactions are required;
// concurrent updates are last-write-wins.
type Store interface {
	// Insert stores a new session document.
	Insert(ctx context.Context, sess *Session) error

	// FindByID retrieves a session; unknown ids yield a NotFoundError.
	FindByID(ctx context.Context, id string) (*Session, error)

	// AppendMessages pushes messages onto a session's history and
	// bumps its updatedAt timestamp.
	AppendMessages(ctx context.Context, id string, messages []chat.Message) error

	// SetStatus updates a session's lifecycle status.
	SetStatus(ctx context.Context, id string, status Status) error

	// ListByOwner returns all sessions owned by ownerID.
	ListByOwner(ctx context.Context, ownerID string) ([]*Session, error)

	// ListIdleActive returns active sessions not updated since the
	// cutoff, for administrative closure.
	ListIdleActive(ctx context.Context, cutoff time.Time) ([]*Session, error)
}
