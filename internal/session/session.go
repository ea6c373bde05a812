// Package session persists conversation documents between requests.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/glovera/consult/internal/chat"
	"github.com/glovera/consult/internal/profile"
)

// Status is a session's lifecycle state. The conversation core never
// deletes sessions; closure is an administrative action reflected only
// here.
type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

// Session is the persisted conversation document.
type Session struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"ownerId"`
	Title     string          `json:"title"`
	Messages  []chat.Message  `json:"messages"`
	Profile   profile.Profile `json:"profile,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Status    Status          `json:"status"`
}

// New creates an active session owned by ownerID with the given
// initial history.
func New(ownerID, title string, messages []chat.Message, prof profile.Profile) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        NewID(),
		OwnerID:   ownerID,
		Title:     title,
		Messages:  messages,
		Profile:   prof,
		CreatedAt: now,
		UpdatedAt: now,
		Status:    StatusActive,
	}
}

// NotFoundError reports an unknown session identifier.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("session %q not found", e.ID)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}
