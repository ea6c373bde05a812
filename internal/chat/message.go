// Package chat implements the tool-augmented conversation controller
// at the heart of the consultation backend.
package chat

import (
	"time"

	"github.com/glovera/consult/internal/llm"
)

// Message is one entry of a conversation history. The first message,
// if present, is the system instruction; history is append-only.
type Message struct {
	Role      llm.Role  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
