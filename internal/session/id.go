package session

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

// NewID creates a sortable, unique session identifier with a "conv_"
// prefix.
func NewID() string {
	return "conv_" + strings.ToLower(ulid.Make().String())
}
