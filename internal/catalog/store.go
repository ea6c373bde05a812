package catalog

import (
	"context"
	"errors"
	"fmt"
)

// Store is the document store backing the program catalog. Find must
// not mutate the catalog and must tolerate zero matches.
type Store interface {
	// Find returns the documents satisfying the filter.
	Find(ctx context.Context, filter *Filter) ([]Document, error)
}

// LookupError wraps a store-level failure during a catalog query.
type LookupError struct {
	Err error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("catalog lookup: %v", e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// IsLookupError reports whether err is (or wraps) a LookupError.
func IsLookupError(err error) bool {
	var le *LookupError
	return errors.As(err, &le)
}

// Lookup executes structured filters against the catalog and bounds
// the result set handed back to the conversation.
type Lookup struct {
	store Store
	limit int
}

// NewLookup creates a catalog lookup over the given store. limit caps
// the number of documents included in a result; 0 means no cap.
func NewLookup(store Store, limit int) *Lookup {
	return &Lookup{store: store, limit: limit}
}

// Find runs the filter and returns the total match count together with
// the (possibly capped) matching documents. Zero matches is a valid
// result, not an error.
func (l *Lookup) Find(ctx context.Context, filter *Filter) (int, []Document, error) {
	docs, err := l.store.Find(ctx, filter)
	if err != nil {
		return 0, nil, &LookupError{Err: err}
	}
	count := len(docs)
	if l.limit > 0 && count > l.limit {
		docs = docs[:l.limit]
	}
	return count, docs, nil
}
