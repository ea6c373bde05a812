package catalog

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// MemoryStore is an in-memory catalog store, seeded from a YAML file
// or directly from documents. Used by the chat CLI and by tests.
type MemoryStore struct {
	mu   sync.RWMutex
	docs []Document
}

// NewMemoryStore creates a store holding the given documents.
func NewMemoryStore(docs ...Document) *MemoryStore {
	return &MemoryStore{docs: docs}
}

// LoadSeedFile reads a YAML program list and returns the documents.
func LoadSeedFile(path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog seed: %w", err)
	}
	var programs []Program
	if err := yaml.Unmarshal(data, &programs); err != nil {
		return nil, fmt.Errorf("parse catalog seed %s: %w", path, err)
	}
	docs := make([]Document, len(programs))
	for i, p := range programs {
		docs[i] = p.ToDocument()
	}
	return docs, nil
}

// NewMemoryStoreFromFile creates a store seeded from a YAML file.
func NewMemoryStoreFromFile(path string) (*MemoryStore, error) {
	docs, err := LoadSeedFile(path)
	if err != nil {
		return nil, err
	}
	return NewMemoryStore(docs...), nil
}

// Replace swaps the full document set, used on seed-file reload.
func (s *MemoryStore) Replace(docs []Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = docs
}

// Len returns the number of documents in the store.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Find returns the documents satisfying the filter.
func (s *MemoryStore) Find(_ context.Context, filter *Filter) ([]Document, error) {
	matcher, err := filter.Compile()
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Document
	for _, doc := range s.docs {
		ok, err := matcher.Matches(doc)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, doc)
		}
	}
	return out, nil
}
