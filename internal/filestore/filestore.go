// Package filestore is an embedded, JSON-file backed document store.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/trogers1052/carteira-service/internal/store"
)

// MemoryPath keeps every document in process without touching disk
const MemoryPath = ":memory:"

type entry struct {
	id   string
	data []byte
}

// Store keeps collections in memory and rewrites the backing file after
// every mutation.
type Store struct {
	mu          sync.RWMutex
	path        string
	collections map[string][]entry
}

var _ store.Gateway = (*Store)(nil)

// Open loads the file at path, creating parent directories as needed
func Open(path string) (*Store, error) {
	s := &Store{path: path, collections: make(map[string][]entry)}
	if path == MemoryPath {
		return s, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve store path: %w", err)
	}
	s.path = abs
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewMemory returns a store that never touches disk
func NewMemory() *Store {
	s, _ := Open(MemoryPath)
	return s
}

func (s *Store) load() error {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read store file: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}

	var file map[string][]store.Document
	if err := json.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("failed to parse store file %s: %w", s.path, err)
	}
	for collection, docs := range file {
		for _, doc := range docs {
			id, _ := doc["id"].(string)
			if id == "" {
				continue
			}
			data, err := store.Marshal(doc)
			if err != nil {
				return fmt.Errorf("failed to load %s/%s: %w", collection, id, err)
			}
			s.collections[collection] = append(s.collections[collection], entry{id: id, data: data})
		}
	}
	return nil
}

// persist must be called with the write lock held
func (s *Store) persist() error {
	if s.path == MemoryPath {
		return nil
	}

	file := make(map[string][]store.Document, len(s.collections))
	for collection, entries := range s.collections {
		docs := make([]store.Document, 0, len(entries))
		for _, e := range entries {
			doc, err := store.Unmarshal(e.data, e.id)
			if err != nil {
				return err
			}
			docs = append(docs, doc)
		}
		file[collection] = docs
	}

	raw, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".carteira-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// apply swaps in the new entries of a collection and writes the file. On a
// write failure the previous entries are restored so memory matches disk.
// Must be called with the write lock held; entries must not share a backing
// array with the current collection.
func (s *Store) apply(collection string, entries []entry) error {
	prev, had := s.collections[collection]
	s.collections[collection] = entries
	if err := s.persist(); err != nil {
		if had {
			s.collections[collection] = prev
		} else {
			delete(s.collections, collection)
		}
		return err
	}
	return nil
}

func (s *Store) index(collection, id string) int {
	for i, e := range s.collections[collection] {
		if e.id == id {
			return i
		}
	}
	return -1
}

// Create persists doc, generating an id when empty
func (s *Store) Create(_ context.Context, collection, id string, doc store.Document) (string, error) {
	if id == "" {
		id = store.NewID()
	}
	data, err := store.Marshal(doc)
	if err != nil {
		return "", store.Fault("create", collection, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.Clone(s.collections[collection])
	if i := s.index(collection, id); i >= 0 {
		next[i].data = data
	} else {
		next = append(next, entry{id: id, data: data})
	}
	if err := s.apply(collection, next); err != nil {
		return "", store.Fault("create", collection, err)
	}
	return id, nil
}

// Get returns one document
func (s *Store) Get(_ context.Context, collection, id string) (store.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.index(collection, id)
	if i < 0 {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, store.ErrNotFound)
	}
	doc, err := store.Unmarshal(s.collections[collection][i].data, id)
	if err != nil {
		return nil, store.Fault("get", collection, err)
	}
	return doc, nil
}

// List returns every document of a collection in insertion order
func (s *Store) List(_ context.Context, collection string) ([]store.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.collections[collection]
	docs := make([]store.Document, 0, len(entries))
	for _, e := range entries {
		doc, err := store.Unmarshal(e.data, e.id)
		if err != nil {
			return nil, store.Fault("list", collection, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Replace overwrites an existing document
func (s *Store) Replace(_ context.Context, collection, id string, doc store.Document) error {
	data, err := store.Marshal(doc)
	if err != nil {
		return store.Fault("replace", collection, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(collection, id)
	if i < 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, store.ErrNotFound)
	}
	next := slices.Clone(s.collections[collection])
	next[i].data = data
	if err := s.apply(collection, next); err != nil {
		return store.Fault("replace", collection, err)
	}
	return nil
}

// Delete removes a document
func (s *Store) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(collection, id)
	if i < 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, store.ErrNotFound)
	}
	entries := s.collections[collection]
	if err := s.apply(collection, append(entries[:i:i], entries[i+1:]...)); err != nil {
		return store.Fault("delete", collection, err)
	}
	return nil
}

// Ping always succeeds for the embedded store
func (s *Store) Ping(context.Context) error {
	return nil
}

// Close is a no-op; every mutation is already on disk
func (s *Store) Close() error {
	return nil
}
