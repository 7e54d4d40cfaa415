package store

import (
	"context"
	"sync"
)

// Keys under which the store persists its three collections
const (
	KeyFlashcards = "flashcards"
	KeyCategories = "categories"
	KeySessions   = "sessions"
)

// Storage is the durable key/value collaborator the store hydrates from and writes to
type Storage interface {
	// Load returns the blob stored under key; ok is false when nothing is stored
	Load(ctx context.Context, key string) (blob []byte, ok bool, err error)
	Save(ctx context.Context, key string, blob []byte) error
}

// MemoryStorage keeps blobs in process memory
type MemoryStorage struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

// NewMemoryStorage creates an empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{blobs: make(map[string][]byte)}
}

// Load implements Storage
func (m *MemoryStorage) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	blob, ok := m.blobs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), blob...), true, nil
}

// Save implements Storage
func (m *MemoryStorage) Save(_ context.Context, key string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blobs[key] = append([]byte(nil), blob...)
	return nil
}
