package authclient

import (
	"context"
	"sync"

	"github.com/ErlanBelekov/social-discovery/internal/domain"
)

// Storage persists a client's session between requests, keyed by client id.
// Load returns (nil, nil) when nothing is stored.
type Storage interface {
	Load(ctx context.Context, key string) (*domain.Session, error)
	Save(ctx context.Context, key string, session *domain.Session) error
	Delete(ctx context.Context, key string) error
}

// MemoryStorage keeps sessions in process memory. Sessions are lost on restart.
type MemoryStorage struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{sessions: make(map[string]domain.Session)}
}

func (m *MemoryStorage) Load(_ context.Context, key string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[key]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *MemoryStorage) Save(_ context.Context, key string, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[key] = *session
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, key)
	return nil
}

func (m *MemoryStorage) Ping(_ context.Context) error { return nil }
