package mocks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/SergeiKhy/golink/internal/models"
	"github.com/SergeiKhy/golink/internal/repository"
)

var ErrStoreDown = errors.New("store unavailable")

// FlakyStore wraps a MemoryStore and injects failures for testing.
type FlakyStore struct {
	*repository.MemoryStore

	mu             sync.Mutex
	down           bool
	appendFailures int
	appendCalls    int
}

func NewFlakyStore() *FlakyStore {
	return &FlakyStore{
		MemoryStore: repository.NewMemoryStore(repository.Scope{Namespace: "golink", Database: "test"}),
	}
}

// SetDown makes every call fail with ErrStoreDown.
func (s *FlakyStore) SetDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = down
}

// FailAppends makes the next n AppendView calls fail.
func (s *FlakyStore) FailAppends(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendFailures = n
}

func (s *FlakyStore) AppendCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendCalls
}

func (s *FlakyStore) isDown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.down
}

func (s *FlakyStore) CreateLink(ctx context.Context, link *models.Link) error {
	if s.isDown() {
		return ErrStoreDown
	}
	return s.MemoryStore.CreateLink(ctx, link)
}

func (s *FlakyStore) GetLink(ctx context.Context, code string) (*models.Link, error) {
	if s.isDown() {
		return nil, ErrStoreDown
	}
	return s.MemoryStore.GetLink(ctx, code)
}

func (s *FlakyStore) UpdateLink(ctx context.Context, link *models.Link) error {
	if s.isDown() {
		return ErrStoreDown
	}
	return s.MemoryStore.UpdateLink(ctx, link)
}

func (s *FlakyStore) DeleteLink(ctx context.Context, code string) error {
	if s.isDown() {
		return ErrStoreDown
	}
	return s.MemoryStore.DeleteLink(ctx, code)
}

func (s *FlakyStore) LinkExists(ctx context.Context, code string) (bool, error) {
	if s.isDown() {
		return false, ErrStoreDown
	}
	return s.MemoryStore.LinkExists(ctx, code)
}

func (s *FlakyStore) ListLinks(ctx context.Context) ([]*models.Link, error) {
	if s.isDown() {
		return nil, ErrStoreDown
	}
	return s.MemoryStore.ListLinks(ctx)
}

func (s *FlakyStore) CollectionExists(ctx context.Context) (bool, error) {
	if s.isDown() {
		return false, ErrStoreDown
	}
	return s.MemoryStore.CollectionExists(ctx)
}

func (s *FlakyStore) AppendView(ctx context.Context, code string, visit models.Visit) error {
	s.mu.Lock()
	s.appendCalls++
	fail := s.down || s.appendFailures > 0
	if s.appendFailures > 0 {
		s.appendFailures--
	}
	s.mu.Unlock()

	if fail {
		return ErrStoreDown
	}
	return s.MemoryStore.AppendView(ctx, code, visit)
}

func (s *FlakyStore) Ping(ctx context.Context) error {
	if s.isDown() {
		return ErrStoreDown
	}
	return s.MemoryStore.Ping(ctx)
}

var _ repository.Store = (*FlakyStore)(nil)

// MockProfileCache implements repository.ProfileCache for testing
type MockProfileCache struct {
	mu       sync.RWMutex
	profiles map[string]*models.Profile
}

func NewMockProfileCache() *MockProfileCache {
	return &MockProfileCache{
		profiles: make(map[string]*models.Profile),
	}
}

func (m *MockProfileCache) Get(ctx context.Context, token string) (*models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	profile, exists := m.profiles[token]
	if !exists {
		return nil, repository.ErrCacheMiss
	}
	return profile, nil
}

func (m *MockProfileCache) Set(ctx context.Context, token string, profile *models.Profile, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[token] = profile
	return nil
}

func (m *MockProfileCache) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, token)
	return nil
}

func (m *MockProfileCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.profiles)
}

var _ repository.ProfileCache = (*MockProfileCache)(nil)
