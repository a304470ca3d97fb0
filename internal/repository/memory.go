package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/SergeiKhy/golink/internal/models"
)

// MemoryStore keeps links in process memory. It is the default backend for
// development and the one the service tests run against.
type MemoryStore struct {
	scope Scope

	mu          sync.RWMutex
	links       map[string]*models.Link
	initialized bool
}

func NewMemoryStore(scope Scope) *MemoryStore {
	return &MemoryStore{
		scope: scope,
		links: make(map[string]*models.Link),
	}
}

func (m *MemoryStore) Scope() Scope {
	return m.scope
}

func (m *MemoryStore) CreateLink(ctx context.Context, link *models.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.links[link.Code]; exists {
		return ErrCodeExists
	}

	stored := cloneLink(link)
	stored.Views = []models.Visit{}
	m.links[link.Code] = stored
	return nil
}

func (m *MemoryStore) GetLink(ctx context.Context, code string) (*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, exists := m.links[code]
	if !exists {
		return nil, ErrLinkNotFound
	}
	return cloneLink(link), nil
}

func (m *MemoryStore) UpdateLink(ctx context.Context, link *models.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.links[link.Code]
	if !exists {
		return ErrLinkNotFound
	}

	updated := cloneLink(link)
	updated.Views = current.Views
	updated.Created = current.Created
	m.links[link.Code] = updated
	return nil
}

func (m *MemoryStore) DeleteLink(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.links[code]; !exists {
		return ErrLinkNotFound
	}
	delete(m.links, code)
	return nil
}

func (m *MemoryStore) LinkExists(ctx context.Context, code string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.links[code]
	return exists, nil
}

func (m *MemoryStore) ListLinks(ctx context.Context) ([]*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	links := make([]*models.Link, 0, len(m.links))
	for _, link := range m.links {
		links = append(links, cloneLink(link))
	}
	sort.Slice(links, func(i, j int) bool { return links[i].Code < links[j].Code })
	return links, nil
}

func (m *MemoryStore) CollectionExists(ctx context.Context) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized, nil
}

func (m *MemoryStore) CreateCollection(ctx context.Context, seed ...*models.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.initialized = true
	for _, link := range seed {
		if _, exists := m.links[link.Code]; exists {
			continue
		}
		stored := cloneLink(link)
		stored.Views = []models.Visit{}
		m.links[link.Code] = stored
	}
	return nil
}

func (m *MemoryStore) AppendView(ctx context.Context, code string, visit models.Visit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, exists := m.links[code]
	if !exists {
		return ErrLinkNotFound
	}
	link.Views = append(link.Views, visit)
	return nil
}

func (m *MemoryStore) ListViews(ctx context.Context, code string) ([]models.Visit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, exists := m.links[code]
	if !exists {
		return nil, ErrLinkNotFound
	}
	return append([]models.Visit{}, link.Views...), nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryStore) Close() {}

// Reset drops every link and the collection marker.
func (m *MemoryStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links = make(map[string]*models.Link)
	m.initialized = false
}

var _ Store = (*MemoryStore)(nil)
