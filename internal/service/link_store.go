package service

import (
	"context"
	"errors"

	"github.com/SergeiKhy/golink/internal/models"
	"github.com/SergeiKhy/golink/internal/repository"
	"go.uber.org/zap"
)

// LinkStore is the fail-open view of a repository.Store used by the request
// path. Writes log and swallow their errors, reads turn failures into absent
// values, so a store outage degrades to "not found" instead of a 500.
type LinkStore struct {
	repo   repository.Store
	logger *zap.Logger
}

// NewLinkStore wraps repo so that storage errors are logged and swallowed.
func NewLinkStore(repo repository.Store, logger *zap.Logger) *LinkStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LinkStore{repo: repo, logger: logger}
}

// Create stores link. Failures are logged only.
func (s *LinkStore) Create(ctx context.Context, link *models.Link) {
	if err := s.repo.CreateLink(ctx, link); err != nil {
		s.logger.Error("Failed to create link", zap.String("code", link.Code), zap.Error(err))
	}
}

// Update replaces the stored link with the same code. Failures are logged only.
func (s *LinkStore) Update(ctx context.Context, link *models.Link) {
	if err := s.repo.UpdateLink(ctx, link); err != nil {
		s.logger.Error("Failed to update link", zap.String("code", link.Code), zap.Error(err))
	}
}

// Delete removes the link. Failures are logged only.
func (s *LinkStore) Delete(ctx context.Context, code string) {
	if err := s.repo.DeleteLink(ctx, code); err != nil {
		s.logger.Error("Failed to delete link", zap.String("code", code), zap.Error(err))
	}
}

// Get returns nil when the link is missing or the store failed.
func (s *LinkStore) Get(ctx context.Context, code string) *models.Link {
	link, err := s.repo.GetLink(ctx, code)
	if err != nil {
		if !errors.Is(err, repository.ErrLinkNotFound) {
			s.logger.Error("Failed to get link", zap.String("code", code), zap.Error(err))
		}
		return nil
	}
	return link
}

// Exists reports false when the store failed.
func (s *LinkStore) Exists(ctx context.Context, code string) bool {
	exists, err := s.repo.LinkExists(ctx, code)
	if err != nil {
		s.logger.Error("Failed to check link", zap.String("code", code), zap.Error(err))
		return false
	}
	return exists
}

// List returns an empty slice when the store failed.
func (s *LinkStore) List(ctx context.Context) []*models.Link {
	links, err := s.repo.ListLinks(ctx)
	if err != nil {
		s.logger.Error("Failed to list links", zap.Error(err))
		return []*models.Link{}
	}
	if links == nil {
		links = []*models.Link{}
	}
	return links
}

// CollectionExists reports false when the store cannot be reached.
func (s *LinkStore) CollectionExists(ctx context.Context) bool {
	exists, err := s.repo.CollectionExists(ctx)
	if err != nil {
		s.logger.Error("Failed to check link collection", zap.Error(err))
		return false
	}
	return exists
}

// CreateCollection initialises the collection with seed. Failures are logged only.
func (s *LinkStore) CreateCollection(ctx context.Context, seed ...*models.Link) {
	if err := s.repo.CreateCollection(ctx, seed...); err != nil {
		s.logger.Error("Failed to create link collection", zap.Error(err))
	}
}
