package identity

import (
	"context"
	"errors"
	"time"

	"github.com/SergeiKhy/golink/internal/models"
	"github.com/SergeiKhy/golink/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// CachedProvider puts a short-lived profile cache in front of a Provider.
// A nil cache disables caching and every call reaches the provider.
type CachedProvider struct {
	provider Provider
	cache    repository.ProfileCache
	ttl      time.Duration
	logger   *zap.Logger
}

func NewCachedProvider(provider Provider, cache repository.ProfileCache, ttl time.Duration, logger *zap.Logger) *CachedProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedProvider{
		provider: provider,
		cache:    cache,
		ttl:      ttl,
		logger:   logger,
	}
}

func (p *CachedProvider) AuthURL(state string) string {
	return p.provider.AuthURL(state)
}

func (p *CachedProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.provider.Exchange(ctx, code)
}

func (p *CachedProvider) Profile(ctx context.Context, accessToken string) (*models.Profile, error) {
	if p.cache == nil || p.ttl <= 0 {
		return p.provider.Profile(ctx, accessToken)
	}

	profile, err := p.cache.Get(ctx, accessToken)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repository.ErrCacheMiss) {
		p.logger.Debug("Profile cache read failed", zap.Error(err))
	}

	profile, err = p.provider.Profile(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Set(ctx, accessToken, profile, p.ttl); err != nil {
		p.logger.Debug("Profile cache write failed", zap.Error(err))
	}

	return profile, nil
}

// Invalidate drops the cached profile of accessToken, used on logout.
func (p *CachedProvider) Invalidate(ctx context.Context, accessToken string) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Delete(ctx, accessToken); err != nil {
		p.logger.Debug("Profile cache delete failed", zap.Error(err))
	}
}

var _ Provider = (*CachedProvider)(nil)
