package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/SergeiKhy/golink/internal/models"
	"github.com/SergeiKhy/golink/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidLink = errors.New("invalid link")

var (
	urlPattern  = regexp.MustCompile(`^https?://[^\s]+$`)
	codePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
)

// Codes that collide with the router's own top-level paths.
// bcrypt ignores input past 72 bytes and refuses to hash it.
const maxPasswordBytes = 72

var reservedCodes = map[string]bool{
	"account": true,
	"admin":   true,
	"api":     true,
	"metrics": true,
}

// DefaultLink seeds a freshly created link collection.
func DefaultLink(now time.Time) *models.Link {
	return &models.Link{
		Code:    "zyrenth",
		Type:    models.LinkTypeNone,
		URL:     "https://github.com/Zyrenth",
		Views:   []models.Visit{},
		Created: now,
		Updated: now,
	}
}

// LinkService manages links on behalf of admins.
type LinkService interface {
	Save(ctx context.Context, input *models.SaveLinkInput) (*models.Link, error)
	Get(ctx context.Context, code string) (*models.Link, error)
	List(ctx context.Context) []*models.Link
	Delete(ctx context.Context, code string) error
	EnsureCollection(ctx context.Context)
}

type linkService struct {
	store  *LinkStore
	logger *zap.Logger
	now    func() time.Time
}

func NewLinkService(store *LinkStore, logger *zap.Logger) LinkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &linkService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Save creates the link or replaces an existing one with the same code.
// The access log of a replaced link is kept.
func (s *linkService) Save(ctx context.Context, input *models.SaveLinkInput) (*models.Link, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := s.now()
	existing := s.store.Get(ctx, input.ID)

	link := &models.Link{
		Code:    input.ID,
		Type:    input.Type,
		URL:     input.URL,
		Users:   input.Users,
		Views:   []models.Visit{},
		Created: now,
		Updated: now,
	}
	if existing != nil {
		link.Created = existing.Created
		link.Views = existing.Views
	}

	if link.Type == models.LinkTypePassword {
		switch {
		case input.Password != "":
			hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, fmt.Errorf("failed to hash password: %w", err)
			}
			link.Password = string(hash)
		case existing != nil && existing.Type == models.LinkTypePassword:
			link.Password = existing.Password
		default:
			return nil, fmt.Errorf("%w: password is required", ErrInvalidLink)
		}
	}
	link.Normalize()

	if existing != nil {
		s.store.Update(ctx, link)
		s.logger.Info("Link updated", zap.String("code", link.Code), zap.String("type", string(link.Type)))
	} else {
		s.store.Create(ctx, link)
		s.logger.Info("Link created", zap.String("code", link.Code), zap.String("type", string(link.Type)))
	}

	return link, nil
}

func (s *linkService) Get(ctx context.Context, code string) (*models.Link, error) {
	link := s.store.Get(ctx, code)
	if link == nil {
		return nil, repository.ErrLinkNotFound
	}
	return link, nil
}

func (s *linkService) List(ctx context.Context) []*models.Link {
	return s.store.List(ctx)
}

// Delete returns repository.ErrLinkNotFound when code is unknown.
func (s *linkService) Delete(ctx context.Context, code string) error {
	if !s.store.Exists(ctx, code) {
		return repository.ErrLinkNotFound
	}
	s.store.Delete(ctx, code)
	s.logger.Info("Link deleted", zap.String("code", code))
	return nil
}

// EnsureCollection creates and seeds the link collection on first start.
func (s *linkService) EnsureCollection(ctx context.Context) {
	if s.store.CollectionExists(ctx) {
		return
	}
	s.store.CreateCollection(ctx, DefaultLink(s.now()))
	s.logger.Info("Link collection created")
}

func validateInput(input *models.SaveLinkInput) error {
	if input.ID == "" || !codePattern.MatchString(input.ID) {
		return fmt.Errorf("%w: id must be letters, digits, '.', '_' or '-'", ErrInvalidLink)
	}
	if reservedCodes[strings.ToLower(input.ID)] {
		return fmt.Errorf("%w: id %q is reserved", ErrInvalidLink, input.ID)
	}
	if !input.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidType, input.Type)
	}
	if !urlPattern.MatchString(strings.TrimSpace(input.URL)) {
		return fmt.Errorf("%w: url must be http or https", ErrInvalidLink)
	}
	if input.Type == models.LinkTypePassword && len(input.Password) > maxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidLink, maxPasswordBytes)
	}
	return nil
}
