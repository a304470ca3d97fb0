package service

import (
	"context"
	"errors"
	"time"

	"github.com/SergeiKhy/golink/internal/identity"
	"github.com/SergeiKhy/golink/internal/metrics"
	"github.com/SergeiKhy/golink/internal/models"
	"github.com/SergeiKhy/golink/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Visitor facing messages.
const (
	MsgNotFound        = "GoLink not found."
	MsgInvalidType     = "Invalid type."
	MsgInvalidPassword = "Invalid password."
	MsgNoAccess        = "You don't have access to this GoLink."
	MsgUnsupportedType = "Unsupported GoLink type."
)

// ErrInvalidType is returned when a visit names a different policy than the
// one stored on the link.
var ErrInvalidType = errors.New("link type mismatch")

// AccessResolver decides whether a visitor may follow a link and records the
// attempt in the link's access log.
type AccessResolver struct {
	store    *LinkStore
	audit    *AuditLog
	identity identity.Provider
	logger   *zap.Logger
	now      func() time.Time
}

// NewAccessResolver creates an AccessResolver that logs visits through audit.
func NewAccessResolver(store *LinkStore, audit *AuditLog, provider identity.Provider, logger *zap.Logger) *AccessResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessResolver{
		store:    store,
		audit:    audit,
		identity: provider,
		logger:   logger,
		now:      time.Now,
	}
}

// Resolve returns repository.ErrLinkNotFound for unknown codes and
// ErrInvalidType, with a denial decision, when the requested type does not
// match the link's type. Every other outcome is a decision.
func (r *AccessResolver) Resolve(ctx context.Context, req *models.VisitRequest) (*models.AccessDecision, error) {
	link := r.store.Get(ctx, req.ID)
	if link == nil {
		return nil, repository.ErrLinkNotFound
	}

	if link.Type.Valid() && req.Type != link.Type {
		metrics.RecordVisit(string(link.Type), "rejected")
		return deny(MsgInvalidType), ErrInvalidType
	}

	switch link.Type {
	case models.LinkTypeNone:
		r.record(ctx, link, models.AnonymousUser, true)
		return grant(link), nil

	case models.LinkTypePassword:
		ok := checkPassword(link.Password, req.Password)
		r.record(ctx, link, models.AnonymousUser, ok)
		if !ok {
			return deny(MsgInvalidPassword), nil
		}
		return grant(link), nil

	case models.LinkTypeDiscord:
		if req.Token == "" {
			metrics.RecordVisit(string(link.Type), "rejected")
			return deny(MsgNoAccess), nil
		}

		profile, err := r.identity.Profile(ctx, req.Token)
		if err != nil {
			r.logger.Debug("Failed to resolve visitor profile", zap.String("code", link.Code), zap.Error(err))
			metrics.RecordVisit(string(link.Type), "rejected")
			return deny(MsgNoAccess), nil
		}

		ok := link.HasUser(profile.ID)
		r.record(ctx, link, profile.Label(), ok)
		if !ok {
			return deny(MsgNoAccess), nil
		}
		return grant(link), nil

	default:
		r.logger.Warn("Link has unsupported type",
			zap.String("code", link.Code),
			zap.String("type", string(link.Type)),
		)
		metrics.RecordVisit(string(link.Type), "rejected")
		return deny(MsgUnsupportedType), nil
	}
}

// record appends the visit before the decision is returned. A failed append
// is logged by the audit log and does not change the decision.
func (r *AccessResolver) record(ctx context.Context, link *models.Link, user string, granted bool) {
	result := "denied"
	if granted {
		result = "granted"
	}
	metrics.RecordVisit(string(link.Type), result)

	_ = r.audit.Append(ctx, link.Code, models.NewVisit(user, granted, r.now()))
}

func checkPassword(hash, password string) bool {
	if hash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func grant(link *models.Link) *models.AccessDecision {
	return &models.AccessDecision{Granted: true, URL: link.URL}
}

func deny(message string) *models.AccessDecision {
	return &models.AccessDecision{Message: message}
}
