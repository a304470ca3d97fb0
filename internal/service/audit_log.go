package service

import (
	"context"
	"errors"
	"time"

	"github.com/SergeiKhy/golink/internal/metrics"
	"github.com/SergeiKhy/golink/internal/models"
	"github.com/SergeiKhy/golink/internal/repository"
	"go.uber.org/zap"
)

const (
	maxAppendRetries = 3
	appendBackoff    = 100 * time.Millisecond
	appendTimeout    = 5 * time.Second
)

// AuditLog appends visits to a link's access log. Each append is a single
// atomic write in the backend, so concurrent visits never overwrite each other.
type AuditLog struct {
	views  repository.ViewRepository
	logger *zap.Logger
}

// NewAuditLog creates an AuditLog appending to views.
func NewAuditLog(views repository.ViewRepository, logger *zap.Logger) *AuditLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditLog{views: views, logger: logger}
}

// Append writes visit to the log of code, retrying transient failures with
// a linear backoff. A missing link is not retried.
func (a *AuditLog) Append(ctx context.Context, code string, visit models.Visit) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), appendTimeout)
	defer cancel()

	var err error
	for i := 0; i < maxAppendRetries; i++ {
		if err = a.views.AppendView(ctx, code, visit); err == nil {
			return nil
		}
		if errors.Is(err, repository.ErrLinkNotFound) {
			break
		}

		if i < maxAppendRetries-1 {
			a.logger.Debug("Retrying visit append",
				zap.String("code", code),
				zap.Int("attempt", i+1),
				zap.Error(err),
			)

			if waitErr := sleep(ctx, time.Duration(i+1)*appendBackoff); waitErr != nil {
				err = waitErr
				break
			}
		}
	}

	metrics.AuditAppendFailures.Inc()
	a.logger.Error("Failed to append visit",
		zap.String("code", code),
		zap.String("user", visit.User),
		zap.Error(err),
	)
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
