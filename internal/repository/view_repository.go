package repository

import (
	"context"
	"fmt"

	"github.com/SergeiKhy/golink/internal/models"
)

// ViewRepository stores the access log of each link. AppendView must be
// atomic per link: concurrent appends to the same code are all kept.
type ViewRepository interface {
	AppendView(ctx context.Context, code string, visit models.Visit) error
	ListViews(ctx context.Context, code string) ([]models.Visit, error)
}

func (s *PostgresStore) AppendView(ctx context.Context, code string, visit models.Visit) error {
	query := `
		INSERT INTO ` + s.views + ` (code, user_label, result, visited_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.db.Pool.Exec(ctx, query, code, visit.User, visit.Result, visit.Date)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrLinkNotFound
		}
		return fmt.Errorf("failed to append view: %w", err)
	}

	return nil
}

func (s *PostgresStore) ListViews(ctx context.Context, code string) ([]models.Visit, error) {
	query := `
		SELECT user_label, result, visited_at
		FROM ` + s.views + `
		WHERE code = $1
		ORDER BY id
	`

	rows, err := s.db.Pool.Query(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("failed to list views: %w", err)
	}
	defer rows.Close()

	views := []models.Visit{}
	for rows.Next() {
		var v models.Visit
		if err := rows.Scan(&v.User, &v.Result, &v.Date); err != nil {
			return nil, fmt.Errorf("failed to scan view: %w", err)
		}
		views = append(views, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating views: %w", err)
	}

	if len(views) == 0 {
		exists, err := s.LinkExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrLinkNotFound
		}
	}

	return views, nil
}
