package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/SergeiKhy/golink/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrLinkNotFound = errors.New("link not found")
	ErrCodeExists   = errors.New("link code already exists")
)

// LinksCollection is the name of the link collection inside a scope.
const LinksCollection = "links"

type LinkRepository interface {
	CreateLink(ctx context.Context, link *models.Link) error
	GetLink(ctx context.Context, code string) (*models.Link, error)
	UpdateLink(ctx context.Context, link *models.Link) error
	DeleteLink(ctx context.Context, code string) error
	LinkExists(ctx context.Context, code string) (bool, error)
	ListLinks(ctx context.Context) ([]*models.Link, error)

	// CollectionExists reports whether the link collection was initialised.
	CollectionExists(ctx context.Context) (bool, error)
	// CreateCollection initialises the link collection with seed links.
	// Seeds whose code is already taken are skipped.
	CreateCollection(ctx context.Context, seed ...*models.Link) error
}

func (s *PostgresStore) CreateLink(ctx context.Context, link *models.Link) error {
	query := `
		INSERT INTO ` + s.links + ` (code, type, url, password, users, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
	`

	_, err := s.db.Pool.Exec(ctx, query,
		link.Code,
		string(link.Type),
		link.URL,
		link.Password,
		link.Users,
		link.Created,
		link.Updated,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrCodeExists
		}
		return fmt.Errorf("failed to create link: %w", err)
	}

	return nil
}

func (s *PostgresStore) GetLink(ctx context.Context, code string) (*models.Link, error) {
	query := `
		SELECT code, type, url, COALESCE(password, ''), users, created_at, updated_at
		FROM ` + s.links + `
		WHERE code = $1
	`

	link, err := scanLink(s.db.Pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	views, err := s.ListViews(ctx, code)
	if err != nil {
		return nil, err
	}
	link.Views = views

	return link, nil
}

func (s *PostgresStore) UpdateLink(ctx context.Context, link *models.Link) error {
	query := `
		UPDATE ` + s.links + `
		SET type = $2, url = $3, password = NULLIF($4, ''), users = $5, updated_at = $6
		WHERE code = $1
	`

	result, err := s.db.Pool.Exec(ctx, query,
		link.Code,
		string(link.Type),
		link.URL,
		link.Password,
		link.Users,
		link.Updated,
	)
	if err != nil {
		return fmt.Errorf("failed to update link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}

	return nil
}

func (s *PostgresStore) DeleteLink(ctx context.Context, code string) error {
	query := `DELETE FROM ` + s.links + ` WHERE code = $1`

	result, err := s.db.Pool.Exec(ctx, query, code)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}

	return nil
}

func (s *PostgresStore) LinkExists(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM ` + s.links + ` WHERE code = $1)`

	var exists bool
	if err := s.db.Pool.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check link: %w", err)
	}

	return exists, nil
}

func (s *PostgresStore) ListLinks(ctx context.Context) ([]*models.Link, error) {
	query := `
		SELECT code, type, url, COALESCE(password, ''), users, created_at, updated_at
		FROM ` + s.links + `
		ORDER BY code
	`

	rows, err := s.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	var links []*models.Link
	byCode := make(map[string]*models.Link)
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
		byCode[link.Code] = link
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	views, err := s.db.Pool.Query(ctx, `SELECT code, user_label, result, visited_at FROM `+s.views+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list views: %w", err)
	}
	defer views.Close()

	for views.Next() {
		var code string
		var v models.Visit
		if err := views.Scan(&code, &v.User, &v.Result, &v.Date); err != nil {
			return nil, fmt.Errorf("failed to scan view: %w", err)
		}
		if link, ok := byCode[code]; ok {
			link.Views = append(link.Views, v)
		}
	}

	return links, views.Err()
}

func (s *PostgresStore) CollectionExists(ctx context.Context) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM ` + s.colls + ` WHERE name = $1)`

	var exists bool
	if err := s.db.Pool.QueryRow(ctx, query, LinksCollection).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check collection: %w", err)
	}

	return exists, nil
}

func (s *PostgresStore) CreateCollection(ctx context.Context, seed ...*models.Link) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO ` + s.colls + ` (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`
	if _, err := tx.Exec(ctx, query, LinksCollection); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	for _, link := range seed {
		insert := `
			INSERT INTO ` + s.links + ` (code, type, url, password, users, created_at, updated_at)
			VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
			ON CONFLICT (code) DO NOTHING
		`
		_, err := tx.Exec(ctx, insert,
			link.Code, string(link.Type), link.URL, link.Password, link.Users, link.Created, link.Updated)
		if err != nil {
			return fmt.Errorf("failed to seed link %s: %w", link.Code, err)
		}
	}

	return tx.Commit(ctx)
}

func scanLink(row pgx.Row) (*models.Link, error) {
	var (
		link     models.Link
		linkType string
	)

	err := row.Scan(
		&link.Code,
		&linkType,
		&link.URL,
		&link.Password,
		&link.Users,
		&link.Created,
		&link.Updated,
	)
	if err != nil {
		return nil, err
	}

	link.Type = models.LinkType(linkType)
	link.Views = []models.Visit{}

	return &link, nil
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
