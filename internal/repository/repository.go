package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/SergeiKhy/golink/internal/config"
	"github.com/SergeiKhy/golink/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is a link store backend bound to one namespace.
type Store interface {
	LinkRepository
	ViewRepository
	Ping(ctx context.Context) error
	Close()
}

// Scope identifies the namespace/database pair every store operation runs in.
type Scope struct {
	Namespace string
	Database  string
}

// Name is the backend-level name of the scope (schema or database name).
func (s Scope) Name() string {
	return s.Namespace + "_" + s.Database
}

// Open connects the backend selected by cfg.Store.Driver and prepares its schema.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	scope := Scope{Namespace: cfg.Store.Namespace, Database: cfg.Store.Database}

	switch cfg.Store.Driver {
	case "memory":
		return NewMemoryStore(scope), nil
	case "postgres":
		db, err := NewPostgresDB(cfg.DB)
		if err != nil {
			return nil, err
		}
		store, err := NewPostgresStore(ctx, db, scope)
		if err != nil {
			db.Close()
			return nil, err
		}
		return store, nil
	case "mongo":
		return NewMongoStore(ctx, cfg.Mongo, scope)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

type PostgresDB struct {
	Pool *pgxpool.Pool
}

func NewPostgresDB(cfg config.DBConfig) (*PostgresDB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DB config: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{Pool: pool}, nil
}

func (db *PostgresDB) Close() {
	db.Pool.Close()
}

// PostgresStore keeps every table of a scope in a schema named after it.
type PostgresStore struct {
	db     *PostgresDB
	schema string
	links  string
	views  string
	colls  string
}

func NewPostgresStore(ctx context.Context, db *PostgresDB, scope Scope) (*PostgresStore, error) {
	s := &PostgresStore{
		db:     db,
		schema: pgx.Identifier{scope.Name()}.Sanitize(),
		links:  pgx.Identifier{scope.Name(), "links"}.Sanitize(),
		views:  pgx.Identifier{scope.Name(), "link_views"}.Sanitize(),
		colls:  pgx.Identifier{scope.Name(), "collections"}.Sanitize(),
	}

	if err := s.migrate(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE SCHEMA IF NOT EXISTS ` + s.schema,
		`CREATE TABLE IF NOT EXISTS ` + s.colls + ` (
			name       TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + s.links + ` (
			code       TEXT PRIMARY KEY,
			type       TEXT NOT NULL,
			url        TEXT NOT NULL,
			password   TEXT,
			users      TEXT[],
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ` + s.views + ` (
			id         BIGSERIAL PRIMARY KEY,
			code       TEXT NOT NULL REFERENCES ` + s.links + ` (code) ON DELETE CASCADE,
			user_label TEXT NOT NULL,
			result     SMALLINT NOT NULL,
			visited_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS link_views_code_idx ON ` + s.views + ` (code, id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema %s: %w", s.schema, err)
		}
	}

	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Pool.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.db.Close()
}

var _ Store = (*PostgresStore)(nil)

// cloneLink deep-copies link so callers never share slices with a store.
func cloneLink(link *models.Link) *models.Link {
	out := *link
	out.Users = append([]string(nil), link.Users...)
	out.Views = append([]models.Visit{}, link.Views...)
	return &out
}
