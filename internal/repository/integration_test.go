//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/SergeiKhy/golink/internal/config"
	"github.com/SergeiKhy/golink/internal/models"
	"github.com/SergeiKhy/golink/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres runs a PostgreSQL container for the test and connects to it.
func startPostgres(t *testing.T) *repository.PostgresDB {
	t.Helper()
	ctx := t.Context()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("golink"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	db, err := repository.NewPostgresDB(config.DBConfig{
		Host:     host,
		Port:     port.Port(),
		User:     "user",
		Password: "password",
		Name:     "golink",
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	return db
}

func TestPostgresStore(t *testing.T) {
	db := startPostgres(t)

	store, err := repository.NewPostgresStore(t.Context(), db, repository.Scope{Namespace: "golink", Database: "contract"})
	require.NoError(t, err)

	runStoreContract(t, store)
}

func TestPostgresStore_ScopesAreIsolated(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	first, err := repository.NewPostgresStore(ctx, db, repository.Scope{Namespace: "golink", Database: "one"})
	require.NoError(t, err)
	second, err := repository.NewPostgresStore(ctx, db, repository.Scope{Namespace: "golink", Database: "two"})
	require.NoError(t, err)

	require.NoError(t, first.CreateLink(ctx, newLink("shared", models.LinkTypeNone)))

	exists, err := second.LinkExists(ctx, "shared")
	require.NoError(t, err)
	assert.False(t, exists)

	// migrating an existing scope again is a no-op
	again, err := repository.NewPostgresStore(ctx, db, repository.Scope{Namespace: "golink", Database: "one"})
	require.NoError(t, err)
	exists, err = again.LinkExists(ctx, "shared")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMongoStore(t *testing.T) {
	ctx := t.Context()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017")
	require.NoError(t, err)

	cfg := config.MongoConfig{URI: fmt.Sprintf("mongodb://%s:%s", host, port.Port())}
	store, err := repository.NewMongoStore(ctx, cfg, repository.Scope{Namespace: "golink", Database: "contract"})
	require.NoError(t, err)
	t.Cleanup(store.Close)

	runStoreContract(t, store)
}

func TestProfileCache(t *testing.T) {
	ctx := t.Context()

	container, err := redis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := repository.NewRedisClient(config.RedisConfig{Host: host, Port: port.Port()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	cache := repository.NewProfileCache(client)
	profile := &models.Profile{ID: "42", Username: "ada", GlobalName: "Ada"}

	_, err = cache.Get(ctx, "token")
	assert.ErrorIs(t, err, repository.ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, "token", profile, time.Minute))

	got, err := cache.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, profile, got)

	// raw tokens never become keys
	keys, err := client.Client.Keys(ctx, "*token*").Result()
	require.NoError(t, err)
	assert.Empty(t, keys)

	keys, err = client.Client.Keys(ctx, "profile:*").Result()
	require.NoError(t, err)
	require.Len(t, keys, 1)
	ttl, err := client.Client.TTL(ctx, keys[0]).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	require.NoError(t, cache.Delete(ctx, "token"))
	_, err = cache.Get(ctx, "token")
	assert.ErrorIs(t, err, repository.ErrCacheMiss)
}
