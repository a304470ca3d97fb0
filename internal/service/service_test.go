package service_test

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/SergeiKhy/golink/internal/models"
	"github.com/SergeiKhy/golink/internal/service"
	"github.com/SergeiKhy/golink/internal/service/mocks"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store    *mocks.FlakyStore
	provider *mocks.MockProvider
	links    service.LinkService
	resolver *service.AccessResolver
}

// setupTestService wires the services against an in-memory store.
func setupTestService(t *testing.T) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	store := mocks.NewFlakyStore()
	provider := mocks.NewMockProvider()
	linkStore := service.NewLinkStore(store, logger)

	return &testEnv{
		store:    store,
		provider: provider,
		links:    service.NewLinkService(linkStore, logger),
		resolver: service.NewAccessResolver(linkStore, service.NewAuditLog(store, logger), provider, logger),
	}
}

func (e *testEnv) save(t *testing.T, input *models.SaveLinkInput) *models.Link {
	t.Helper()
	link, err := e.links.Save(context.Background(), input)
	require.NoError(t, err)
	return link
}

func (e *testEnv) views(t *testing.T, code string) []models.Visit {
	t.Helper()
	views, err := e.store.ListViews(context.Background(), code)
	require.NoError(t, err)
	return views
}
