package identity_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/SergeiKhy/golink/internal/config"
	"github.com/SergeiKhy/golink/internal/identity"
	"github.com/SergeiKhy/golink/internal/models"
	"github.com/SergeiKhy/golink/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDiscordServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("code") != "good-code" || r.PostForm.Get("client_id") != "client" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-123",
			"token_type":   "Bearer",
			"expires_in":   604800,
		})
	})
	mux.HandleFunc("/users/@me", func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer access-123":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"42","username":"ada","discriminator":"0","global_name":"Ada"}`))
		case "Bearer broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(server *httptest.Server) *identity.DiscordClient {
	return identity.NewDiscordClient(config.DiscordConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8900/account/auth",
	}, identity.WithAPIBase(server.URL))
}

func TestDiscordClient_AuthURL(t *testing.T) {
	client := identity.NewDiscordClient(config.DiscordConfig{
		ClientID:    "client",
		RedirectURL: "http://localhost:8900/account/auth",
	})

	u, err := url.Parse(client.AuthURL("state-1"))
	require.NoError(t, err)

	assert.Equal(t, "discord.com", u.Host)
	q := u.Query()
	assert.Equal(t, "client", q.Get("client_id"))
	assert.Equal(t, "identify", q.Get("scope"))
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "http://localhost:8900/account/auth", q.Get("redirect_uri"))
}

func TestDiscordClient_Exchange(t *testing.T) {
	client := newTestClient(newDiscordServer(t))

	token, err := client.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "access-123", token.AccessToken)

	_, err = client.Exchange(context.Background(), "bad-code")
	assert.Error(t, err)
}

func TestDiscordClient_Profile(t *testing.T) {
	client := newTestClient(newDiscordServer(t))
	ctx := context.Background()

	profile, err := client.Profile(ctx, "access-123")
	require.NoError(t, err)
	assert.Equal(t, "42", profile.ID)
	assert.Equal(t, "Ada | @ada (42)", profile.Label())

	_, err = client.Profile(ctx, "revoked")
	assert.ErrorIs(t, err, identity.ErrInvalidToken)

	_, err = client.Profile(ctx, "")
	assert.ErrorIs(t, err, identity.ErrInvalidToken)

	_, err = client.Profile(ctx, "broken")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, identity.ErrInvalidToken)
}

func TestCachedProvider_CachesProfiles(t *testing.T) {
	provider := mocks.NewMockProvider()
	provider.AddUser("", "token", &models.Profile{ID: "42", Username: "ada"})
	cache := mocks.NewMockProfileCache()
	cached := identity.NewCachedProvider(provider, cache, time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		profile, err := cached.Profile(ctx, "token")
		require.NoError(t, err)
		assert.Equal(t, "42", profile.ID)
	}
	assert.Equal(t, 1, provider.Calls())

	cached.Invalidate(ctx, "token")
	assert.Equal(t, 0, cache.Len())

	provider.Revoke("token")
	_, err := cached.Profile(ctx, "token")
	assert.Error(t, err)
	assert.Equal(t, 2, provider.Calls())
}

func TestCachedProvider_WithoutCache(t *testing.T) {
	provider := mocks.NewMockProvider()
	provider.AddUser("", "token", &models.Profile{ID: "42", Username: "ada"})
	cached := identity.NewCachedProvider(provider, nil, time.Minute, nil)

	for i := 0; i < 2; i++ {
		_, err := cached.Profile(context.Background(), "token")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, provider.Calls())
}
