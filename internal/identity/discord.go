package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/SergeiKhy/golink/internal/config"
	"github.com/SergeiKhy/golink/internal/models"
	"golang.org/x/oauth2"
)

var ErrInvalidToken = errors.New("invalid or expired access token")

const (
	DiscordAPIBase  = "https://discord.com/api/v10"
	discordAuthURL  = "https://discord.com/api/oauth2/authorize"
	discordTokenURL = "https://discord.com/api/v10/oauth2/token"
)

// Provider resolves visitors and admins through an external OAuth service.
type Provider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Profile(ctx context.Context, accessToken string) (*models.Profile, error)
}

type DiscordClient struct {
	oauth      *oauth2.Config
	apiBase    string
	httpClient *http.Client
}

type DiscordOption func(*DiscordClient)

// WithAPIBase points the client at another API root, used by tests.
func WithAPIBase(base string) DiscordOption {
	return func(c *DiscordClient) {
		c.apiBase = strings.TrimRight(base, "/")
		c.oauth.Endpoint.TokenURL = c.apiBase + "/oauth2/token"
	}
}

func NewDiscordClient(cfg config.DiscordConfig, opts ...DiscordOption) *DiscordClient {
	c := &DiscordClient{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"identify"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   discordAuthURL,
				TokenURL:  discordTokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiBase: DiscordAPIBase,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// AuthURL is the Discord authorization page the login flow redirects to.
func (c *DiscordClient) AuthURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for an access token.
func (c *DiscordClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := c.oauth.Exchange(c.withClient(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	return token, nil
}

// Profile fetches the user behind accessToken from /users/@me.
func (c *DiscordClient) Profile(ctx context.Context, accessToken string) (*models.Profile, error) {
	if accessToken == "" {
		return nil, ErrInvalidToken
	}

	client := oauth2.NewClient(c.withClient(ctx), oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/users/@me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrInvalidToken
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("failed to fetch profile with status %d: %s", resp.StatusCode, string(body))
	}

	var profile models.Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	if profile.ID == "" {
		return nil, ErrInvalidToken
	}

	return &profile, nil
}

func (c *DiscordClient) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

var _ Provider = (*DiscordClient)(nil)
