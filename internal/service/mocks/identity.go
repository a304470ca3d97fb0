package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/SergeiKhy/golink/internal/models"
	"golang.org/x/oauth2"
)

var ErrUnknownToken = errors.New("unknown token")

// MockProvider implements identity.Provider for testing. Tokens map to
// profiles; codes map to tokens.
type MockProvider struct {
	mu       sync.RWMutex
	profiles map[string]*models.Profile
	codes    map[string]string
	calls    int
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		profiles: make(map[string]*models.Profile),
		codes:    make(map[string]string),
	}
}

// AddUser registers profile behind token and lets code be exchanged for it.
func (m *MockProvider) AddUser(code, token string, profile *models.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[token] = profile
	if code != "" {
		m.codes[code] = token
	}
}

// Revoke makes token invalid.
func (m *MockProvider) Revoke(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, token)
}

func (m *MockProvider) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

func (m *MockProvider) AuthURL(state string) string {
	return "https://discord.test/authorize?state=" + state
}

func (m *MockProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	token, ok := m.codes[code]
	if !ok {
		return nil, ErrUnknownToken
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

func (m *MockProvider) Profile(ctx context.Context, accessToken string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	profile, ok := m.profiles[accessToken]
	if !ok {
		return nil, ErrUnknownToken
	}
	p := *profile
	return &p, nil
}
