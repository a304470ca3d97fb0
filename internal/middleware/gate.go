package middleware

import (
	"net/http"

	"github.com/SergeiKhy/golink/internal/identity"
	"github.com/SergeiKhy/golink/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	profileKey     = "profile"
	accessTokenKey = "access_token"
	adminKey       = "is_admin"
)

// Gate authenticates requests from the session cookie and re-validates the
// stored access token with the identity provider on every request.
//
// Interactive routes redirect anonymous visitors to the provider and render
// a 403 page for non-admins. Programmatic routes answer with empty 401/403
// responses and also accept a validated API key as an admin credential.
type Gate struct {
	sessions *Sessions
	provider identity.Provider
	admins   map[string]bool
	logger   *zap.Logger
}

func NewGate(sessions *Sessions, provider identity.Provider, admins []string, logger *zap.Logger) *Gate {
	set := make(map[string]bool, len(admins))
	for _, id := range admins {
		set[id] = true
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		sessions: sessions,
		provider: provider,
		admins:   set,
		logger:   logger,
	}
}

// IsAdmin reports whether userID is on the admin allow-list.
func (g *Gate) IsAdmin(userID string) bool {
	return g.admins[userID]
}

// Interactive guards browser pages.
func (g *Gate) Interactive(adminOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, ok := g.authenticate(c)
		if !ok {
			g.redirectToLogin(c)
			return
		}

		if adminOnly && !g.IsAdmin(profile.ID) {
			c.HTML(http.StatusForbidden, "message.html", gin.H{
				"Title":   "Forbidden",
				"Message": "You don't have permission to view this page.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// Programmatic guards JSON endpoints.
func (g *Gate) Programmatic(adminOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsAPIKeyValidated(c) {
			c.Set(adminKey, true)
			c.Next()
			return
		}

		profile, ok := g.authenticate(c)
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		if adminOnly && !g.IsAdmin(profile.ID) {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		c.Next()
	}
}

func (g *Gate) authenticate(c *gin.Context) (*models.Profile, bool) {
	claims, err := g.sessions.Read(c)
	if err != nil {
		return nil, false
	}

	profile, err := g.provider.Profile(c.Request.Context(), claims.AccessToken)
	if err != nil || profile.ID != claims.Subject {
		g.logger.Debug("Session no longer valid", zap.String("user_id", claims.Subject), zap.Error(err))
		g.sessions.Clear(c)
		return nil, false
	}

	c.Set(profileKey, profile)
	c.Set(accessTokenKey, claims.AccessToken)
	c.Set(adminKey, g.IsAdmin(profile.ID))
	return profile, true
}

func (g *Gate) redirectToLogin(c *gin.Context) {
	state, err := g.sessions.NewState(c)
	if err != nil {
		g.logger.Error("Failed to start login", zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Redirect(http.StatusFound, g.provider.AuthURL(state))
	c.Abort()
}

// CurrentProfile returns the profile authenticated by the gate, if any.
func CurrentProfile(c *gin.Context) *models.Profile {
	v, ok := c.Get(profileKey)
	if !ok {
		return nil
	}
	profile, _ := v.(*models.Profile)
	return profile
}

// AccessToken returns the session's provider token, if any.
func AccessToken(c *gin.Context) string {
	return c.GetString(accessTokenKey)
}

// IsAdmin reports whether the gate granted admin capability to the request.
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(adminKey)
}
