package handler

import (
	"context"
	"net/http"

	"github.com/SergeiKhy/golink/internal/identity"
	"github.com/SergeiKhy/golink/internal/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProfileInvalidator drops cached identity data for a token.
type ProfileInvalidator interface {
	Invalidate(ctx context.Context, accessToken string)
}

// AccountHandler runs the Discord login flow.
type AccountHandler struct {
	provider identity.Provider
	sessions *middleware.Sessions
	cache    ProfileInvalidator
	logger   *zap.Logger
}

func NewAccountHandler(provider identity.Provider, sessions *middleware.Sessions, cache ProfileInvalidator, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		provider: provider,
		sessions: sessions,
		cache:    cache,
		logger:   logger,
	}
}

// Login redirects to the Discord authorization page with a fresh state.
func (h *AccountHandler) Login(c *gin.Context) {
	state, err := h.sessions.NewState(c)
	if err != nil {
		h.logger.Error("Failed to start login", zap.Error(err))
		c.HTML(http.StatusInternalServerError, "message.html", gin.H{
			"Title":   "Login failed",
			"Message": "Could not start the login, try again.",
		})
		return
	}

	c.Redirect(http.StatusFound, h.provider.AuthURL(state))
}

// Auth is the OAuth callback.
func (h *AccountHandler) Auth(c *gin.Context) {
	if !h.sessions.CheckState(c, c.Query("state")) {
		h.loginFailed(c, http.StatusBadRequest, "Your login expired, please try again.")
		return
	}

	if c.Query("error") != "" {
		h.loginFailed(c, http.StatusBadRequest, "Discord did not authorize the login.")
		return
	}

	code := c.Query("code")
	if code == "" {
		h.loginFailed(c, http.StatusBadRequest, "Missing authorization code.")
		return
	}

	ctx := c.Request.Context()
	token, err := h.provider.Exchange(ctx, code)
	if err != nil {
		h.logger.Warn("Code exchange failed", zap.Error(err))
		h.loginFailed(c, http.StatusBadGateway, "Could not complete the login with Discord.")
		return
	}

	profile, err := h.provider.Profile(ctx, token.AccessToken)
	if err != nil {
		h.logger.Warn("Profile fetch failed", zap.Error(err))
		h.loginFailed(c, http.StatusBadGateway, "Could not load your Discord profile.")
		return
	}

	if err := h.sessions.Issue(c, profile.ID, token.AccessToken); err != nil {
		h.logger.Error("Failed to issue session", zap.Error(err))
		h.loginFailed(c, http.StatusInternalServerError, "Could not create your session.")
		return
	}

	h.logger.Info("Login successful", zap.String("user", profile.Label()))
	c.Redirect(http.StatusFound, "/")
}

// Logout clears the session and drops the cached profile.
func (h *AccountHandler) Logout(c *gin.Context) {
	if claims, err := h.sessions.Read(c); err == nil && h.cache != nil {
		h.cache.Invalidate(c.Request.Context(), claims.AccessToken)
	}
	h.sessions.Clear(c)

	c.HTML(http.StatusOK, "message.html", gin.H{
		"Title":   "Signed out",
		"Message": "You have been signed out.",
	})
}

// Profile godoc
// @Summary Current user
// @Description Discord profile of the signed in user
// @Tags account
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} nil
// @Router /api/v1/profile [get]
func (h *AccountHandler) Profile(c *gin.Context) {
	profile := middleware.CurrentProfile(c)
	if profile == nil {
		c.JSON(http.StatusOK, gin.H{
			"admin":   middleware.IsAdmin(c),
			"api_key": middleware.APIKeyName(c),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": profile,
		"label":   profile.Label(),
		"admin":   middleware.IsAdmin(c),
	})
}

func (h *AccountHandler) loginFailed(c *gin.Context, status int, message string) {
	c.HTML(status, "message.html", gin.H{
		"Title":   "Login failed",
		"Message": message,
	})
}
