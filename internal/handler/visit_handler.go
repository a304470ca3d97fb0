package handler

import (
	"errors"
	"net/http"

	"github.com/SergeiKhy/golink/internal/middleware"
	"github.com/SergeiKhy/golink/internal/models"
	"github.com/SergeiKhy/golink/internal/repository"
	"github.com/SergeiKhy/golink/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VisitHandler serves link visitors. Its JSON answers are always
// {"url": ...} or {"message": ...}.
type VisitHandler struct {
	links    service.LinkService
	resolver *service.AccessResolver
	sessions *middleware.Sessions
	logger   *zap.Logger
}

func NewVisitHandler(links service.LinkService, resolver *service.AccessResolver, sessions *middleware.Sessions, logger *zap.Logger) *VisitHandler {
	return &VisitHandler{
		links:    links,
		resolver: resolver,
		sessions: sessions,
		logger:   logger,
	}
}

// Visit godoc
// @Summary Resolve a link
// @Description Check a visitor's credential for a link and return its URL
// @Tags links
// @Accept json
// @Produce json
// @Param request body models.VisitRequest true "Visit"
// @Success 200 {object} models.AccessDecision
// @Failure 400 {object} models.AccessDecision
// @Router /api/v1/links [post]
func (h *VisitHandler) Visit(c *gin.Context) {
	var req models.VisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.AccessDecision{Message: service.MsgNotFound})
		return
	}

	// browsers rely on the session instead of sending the token themselves
	if req.Token == "" && req.Type == models.LinkTypeDiscord {
		if claims, err := h.sessions.Read(c); err == nil {
			req.Token = claims.AccessToken
		}
	}

	decision, err := h.resolver.Resolve(c.Request.Context(), &req)
	switch {
	case errors.Is(err, repository.ErrLinkNotFound):
		c.JSON(http.StatusBadRequest, models.AccessDecision{Message: service.MsgNotFound})
	case errors.Is(err, service.ErrInvalidType):
		c.JSON(http.StatusBadRequest, decision)
	case err != nil:
		h.logger.Error("Failed to resolve visit", zap.String("code", req.ID), zap.Error(err))
		c.JSON(http.StatusBadRequest, models.AccessDecision{Message: service.MsgNotFound})
	default:
		c.JSON(http.StatusOK, decision)
	}
}

// Redirect godoc
// @Summary Open a link
// @Description Redirect for open links, challenge page for gated ones
// @Tags links
// @Produce html
// @Param code path string true "Link code"
// @Success 307 {object} nil
// @Failure 404 {string} string "Not found page"
// @Router /{code} [get]
func (h *VisitHandler) Redirect(c *gin.Context) {
	code := c.Param("code")

	link, err := h.links.Get(c.Request.Context(), code)
	if err != nil {
		notFound(c)
		return
	}

	switch link.Type {
	case models.LinkTypePassword, models.LinkTypeDiscord:
		c.HTML(http.StatusOK, "challenge.html", gin.H{
			"Title": link.Code,
			"Code":  link.Code,
			"Type":  string(link.Type),
		})
		return
	}

	decision, err := h.resolver.Resolve(c.Request.Context(), &models.VisitRequest{ID: code, Type: link.Type})
	if err != nil {
		notFound(c)
		return
	}
	if !decision.Granted {
		c.HTML(http.StatusForbidden, "message.html", gin.H{
			"Title":   "Unavailable",
			"Message": decision.Message,
		})
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, decision.URL)
}

func notFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "message.html", gin.H{
		"Title":   "Not found",
		"Message": service.MsgNotFound,
	})
}
