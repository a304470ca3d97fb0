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

// LinkHandler serves the admin JSON API.
type LinkHandler struct {
	links  service.LinkService
	logger *zap.Logger
}

func NewLinkHandler(links service.LinkService, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{
		links:  links,
		logger: logger,
	}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type DeleteLinkRequest struct {
	ID string `json:"id" binding:"required"`
}

// ListLinks godoc
// @Summary List links
// @Description List every link with its access log
// @Tags admin
// @Produce json
// @Success 200 {array} models.Link
// @Failure 401 {object} nil
// @Failure 403 {object} nil
// @Router /api/v1/links [get]
func (h *LinkHandler) ListLinks(c *gin.Context) {
	c.JSON(http.StatusOK, h.links.List(c.Request.Context()))
}

// GetLink godoc
// @Summary Get a link
// @Description Get one link with its access log
// @Tags admin
// @Produce json
// @Param id path string true "Link code"
// @Success 200 {object} models.Link
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/link/{id} [get]
func (h *LinkHandler) GetLink(c *gin.Context) {
	link, err := h.links.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Link not found",
		})
		return
	}

	c.JSON(http.StatusOK, link)
}

// SaveLink godoc
// @Summary Create or replace a link
// @Tags admin
// @Accept json
// @Produce json
// @Param request body models.SaveLinkInput true "Link"
// @Success 200 {object} models.Link
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/link [post]
func (h *LinkHandler) SaveLink(c *gin.Context) {
	var req models.SaveLinkInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	link, err := h.links.Save(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidLink):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_link",
				Message: err.Error(),
			})
		case errors.Is(err, service.ErrInvalidType):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_type",
				Message: "Type must be one of none, password, discord",
			})
		default:
			h.logger.Error("Failed to save link", zap.String("code", req.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to save link",
			})
		}
		return
	}

	h.logger.Info("Link saved by admin",
		zap.String("code", link.Code),
		zap.String("admin", adminName(c)),
	)
	c.JSON(http.StatusOK, link)
}

// DeleteLink godoc
// @Summary Delete a link
// @Tags admin
// @Accept json
// @Produce json
// @Param request body DeleteLinkRequest true "Link code"
// @Success 200 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/link [delete]
func (h *LinkHandler) DeleteLink(c *gin.Context) {
	var req DeleteLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	if err := h.links.Delete(c.Request.Context(), req.ID); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "not_found",
				Message: "Link not found",
			})
			return
		}
		h.logger.Error("Failed to delete link", zap.String("code", req.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to delete link",
		})
		return
	}

	h.logger.Info("Link deleted by admin",
		zap.String("code", req.ID),
		zap.String("admin", adminName(c)),
	)
	c.JSON(http.StatusOK, gin.H{"message": "Link deleted successfully"})
}

func adminName(c *gin.Context) string {
	if profile := middleware.CurrentProfile(c); profile != nil {
		return profile.Label()
	}
	if name := middleware.APIKeyName(c); name != "" {
		return "api-key:" + name
	}
	return ""
}
