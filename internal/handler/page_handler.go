package handler

import (
	"net/http"

	"github.com/SergeiKhy/golink/internal/middleware"
	"github.com/SergeiKhy/golink/internal/service"
	"github.com/gin-gonic/gin"
)

// PageHandler renders the signed in pages.
type PageHandler struct {
	links service.LinkService
}

func NewPageHandler(links service.LinkService) *PageHandler {
	return &PageHandler{links: links}
}

// Home greets the signed in user.
func (h *PageHandler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", gin.H{
		"Title":   "Home",
		"Profile": middleware.CurrentProfile(c),
		"Admin":   middleware.IsAdmin(c),
	})
}

// Admin lists every link.
func (h *PageHandler) Admin(c *gin.Context) {
	c.HTML(http.StatusOK, "admin.html", gin.H{
		"Title": "Links",
		"Links": h.links.List(c.Request.Context()),
	})
}

// AdminLink shows one link with its access log.
func (h *PageHandler) AdminLink(c *gin.Context) {
	link, err := h.links.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		notFound(c)
		return
	}

	c.HTML(http.StatusOK, "admin_link.html", gin.H{
		"Title": link.Code,
		"Link":  link,
	})
}

// NotFound renders the 404 page.
func (h *PageHandler) NotFound(c *gin.Context) {
	notFound(c)
}
