package handler

import (
	"github.com/SergeiKhy/golink/internal/identity"
	"github.com/SergeiKhy/golink/internal/metrics"
	"github.com/SergeiKhy/golink/internal/middleware"
	"github.com/SergeiKhy/golink/internal/models"
	"github.com/SergeiKhy/golink/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterDeps struct {
	Links       service.LinkService
	Resolver    *service.AccessResolver
	Provider    identity.Provider
	Cache       ProfileInvalidator
	Sessions    *middleware.Sessions
	Gate        *middleware.Gate
	APIKey      *middleware.APIKey
	RateLimiter *middleware.RateLimiter
	Health      HealthChecker
	Logger      *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	RegisterValidators()

	router := gin.New()
	router.SetHTMLTemplate(Templates())
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(deps.Logger),
		middleware.Metrics(),
	)

	linkHandler := NewLinkHandler(deps.Links, deps.Logger)
	visitHandler := NewVisitHandler(deps.Links, deps.Resolver, deps.Sessions, deps.Logger)
	accountHandler := NewAccountHandler(deps.Provider, deps.Sessions, deps.Cache, deps.Logger)
	pageHandler := NewPageHandler(deps.Links)
	healthHandler := NewHealthHandler(deps.Health)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Health)
		v1.POST("/links", deps.RateLimiter.Middleware(), visitHandler.Visit)

		authed := v1.Group("", deps.APIKey.Middleware())
		authed.GET("/profile", deps.Gate.Programmatic(false), accountHandler.Profile)

		admin := authed.Group("", deps.Gate.Programmatic(true))
		admin.GET("/links", linkHandler.ListLinks)
		admin.GET("/link/:id", linkHandler.GetLink)
		admin.POST("/link", linkHandler.SaveLink)
		admin.DELETE("/link", linkHandler.DeleteLink)
	}

	account := router.Group("/account")
	{
		account.GET("/login", accountHandler.Login)
		account.GET("/auth", accountHandler.Auth)
		account.GET("/logout", accountHandler.Logout)
	}

	router.GET("/", deps.Gate.Interactive(false), pageHandler.Home)
	router.GET("/admin", deps.Gate.Interactive(true), pageHandler.Admin)
	router.GET("/admin/:id", deps.Gate.Interactive(true), pageHandler.AdminLink)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	router.GET("/:code", visitHandler.Redirect)
	router.NoRoute(pageHandler.NotFound)

	return router
}

// RegisterValidators adds the custom binding rules used by request models.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("linktype", func(fl validator.FieldLevel) bool {
		return models.LinkType(fl.Field().String()).Valid()
	})
}
