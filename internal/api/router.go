package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/yamdb/catalogue-api/docs"
	"github.com/yamdb/catalogue-api/internal/api/handler"
	"github.com/yamdb/catalogue-api/internal/api/middleware"
	"github.com/yamdb/catalogue-api/internal/core/domain"
	"github.com/yamdb/catalogue-api/internal/core/ports"
	"github.com/yamdb/catalogue-api/internal/infrastructure/http/handlers"
)

// Services is everything the HTTP surface calls into.
type Services struct {
	Confirmations ports.ConfirmationService
	Tokens        ports.TokenService
	Users         ports.UserService
	Categories    ports.TaxonomyService
	Genres        ports.TaxonomyService
	Titles        ports.TitleService
	Reviews       ports.ReviewService
	Comments      ports.CommentService
}

type Options struct {
	// AuthRPS and AuthBurst throttle signup and token exchange per client IP.
	AuthRPS   float64
	AuthBurst int

	// Readiness lists the dependencies /health/ready pings.
	Readiness map[string]handlers.Pinger

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts Options, log zerolog.Logger) *echo.Echo {
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Pre(echomiddleware.RemoveTrailingSlash())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "yamdb",
		Registerer: opts.Registerer,
	}))
	e.Use(middleware.Auth(svc.Tokens))

	// --- Ops endpoints (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(opts.Readiness)
	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: opts.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/api/v1")

	// --- Auth ---
	authHandler := handler.NewAuthHandler(svc.Confirmations, svc.Tokens)
	auth := v1.Group("/auth", middleware.RateLimit(opts.AuthRPS, opts.AuthBurst))
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/token", authHandler.Token)

	// --- Users ---
	userHandler := handler.NewUserHandler(svc.Users)
	v1.GET("/users/me", userHandler.Me)
	v1.PATCH("/users/me", userHandler.UpdateMe)
	admin := v1.Group("/users", middleware.Policy(domain.ResourceUsers))
	admin.GET("", userHandler.List)
	admin.POST("", userHandler.Create)
	admin.GET("/:username", userHandler.Get)
	admin.PATCH("/:username", userHandler.Update)
	admin.DELETE("/:username", userHandler.Delete)

	// --- Catalogue ---
	catalogue := middleware.Policy(domain.ResourceTaxonomy)
	for prefix, taxa := range map[string]ports.TaxonomyService{
		"/categories": svc.Categories,
		"/genres":     svc.Genres,
	} {
		h := handler.NewTaxonomyHandler(taxa)
		g := v1.Group(prefix, catalogue)
		g.GET("", h.List)
		g.POST("", h.Create)
		g.DELETE("/:slug", h.Delete)
	}

	titleHandler := handler.NewTitleHandler(svc.Titles)
	titles := v1.Group("/titles")
	titles.GET("", titleHandler.List)
	titles.POST("", titleHandler.Create, catalogue)
	titles.GET("/:title_id", titleHandler.Get)
	titles.PATCH("/:title_id", titleHandler.Update, catalogue)
	titles.DELETE("/:title_id", titleHandler.Delete, catalogue)

	// --- Reviews & comments (ownership checked in the services) ---
	reviewHandler := handler.NewReviewHandler(svc.Reviews)
	reviews := titles.Group("/:title_id/reviews")
	reviews.GET("", reviewHandler.List)
	reviews.POST("", reviewHandler.Create)
	reviews.GET("/:review_id", reviewHandler.Get)
	reviews.PATCH("/:review_id", reviewHandler.Update)
	reviews.DELETE("/:review_id", reviewHandler.Delete)

	commentHandler := handler.NewCommentHandler(svc.Comments)
	comments := reviews.Group("/:review_id/comments")
	comments.GET("", commentHandler.List)
	comments.POST("", commentHandler.Create)
	comments.GET("/:comment_id", commentHandler.Get)
	comments.PATCH("/:comment_id", commentHandler.Update)
	comments.DELETE("/:comment_id", commentHandler.Delete)

	return e
}
