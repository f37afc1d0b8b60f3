package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/groompost/groompost-api/docs"
	"github.com/groompost/groompost-api/internal/api/handler"
	"github.com/groompost/groompost-api/internal/api/middleware"
	"github.com/groompost/groompost-api/internal/core/ports"
	"github.com/groompost/groompost-api/internal/infrastructure/http/handlers"
)

const defaultBodyLimit = "12M"

// Services are the use cases exposed over HTTP.
type Services struct {
	Auth      ports.AuthService
	Posts     ports.PostService
	Media     ports.MediaService
	Captions  ports.CaptionService
	Publisher ports.Publisher
}

// Options configures the transport around the services.
type Options struct {
	Sessions  *middleware.Sessions
	Readiness map[string]handlers.Check
	// UploadDir is served under /uploads when set.
	UploadDir string
	BodyLimit string
	// Registerer receives the HTTP metrics. Defaults to the global registry.
	Registerer prometheus.Registerer
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Log)

	bodyLimit := opts.BodyLimit
	if bodyLimit == "" {
		bodyLimit = defaultBodyLimit
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(opts.Log))
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "groompost",
		Registerer: opts.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(svc.Auth, opts.Sessions)
	postHandler := handler.NewPostHandler(svc.Posts)
	mediaHandler := handler.NewMediaHandler(svc.Media, svc.Captions, svc.Publisher)
	requireAuth := opts.Sessions.RequireAuth

	api := e.Group("/api")

	// --- Auth routes ---
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.POST("/guest-login", authHandler.GuestLogin)
	api.POST("/logout", authHandler.Logout, requireAuth)
	api.GET("/user", authHandler.CurrentUser, requireAuth)
	api.PATCH("/user/profile", authHandler.UpdateProfile, requireAuth)

	// --- Post routes ---
	api.GET("/posts", postHandler.List)
	api.GET("/posts/:id", postHandler.Get, middleware.PostID)
	api.GET("/user/posts", postHandler.ListMine, requireAuth)
	api.POST("/posts", postHandler.Create, requireAuth)
	api.PATCH("/posts/:id", postHandler.Update, requireAuth, middleware.PostID)
	api.DELETE("/posts/:id", postHandler.Delete, requireAuth, middleware.PostID)
	api.POST("/posts/:id/instagram", postHandler.Publish, requireAuth, middleware.PostID)

	// --- Media routes ---
	api.POST("/upload", mediaHandler.Upload, requireAuth)
	api.POST("/generate-caption", mediaHandler.GenerateCaption, requireAuth)
	api.GET("/instagram/status", mediaHandler.InstagramStatus)

	if opts.UploadDir != "" {
		e.Static("/uploads", opts.UploadDir)
	}

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(opts.Readiness)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
