package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"storefront-core/internal/handler/api"
	"storefront-core/internal/handler/middleware"
	"storefront-core/internal/pkg/config"
)

const (
	rotationRequestScope = "password-rotation"
	rotationVerifyScope  = "password-rotation-verify"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Order      *api.OrderHandler
	Review     *api.ReviewHandler
	Credential *api.CredentialHandler
}

type RouterDeps struct {
	Config      config.Config
	Logger      *middleware.Logger
	Auth        *middleware.AuthMiddleware
	RateLimiter middleware.RateLimiter
	// MediaDir is served read-only under Storage.BaseURL when set.
	MediaDir string
}

func NewRouter(engine *gin.Engine, deps RouterDeps, h Handlers) {
	setupMiddleware(engine, deps)
	setupRoutes(engine, deps, h)
}

func setupMiddleware(engine *gin.Engine, deps RouterDeps) {
	logger := deps.Logger.GetSlogLogger()

	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery(logger))
	engine.Use(middleware.NewCORSMiddleware(deps.Config.CORS, logger))
	engine.Use(deps.Logger.LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, deps RouterDeps, h Handlers) {
	logger := deps.Logger.GetSlogLogger()

	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	if deps.MediaDir != "" && deps.Config.Storage.BaseURL != "" {
		engine.Static(deps.Config.Storage.BaseURL, deps.MediaDir)
	}

	apiGroup := engine.Group("/api")
	apiGroup.Use(deps.Auth.RequireAuth())
	{
		addRoutes(apiGroup.Group("/orders"), []route{
			{Method: http.MethodPost, Path: "", Handler: h.Order.PlaceOrder},
			{Method: http.MethodGet, Path: "", Handler: h.Order.List},
			{Method: http.MethodGet, Path: "/:id", Handler: h.Order.Get},
			{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Order.Cancel},
			{Method: http.MethodPost, Path: "/:id/confirm-receipt", Handler: h.Order.ConfirmReceipt},
		})

		admin := apiGroup.Group("/admin")
		admin.Use(deps.Auth.RequireAdmin())
		addRoutes(admin, []route{
			{Method: http.MethodPatch, Path: "/orders/:id/status", Handler: h.Order.SetStatus},
		})

		addRoutes(apiGroup.Group("/products"), []route{
			{Method: http.MethodPut, Path: "/:id/review", Handler: h.Review.Submit},
		})

		addRoutes(apiGroup.Group("/me/password"), []route{
			{
				Method:  http.MethodPost,
				Path:    "/rotation",
				Handler: h.Credential.RequestRotation,
				Mw:      []gin.HandlerFunc{middleware.RateLimit(deps.RateLimiter, rotationRequestScope, logger)},
			},
			{
				Method:  http.MethodPost,
				Path:    "/rotation/verify",
				Handler: h.Credential.VerifyRotation,
				Mw:      []gin.HandlerFunc{middleware.RateLimit(deps.RateLimiter, rotationVerifyScope, logger)},
			},
		})
	}

	// Product reviews are public.
	addRoutes(engine.Group("/api/products"), []route{
		{Method: http.MethodGet, Path: "/:id/reviews", Handler: h.Review.ListByProduct},
	})
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
