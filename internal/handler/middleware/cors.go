package middleware

import (
	"log/slog"

	"storefront-core/internal/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewCORSMiddleware(cfg config.CORSConfig, logger *slog.Logger) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     append(append([]string(nil), cfg.AllowHeaders...), requestIDHeader),
		ExposeHeaders:    append(append([]string(nil), cfg.ExposeHeaders...), requestIDHeader, "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"),
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	logger.Info("CORS middleware initialized", "allow_origins", cfg.AllowOrigins)
	return cors.New(corsCfg)
}
