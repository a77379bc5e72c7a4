package router

import (
	"voicechallan/internal/config"
	"voicechallan/internal/handler"
	"voicechallan/internal/metrics"
	"voicechallan/internal/middleware"
	"voicechallan/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
)

// Deps are the already-constructed collaborators the HTTP layer needs.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
type Deps struct {
	Challans    service.ChallanService
	Metrics     *metrics.Registry
	RateLimiter *middleware.IPRateLimiter
	Checks      map[string]handler.Check
}

// New returns a configured Gin engine.
func New(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}

	challansH := handler.NewChallansHandler(deps.Challans)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(deps.Checks))
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	api := r.Group("/api")
	if deps.RateLimiter != nil {
		api.Use(deps.RateLimiter.Middleware())
	}
	{
		api.POST("/generate-pdf", challansH.Generate)
		api.GET("/list-challans", challansH.List)
		api.GET("/list-challans/export", challansH.Export)
		api.GET("/download-pdf/:id", challansH.Download)

		api.GET("/challans/:id", challansH.Get)
		api.DELETE("/challans/:id", challansH.Delete)
		api.POST("/challans/:id/share", challansH.Share)

		api.GET("/shared/:token", challansH.Shared)
	}

	// Swagger UI is only served outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
