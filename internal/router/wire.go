package router

import (
	"time"

	"voicechallan/internal/config"
	"voicechallan/internal/handler"
	"voicechallan/internal/infra"
	"voicechallan/internal/metrics"
	"voicechallan/internal/middleware"
	"voicechallan/internal/receipt"
	"voicechallan/internal/repository"
	"voicechallan/internal/service"
	"voicechallan/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// App is the fully wired server: the HTTP engine plus the background pieces
// main starts and stops.
type App struct {
	Engine      *gin.Engine
	Challans    service.ChallanService
	Pool        *worker.Pool
	DLQ         *worker.DeadLetters
	SMTPBreaker *infra.CircuitBreaker
	RateLimiter *middleware.IPRateLimiter
	Metrics     *metrics.Registry
}

// Wire builds every dependency from cfg and the open connections.
func Wire(cfg *config.Config, db *gorm.DB, rdb *redis.Client, renderer *receipt.Renderer) *App {
	reg := metrics.NewRegistry()

	// ── Infrastructure ───────────────────────────────────────────────────────
	mailer := infra.NewMailer(cfg)
	cbCfg := infra.DefaultCBConfig("smtp")
	cbCfg.OnStateChange = func(name string, _, to infra.CBState) {
		reg.BreakerState.WithLabelValues(name).Set(float64(to))
	}
	smtpCB := infra.NewCircuitBreaker(cbCfg)
	cache := infra.NewPDFCache(rdb, time.Duration(cfg.PDFCacheTTLMinutes)*time.Minute)
	signer := infra.NewShareSigner(cfg.ShareSecret, time.Duration(cfg.ShareTTLHours)*time.Hour)

	// ── Repositories / services ──────────────────────────────────────────────
	challanRepo := repository.NewChallanRepository(db)
	dispatcher := worker.NewDispatcher(rdb)
	challanSvc := service.NewChallanService(challanRepo, renderer, cache, dispatcher, signer, reg,
		service.ChallanServiceConfig{
			MaxItems:      cfg.MaxItemsPerChallan,
			PublicBaseURL: cfg.PublicBaseURL,
		})

	// ── Workers ──────────────────────────────────────────────────────────────
	dlq := worker.NewDeadLetters(rdb)
	pool := worker.NewPool(rdb, dlq)
	pool.Register(worker.QueueEmail, worker.JobTypeEmail, worker.NewEmailWorker(challanSvc, mailer, smtpCB, reg))

	limiter := middleware.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	engine := New(cfg, Deps{
		Challans:    challanSvc,
		Metrics:     reg,
		RateLimiter: limiter,
		Checks: map[string]handler.Check{
			"db":    handler.DBCheck(db),
			"redis": handler.RedisCheck(rdb),
		},
	})

	return &App{
		Engine:      engine,
		Challans:    challanSvc,
		Pool:        pool,
		DLQ:         dlq,
		SMTPBreaker: smtpCB,
		RateLimiter: limiter,
		Metrics:     reg,
	}
}
