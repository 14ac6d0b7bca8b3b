// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, error rendering, panic
// recovery, metrics, CORS, security headers, idempotency, and rate limiting.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-qa-backend/docs"
	"github.com/tbourn/go-qa-backend/internal/config"
	"github.com/tbourn/go-qa-backend/internal/http/handlers"
	"github.com/tbourn/go-qa-backend/internal/http/middleware"
	"github.com/tbourn/go-qa-backend/internal/repo"
	"github.com/tbourn/go-qa-backend/internal/services"
)

// maxBodyBytes caps every request body.
const maxBodyBytes = 1 << 20

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the question and answer API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Metrics: sees the final status, so it sits outside the renderer
//  5. Gzip (optional): must wrap the renderer, which writes after c.Next
//  6. RenderErrors: turns c.Errors into the single error envelope
//  7. Recovery: panics become Internal errors for the renderer
//  8. Body size limit and per-request timeout
//  9. CORS guard, CORS headers and security headers
//  10. Idempotency validator (before rate limiting to allow bypass on replay)
//  11. Rate limiter (per IP, bypass on replay, operational endpoints exempt)
func RegisterRoutes(r *gin.Engine, db *gorm.DB, mod services.Moderator, cfg config.Config) error {
	if err := handlers.RegisterValidators(); err != nil {
		return err
	}

	// Wrong methods fall through to NoRoute and render as "not found".
	r.HandleMethodNotAllowed = false

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"apikey", "X-API-Key"},
	}))
	r.Use(middleware.Metrics())
	if cfg.GzipEnabled {
		r.Use(gzip.Gzip(gzip.DefaultCompression))
	}
	r.Use(handlers.RenderErrors())
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	policy := middleware.DefaultCORSPolicy(cfg.CORS.AllowedOrigins)
	r.Use(middleware.CORSGuard(policy))
	r.Use(cors.New(corsConfig(policy)))
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))

	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200},
		func(ctx context.Context, scope, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, scope, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	if cfg.RateRPS > 0 {
		rl := middleware.NewRateLimiter(middleware.RateLimitOptions{
			RPS:    cfg.RateRPS,
			Burst:  cfg.RateBurst,
			Key:    middleware.KeyByClientIP(),
			Exempt: []string{"/health", "/metrics"},
		})
		r.Use(rl.Handler())
	}

	r.NoRoute(handlers.Unmatched)

	// Operational endpoints stay at the root regardless of the API base path.
	r.GET("/health", func(c *gin.Context) { handlers.OK(c, "ok") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/moderator
	store := repo.Store{}
	replays := &services.Replays{DB: db, Repo: store, TTL: cfg.IdempotencyTTL}
	qSvc := services.NewQuestionService(db, store, mod, replays)
	aSvc := services.NewAnswerService(db, store, store, replays)
	h := handlers.New(qSvc, aSvc)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Questions
		api.GET("/questions", h.ListQuestions)
		api.POST("/questions", h.AddQuestion)
		api.GET("/questions/:id", handlers.RequireID(), h.GetQuestion)
		api.PUT("/questions/:id", handlers.RequireID(), h.UpdateQuestion)
		api.DELETE("/questions/:id", handlers.RequireID(), h.DeleteQuestion)
		api.GET("/questions/:id/answers", handlers.RequireID(), h.ListAnswersForQuestion)

		// Answers. Update and delete live under the singular path.
		api.GET("/answers", h.ListAnswers)
		api.POST("/answers", h.AddAnswer)
		api.GET("/answers/:id", handlers.RequireID(), h.GetAnswer)
		api.PUT("/answer/:id", handlers.RequireID(), h.UpdateAnswer)
		api.DELETE("/answer/:id", handlers.RequireID(), h.DeleteAnswer)
	}
	return nil
}

// corsConfig mirrors policy into gin-contrib/cors. An empty origin list
// allows every origin.
func corsConfig(p middleware.CORSPolicy) cors.Config {
	cc := cors.Config{
		AllowMethods:     p.AllowedMethods,
		AllowHeaders:     p.AllowedHeaders,
		ExposeHeaders:    middleware.DefaultExposeHeaders,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(p.AllowedOrigins) == 0 {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = p.AllowedOrigins
	}
	return cc
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
