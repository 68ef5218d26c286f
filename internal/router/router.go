package router

import (
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dementia-tracker/internal/config"
	"dementia-tracker/internal/handlers"
	"dementia-tracker/internal/repository"
	"dementia-tracker/internal/response"
	"dementia-tracker/internal/session"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func rateLimitErrorHandler(c *gin.Context, info ratelimit.Info) {
	response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
}

// authLimiter throttles the credential endpoints. With Redis configured the
// counters are shared across instances; otherwise they live in memory.
func authLimiter(cfg *config.Config) gin.HandlerFunc {
	var store ratelimit.Store
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store = ratelimit.RedisStore(&ratelimit.RedisOptions{
			RedisClient: client,
			Rate:        time.Minute,
			Limit:       5,
		})
	} else {
		store = ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
			Rate:  time.Minute,
			Limit: 5,
		})
	}
	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: rateLimitErrorHandler,
		KeyFunc:      keyFunc,
	})
}

// Setup wires middleware, handlers and routes into the gin engine.
func Setup(log *zap.Logger, db *gorm.DB, repo *repository.Repository, engine *session.Engine) *gin.Engine {
	cfg := config.Conf

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(response.RequestIDMiddleware())
	router.Use(RequestLogger(log))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Server.FrontendOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
	})

	tokenTTL := time.Duration(cfg.Server.TokenTTLHours) * time.Hour
	authHandler := handlers.NewAuthHandler(log, repo, cfg.Server.JWTSecret, tokenTTL)
	sessionHandler := handlers.NewSessionHandler(log, engine, repo)
	resultsHandler := handlers.NewResultsHandler(log, repo)
	evaluationHandler := handlers.NewEvaluationHandler(log, repo)
	reportsHandler := handlers.NewReportsHandler(log, repo)
	schedulesHandler := handlers.NewSchedulesHandler(log, repo)
	healthHandler := handlers.NewHealthHandler(db)

	limiter := authLimiter(cfg)

	api := router.Group("/api")

	api.GET("/health", healthHandler.Check)
	api.POST("/auth/register", limiter, authHandler.Register)
	api.POST("/auth/login", limiter, authHandler.Login)

	authorized := api.Group("/")
	authorized.Use(AuthRequired(log, cfg.Server.JWTSecret))
	{
		authorized.GET("/auth/me", authHandler.Me)
		authorized.PUT("/auth/profile", authHandler.UpdateProfile)

		sessionRoutes := authorized.Group("/session")
		{
			sessionRoutes.POST("", sessionHandler.Create)
			sessionRoutes.GET("/:id", sessionHandler.Current)
			sessionRoutes.POST("/:id/start", sessionHandler.Start)
			sessionRoutes.POST("/:id/respond", sessionHandler.Respond)
			sessionRoutes.POST("/:id/recall", sessionHandler.SubmitRecall)
			sessionRoutes.GET("/:id/results", sessionHandler.Results)
			sessionRoutes.POST("/:id/save", sessionHandler.Save)
			sessionRoutes.POST("/:id/retake", sessionHandler.Retake)
			sessionRoutes.POST("/:id/quit", sessionHandler.Quit)
			sessionRoutes.DELETE("/:id", sessionHandler.Discard)
		}

		authorized.GET("/results", resultsHandler.Recent)
		authorized.GET("/results/:id", resultsHandler.Get)
		authorized.GET("/history", resultsHandler.History)
		authorized.GET("/dashboard", resultsHandler.Dashboard)
		authorized.GET("/charts/timeline", resultsHandler.Timeline)

		evaluationRoutes := authorized.Group("/evaluation")
		{
			evaluationRoutes.POST("/evaluate", evaluationHandler.Evaluate)
			evaluationRoutes.GET("/latest", evaluationHandler.Latest)
			evaluationRoutes.GET("/history", evaluationHandler.History)
		}

		reportRoutes := authorized.Group("/reports")
		{
			reportRoutes.GET("/generate", reportsHandler.Generate)
			reportRoutes.GET("/data", reportsHandler.Summary)
		}

		scheduleRoutes := authorized.Group("/schedules")
		{
			scheduleRoutes.POST("", schedulesHandler.Create)
			scheduleRoutes.GET("", schedulesHandler.List)
			scheduleRoutes.PATCH("/:id/status", schedulesHandler.UpdateStatus)
			scheduleRoutes.DELETE("/:id", schedulesHandler.Delete)
		}
	}

	return router
}
