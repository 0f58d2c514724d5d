package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/dayrise-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/dayrise-engine/internal/core/services"
)

type RouterDependencies struct {
	AuthHandler    *AuthHandler
	RoutineHandler *RoutineHandler
	LogHandler     *LogHandler
	StatsHandler   *StatsHandler
	TokenService   *services.TokenService
	DB             *sqlx.DB
	Redis          *redis.Client
	StartTime      time.Time
	RateLimit      int
	RateWindow     time.Duration
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Timezone")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	if deps.RateLimit <= 0 {
		deps.RateLimit = 100
	}
	if deps.RateWindow <= 0 {
		deps.RateWindow = time.Minute
	}

	router.GET("/health", func(c *gin.Context) {
		dbStatus := "connected"
		if deps.DB == nil || deps.DB.PingContext(c.Request.Context()) != nil {
			dbStatus = "unreachable"
		}

		redisStatus := "connected"
		if deps.Redis == nil || deps.Redis.Ping(c.Request.Context()).Err() != nil {
			redisStatus = "unreachable"
		}

		statusCode := 200
		if dbStatus == "unreachable" || redisStatus == "unreachable" {
			statusCode = 503
		}

		c.JSON(statusCode, gin.H{
			"status":   "ok",
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	})

	apiV1 := router.Group("/api/v1")

	public := apiV1.Group("")
	protected := apiV1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.TokenService))

	// The limiter runs after auth on protected routes so it can key by user.
	if deps.Redis != nil {
		limiter := middleware.RateLimiterMiddleware(deps.Redis, deps.RateLimit, deps.RateWindow)
		public.Use(limiter)
		protected.Use(limiter)
	}

	deps.AuthHandler.RegisterRoutes(public)
	{
		deps.RoutineHandler.RegisterRoutes(protected)
		deps.LogHandler.RegisterRoutes(protected)
		deps.StatsHandler.RegisterRoutes(protected)
	}

	return router
}
