package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/dayrise-engine/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/dayrise-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/dayrise-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/dayrise-engine/internal/config"
	"github.com/comitanigiacomo/dayrise-engine/internal/core/domain"
	"github.com/comitanigiacomo/dayrise-engine/internal/core/services"
	"github.com/comitanigiacomo/dayrise-engine/internal/core/workers"
)

type app struct {
	router *gin.Engine
	worker *workers.StatsWorker
}

// newApp wires storage, services and handlers. rdb may be nil, in which case
// routine lists and profile stats are served straight from postgres and the
// rate limiter is off.
func newApp(cfg *config.Config, db *sqlx.DB, rdb *redis.Client, startTime time.Time) *app {
	var routineRepo domain.RoutineRepository = repository.NewPostgresRoutineRepository(db)
	logRepo := repository.NewPostgresRoutineLogRepository(db)
	userRepo := repository.NewPostgresUserRepository(db.DB)

	var statsCache services.StatsCache
	var profileCache workers.ProfileCache
	if rdb != nil {
		routineRepo = repository.NewCachedRoutineRepository(routineRepo, rdb)
		redisCache := cache.NewRedisStatsCache(rdb, cfg.Stats.CacheTTL.Duration)
		statsCache = redisCache
		profileCache = redisCache
	}

	statsService := services.NewStatsService(routineRepo, logRepo, statsCache, services.StatsConfig{
		LookbackDays: cfg.Stats.LookbackDays,
		MaxWalk:      cfg.Stats.MaxWalk,
	})
	worker := workers.NewStatsWorker(statsService, profileCache)

	routineService := services.NewRoutineService(routineRepo, worker)
	logService := services.NewLogService(logRepo, routineRepo, worker)
	authService := services.NewAuthService(userRepo)
	tokenService := services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL.Duration, userRepo)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:    adapterHTTP.NewAuthHandler(authService, tokenService),
		RoutineHandler: adapterHTTP.NewRoutineHandler(routineService),
		LogHandler:     adapterHTTP.NewLogHandler(logService, cfg.Server.DefaultTimezone),
		StatsHandler:   adapterHTTP.NewStatsHandler(statsService, cfg.Server.DefaultTimezone),
		TokenService:   tokenService,
		DB:             db,
		Redis:          rdb,
		StartTime:      startTime,
		RateLimit:      cfg.Server.RateLimit,
		RateWindow:     cfg.Server.RateWindow.Duration,
	})

	return &app{router: router, worker: worker}
}

func main() {
	startTime := time.Now()

	loaded, err := config.Load()
	if err != nil {
		log.Fatalf("Critical: %v", err)
	}
	for _, w := range loaded.Warnings {
		log.Printf("[CONFIG] %s", w)
	}
	cfg := &loaded.Config

	log.Println("Connecting to database...")

	db, err := sqlx.Connect("pgx", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Critical: Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := repository.Migrate(migrateCtx, db); err != nil {
		cancelMigrate()
		log.Fatalf("Critical: Failed to apply schema: %v", err)
	}
	cancelMigrate()

	log.Println("Database connected successfully.")

	rdb, err := cache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("[CACHE] Redis unavailable, running without cache: %v", err)
		rdb = nil
	} else {
		defer rdb.Close()
	}

	application := newApp(cfg, db, rdb, startTime)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	application.worker.Start(workerCtx)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      application.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Dayrise Engine running on http://localhost:%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}
	stopWorker()

	log.Println("Server stopped gracefully.")
}
