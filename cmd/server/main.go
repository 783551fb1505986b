package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maarifahub/maarifa-backend/internal/config"
	"github.com/maarifahub/maarifa-backend/internal/database"
	"github.com/maarifahub/maarifa-backend/internal/handler"
	"github.com/maarifahub/maarifa-backend/internal/logger"
	"github.com/maarifahub/maarifa-backend/internal/repository"
	"github.com/maarifahub/maarifa-backend/internal/router"
	"github.com/maarifahub/maarifa-backend/internal/service"
	"github.com/maarifahub/maarifa-backend/internal/telegram"
	"github.com/maarifahub/maarifa-backend/internal/validator"
	"github.com/maarifahub/maarifa-backend/internal/video"
	"github.com/maarifahub/maarifa-backend/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Maarifa Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)
	accessRepo := repository.NewAccessRepository(pool)
	subscriptionRepo := repository.NewSubscriptionRepository(pool)
	settingRepo := repository.NewSettingRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)

	// ─── External Clients ──────────────────────────────────────────────
	tgClient := telegram.NewClient(cfg.TelegramBotToken)
	videoClient := video.NewClient(cfg.VideoAPIBase, cfg.VideoAPIKey)
	notifyQueue := worker.NewNotifyQueue(rdb)

	// ─── Initialize Services ──────────────────────────────────────────
	sessions := service.NewRedisSessionStore(rdb)
	authService := service.NewAuthService(cfg, sessions)
	userService := service.NewUserService(userRepo, authService, tgClient, log)
	catalogService := service.NewCatalogService(courseRepo, accessRepo, log)
	examService := service.NewExamService(examRepo, questionRepo, courseRepo, log)
	attemptService := service.NewAttemptService(attemptRepo, examRepo, questionRepo, accessRepo, cfg.SubmitGrace, log)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, courseRepo, notifyQueue, log)
	mediaService := service.NewMediaService(cfg)
	videoService := service.NewVideoService(videoClient, log)
	settingService := service.NewSettingService(settingRepo, log)
	dashboardService := service.NewDashboardService(dashboardRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(authService, userService, cfg),
		Attempt:      handler.NewAttemptHandler(attemptService, log),
		Catalog:      handler.NewCatalogHandler(catalogService),
		Exam:         handler.NewExamHandler(examService),
		Subscription: handler.NewSubscriptionHandler(subscriptionService, mediaService),
		Media:        handler.NewMediaHandler(mediaService, userService),
		Video:        handler.NewVideoHandler(videoService, router.VideoProxyPath),
		Staff:        handler.NewStaffHandler(userService),
		Setting:      handler.NewSettingHandler(settingService),
		Dashboard:    handler.NewDashboardHandler(dashboardService),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	notifyWorker := worker.NewNotifyWorker(rdb, tgClient, cfg.TelegramAppURL, log)
	go notifyWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, userRepo, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
