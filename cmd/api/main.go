package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/ameropro/stars-api/internal/config"
	"github.com/ameropro/stars-api/internal/domain/account"
	"github.com/ameropro/stars-api/internal/domain/admin"
	"github.com/ameropro/stars-api/internal/domain/assignment"
	"github.com/ameropro/stars-api/internal/domain/event"
	"github.com/ameropro/stars-api/internal/domain/ledger"
	"github.com/ameropro/stars-api/internal/domain/notification"
	"github.com/ameropro/stars-api/internal/domain/promo"
	"github.com/ameropro/stars-api/internal/domain/sponsor"
	"github.com/ameropro/stars-api/internal/domain/task"
	"github.com/ameropro/stars-api/internal/domain/watch"
	"github.com/ameropro/stars-api/internal/domain/withdraw"
	"github.com/ameropro/stars-api/internal/middleware"
	"github.com/ameropro/stars-api/internal/pkg/database"
	"github.com/ameropro/stars-api/internal/pkg/logger"
	"github.com/ameropro/stars-api/internal/pkg/response"
	"github.com/ameropro/stars-api/internal/pkg/storage"
	"github.com/ameropro/stars-api/internal/pkg/telegram"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Stars API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate schema")
	}

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	// Telegram Bot API client, shared by membership checks everywhere
	verifier := telegram.NewClient(telegram.Config{
		BotToken: cfg.TelegramBotToken,
		BaseURL:  cfg.TelegramAPIBaseURL,
		Timeout:  time.Duration(cfg.TelegramTimeoutSeconds) * time.Second,
	})

	// Proof blob storage; nil when R2 is not configured
	proofs := storage.NewProofStore(storage.ProofConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		AccessKeySecret: cfg.R2AccessKeySecret,
		BucketName:      cfg.R2BucketName,
		PublicURL:       cfg.R2PublicURL,
	})

	// ---------- Repositories ----------
	accountRepo := account.NewRepository(db)
	ledgerRepo := ledger.NewRepository(db, cfg.ReferralPercent, cfg.TierThreshold)
	taskRepo := task.NewRepository(db)
	assignmentRepo := assignment.NewRepository(db)
	watchRepo := watch.NewRepository(db, ledgerRepo)
	promoRepo := promo.NewRepository(db)
	eventRepo := event.NewRepository(db)
	withdrawRepo := withdraw.NewRepository(db)
	sponsorRepo := sponsor.NewRepository(db)
	adminRepo := admin.NewRepository(db)
	notificationRepo := notification.NewRepository(db)

	// ---------- Realtime hub ----------
	notifyHub := notification.NewHub(redisClient)
	go notifyHub.Run()

	// ---------- Services ----------
	ledgerSvc := ledger.NewService(ledgerRepo)
	accountSvc := account.NewService(accountRepo)
	adminSvc := admin.NewService(adminRepo)

	notificationSvc := notification.NewService(notificationRepo)
	notificationSvc.SetPublisher(notification.NewWSPublisher(notifyHub))

	taskSvc := task.NewService(taskRepo, task.Floors{
		task.TypeSubscribe: cfg.MinRewardSubscribe,
		task.TypeView:      cfg.MinRewardView,
		task.TypeReaction:  cfg.MinRewardReaction,
	})

	scheduler := watch.NewScheduler(watchRepo, verifier)
	scheduler.SetNotifier(notificationSvc)
	watchSvc := watch.NewService(watchRepo, scheduler)

	assignmentSvc := assignment.NewService(assignmentRepo, taskRepo, ledgerSvc, watchSvc, verifier, adminSvc, cfg.WatchDelay)
	assignmentSvc.SetNotifier(notificationSvc)
	if proofs != nil {
		assignmentSvc.SetProofChecker(proofs)
	}

	promoSvc := promo.NewService(promoRepo, ledgerSvc)

	eventSvc := event.NewService(eventRepo, ledgerSvc, accountRepo, event.Rewards{
		Task:             cfg.OfferwallTaskReward,
		Subscription:     cfg.OfferwallSubReward,
		SubReferralBonus: cfg.SubReferralBonus,
		Cooldown:         cfg.SubCooldown,
	})

	withdrawSvc := withdraw.NewService(withdrawRepo, ledgerSvc, cfg.WithdrawDailyLimit)
	withdrawSvc.SetNotifier(notificationSvc)

	sponsorSvc := sponsor.NewService(sponsorRepo, verifier)

	if err := adminSvc.Seed(context.Background(), cfg.AdminIDs); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed admins")
	}

	// ---------- Handlers ----------
	accountHandler := account.NewHandler(accountSvc)
	ledgerHandler := ledger.NewHandler(ledgerSvc)
	taskHandler := task.NewHandler(taskSvc)
	assignmentHandler := assignment.NewHandler(assignmentSvc)
	proofUploadHandler := assignment.NewProofUploadHandler(proofs)
	promoHandler := promo.NewHandler(promoSvc)
	eventHandler := event.NewHandler(eventSvc, cfg.OfferwallSecret)
	withdrawHandler := withdraw.NewHandler(withdrawSvc)
	sponsorHandler := sponsor.NewHandler(sponsorSvc)
	adminHandler := admin.NewHandler(adminSvc)
	notificationHandler := notification.NewHandler(notificationSvc, notifyHub, cfg.AllowedOrigins)

	authMiddleware := middleware.Auth(cfg.ServiceToken)
	requireUser := middleware.RequireUser()
	requireAdmin := middleware.RequireAdmin(adminSvc)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	// Transport stream. WS clients cannot set headers, so a query token is
	// bridged into the usual Authorization check.
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		authMiddleware(http.HandlerFunc(notificationHandler.WebSocket)).ServeHTTP(w, r)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			response.OK(w, map[string]string{"message": "pong"})
		})

		r.Mount("/users", accountHandler.Routes(requireUser, requireAdmin))
		r.Mount("/ledger", ledgerHandler.Routes(requireUser, requireAdmin))
		r.Mount("/tasks", taskHandler.Routes(requireUser))
		r.Mount("/assignments", assignmentHandler.Routes(requireUser))
		r.Mount("/uploads", proofUploadHandler.Routes(requireUser))
		r.Mount("/promocodes", promoHandler.Routes(requireUser, requireAdmin))
		r.Mount("/withdrawals", withdrawHandler.Routes(requireUser, requireAdmin))
		r.Mount("/sponsors", sponsorHandler.Routes(requireUser, requireAdmin))
		r.Mount("/admins", adminHandler.Routes(requireAdmin))
		r.Mount("/notifications", notificationHandler.Routes(requireUser))

		mountNestedResources(r, requireAdmin,
			assignmentHandler.TaskAssignmentRoutes(requireUser),
			ledgerHandler.UserHistory)

		r.With(requireAdmin).Get("/stats", accountHandler.Stats)
	})

	r.Mount("/webhooks", eventHandler.Routes())

	// Re-arm compliance watches persisted before the restart
	if err := scheduler.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start watch scheduler")
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	scheduler.Stop()
	notifyHub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

// mountNestedResources registers routes living inside another mount's path
// space. chi picks the more specific pattern first and falls back to the
// mount wildcard, so /tasks/{id} and /users/{id} keep resolving.
func mountNestedResources(r chi.Router, requireAdmin func(http.Handler) http.Handler, takeRoutes chi.Router, userLedger http.HandlerFunc) {
	r.Mount("/tasks/{taskID}/assignments", takeRoutes)
	r.With(requireAdmin).Get("/users/{userID}/ledger", userLedger)
}
