package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/carelink/care-service/internal/api/http"
	"github.com/carelink/care-service/internal/api/http/handlers"
	"github.com/carelink/care-service/internal/auth"
	"github.com/carelink/care-service/internal/config"
	"github.com/carelink/care-service/internal/events"
	"github.com/carelink/care-service/internal/observability"
	"github.com/carelink/care-service/internal/persistence"
	"github.com/carelink/care-service/internal/realtime"
	"github.com/carelink/care-service/internal/repository"
	"github.com/carelink/care-service/internal/service"
	"github.com/carelink/care-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	accountRepo := repository.NewAccountRepository(pool)
	auditRepo := repository.NewAuditLogRepository(pool)
	reportRepo := repository.NewReportRepository(pool)
	historyRepo := repository.NewReportHistoryRepository(pool)
	reviewRepo := repository.NewReviewRepository(pool)
	requestRepo := repository.NewHelpRequestRepository(pool)
	linkRepo := repository.NewCareLinkRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	hub := realtime.NewHub(redis.Client, logger)
	metrics := observability.NewMetrics()

	moderationService := service.NewModerationService(service.ModerationDependencies{
		AccountRepo:      accountRepo,
		AuditRepo:        auditRepo,
		NotificationRepo: notificationRepo,
		Dispatcher:       dispatcher,
		Logger:           logger,
	})
	accountService := service.NewAccountService(*cfg, accountRepo, moderationService)
	reportService := service.NewReportService(service.ReportDependencies{
		ReportRepo:  reportRepo,
		HistoryRepo: historyRepo,
		AccountRepo: accountRepo,
		Moderation:  moderationService,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	reviewService := service.NewReviewService(service.ReviewDependencies{
		ReviewRepo:  reviewRepo,
		RequestRepo: requestRepo,
		AccountRepo: accountRepo,
		Moderation:  moderationService,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	requestService := service.NewHelpRequestService(requestRepo, dispatcher)
	caregiverService := service.NewCaregiverService(service.CaregiverDependencies{
		LinkRepo:    linkRepo,
		AccountRepo: accountRepo,
		Redis:       redis.Client,
		PinTTL:      cfg.Linking.PinTTL(),
		Dispatcher:  dispatcher,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		NotificationRepo: notificationRepo,
		AccountRepo:      accountRepo,
		LinkRepo:         linkRepo,
		Dispatcher:       dispatcher,
		Pusher:           hub,
		Logger:           logger,
	})
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(accountService.TokenManager(), accountRepo, moderationService)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis.Client, metrics),
		Accounts:       handlers.NewAccountsHandler(accountService),
		Requests:       handlers.NewRequestsHandler(requestService),
		Reviews:        handlers.NewReviewsHandler(reviewService),
		Reports:        handlers.NewReportsHandler(reportService),
		Care:           handlers.NewCareHandler(caregiverService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		Admin:          handlers.NewAdminHandler(accountService, moderationService, reportService, reviewService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
