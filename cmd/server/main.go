package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aeroclubhq/membership-backend/internal/config"
	"github.com/aeroclubhq/membership-backend/internal/db"
	httpHandlers "github.com/aeroclubhq/membership-backend/internal/http/handlers"
	httpRouter "github.com/aeroclubhq/membership-backend/internal/http/router"
	"github.com/aeroclubhq/membership-backend/internal/logger"
	"github.com/aeroclubhq/membership-backend/internal/metrics"
	"github.com/aeroclubhq/membership-backend/internal/repository"
	"github.com/aeroclubhq/membership-backend/internal/service"
	"github.com/aeroclubhq/membership-backend/internal/storage"
	"github.com/aeroclubhq/membership-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Инициализируем вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	fileStorage, err := storage.NewFileStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	skillRepo := repository.NewSkillRepository(dbConn)
	ledgerRepo := repository.NewLedgerRepository(dbConn)
	proposalRepo := repository.NewProposalRepository(dbConn)
	eventRepo := repository.NewEventRepository(dbConn)
	resourceRepo := repository.NewResourceRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	mediaRepo := repository.NewMediaRepository(dbConn)

	// Сервисы.
	authService := service.NewAuthService(userRepo, tokenManager)
	notificationService := service.NewNotificationService(notificationRepo)
	availabilityService := service.NewAvailabilityService(skillRepo, ledgerRepo)
	eventService := service.NewEventService(eventRepo)
	resourceService := service.NewResourceService(resourceRepo)
	seedService := service.NewSeedService(userRepo, skillRepo)

	// Вебсокеты.
	hub := ws.NewHub(ctx)
	hub.SetNotificationSaver(ws.NewNotificationServiceAdapter(notificationService))
	go hub.Run()

	// Движок заявок на уровни навыков.
	dispatcher := service.NewNotificationDispatcher(userRepo, hub)
	proposalService := service.NewProposalService(
		proposalRepo,
		skillRepo,
		ledgerRepo,
		userRepo,
		service.NewRoleAuthorizer(),
		dispatcher,
	)

	// Метрики.
	m := metrics.New()

	// HTTP хэндлеры.
	h := httpRouter.Handlers{
		Auth:         httpHandlers.NewAuthHandler(authService),
		Profile:      httpHandlers.NewProfileHandler(userRepo, ledgerRepo),
		Skill:        httpHandlers.NewSkillHandler(skillRepo, availabilityService),
		Proposal:     httpHandlers.NewProposalHandler(proposalService),
		Event:        httpHandlers.NewEventHandler(eventService),
		Resource:     httpHandlers.NewResourceHandler(resourceService),
		Notification: httpHandlers.NewNotificationHandler(notificationService),
		Media:        httpHandlers.NewMediaHandler(mediaRepo, fileStorage),
		WS:           httpHandlers.NewWSHandler(hub, tokenManager, m),
		Health:       httpHandlers.NewHealthHandler(dbConn),
		Seed:         httpHandlers.NewSeedHandler(seedService),
	}

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, h, tokenManager, m)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	logger.Log.Infof("Сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: ошибка http сервера: %v", err)
	}

	logger.Log.Info("Сервер остановлен")
}

// safeClose закрывает соединение с базой, логируя ошибку.
func safeClose(dbConn *sqlx.DB) {
	if err := dbConn.Close(); err != nil {
		log.Printf("main: ошибка закрытия соединения с базой: %v", err)
	}
}
