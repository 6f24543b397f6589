package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/defect-track/internal/api/http"
	"github.com/spec-kit/defect-track/internal/api/http/handlers"
	"github.com/spec-kit/defect-track/internal/auth"
	"github.com/spec-kit/defect-track/internal/config"
	"github.com/spec-kit/defect-track/internal/events"
	"github.com/spec-kit/defect-track/internal/observability"
	"github.com/spec-kit/defect-track/internal/persistence"
	"github.com/spec-kit/defect-track/internal/repository"
	"github.com/spec-kit/defect-track/internal/service"
	"github.com/spec-kit/defect-track/internal/storage"
	"github.com/spec-kit/defect-track/internal/worker"
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

	store, err := storage.NewLocalStorage(cfg.Storage.UploadsDir)
	if err != nil {
		logger.Fatal("failed to init uploads dir", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	defectRepo := repository.NewDefectRepository(pool)
	historyRepo := repository.NewStatusHistoryRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	photoRepo := repository.NewPhotoRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	authService := service.NewAuthService(*cfg, userRepo)
	defectService := service.NewDefectService(service.DefectDependencies{
		DefectRepo:  defectRepo,
		UserRepo:    userRepo,
		HistoryRepo: historyRepo,
		Dispatcher:  dispatcher,
		Cache:       redis,
		CacheTTL:    cfg.Cache.DefectTTL(),
		Logger:      logger,
	})
	commentService := service.NewCommentService(commentRepo, defectService)
	photoService := service.NewPhotoService(photoRepo, defectService, store, cfg.Storage.MaxPhotoBytes, logger)

	notifications := service.NewNotificationService(dispatcher, logger, metrics)
	notifications.RegisterHandlers()

	broker := events.NewBrokerAdapter(cfg.Broker, logger)
	if cfg.Broker.Enabled {
		if err := broker.Connect(ctx); err != nil {
			logger.Warn("broker connect failed, events stay queued", zap.Error(err))
		}
		worker.StartBrokerForwarder(ctx, dispatcher, broker, cfg.Broker.DrainInterval(), logger)
	}
	defer broker.Close()

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager())

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Defects:        handlers.NewDefectsHandler(defectService),
		Comments:       handlers.NewCommentsHandler(commentService),
		Photos:         handlers.NewPhotosHandler(photoService),
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
