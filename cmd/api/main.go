package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/infocustec/ubs-helpdesk/internal/api/http"
	"github.com/infocustec/ubs-helpdesk/internal/api/http/handlers"
	"github.com/infocustec/ubs-helpdesk/internal/auth"
	"github.com/infocustec/ubs-helpdesk/internal/config"
	"github.com/infocustec/ubs-helpdesk/internal/events"
	"github.com/infocustec/ubs-helpdesk/internal/observability"
	"github.com/infocustec/ubs-helpdesk/internal/persistence"
	"github.com/infocustec/ubs-helpdesk/internal/repository"
	"github.com/infocustec/ubs-helpdesk/internal/service"
	"github.com/infocustec/ubs-helpdesk/internal/worker"
	"github.com/infocustec/ubs-helpdesk/internal/workhours"
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

	reportCache := persistence.NewReportCache(redis, cfg.Reports.CacheTTL())

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	inventoryRepo := repository.NewInventoryRepository(pool)
	stockRepo := repository.NewStockRepository(pool)
	maintenanceRepo := repository.NewMaintenanceRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	directoryRepo := repository.NewDirectoryRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	clock := workhours.SystemClock{}

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:      ticketRepo,
		InventoryRepo:   inventoryRepo,
		StockRepo:       stockRepo,
		MaintenanceRepo: maintenanceRepo,
		Dispatcher:      dispatcher,
		Cache:           reportCache,
		Clock:           clock,
		Logger:          logger,
	})
	reportService := service.NewReportService(ticketRepo, reportCache, clock, logger)
	inventoryService := service.NewInventoryService(service.InventoryDependencies{
		InventoryRepo:   inventoryRepo,
		TicketRepo:      ticketRepo,
		StockRepo:       stockRepo,
		MaintenanceRepo: maintenanceRepo,
	})
	stockService := service.NewStockService(stockRepo)
	authService := service.NewAuthService(cfg.Auth, userRepo)
	directoryService := service.NewDirectoryService(directoryRepo)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager())
	loginLimiter := auth.NewLoginLimiter(cfg.Auth.LoginRatePerSecond, cfg.Auth.LoginBurst)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Reports:        handlers.NewReportsHandler(reportService),
		Inventory:      handlers.NewInventoryHandler(inventoryService),
		Stock:          handlers.NewStockHandler(stockService),
		Admin:          handlers.NewAdminHandler(authService, directoryService),
		AuthMiddleware: authMiddleware,
		LoginLimiter:   loginLimiter,
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
