package app

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"kickfleet/internal/cache"
	"kickfleet/internal/config"
	httpserver "kickfleet/internal/http"
	"kickfleet/internal/http/handlers"
	"kickfleet/internal/platform/postgres"
	platformredis "kickfleet/internal/platform/redis"
	"kickfleet/internal/repository"
	"kickfleet/internal/service"
	"kickfleet/internal/ws"
)

// App wires kickfleet dependencies.
type App struct {
	server      *httpserver.Server
	hub         *ws.Hub
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := postgres.New(cfg.Database.DSN, postgres.PoolOptions{})
	if err != nil {
		return nil, err
	}

	redisClient, err := platformredis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	deviceRepo := repository.NewDeviceRepository(sqlDB)
	rentalRepo := repository.NewRentalRepository(sqlDB)
	telemetryRepo := repository.NewTelemetryRepository(sqlDB)

	statusStore := cache.NewDeviceStatusStore(redisClient, cfg.StatusCacheTTL())
	hub := ws.NewHub(cfg.Feed.PingInterval, logger)

	rentalService := service.NewRentalService(deviceRepo, rentalRepo, telemetryRepo, statusStore, logger)
	telemetryService := service.NewTelemetryService(telemetryRepo, statusStore, hub, logger)
	matcherService := service.NewMatcherService(telemetryRepo, logger)
	fleetService := service.NewFleetService(deviceRepo, rentalRepo, statusStore, logger)

	routes := httpserver.Routes{
		RentalStart:   handlers.NewStartRentalHandler(rentalService),
		RentalEnd:     handlers.NewEndRentalHandler(rentalService),
		RentalHistory: handlers.NewRentalHistoryHandler(rentalService),
		Telemetry:     handlers.NewTelemetryHandler(telemetryService),
		ReportMatch:   handlers.NewReportMatchHandler(matcherService),
		Devices:       handlers.NewDevicesHandler(fleetService),
		DeviceStatus:  handlers.NewDeviceStatusHandler(fleetService),
		FleetStats:    handlers.NewFleetStatsHandler(fleetService),
		FleetFeed:     handlers.NewFleetFeedHandler(hub, logger),
		Health:        handlers.NewHealthHandler(),
	}

	router := httpserver.NewRouter(routes)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		hub:         hub,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts the feed ping loop and the HTTP server.
func (a *App) Run(ctx context.Context) error {
	go a.hub.Start(ctx)
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
