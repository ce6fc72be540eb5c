package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"kickfleet/internal/platform/config"
	"kickfleet/internal/platform/logging"
	"kickfleet/internal/platform/postgres"
	"kickfleet/internal/repository"
	"kickfleet/internal/service"
	"kickfleet/internal/simulation"
)

// simulatorConfig drives the demo fleet against the shared store.
type simulatorConfig struct {
	Database struct {
		DSN string `yaml:"dsn" env:"FLEET_POSTGRES_DSN"`
	} `yaml:"database"`
	Riders      int           `yaml:"riders" env:"SIM_RIDERS"`
	Tick        time.Duration `yaml:"tick" env:"SIM_TICK"`
	MinRide     time.Duration `yaml:"minRide" env:"SIM_MIN_RIDE"`
	MaxRide     time.Duration `yaml:"maxRide" env:"SIM_MAX_RIDE"`
	StepDegrees float64       `yaml:"stepDegrees" env:"SIM_STEP_DEGREES"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &simulatorConfig{
		Riders:  3,
		Tick:    5 * time.Second,
		MinRide: time.Minute,
		MaxRide: 4 * time.Minute,
	}
	if err := config.Load(cfg); err != nil {
		panic(err)
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		panic(errors.New("config: database dsn required"))
	}

	logger, err := logging.NewLogger("simulator")
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	sqlDB, err := postgres.New(cfg.Database.DSN, postgres.PoolOptions{})
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer sqlDB.Close()

	deviceRepo := repository.NewDeviceRepository(sqlDB)
	rentalRepo := repository.NewRentalRepository(sqlDB)
	telemetryRepo := repository.NewTelemetryRepository(sqlDB)

	rentalService := service.NewRentalService(deviceRepo, rentalRepo, telemetryRepo, nil, logger)
	telemetryService := service.NewTelemetryService(telemetryRepo, nil, nil, logger)
	fleetService := service.NewFleetService(deviceRepo, rentalRepo, nil, logger)

	sim := simulation.New(rentalService, telemetryService, fleetService, simulation.Options{
		Riders:      cfg.Riders,
		Tick:        cfg.Tick,
		MinRide:     cfg.MinRide,
		MaxRide:     cfg.MaxRide,
		StepDegrees: cfg.StepDegrees,
	}, logger)

	logger.Info("simulator starting",
		zap.Int("riders", cfg.Riders),
		zap.Duration("tick", cfg.Tick),
	)
	if err := sim.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("simulator stopped with error", zap.Error(err))
	}
}
