package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/hotelbooking/config"
	"github.com/Domenick1991/hotelbooking/internal/bootstrap"
	"github.com/Domenick1991/hotelbooking/internal/cache"
	"github.com/Domenick1991/hotelbooking/internal/kafka"
	"github.com/Domenick1991/hotelbooking/internal/pkg/logger"
	"github.com/Domenick1991/hotelbooking/internal/pkg/metrics"
	"github.com/Domenick1991/hotelbooking/internal/repository"
	"github.com/Domenick1991/hotelbooking/internal/service/availability"
	"github.com/Domenick1991/hotelbooking/internal/service/reservation"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	logger.Set(logger.NewLogger(cfg.Log.Env))
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reservationRepo, closeRepo := openRepository(ctx, cfg)
	defer closeRepo()

	m := metrics.New()
	opts := []reservation.ReservationServiceOption{reservation.WithMetrics(m)}

	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.ReservationsTopic != "" {
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer func() { _ = producer.Close() }()

		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := producer.CheckConnection(checkCtx); err != nil {
			logger.Warn("kafka unavailable, events will be dropped", zap.Error(err))
		}
		cancel()

		opts = append(opts, reservation.WithProducer(producer, cfg.Kafka.ReservationsTopic))
	}

	if cfg.Booking.RoomLockEnabled {
		client := cache.NewRedisClient(cfg.Redis)
		defer func() { _ = client.Close() }()

		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal("connect redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		opts = append(opts, reservation.WithRoomLocker(cache.NewRoomLocker(client, cfg.Booking)))
	}

	reservationService := reservation.NewReservationService(
		reservationRepo,
		availability.NewChecker(reservationRepo),
		opts...,
	)

	if err := bootstrap.Run(ctx, cfg, reservationService, m); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func openRepository(ctx context.Context, cfg *config.Config) (repository.ReservationRepository, func()) {
	if cfg.Database.Driver == config.DriverMemory {
		logger.Info("using in-memory reservation store")
		return repository.NewMemoryReservationRepository(), func() {}
	}

	if cfg.Database.MigrateOnBoot {
		if err := repository.Migrate(cfg.Database.MigrationURL()); err != nil {
			logger.Fatal("migrate postgres", zap.Error(err))
		}
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	return repository.NewReservationRepository(pool), pool.Close
}
