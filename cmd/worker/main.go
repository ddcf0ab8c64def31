package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/hotelbooking/config"
	"github.com/Domenick1991/hotelbooking/internal/kafka"
	"github.com/Domenick1991/hotelbooking/internal/pkg/logger"
	kafkaGo "github.com/segmentio/kafka-go"
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

	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.ReservationsTopic == "" {
		logger.Fatal("kafka brokers and reservations topic are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.ReservationsTopic)
	defer func() { _ = consumer.Close() }()

	audit := logger.With(zap.String("component", "reservation-audit"))
	audit.Info("consuming reservation events", zap.String("topic", cfg.Kafka.ReservationsTopic))

	err = consumer.Consume(ctx, func(_ context.Context, msg kafkaGo.Message) error {
		event, err := kafka.DecodeReservationEvent(msg)
		if err != nil {
			audit.Warn("skip undecodable event", zap.Int64("offset", msg.Offset), zap.Error(err))
			return nil
		}

		fields := []zap.Field{
			zap.String("event_id", event.ID),
			zap.String("type", event.Type),
			zap.String("name", event.GuestName),
			zap.Int("room_id", event.RoomID),
			zap.String("start_date", event.StartDate),
			zap.String("end_date", event.EndDate),
			zap.Time("occurred_at", event.OccurredAt),
		}
		if event.PreviousStartDate != "" {
			fields = append(fields,
				zap.String("previous_start_date", event.PreviousStartDate),
				zap.String("previous_end_date", event.PreviousEndDate),
			)
		}
		audit.Info("reservation event", fields...)
		return nil
	})
	if err != nil {
		logger.Error("consumer stopped", zap.Error(err))
		return
	}
	audit.Info("shutting down")
}
