package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/Domenick1991/hotelbooking/internal/pkg/logger"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventReservationCreated   = "reservation_created"
	EventReservationUpdated   = "reservation_updated"
	EventReservationCancelled = "reservation_cancelled"
)

type ReservationEvent struct {
	ID                string    `json:"id"`
	Type              string    `json:"type"`
	GuestName         string    `json:"name"`
	StartDate         string    `json:"start_date"`
	EndDate           string    `json:"end_date"`
	RoomID            int       `json:"room_id"`
	PreviousStartDate string    `json:"previous_start_date,omitempty"`
	PreviousEndDate   string    `json:"previous_end_date,omitempty"`
	OccurredAt        time.Time `json:"occurred_at"`
}

func NewReservationEvent(eventType string, r domain.Reservation) ReservationEvent {
	return ReservationEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		GuestName:  r.GuestName,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		RoomID:     r.RoomID,
		OccurredAt: time.Now().UTC(),
	}
}

// Key partitions events by room so one room's history stays ordered.
func (e ReservationEvent) Key() string {
	return strconv.Itoa(e.RoomID)
}

type Producer struct {
	brokers []string
	writer  *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &Producer{
		brokers: brokers,
		writer:  writer,
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	logger.Debug("published to Kafka", zap.String("topic", topic), zap.String("key", key))
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// CheckConnection dials the first broker and reads the partition list.
func (p *Producer) CheckConnection(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return errors.New("no Kafka brokers configured")
	}

	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return fmt.Errorf("failed to read partitions: %w", err)
	}

	logger.Info("connected to Kafka", zap.Int("partitions", len(partitions)))
	return nil
}
