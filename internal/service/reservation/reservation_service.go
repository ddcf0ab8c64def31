package reservation

import (
	"context"
	"fmt"

	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/Domenick1991/hotelbooking/internal/kafka"
	"github.com/Domenick1991/hotelbooking/internal/pkg/logger"
	"github.com/Domenick1991/hotelbooking/internal/pkg/metrics"
	"github.com/Domenick1991/hotelbooking/internal/repository"
	"go.uber.org/zap"
)

const (
	opReserve = "reserve"
	opUpdate  = "update"
	opCancel  = "cancel"
)

type ReservationUseCase interface {
	FindByName(ctx context.Context, name string) ([]domain.Reservation, error)
	FindByRoom(ctx context.Context, roomID int) ([]domain.Reservation, error)
	Reserve(ctx context.Context, r domain.Reservation) error
	Update(ctx context.Context, existing domain.Reservation, newStart, newEnd string) error
	Cancel(ctx context.Context, existing domain.Reservation) error
}

type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, roomID int, start, end string) (bool, error)
}

// RoomLocker holds a per-room lock across the availability check and the
// write that follows it.
type RoomLocker interface {
	LockRoom(ctx context.Context, roomID int) (func(context.Context) error, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type ReservationService struct {
	reservations repository.ReservationRepository
	checker      AvailabilityChecker
	locker       RoomLocker
	producer     Producer
	topic        string
	metrics      *metrics.Metrics
}

type ReservationServiceOption func(*ReservationService)

func WithRoomLocker(locker RoomLocker) ReservationServiceOption {
	return func(s *ReservationService) {
		s.locker = locker
	}
}

func WithProducer(producer Producer, topic string) ReservationServiceOption {
	return func(s *ReservationService) {
		s.producer = producer
		s.topic = topic
	}
}

func WithMetrics(m *metrics.Metrics) ReservationServiceOption {
	return func(s *ReservationService) {
		s.metrics = m
	}
}

func NewReservationService(
	reservations repository.ReservationRepository,
	checker AvailabilityChecker,
	opts ...ReservationServiceOption,
) *ReservationService {
	service := &ReservationService{
		reservations: reservations,
		checker:      checker,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *ReservationService) FindByName(ctx context.Context, name string) ([]domain.Reservation, error) {
	return s.reservations.FindByName(ctx, name)
}

func (s *ReservationService) FindByRoom(ctx context.Context, roomID int) ([]domain.Reservation, error) {
	return s.reservations.FindByRoom(ctx, roomID)
}

func (s *ReservationService) Reserve(ctx context.Context, r domain.Reservation) (err error) {
	defer func() { s.observe(opReserve, err) }()

	if !r.ValidRange() {
		return domain.ErrInvalidDateRange
	}
	if !r.ValidRoom() {
		return domain.ErrRoomOutOfRange
	}

	unlock, err := s.lockRoom(ctx, r.RoomID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.ensureAvailable(ctx, r.RoomID, r.StartDate, r.EndDate); err != nil {
		return err
	}
	if err := s.reservations.Insert(ctx, r); err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}

	s.publish(ctx, kafka.NewReservationEvent(kafka.EventReservationCreated, r))
	return nil
}

// Update moves the dates of the reservation equal to existing. The overlap
// check runs against every reservation on the room, including existing
// itself, so a reservation cannot be moved onto days it already covers.
// A missing reservation is not an error.
func (s *ReservationService) Update(ctx context.Context, existing domain.Reservation, newStart, newEnd string) (err error) {
	defer func() { s.observe(opUpdate, err) }()

	if newEnd < newStart {
		return domain.ErrInvalidDateRange
	}

	unlock, err := s.lockRoom(ctx, existing.RoomID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.ensureAvailable(ctx, existing.RoomID, newStart, newEnd); err != nil {
		return err
	}

	updated, err := s.reservations.UpdateDates(ctx, existing, newStart, newEnd)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	if !updated {
		logger.Debug("update matched no reservation", reservationFields(existing)...)
		return nil
	}

	event := kafka.NewReservationEvent(kafka.EventReservationUpdated, existing.WithDates(newStart, newEnd))
	event.PreviousStartDate = existing.StartDate
	event.PreviousEndDate = existing.EndDate
	s.publish(ctx, event)
	return nil
}

func (s *ReservationService) Cancel(ctx context.Context, existing domain.Reservation) (err error) {
	defer func() { s.observe(opCancel, err) }()

	deleted, err := s.reservations.Delete(ctx, existing)
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	if !deleted {
		logger.Debug("cancel matched no reservation", reservationFields(existing)...)
		return nil
	}

	s.publish(ctx, kafka.NewReservationEvent(kafka.EventReservationCancelled, existing))
	return nil
}

func (s *ReservationService) ensureAvailable(ctx context.Context, roomID int, start, end string) error {
	available, err := s.checker.IsAvailable(ctx, roomID, start, end)
	if err != nil {
		return err
	}
	if !available {
		return domain.ErrRoomUnavailable
	}
	return nil
}

func (s *ReservationService) lockRoom(ctx context.Context, roomID int) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}

	release, err := s.locker.LockRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("failed to release room lock", zap.Int("room_id", roomID), zap.Error(err))
		}
	}, nil
}

// publish never fails the caller; the write has already been committed.
func (s *ReservationService) publish(ctx context.Context, event kafka.ReservationEvent) {
	if s.producer == nil || s.topic == "" {
		return
	}
	if err := s.producer.Publish(ctx, s.topic, event.Key(), event); err != nil {
		logger.Warn("failed to publish reservation event",
			zap.String("type", event.Type),
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
	}
}

func (s *ReservationService) observe(operation string, err error) {
	status := "success"
	switch {
	case err == nil:
	case domain.IsRejection(err):
		status = "rejected"
	default:
		status = "error"
	}
	s.metrics.ObserveReservation(operation, status)
}

func reservationFields(r domain.Reservation) []zap.Field {
	return []zap.Field{
		zap.String("name", r.GuestName),
		zap.String("start_date", r.StartDate),
		zap.String("end_date", r.EndDate),
		zap.Int("room_id", r.RoomID),
	}
}

var _ ReservationUseCase = (*ReservationService)(nil)
