package repository

import (
	"context"
	"sync"

	"github.com/Domenick1991/hotelbooking/internal/domain"
)

// MemoryReservationRepository keeps reservations in insertion order. Each
// method holds the mutex, so single operations are serialised the same way
// the database serialises statements.
type MemoryReservationRepository struct {
	mu           sync.Mutex
	reservations []domain.Reservation
}

func NewMemoryReservationRepository() *MemoryReservationRepository {
	return &MemoryReservationRepository{reservations: make([]domain.Reservation, 0)}
}

func (m *MemoryReservationRepository) FindByName(_ context.Context, name string) ([]domain.Reservation, error) {
	return m.filter(func(r domain.Reservation) bool { return r.GuestName == name }), nil
}

func (m *MemoryReservationRepository) FindByRoom(_ context.Context, roomID int) ([]domain.Reservation, error) {
	return m.filter(func(r domain.Reservation) bool { return r.RoomID == roomID }), nil
}

func (m *MemoryReservationRepository) HasOverlap(_ context.Context, roomID int, start, end string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.reservations {
		if r.RoomID == roomID && r.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryReservationRepository) Insert(_ context.Context, r domain.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reservations = append(m.reservations, r)
	return nil
}

func (m *MemoryReservationRepository) UpdateDates(_ context.Context, existing domain.Reservation, start, end string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(existing)
	if i < 0 {
		return false, nil
	}
	m.reservations[i] = m.reservations[i].WithDates(start, end)
	return true, nil
}

func (m *MemoryReservationRepository) Delete(_ context.Context, existing domain.Reservation) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(existing)
	if i < 0 {
		return false, nil
	}
	m.reservations = append(m.reservations[:i], m.reservations[i+1:]...)
	return true, nil
}

// indexOf returns the first exact match; callers hold mu.
func (m *MemoryReservationRepository) indexOf(target domain.Reservation) int {
	for i, r := range m.reservations {
		if r == target {
			return i
		}
	}
	return -1
}

func (m *MemoryReservationRepository) filter(keep func(domain.Reservation) bool) []domain.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]domain.Reservation, 0)
	for _, r := range m.reservations {
		if keep(r) {
			result = append(result, r)
		}
	}
	return result
}

var _ ReservationRepository = (*MemoryReservationRepository)(nil)
