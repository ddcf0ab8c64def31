package repository

import (
	"context"

	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReservationRepository interface {
	FindByName(ctx context.Context, name string) ([]domain.Reservation, error)
	FindByRoom(ctx context.Context, roomID int) ([]domain.Reservation, error)
	// HasOverlap reports whether any reservation for roomID shares a day with [start, end].
	HasOverlap(ctx context.Context, roomID int, start, end string) (bool, error)
	Insert(ctx context.Context, r domain.Reservation) error
	// UpdateDates changes the dates of one reservation equal to existing on every field.
	UpdateDates(ctx context.Context, existing domain.Reservation, start, end string) (bool, error)
	// Delete removes one reservation equal to existing on every field.
	Delete(ctx context.Context, existing domain.Reservation) (bool, error)
}

type PGReservationRepository struct {
	db *pgxpool.Pool
}

func NewReservationRepository(db *pgxpool.Pool) ReservationRepository {
	return &PGReservationRepository{db: db}
}

const selectReservation = `SELECT name, start_date, end_date, room_id FROM reservations`

// The three branches mirror the closed-interval test in domain.Reservation.Overlaps.
const overlapQuery = `SELECT EXISTS (
	SELECT 1 FROM reservations
	WHERE room_id = $1 AND (
		(start_date <= $2 AND end_date >= $2) OR
		(start_date <= $3 AND end_date >= $3) OR
		(start_date >= $2 AND end_date <= $3)
	)
)`

const matchReservation = `SELECT id FROM reservations
	WHERE name = $1 AND start_date = $2 AND end_date = $3 AND room_id = $4
	ORDER BY id LIMIT 1`

func (r *PGReservationRepository) FindByName(ctx context.Context, name string) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, selectReservation+` WHERE name = $1 ORDER BY id`, name)
	if err != nil {
		return nil, err
	}
	return scanReservations(rows)
}

func (r *PGReservationRepository) FindByRoom(ctx context.Context, roomID int) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, selectReservation+` WHERE room_id = $1 ORDER BY id`, roomID)
	if err != nil {
		return nil, err
	}
	return scanReservations(rows)
}

func (r *PGReservationRepository) HasOverlap(ctx context.Context, roomID int, start, end string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, overlapQuery, roomID, start, end).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PGReservationRepository) Insert(ctx context.Context, res domain.Reservation) error {
	_, err := r.db.Exec(ctx, `INSERT INTO reservations (name, start_date, end_date, room_id) VALUES ($1, $2, $3, $4)`,
		res.GuestName, res.StartDate, res.EndDate, res.RoomID)
	return err
}

func (r *PGReservationRepository) UpdateDates(ctx context.Context, existing domain.Reservation, start, end string) (bool, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE reservations SET start_date = $5, end_date = $6 WHERE id = (`+matchReservation+`)`,
		existing.GuestName, existing.StartDate, existing.EndDate, existing.RoomID, start, end)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *PGReservationRepository) Delete(ctx context.Context, existing domain.Reservation) (bool, error) {
	cmd, err := r.db.Exec(ctx, `DELETE FROM reservations WHERE id = (`+matchReservation+`)`,
		existing.GuestName, existing.StartDate, existing.EndDate, existing.RoomID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func scanReservations(rows pgx.Rows) ([]domain.Reservation, error) {
	defer rows.Close()

	reservations := make([]domain.Reservation, 0)
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(&res.GuestName, &res.StartDate, &res.EndDate, &res.RoomID); err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
