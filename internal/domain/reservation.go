package domain

import "time"

// DateLayout is the on-wire and stored form of reservation dates. Zero-padded
// ISO dates order lexicographically, so dates are compared as strings.
const DateLayout = "2006-01-02"

const (
	MinRoomID = 1
	MaxRoomID = 10
)

type Reservation struct {
	GuestName string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	RoomID    int    `json:"room_id"`
}

// ValidRange reports whether start <= end.
func (r Reservation) ValidRange() bool {
	return r.StartDate <= r.EndDate
}

func (r Reservation) ValidRoom() bool {
	return ValidRoom(r.RoomID)
}

func (r Reservation) WithDates(start, end string) Reservation {
	r.StartDate = start
	r.EndDate = end
	return r
}

func ValidRoom(roomID int) bool {
	return roomID >= MinRoomID && roomID <= MaxRoomID
}

// ValidDate reports whether s is a calendar date in DateLayout form.
func ValidDate(s string) bool {
	t, err := time.Parse(DateLayout, s)
	return err == nil && t.Format(DateLayout) == s
}

// Overlaps reports whether the closed interval [start, end] shares at least
// one day with the existing reservation.
func (r Reservation) Overlaps(start, end string) bool {
	return (r.StartDate <= start && start <= r.EndDate) ||
		(r.StartDate <= end && end <= r.EndDate) ||
		(start <= r.StartDate && r.EndDate <= end)
}
