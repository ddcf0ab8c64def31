package domain

import "errors"

var (
	ErrInvalidDateRange = errors.New("end date is before start date")
	ErrRoomOutOfRange   = errors.New("room id must be between 1 and 10")
	ErrRoomUnavailable  = errors.New("room is not available for the requested dates")
	ErrRoomLocked       = errors.New("room is being booked by another request")
)

// IsRejection reports whether err is a request rejection rather than a failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrRoomOutOfRange) ||
		errors.Is(err, ErrRoomUnavailable) ||
		errors.Is(err, ErrRoomLocked)
}
