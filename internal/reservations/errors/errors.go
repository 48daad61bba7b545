package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrRoomTypeNotFound = errors.New("room type not found")

	ErrServiceNotFound = errors.New("service not found")

	// ErrVersionConflict means a compare-and-swap transition lost the race
	// against a concurrent writer on the same booking.
	ErrVersionConflict = errors.New("booking was modified concurrently")

	ErrLockHeld = errors.New("reservation lock already held")
)
