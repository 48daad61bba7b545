package errors

import "errors"

var (
	ErrNotFound = errors.New("stay not found")

	ErrInvalidID = errors.New("invalid stay ID format")

	ErrBookingNotFound = errors.New("booking not found")

	ErrServiceNotFound = errors.New("service not found")

	// ErrNoRoomAvailable means no physical room of the required type is free,
	// which can happen even when type-level capacity allowed the booking
	// (rooms blocked for maintenance still count toward capacity).
	ErrNoRoomAvailable = errors.New("no physical room available")

	ErrVersionConflict = errors.New("booking was modified concurrently")
)
