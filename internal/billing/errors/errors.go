package errors

import "errors"

var (
	ErrInvoiceNotFound = errors.New("invoice not found")

	ErrInvalidID = errors.New("invalid invoice ID format")

	ErrBookingNotFound = errors.New("booking not found")

	ErrStayNotFound = errors.New("stay not found")

	ErrRoomTypeNotFound = errors.New("room type not found")

	// ErrInvoiceFinalized means a write was attempted against a frozen
	// invoice.
	ErrInvoiceFinalized = errors.New("invoice is finalized")
)
