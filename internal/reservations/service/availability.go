package service

import (
	"context"
	"errors"
	reserrors "innkeeper/internal/reservations/errors"
	apperrors "innkeeper/pkg/errors"
	"innkeeper/pkg/model"
	"time"
)

// Availability is the capacity picture of one room type over a half-open
// date range [From, To).
type Availability struct {
	RoomTypeID     string    `json:"room_type_id"`
	From           time.Time `json:"from"`
	To             time.Time `json:"to"`
	TotalRooms     int64     `json:"total_rooms"`
	ReservedCount  int64     `json:"reserved_count"`
	AvailableCount int64     `json:"available_count"`
}

// Availability counts rooms committed by overlapping bookings and compares
// against the type's total room count. Read-only; safe to call repeatedly
// and concurrently. Only approved/confirmed/checked_in bookings consume
// capacity: a plain "requested" booking is a soft hold and a cancelled one
// has released its room.
func (s *reservationService) Availability(ctx context.Context, roomTypeID string, from, to time.Time) (*Availability, error) {
	if roomTypeID == "" {
		return nil, apperrors.InvalidInput("room type ID cannot be empty")
	}
	if err := s.validator.ValidateRange(from, to); err != nil {
		return nil, apperrors.InvalidRange(err.Error())
	}

	if _, err := s.roomTypes.FindByID(ctx, roomTypeID); err != nil {
		return nil, s.mapCatalogError(err, roomTypeID)
	}

	total, err := s.roomTypes.CountRooms(ctx, roomTypeID)
	if err != nil {
		return nil, apperrors.Internal("Failed to count rooms", err)
	}

	reserved, err := s.bookings.CountOverlapping(ctx, roomTypeID, from, to, model.CommittedStatuses)
	if err != nil {
		return nil, apperrors.Internal("Failed to count overlapping bookings", err)
	}

	available := total - reserved
	if available < 0 {
		available = 0
	}

	return &Availability{
		RoomTypeID:     roomTypeID,
		From:           from,
		To:             to,
		TotalRooms:     total,
		ReservedCount:  reserved,
		AvailableCount: available,
	}, nil
}

func (s *reservationService) mapCatalogError(err error, id string) error {
	switch {
	case errors.Is(err, reserrors.ErrRoomTypeNotFound):
		return apperrors.NotFoundWithID("Room type", id)
	case errors.Is(err, reserrors.ErrServiceNotFound):
		return apperrors.NotFoundWithID("Service", id)
	case errors.Is(err, reserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid ID format: " + id)
	default:
		return apperrors.Internal("Failed to read catalog", err)
	}
}
