package service

import (
	"context"
	"errors"
	reserrors "innkeeper/internal/reservations/errors"
	apperrors "innkeeper/pkg/errors"
	"innkeeper/pkg/events"
	"innkeeper/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// Approve moves a requested booking into the committed pool. Capacity is
// re-checked under the reservation lock because requests are speculative
// holds: the room may have been taken since the request was made.
func (s *reservationService) Approve(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != model.BookingRequested {
		return nil, apperrors.InvalidTransition(booking.Status, model.BookingApproved)
	}

	roomType, err := s.roomTypes.FindByID(ctx, booking.RoomTypeID)
	if err != nil {
		return nil, s.mapCatalogError(err, booking.RoomTypeID)
	}

	lockID, err := s.acquireReservationLock(ctx, booking.RoomTypeID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.releaseReservationLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release reservation lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.bookings.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyCapacity(sessCtx, roomType, booking.CheckIn, booking.CheckOut); err != nil {
			return err
		}
		return s.transition(sessCtx, booking, []string{model.BookingRequested}, model.BookingApproved)
	})
	if err != nil {
		s.cfg.Log.Error("Failed to approve booking", "id", id, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking approved", "id", id, "room_type_id", booking.RoomTypeID)
	s.emitter.Emit(events.BookingApproved, booking.ID)
	return booking, nil
}

// Confirm advances an approved booking. Capacity was already committed at
// approval, so no availability check is needed here.
func (s *reservationService) Confirm(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != model.BookingApproved {
		return nil, apperrors.InvalidTransition(booking.Status, model.BookingConfirmed)
	}

	if err := s.transition(ctx, booking, []string{model.BookingApproved}, model.BookingConfirmed); err != nil {
		s.cfg.Log.Error("Failed to confirm booking", "id", id, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking confirmed", "id", id)
	s.emitter.Emit(events.BookingConfirmed, booking.ID)
	return booking, nil
}

// Cancel releases a booking's hold on inventory. Cancelling an already
// cancelled booking is a no-op. A checked-in or checked-out booking cannot
// be cancelled; a stay is concluded through checkout.
func (s *reservationService) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == model.BookingCancelled {
		return booking, nil
	}
	if booking.Status == model.BookingCheckedIn || booking.Status == model.BookingCheckedOut {
		return nil, apperrors.InvalidTransition(booking.Status, model.BookingCancelled)
	}

	cancellable := []string{model.BookingRequested, model.BookingApproved, model.BookingConfirmed}
	if err := s.transition(ctx, booking, cancellable, model.BookingCancelled); err != nil {
		s.cfg.Log.Error("Failed to cancel booking", "id", id, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking cancelled", "id", id, "room_type_id", booking.RoomTypeID)
	s.emitter.Emit(events.BookingCancelled, booking.ID)
	return booking, nil
}

// transition applies a guarded status change through a compare-and-swap on
// status and version, then updates the in-memory snapshot to match. A lost
// race surfaces as a conflict instead of silently succeeding.
func (s *reservationService) transition(ctx context.Context, booking *model.Booking, fromStatuses []string, toStatus string) error {
	err := s.bookings.CompareAndSwapStatus(ctx, booking.ID, fromStatuses, toStatus, booking.Version)
	if err != nil {
		if errors.Is(err, reserrors.ErrVersionConflict) {
			return apperrors.Conflict("Booking was modified concurrently. Please retry.")
		}
		if errors.Is(err, reserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid booking ID format")
		}
		return apperrors.Internal("Failed to update booking status", err)
	}

	booking.Status = toStatus
	booking.Version++
	return nil
}
