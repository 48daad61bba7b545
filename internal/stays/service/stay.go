package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	stayserrors "innkeeper/internal/stays/errors"
	"innkeeper/internal/stays/repository"
	"innkeeper/pkg/config"
	apperrors "innkeeper/pkg/errors"
	"innkeeper/pkg/events"
	"innkeeper/pkg/model"
	"innkeeper/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type StayService interface {
	CheckIn(ctx context.Context, bookingID, roomID, staffID string) (*model.Stay, error)
	CheckOut(ctx context.Context, bookingID string) (*model.Stay, error)
	AddCharge(ctx context.Context, stayID string, line model.ServiceLine) (*model.Stay, error)
	GetByID(ctx context.Context, id string) (*model.Stay, error)
	GetByBookingID(ctx context.Context, bookingID string) (*model.Stay, error)
}

// InvoiceFinalizer closes out billing for a checked-out booking. Checkout
// must not commit without the final invoice existing, so this runs inside
// the checkout flow rather than behind an event.
type InvoiceFinalizer interface {
	FinalizeForBooking(ctx context.Context, bookingID string) (*model.Invoice, error)
}

type stayService struct {
	stays     repository.StayRepository
	rooms     repository.RoomRepository
	bookings  repository.BookingStore
	services  repository.ServiceCatalog
	finalizer InvoiceFinalizer
	emitter   events.Emitter
	cfg       *config.Config
}

func NewStayService(
	stays repository.StayRepository,
	rooms repository.RoomRepository,
	bookings repository.BookingStore,
	services repository.ServiceCatalog,
	finalizer InvoiceFinalizer,
	emitter events.Emitter,
	cfg *config.Config,
) StayService {
	return &stayService{
		stays:     stays,
		rooms:     rooms,
		bookings:  bookings,
		services:  services,
		finalizer: finalizer,
		emitter:   emitter,
		cfg:       cfg,
	}
}

// CheckIn allocates a physical room for a confirmed booking and opens the
// stay. An empty roomID takes any available room of the booking's type; a
// non-empty one claims that exact room or fails. Room claim, stay insert
// and booking transition commit together, so a failed transition never
// leaves a room stuck in occupied.
func (s *stayService) CheckIn(ctx context.Context, bookingID, roomID, staffID string) (*model.Stay, error) {
	if bookingID == "" || staffID == "" {
		return nil, apperrors.InvalidInput("Booking ID and staff ID are required")
	}
	if _, err := primitive.ObjectIDFromHex(staffID); err != nil {
		return nil, apperrors.InvalidInput("Invalid staff ID format")
	}
	if roomID != "" {
		if _, err := primitive.ObjectIDFromHex(roomID); err != nil {
			return nil, apperrors.InvalidInput("Invalid room ID format")
		}
	}

	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != model.BookingConfirmed {
		return nil, apperrors.InvalidTransition(booking.Status, model.BookingCheckedIn)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	if !s.cfg.AllowEarlyCheckIn && now.Before(booking.CheckIn) {
		return nil, apperrors.New(
			apperrors.CodeInvalidTransition,
			"Cannot check in before the planned check-in date",
			http.StatusConflict,
		).WithDetails(map[string]any{"check_in": booking.CheckIn})
	}

	stay := &model.Stay{
		BookingID:     booking.ID,
		StaffID:       staffID,
		ActualCheckIn: now,
		Status:        model.StayActive,
	}

	err = s.stays.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		room, err := s.rooms.Claim(sessCtx, booking.RoomTypeID, roomID)
		if err != nil {
			if errors.Is(err, stayserrors.ErrNoRoomAvailable) {
				return apperrors.NoRoomAvailable(booking.RoomTypeID)
			}
			if errors.Is(err, stayserrors.ErrInvalidID) {
				return apperrors.InvalidInput("Invalid room ID format")
			}
			return apperrors.Internal("Failed to allocate room", err)
		}
		stay.RoomID = room.ID

		if err := s.stays.Create(sessCtx, stay); err != nil {
			return apperrors.Internal("Failed to create stay", err)
		}
		if err := s.transitionBooking(sessCtx, booking, []string{model.BookingConfirmed}, model.BookingCheckedIn); err != nil {
			return err
		}
		return s.bindRoom(sessCtx, booking.ID, room.ID)
	})
	if err != nil {
		s.cfg.Log.Error("Check-in failed", "booking_id", bookingID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Guest checked in",
		"booking_id", booking.ID,
		"stay_id", stay.ID,
		"room_id", stay.RoomID,
		"staff_id", staffID,
	)
	s.emitter.Emit(events.CheckedIn, booking.ID)
	return stay, nil
}

// CheckOut closes the active stay, frees the room, moves the booking to
// checked_out and finalizes the invoice with the stay's charges included.
func (s *stayService) CheckOut(ctx context.Context, bookingID string) (*model.Stay, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != model.BookingCheckedIn {
		return nil, apperrors.InvalidTransition(booking.Status, model.BookingCheckedOut)
	}

	stay, err := s.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if stay.Status != model.StayActive {
		return nil, apperrors.InvalidTransition(stay.Status, model.StayCompleted)
	}

	checkedOutAt := time.Now().UTC().Truncate(time.Millisecond)
	err = s.stays.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.stays.Close(sessCtx, stay.ID, checkedOutAt); err != nil {
			return apperrors.Internal("Failed to close stay", err)
		}
		if err := s.rooms.Release(sessCtx, stay.RoomID); err != nil {
			return apperrors.Internal("Failed to release room", err)
		}
		return s.transitionBooking(sessCtx, booking, []string{model.BookingCheckedIn}, model.BookingCheckedOut)
	})
	if err != nil {
		s.cfg.Log.Error("Check-out failed", "booking_id", bookingID, "error", err)
		return nil, err
	}

	stay.ActualCheckOut = &checkedOutAt
	stay.Status = model.StayCompleted

	if _, err := s.finalizer.FinalizeForBooking(ctx, bookingID); err != nil {
		s.cfg.Log.Error("Invoice finalization failed after check-out", "booking_id", bookingID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Guest checked out",
		"booking_id", booking.ID,
		"stay_id", stay.ID,
		"room_id", stay.RoomID,
	)
	s.emitter.Emit(events.CheckedOut, booking.ID)
	return stay, nil
}

// AddCharge appends an extra charge to an active stay, snapshotting the
// service's current price onto the line.
func (s *stayService) AddCharge(ctx context.Context, stayID string, line model.ServiceLine) (*model.Stay, error) {
	if stayID == "" {
		return nil, apperrors.InvalidInput("Stay ID cannot be empty")
	}
	if line.ServiceID == "" || line.Quantity <= 0 {
		return nil, apperrors.InvalidInput("Charge requires a service ID and a positive quantity")
	}

	stay, err := s.GetByID(ctx, stayID)
	if err != nil {
		return nil, err
	}
	if stay.Status != model.StayActive {
		return nil, apperrors.InvalidTransition(stay.Status, model.StayActive)
	}

	svc, err := s.services.FindByID(ctx, line.ServiceID)
	if err != nil {
		if errors.Is(err, stayserrors.ErrServiceNotFound) {
			return nil, apperrors.NotFoundWithID("Service", line.ServiceID)
		}
		if errors.Is(err, stayserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid service ID format")
		}
		return nil, apperrors.Internal("Failed to read service catalog", err)
	}
	line.UnitPrice = svc.UnitPrice
	line.TaxRate = svc.TaxRate
	if line.Label == "" {
		line.Label = svc.Name
	}
	line.Label = sanitizer.NormalizeLabel(line.Label)

	if err := s.stays.AppendCharge(ctx, stayID, line); err != nil {
		if errors.Is(err, stayserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Stay", stayID)
		}
		return nil, apperrors.Internal("Failed to add stay charge", err)
	}

	stay.Extras = append(stay.Extras, line)
	s.cfg.Log.Info("Stay charge added",
		"stay_id", stayID,
		"service_id", line.ServiceID,
		"quantity", line.Quantity,
	)
	return stay, nil
}

func (s *stayService) GetByID(ctx context.Context, id string) (*model.Stay, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Stay ID cannot be empty")
	}

	stay, err := s.stays.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, stayserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Stay", id)
		}
		if errors.Is(err, stayserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid stay ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve stay", err)
	}

	return stay, nil
}

func (s *stayService) GetByBookingID(ctx context.Context, bookingID string) (*model.Stay, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	stay, err := s.stays.FindByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, stayserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Stay for booking", bookingID)
		}
		return nil, apperrors.Internal("Failed to retrieve stay", err)
	}

	return stay, nil
}

// --- Helpers ---

func (s *stayService) findBooking(ctx context.Context, bookingID string) (*model.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, stayserrors.ErrBookingNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", bookingID)
		}
		if errors.Is(err, stayserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *stayService) transitionBooking(ctx context.Context, booking *model.Booking, fromStatuses []string, toStatus string) error {
	err := s.bookings.CompareAndSwapStatus(ctx, booking.ID, fromStatuses, toStatus, booking.Version)
	if err != nil {
		if errors.Is(err, stayserrors.ErrVersionConflict) {
			return apperrors.Conflict("Booking was modified concurrently. Please retry.")
		}
		return apperrors.Internal("Failed to update booking status", err)
	}
	booking.Status = toStatus
	booking.Version++
	return nil
}

func (s *stayService) bindRoom(ctx context.Context, bookingID, roomID string) error {
	if err := s.bookings.SetRoom(ctx, bookingID, roomID); err != nil {
		return apperrors.Internal("Failed to bind room to booking", err)
	}
	return nil
}
