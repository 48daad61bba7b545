package service

import (
	"context"
	"errors"
	"fmt"
	reserrors "innkeeper/internal/reservations/errors"
	"innkeeper/internal/reservations/repository"
	"innkeeper/internal/reservations/validator"
	"innkeeper/pkg/config"
	apperrors "innkeeper/pkg/errors"
	"innkeeper/pkg/events"
	"innkeeper/pkg/model"
	"innkeeper/pkg/sanitizer"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

type ReservationService interface {
	Reserve(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	Approve(ctx context.Context, id string) (*model.Booking, error)
	Confirm(ctx context.Context, id string) (*model.Booking, error)
	Cancel(ctx context.Context, id string) (*model.Booking, error)
	Availability(ctx context.Context, roomTypeID string, from, to time.Time) (*Availability, error)
}

type reservationService struct {
	bookings  repository.BookingRepository
	locks     repository.ReservationLockRepository
	roomTypes repository.RoomTypeRepository
	services  repository.ServiceCatalog
	validator *validator.ReservationValidator
	emitter   events.Emitter
	cfg       *config.Config
}

func NewReservationService(
	bookings repository.BookingRepository,
	locks repository.ReservationLockRepository,
	roomTypes repository.RoomTypeRepository,
	services repository.ServiceCatalog,
	validator *validator.ReservationValidator,
	emitter events.Emitter,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		bookings:  bookings,
		locks:     locks,
		roomTypes: roomTypes,
		services:  services,
		validator: validator,
		emitter:   emitter,
		cfg:       cfg,
	}
}

// Reserve creates a booking. A booking submitted with status "requested" is
// a soft hold: it is stored without consuming capacity and must go through
// Approve before it counts against inventory. Any other submission is a
// direct booking: capacity is checked and the booking lands as "confirmed"
// in one transaction, so two callers racing for the last room cannot both
// succeed.
func (s *reservationService) Reserve(ctx context.Context, booking *model.Booking) error {
	s.applyDefaults(booking)
	s.sanitize(booking)
	if err := s.validate(booking); err != nil {
		return err
	}

	roomType, err := s.roomTypes.FindByID(ctx, booking.RoomTypeID)
	if err != nil {
		return s.mapCatalogError(err, booking.RoomTypeID)
	}
	if err := s.priceBooking(ctx, booking, roomType); err != nil {
		return err
	}

	if booking.Status == model.BookingRequested {
		if err := s.bookings.Create(ctx, booking); err != nil {
			s.cfg.Log.Error("Failed to create booking request", "error", err)
			return apperrors.Internal("Failed to create booking", err)
		}
		s.cfg.Log.Info("Booking requested",
			"id", booking.ID,
			"room_type_id", booking.RoomTypeID,
			"check_in", booking.CheckIn,
			"check_out", booking.CheckOut,
		)
		return nil
	}

	// Advisory lock serializes count-then-insert per room type
	lockID, err := s.acquireReservationLock(ctx, booking.RoomTypeID)
	if err != nil {
		return err
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
		if err := s.bookings.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to reserve booking", "room_type_id", booking.RoomTypeID, "error", err)
		return err
	}

	s.cfg.Log.Info("Booking confirmed",
		"id", booking.ID,
		"room_type_id", booking.RoomTypeID,
		"check_in", booking.CheckIn,
		"check_out", booking.CheckOut,
		"total_amount", booking.TotalAmount,
	)
	s.emitter.Emit(events.BookingConfirmed, booking.ID)
	return nil
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, reserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *reservationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.bookings.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.bookings.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// --- Helpers ---

func (s *reservationService) applyDefaults(b *model.Booking) {
	if b.Status == "" {
		b.Status = model.BookingConfirmed
	}
	if b.Currency == "" {
		b.Currency = s.cfg.Currency
	}
	if b.Guests <= 0 {
		b.Guests = 1
	}
}

func (s *reservationService) sanitize(b *model.Booking) {
	b.GuestName = sanitizer.NormalizeName(b.GuestName)
	for i := range b.Extras {
		b.Extras[i].Label = sanitizer.NormalizeLabel(b.Extras[i].Label)
	}
}

func (s *reservationService) validate(booking *model.Booking) error {
	if booking.Status != model.BookingRequested && booking.Status != model.BookingConfirmed {
		return apperrors.InvalidInput("New bookings must start as requested or confirmed")
	}
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// priceBooking snapshots service prices onto the booking's extras and
// computes the total. Prices are captured here so later catalog changes
// cannot reprice an existing booking.
func (s *reservationService) priceBooking(ctx context.Context, booking *model.Booking, roomType *model.RoomType) error {
	extrasTotal := 0.0
	for i := range booking.Extras {
		line := &booking.Extras[i]
		svc, err := s.services.FindByID(ctx, line.ServiceID)
		if err != nil {
			return s.mapCatalogError(err, line.ServiceID)
		}
		line.UnitPrice = svc.UnitPrice
		line.TaxRate = svc.TaxRate
		if line.Label == "" {
			line.Label = svc.Name
		}
		extrasTotal += float64(line.Quantity) * line.UnitPrice
	}

	booking.TotalAmount = float64(booking.Nights())*roomType.BasePrice + extrasTotal
	return nil
}

// verifyCapacity re-runs the overlap count against the type's room count.
// Must run inside the reservation transaction.
func (s *reservationService) verifyCapacity(ctx context.Context, roomType *model.RoomType, from, to time.Time) error {
	total, err := s.roomTypes.CountRooms(ctx, roomType.ID)
	if err != nil {
		return apperrors.Internal("Failed to count rooms", err)
	}

	reserved, err := s.bookings.CountOverlapping(ctx, roomType.ID, from, to, model.CommittedStatuses)
	if err != nil {
		return apperrors.Internal("Failed to count overlapping bookings", err)
	}

	if reserved >= total {
		return apperrors.NoAvailability(roomType.ID)
	}
	return nil
}

// acquireReservationLock creates an advisory lock scoped to the room type.
// Returns the lock ID, or a conflict error if another reservation for the
// same type is in flight.
func (s *reservationService) acquireReservationLock(ctx context.Context, roomTypeID string) (string, error) {
	lockID := fmt.Sprintf("reserve_%s", roomTypeID)

	lock := &model.ReservationLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.ReservationLockTTL),
	}

	_, err := s.locks.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This room type is currently being reserved by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire reservation lock", err)
	}

	return lockID, nil
}

func (s *reservationService) releaseReservationLock(ctx context.Context, lockID string) error {
	return s.locks.Delete(ctx, lockID)
}
