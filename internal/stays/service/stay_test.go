package service

import (
	"context"
	"testing"
	"time"

	stayserrors "innkeeper/internal/stays/errors"
	"innkeeper/pkg/config"
	mongotx "innkeeper/pkg/db/mongo"
	apperrors "innkeeper/pkg/errors"
	"innkeeper/pkg/events"
	"innkeeper/pkg/logger"
	"innkeeper/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	testBookingID  = "507f1f77bcf86cd799439021"
	testRoomTypeID = "507f1f77bcf86cd799439022"
	testRoomID     = "507f1f77bcf86cd799439023"
	testStaffID    = "507f1f77bcf86cd799439024"
	testStayID     = "507f1f77bcf86cd799439025"
	testServiceID  = "507f1f77bcf86cd799439026"
)

type mockStayRepository struct {
	createFunc          func(ctx context.Context, stay *model.Stay) error
	findByIDFunc        func(ctx context.Context, id string) (*model.Stay, error)
	findByBookingIDFunc func(ctx context.Context, bookingID string) (*model.Stay, error)
	closeFunc           func(ctx context.Context, id string, checkedOutAt time.Time) error
	appendChargeFunc    func(ctx context.Context, id string, line model.ServiceLine) error
}

func (m *mockStayRepository) Create(ctx context.Context, stay *model.Stay) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, stay)
	}
	stay.ID = testStayID
	return nil
}

func (m *mockStayRepository) FindByID(ctx context.Context, id string) (*model.Stay, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, stayserrors.ErrNotFound
}

func (m *mockStayRepository) FindByBookingID(ctx context.Context, bookingID string) (*model.Stay, error) {
	if m.findByBookingIDFunc != nil {
		return m.findByBookingIDFunc(ctx, bookingID)
	}
	return nil, stayserrors.ErrNotFound
}

func (m *mockStayRepository) Close(ctx context.Context, id string, checkedOutAt time.Time) error {
	if m.closeFunc != nil {
		return m.closeFunc(ctx, id, checkedOutAt)
	}
	return nil
}

func (m *mockStayRepository) AppendCharge(ctx context.Context, id string, line model.ServiceLine) error {
	if m.appendChargeFunc != nil {
		return m.appendChargeFunc(ctx, id, line)
	}
	return nil
}

func (m *mockStayRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	var sessCtx mongo.SessionContext
	return fn(sessCtx)
}

type mockRoomRepository struct {
	claimFunc   func(ctx context.Context, roomTypeID, roomID string) (*model.Room, error)
	releaseFunc func(ctx context.Context, roomID string) error
}

func (m *mockRoomRepository) Claim(ctx context.Context, roomTypeID, roomID string) (*model.Room, error) {
	if m.claimFunc != nil {
		return m.claimFunc(ctx, roomTypeID, roomID)
	}
	return &model.Room{ID: testRoomID, RoomTypeID: roomTypeID, Number: "101", Status: model.RoomOccupied}, nil
}

func (m *mockRoomRepository) Release(ctx context.Context, roomID string) error {
	if m.releaseFunc != nil {
		return m.releaseFunc(ctx, roomID)
	}
	return nil
}

type mockBookingStore struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Booking, error)
	casFunc      func(ctx context.Context, id string, fromStatuses []string, toStatus string, version int64) error
	setRoomFunc  func(ctx context.Context, id string, roomID string) error
}

func (m *mockBookingStore) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, stayserrors.ErrBookingNotFound
}

func (m *mockBookingStore) CompareAndSwapStatus(ctx context.Context, id string, fromStatuses []string, toStatus string, version int64) error {
	if m.casFunc != nil {
		return m.casFunc(ctx, id, fromStatuses, toStatus, version)
	}
	return nil
}

func (m *mockBookingStore) SetRoom(ctx context.Context, id string, roomID string) error {
	if m.setRoomFunc != nil {
		return m.setRoomFunc(ctx, id, roomID)
	}
	return nil
}

type mockServiceCatalog struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Service, error)
}

func (m *mockServiceCatalog) FindByID(ctx context.Context, id string) (*model.Service, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Service{ID: testServiceID, Name: "Minibar", UnitPrice: 12, TaxRate: 0.2}, nil
}

type mockFinalizer struct {
	finalizeFunc func(ctx context.Context, bookingID string) (*model.Invoice, error)
	calls        int
}

func (m *mockFinalizer) FinalizeForBooking(ctx context.Context, bookingID string) (*model.Invoice, error) {
	m.calls++
	if m.finalizeFunc != nil {
		return m.finalizeFunc(ctx, bookingID)
	}
	return &model.Invoice{BookingID: bookingID, Status: model.InvoiceUnpaid}, nil
}

func bookingWithStatus(status string) *model.Booking {
	return &model.Booking{
		ID:         testBookingID,
		GuestID:    "507f1f77bcf86cd799439027",
		GuestName:  "Ada Guest",
		RoomTypeID: testRoomTypeID,
		CheckIn:    time.Now().UTC().Add(-24 * time.Hour),
		CheckOut:   time.Now().UTC().Add(24 * time.Hour),
		Guests:     2,
		Status:     status,
		Version:    1,
	}
}

func newTestStayService(stays *mockStayRepository, rooms *mockRoomRepository, bookings *mockBookingStore, finalizer *mockFinalizer) *stayService {
	if stays == nil {
		stays = &mockStayRepository{}
	}
	if rooms == nil {
		rooms = &mockRoomRepository{}
	}
	if bookings == nil {
		bookings = &mockBookingStore{}
	}
	if finalizer == nil {
		finalizer = &mockFinalizer{}
	}
	return &stayService{
		stays:     stays,
		rooms:     rooms,
		bookings:  bookings,
		services:  &mockServiceCatalog{},
		finalizer: finalizer,
		emitter:   events.NewNopEmitter(),
		cfg: &config.Config{
			Log:               logger.NewNop(),
			AllowEarlyCheckIn: false,
		},
	}
}

func TestCheckIn_AllocatesRoomAndTransitions(t *testing.T) {
	var casTo string
	var boundRoom string
	bookings := &mockBookingStore{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return bookingWithStatus(model.BookingConfirmed), nil
		},
		casFunc: func(ctx context.Context, id string, fromStatuses []string, toStatus string, version int64) error {
			casTo = toStatus
			return nil
		},
		setRoomFunc: func(ctx context.Context, id string, roomID string) error {
			boundRoom = roomID
			return nil
		},
	}
	svc := newTestStayService(nil, nil, bookings, nil)

	stay, err := svc.CheckIn(context.Background(), testBookingID, "", testStaffID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stay.Status != model.StayActive {
		t.Errorf("expected active stay, got %q", stay.Status)
	}
	if stay.RoomID != testRoomID {
		t.Errorf("expected allocated room %s, got %s", testRoomID, stay.RoomID)
	}
	if casTo != model.BookingCheckedIn {
		t.Errorf("expected booking moved to checked_in, got %q", casTo)
	}
	if boundRoom != testRoomID {
		t.Errorf("expected room bound to booking, got %q", boundRoom)
	}
}

func TestCheckIn_RequestedBookingRejected(t *testing.T) {
	bookings := &mockBookingStore{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return bookingWithStatus(model.BookingRequested), nil
		},
	}
	svc := newTestStayService(nil, nil, bookings, nil)

	_, err := svc.CheckIn(context.Background(), testBookingID, "", testStaffID)
	if !apperrors.IsCode(err, apperrors.CodeInvalidTransition) {
		t.Errorf("expected InvalidTransition, got %v", err)
	}
}

func TestCheckIn_CancelledBookingRejected(t *testing.T) {
	bookings := &mockBookingStore{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return bookingWithStatus(model.BookingCancelled), nil
		},
	}
	svc := newTestStayService(nil, nil, bookings, nil)

	_, err := svc.CheckIn(context.Background(), testBookingID, "", testStaffID)
	if !apperrors.IsCode(err, apperrors.CodeInvalidTransition) {
		t.Errorf("expected InvalidTransition, got %v", err)
	}
}

func TestCheckIn_NoPhysicalRoomFree(t *testing.T) {
	bookings := &mockBookingStore{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return bookingWithStatus(model.BookingConfirmed), nil
		},
	}
	rooms := &mockRoomRepository{
		claimFunc: func(ctx context.Context, roomTypeID, roomID string) (*model.Room, error) {
			return nil, stayserrors.ErrNoRoomAvailable
		},
	}
	svc := newTestStayService(nil, rooms, bookings, nil)

	_, err := svc.CheckIn(context.Background(), testBookingID, "", testStaffID)
	if !apperrors.IsCode(err, apperrors.CodeNoRoomAvailable) {
		t.Errorf("expected NoRoomAvailable, got %v", err)
	}
}

func TestCheckIn_RequestedRoomHonored(t *testing.T) {
	var claimedRoom string
	bookings := &mockBookingStore{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return bookingWithStatus(model.BookingConfirmed), nil
		},
	}
	rooms := &mockRoomRepository{
		claimFunc: func(ctx context.Context, roomTypeID, roomID string) (*model.Room, error) {
			claimedRoom = roomID
			return &model.Room{ID: roomID, RoomTypeID: roomTypeID, Number: "204", Status: model.RoomOccupied}, nil
		},
	}
	svc := newTestStayService(nil, rooms, bookings, nil)

	stay, err := svc.CheckIn(context.Background(), testBookingID, testRoomID, testStaffID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claimedRoom != testRoomID {
		t.Errorf("expected claim restricted to room %s, got %q", testRoomID, claimedRoom)
	}
	if stay.RoomID != testRoomID {
		t.Errorf("expected stay bound to room %s, got %s", testRoomID, stay.RoomID)
	}
}

func TestCheckIn_BeforePlannedDateRejected(t *testing.T) {
	bookings := &mockBookingStore{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			b := bookingWithStatus(model.BookingConfirmed)
			b.CheckIn = time.Now().UTC().Add(48 * time.Hour)
			b.CheckOut = b.CheckIn.Add(48 * time.Hour)
			return b, nil
		},
	}
	svc := newTestStayService(nil, nil, bookings, nil)

	_, err := svc.CheckIn(context.Background(), testBookingID, "", testStaffID)
	if !apperrors.IsCode(err, apperrors.CodeInvalidTransition) {
		t.Errorf("expected InvalidTransition for early check-in, got %v", err)
	}

	svc.cfg.AllowEarlyCheckIn = true
	if _, err := svc.CheckIn(context.Background(), testBookingID, "", testStaffID); err != nil {
		t.Errorf("walk-in policy should allow early check-in, got %v", err)
	}
}

func TestCheckOut_ClosesStayAndFinalizesInvoice(t *testing.T) {
	releasedRoom := ""
	finalizer := &mockFinalizer{}
	bookings := &mockBookingStore{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return bookingWithStatus(model.BookingCheckedIn), nil
		},
	}
	stays := &mockStayRepository{
		findByBookingIDFunc: func(ctx context.Context, bookingID string) (*model.Stay, error) {
			return &model.Stay{
				ID:        testStayID,
				BookingID: bookingID,
				RoomID:    testRoomID,
				StaffID:   testStaffID,
				Status:    model.StayActive,
			}, nil
		},
	}
	rooms := &mockRoomRepository{
		releaseFunc: func(ctx context.Context, roomID string) error {
			releasedRoom = roomID
			return nil
		},
	}
	svc := newTestStayService(stays, rooms, bookings, finalizer)

	stay, err := svc.CheckOut(context.Background(), testBookingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stay.Status != model.StayCompleted {
		t.Errorf("expected completed stay, got %q", stay.Status)
	}
	if stay.ActualCheckOut == nil {
		t.Error("expected actual checkout timestamp to be set")
	}
	if releasedRoom != testRoomID {
		t.Errorf("expected room %s released, got %q", testRoomID, releasedRoom)
	}
	if finalizer.calls != 1 {
		t.Errorf("expected exactly one invoice finalization, got %d", finalizer.calls)
	}
}

func TestCheckOut_NotCheckedInRejected(t *testing.T) {
	for _, status := range []string{model.BookingConfirmed, model.BookingCheckedOut, model.BookingCancelled} {
		status := status
		t.Run(status, func(t *testing.T) {
			bookings := &mockBookingStore{
				findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
					return bookingWithStatus(status), nil
				},
			}
			svc := newTestStayService(nil, nil, bookings, nil)

			_, err := svc.CheckOut(context.Background(), testBookingID)
			if !apperrors.IsCode(err, apperrors.CodeInvalidTransition) {
				t.Errorf("expected InvalidTransition from %q, got %v", status, err)
			}
		})
	}
}

func TestAddCharge_SnapshotsPrice(t *testing.T) {
	stays := &mockStayRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Stay, error) {
			return &model.Stay{ID: id, BookingID: testBookingID, RoomID: testRoomID, Status: model.StayActive}, nil
		},
	}
	svc := newTestStayService(stays, nil, nil, nil)

	stay, err := svc.AddCharge(context.Background(), testStayID, model.ServiceLine{
		ServiceID: testServiceID,
		Quantity:  3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stay.Extras) != 1 {
		t.Fatalf("expected 1 charge, got %d", len(stay.Extras))
	}
	if stay.Extras[0].UnitPrice != 12 {
		t.Errorf("expected snapshotted price 12, got %v", stay.Extras[0].UnitPrice)
	}
	if stay.Extras[0].Label != "Minibar" {
		t.Errorf("expected label from catalog, got %q", stay.Extras[0].Label)
	}
}

func TestAddCharge_CompletedStayRejected(t *testing.T) {
	stays := &mockStayRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Stay, error) {
			return &model.Stay{ID: id, BookingID: testBookingID, Status: model.StayCompleted}, nil
		},
	}
	svc := newTestStayService(stays, nil, nil, nil)

	_, err := svc.AddCharge(context.Background(), testStayID, model.ServiceLine{
		ServiceID: testServiceID,
		Quantity:  1,
	})
	if !apperrors.IsCode(err, apperrors.CodeInvalidTransition) {
		t.Errorf("expected InvalidTransition, got %v", err)
	}
}
