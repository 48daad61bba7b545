package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "innkeeper/pkg/errors"
	"innkeeper/pkg/logger"
	"innkeeper/pkg/model"

	"innkeeper/internal/reservations/service"

	"github.com/julienschmidt/httprouter"
)

// Mock service for testing
type mockReservationService struct {
	reserveFunc      func(ctx context.Context, booking *model.Booking) error
	getByIDFunc      func(ctx context.Context, id string) (*model.Booking, error)
	availabilityFunc func(ctx context.Context, roomTypeID string, from, to time.Time) (*service.Availability, error)
	cancelFunc       func(ctx context.Context, id string) (*model.Booking, error)
}

func (m *mockReservationService) Reserve(ctx context.Context, booking *model.Booking) error {
	if m.reserveFunc != nil {
		return m.reserveFunc(ctx, booking)
	}
	return nil
}

func (m *mockReservationService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, apperrors.NotFoundWithID("Booking", id)
}

func (m *mockReservationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	return []*model.Booking{}, 0, nil
}

func (m *mockReservationService) Approve(ctx context.Context, id string) (*model.Booking, error) {
	return nil, nil
}

func (m *mockReservationService) Confirm(ctx context.Context, id string) (*model.Booking, error) {
	return nil, nil
}

func (m *mockReservationService) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockReservationService) Availability(ctx context.Context, roomTypeID string, from, to time.Time) (*service.Availability, error) {
	if m.availabilityFunc != nil {
		return m.availabilityFunc(ctx, roomTypeID, from, to)
	}
	return &service.Availability{RoomTypeID: roomTypeID, From: from, To: to}, nil
}

func newTestHandler(svc *mockReservationService) *ReservationHandler {
	return &ReservationHandler{
		service: svc,
		log:     logger.NewNop(),
	}
}

func newRouter(h *ReservationHandler) *httprouter.Router {
	router := httprouter.New()
	h.RegisterRoutes(router)
	return router
}

func TestReserve_NoAvailabilityMapsTo409(t *testing.T) {
	mockService := &mockReservationService{
		reserveFunc: func(ctx context.Context, booking *model.Booking) error {
			return apperrors.NoAvailability(booking.RoomTypeID)
		},
	}
	router := newRouter(newTestHandler(mockService))

	body := `{"guest_id":"507f1f77bcf86cd799439011","guest_name":"Ada Guest","room_type_id":"507f1f77bcf86cd799439012","check_in":"2024-06-01T00:00:00Z","check_out":"2024-06-03T00:00:00Z","guests":2}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", rec.Code)
	}

	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != apperrors.CodeNoAvailability {
		t.Errorf("expected code %s, got %s", apperrors.CodeNoAvailability, resp.Code)
	}
}

func TestReserve_MalformedBody(t *testing.T) {
	router := newRouter(newTestHandler(&mockReservationService{}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestGetByID_NotFoundMapsTo404(t *testing.T) {
	router := newRouter(newTestHandler(&mockReservationService{}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations/id/507f1f77bcf86cd799439099", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}

func TestAvailability_ParsesDatesAsUTC(t *testing.T) {
	var gotFrom, gotTo time.Time
	var gotType string
	mockService := &mockReservationService{
		availabilityFunc: func(ctx context.Context, roomTypeID string, from, to time.Time) (*service.Availability, error) {
			gotType = roomTypeID
			gotFrom = from
			gotTo = to
			return &service.Availability{
				RoomTypeID:     roomTypeID,
				From:           from,
				To:             to,
				TotalRooms:     5,
				ReservedCount:  2,
				AvailableCount: 3,
			}, nil
		},
	}
	router := newRouter(newTestHandler(mockService))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/availability?room_type_id=507f1f77bcf86cd799439012&from=2024-06-01&to=2024-06-03", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotType != "507f1f77bcf86cd799439012" {
		t.Errorf("unexpected room type: %s", gotType)
	}
	wantFrom := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)
	if !gotFrom.Equal(wantFrom) || !gotTo.Equal(wantTo) {
		t.Errorf("unexpected range: %v - %v", gotFrom, gotTo)
	}

	var resp struct {
		Data service.Availability `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.AvailableCount != 3 {
		t.Errorf("expected available count 3, got %d", resp.Data.AvailableCount)
	}
}

func TestAvailability_MissingDateRejected(t *testing.T) {
	router := newRouter(newTestHandler(&mockReservationService{}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/availability?room_type_id=507f1f77bcf86cd799439012&from=2024-06-01", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestCancel_ReturnsUpdatedBooking(t *testing.T) {
	mockService := &mockReservationService{
		cancelFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return &model.Booking{ID: id, Status: model.BookingCancelled}, nil
		},
	}
	router := newRouter(newTestHandler(mockService))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations/id/507f1f77bcf86cd799439013/cancel", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Data model.Booking `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.Status != model.BookingCancelled {
		t.Errorf("expected cancelled status, got %q", resp.Data.Status)
	}
}
