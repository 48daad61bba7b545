package service

import (
	"context"
	"testing"
	"time"

	billingerrors "innkeeper/internal/billing/errors"
	"innkeeper/internal/billing/validator"
	"innkeeper/pkg/config"
	mongotx "innkeeper/pkg/db/mongo"
	apperrors "innkeeper/pkg/errors"
	"innkeeper/pkg/events"
	"innkeeper/pkg/logger"
	"innkeeper/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	testBookingID  = "507f1f77bcf86cd799439031"
	testRoomTypeID = "507f1f77bcf86cd799439032"
	testInvoiceID  = "507f1f77bcf86cd799439033"
	testStayID     = "507f1f77bcf86cd799439034"
	testServiceID  = "507f1f77bcf86cd799439035"
)

type mockInvoiceRepository struct {
	stored *model.Invoice
}

func (m *mockInvoiceRepository) FindByID(ctx context.Context, id string) (*model.Invoice, error) {
	if m.stored != nil && m.stored.ID == id {
		return m.stored, nil
	}
	return nil, billingerrors.ErrInvoiceNotFound
}

func (m *mockInvoiceRepository) FindByBookingID(ctx context.Context, bookingID string) (*model.Invoice, error) {
	if m.stored != nil && m.stored.BookingID == bookingID {
		return m.stored, nil
	}
	return nil, billingerrors.ErrInvoiceNotFound
}

func (m *mockInvoiceRepository) Upsert(ctx context.Context, invoice *model.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = testInvoiceID
	}
	cp := *invoice
	m.stored = &cp
	return nil
}

func (m *mockInvoiceRepository) SetStatus(ctx context.Context, id string, status string) error {
	if m.stored != nil && m.stored.ID == id {
		m.stored.Status = status
		return nil
	}
	return billingerrors.ErrInvoiceNotFound
}

func (m *mockInvoiceRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	var sessCtx mongo.SessionContext
	return fn(sessCtx)
}

type mockLedger struct {
	entries []*model.Transaction
}

func (m *mockLedger) Append(ctx context.Context, txn *model.Transaction) error {
	cp := *txn
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *mockLedger) FindByInvoiceID(ctx context.Context, invoiceID string) ([]*model.Transaction, error) {
	var out []*model.Transaction
	for _, e := range m.entries {
		if e.InvoiceID == invoiceID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockLedger) SumSucceeded(ctx context.Context, invoiceID string) (float64, error) {
	var sum float64
	for _, e := range m.entries {
		if e.InvoiceID == invoiceID && e.Status == model.TxnSucceeded {
			sum += e.Amount
		}
	}
	return sum, nil
}

type mockChargeSources struct {
	booking  *model.Booking
	stay     *model.Stay
	roomType *model.RoomType
}

func (m *mockChargeSources) FindBooking(ctx context.Context, id string) (*model.Booking, error) {
	if m.booking == nil {
		return nil, billingerrors.ErrBookingNotFound
	}
	return m.booking, nil
}

func (m *mockChargeSources) FindStay(ctx context.Context, bookingID string) (*model.Stay, error) {
	return m.stay, nil
}

func (m *mockChargeSources) FindRoomType(ctx context.Context, id string) (*model.RoomType, error) {
	if m.roomType == nil {
		return nil, billingerrors.ErrRoomTypeNotFound
	}
	return m.roomType, nil
}

func newTestBilling(sources *mockChargeSources) (*billingService, *mockInvoiceRepository, *mockLedger) {
	log := logger.NewNop()
	invoices := &mockInvoiceRepository{}
	ledger := &mockLedger{}
	if sources == nil {
		sources = defaultSources()
	}
	svc := &billingService{
		invoices:  invoices,
		ledger:    ledger,
		sources:   sources,
		validator: validator.NewPaymentValidator(log),
		emitter:   events.NewNopEmitter(),
		cfg: &config.Config{
			Log:         log,
			Currency:    "EUR",
			RoomTaxRate: 0.10,
		},
	}
	return svc, invoices, ledger
}

func defaultSources() *mockChargeSources {
	return &mockChargeSources{
		booking: &model.Booking{
			ID:         testBookingID,
			RoomTypeID: testRoomTypeID,
			CheckIn:    time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
			CheckOut:   time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC),
			Guests:     2,
			Currency:   "EUR",
			Status:     model.BookingConfirmed,
		},
		roomType: &model.RoomType{
			ID:        testRoomTypeID,
			Name:      "Standard Double",
			BasePrice: 100,
			Capacity:  2,
		},
	}
}

func TestBuildInvoice_RoomChargeWithServiceAndTax(t *testing.T) {
	// 2 nights x 100 at 10% plus one service, qty 2 x 25 at 5%.
	sources := defaultSources()
	sources.booking.Extras = []model.ServiceLine{
		{ServiceID: testServiceID, Label: "Breakfast", Quantity: 2, UnitPrice: 25, TaxRate: 0.05},
	}
	svc, _, _ := newTestBilling(sources)

	invoice, err := svc.BuildInvoice(context.Background(), testBookingID)
	require.NoError(t, err)

	require.Len(t, invoice.Lines, 2)
	assert.Equal(t, 250.0, invoice.Subtotal)
	assert.Equal(t, 22.5, invoice.Tax)
	assert.Equal(t, 272.5, invoice.Total)
	assert.Equal(t, "EUR", invoice.Currency)
	assert.Equal(t, model.InvoiceUnpaid, invoice.Status)

	roomLine := invoice.Lines[0]
	assert.Empty(t, roomLine.ServiceID)
	assert.Equal(t, 2, roomLine.Quantity)
	assert.Equal(t, 100.0, roomLine.UnitPrice)
	assert.Equal(t, 0.10, roomLine.TaxRate)
}

func TestBuildInvoice_RebuildIsIdempotent(t *testing.T) {
	sources := defaultSources()
	sources.booking.Extras = []model.ServiceLine{
		{ServiceID: testServiceID, Label: "Breakfast", Quantity: 2, UnitPrice: 25, TaxRate: 0.05},
	}
	svc, _, _ := newTestBilling(sources)

	first, err := svc.BuildInvoice(context.Background(), testBookingID)
	require.NoError(t, err)
	second, err := svc.BuildInvoice(context.Background(), testBookingID)
	require.NoError(t, err)

	assert.Equal(t, first.Subtotal, second.Subtotal)
	assert.Equal(t, first.Tax, second.Tax)
	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, first.ID, second.ID, "rebuild must reuse the invoice identity")
	assert.Equal(t, first.Number, second.Number, "rebuild must keep the invoice number")
}

func TestBuildInvoice_RebuildIsAdditive(t *testing.T) {
	sources := defaultSources()
	svc, _, _ := newTestBilling(sources)

	before, err := svc.BuildInvoice(context.Background(), testBookingID)
	require.NoError(t, err)

	sources.booking.Extras = []model.ServiceLine{
		{ServiceID: testServiceID, Label: "Spa", Quantity: 1, UnitPrice: 40, TaxRate: 0.10},
	}
	after, err := svc.BuildInvoice(context.Background(), testBookingID)
	require.NoError(t, err)

	assert.Equal(t, before.Subtotal+40, after.Subtotal)
	assert.Equal(t, before.Total+44, after.Total)
}

func TestBuildInvoice_IncludesStayCharges(t *testing.T) {
	sources := defaultSources()
	sources.stay = &model.Stay{
		ID:        testStayID,
		BookingID: testBookingID,
		Status:    model.StayActive,
		Extras: []model.ServiceLine{
			{ServiceID: testServiceID, Label: "Minibar", Quantity: 1, UnitPrice: 12, TaxRate: 0.20},
		},
	}
	svc, _, _ := newTestBilling(sources)

	invoice, err := svc.BuildInvoice(context.Background(), testBookingID)
	require.NoError(t, err)

	require.Len(t, invoice.Lines, 2)
	assert.Equal(t, testStayID, invoice.StayID)
	assert.Equal(t, 212.0, invoice.Subtotal)
	assert.InDelta(t, 22.4, invoice.Tax, 0.001)
}

func TestBuildInvoice_MergesRepeatedServiceConsumption(t *testing.T) {
	sources := defaultSources()
	sources.booking.Extras = []model.ServiceLine{
		{ServiceID: testServiceID, Label: "Breakfast", Quantity: 2, UnitPrice: 25, TaxRate: 0.05},
	}
	sources.stay = &model.Stay{
		ID:        testStayID,
		BookingID: testBookingID,
		Status:    model.StayActive,
		Extras: []model.ServiceLine{
			{ServiceID: testServiceID, Label: "Breakfast", Quantity: 1, UnitPrice: 25, TaxRate: 0.05},
			{ServiceID: testServiceID, Label: "Breakfast", Quantity: 1, UnitPrice: 30, TaxRate: 0.05},
		},
	}
	svc, _, _ := newTestBilling(sources)

	invoice, err := svc.BuildInvoice(context.Background(), testBookingID)
	require.NoError(t, err)

	// Room line, the merged 25.00 breakfasts, and the re-priced one apart.
	require.Len(t, invoice.Lines, 3)
	assert.Equal(t, 3, invoice.Lines[1].Quantity)
	assert.Equal(t, 25.0, invoice.Lines[1].UnitPrice)
	assert.Equal(t, 1, invoice.Lines[2].Quantity)
	assert.Equal(t, 30.0, invoice.Lines[2].UnitPrice)
	assert.Equal(t, 305.0, invoice.Subtotal)
}

func TestFinalize_FreezesInvoice(t *testing.T) {
	sources := defaultSources()
	svc, _, _ := newTestBilling(sources)

	finalized, err := svc.FinalizeForBooking(context.Background(), testBookingID)
	require.NoError(t, err)
	require.NotNil(t, finalized.FinalizedAt)
	totalAtCheckout := finalized.Total

	// Charges added after checkout must not alter the frozen invoice.
	sources.booking.Extras = []model.ServiceLine{
		{ServiceID: testServiceID, Label: "Late charge", Quantity: 1, UnitPrice: 999, TaxRate: 0.10},
	}
	rebuilt, err := svc.BuildInvoice(context.Background(), testBookingID)
	require.NoError(t, err)
	assert.Equal(t, totalAtCheckout, rebuilt.Total)
	assert.True(t, rebuilt.Finalized())
}

func TestBuildInvoice_UnknownBooking(t *testing.T) {
	svc, _, _ := newTestBilling(&mockChargeSources{})

	_, err := svc.BuildInvoice(context.Background(), testBookingID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 22.5, roundHalfUp(22.5))
	assert.Equal(t, 0.13, roundHalfUp(0.125))
	assert.Equal(t, 2.38, roundHalfUp(2.375))
	assert.Equal(t, 0.33, roundHalfUp(1.0/3))
}
