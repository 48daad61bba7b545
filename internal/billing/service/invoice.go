package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	billingerrors "innkeeper/internal/billing/errors"
	"innkeeper/internal/billing/repository"
	"innkeeper/internal/billing/validator"
	"innkeeper/pkg/config"
	apperrors "innkeeper/pkg/errors"
	"innkeeper/pkg/events"
	"innkeeper/pkg/model"

	"github.com/google/uuid"
)

type BillingService interface {
	// BuildInvoice recomputes the booking's invoice from current booking,
	// stay and room type data and persists the projection. Building from
	// unchanged inputs yields identical totals; a finalized invoice is
	// returned unchanged.
	BuildInvoice(ctx context.Context, bookingID string) (*model.Invoice, error)
	// FinalizeForBooking rebuilds the invoice one last time and freezes it.
	FinalizeForBooking(ctx context.Context, bookingID string) (*model.Invoice, error)
	GetInvoice(ctx context.Context, id string) (*model.Invoice, error)
	GetInvoiceByBooking(ctx context.Context, bookingID string) (*model.Invoice, error)
	RecordPayment(ctx context.Context, txn *model.Transaction) error
	Summary(ctx context.Context, invoiceID string) (*model.PaymentSummary, error)
	ListPayments(ctx context.Context, invoiceID string) ([]*model.Transaction, error)
}

type billingService struct {
	invoices  repository.InvoiceRepository
	ledger    repository.TransactionRepository
	sources   repository.ChargeSources
	validator *validator.PaymentValidator
	emitter   events.Emitter
	cfg       *config.Config
}

func NewBillingService(
	invoices repository.InvoiceRepository,
	ledger repository.TransactionRepository,
	sources repository.ChargeSources,
	validator *validator.PaymentValidator,
	emitter events.Emitter,
	cfg *config.Config,
) BillingService {
	return &billingService{
		invoices:  invoices,
		ledger:    ledger,
		sources:   sources,
		validator: validator,
		emitter:   emitter,
		cfg:       cfg,
	}
}

func (s *billingService) BuildInvoice(ctx context.Context, bookingID string) (*model.Invoice, error) {
	return s.buildInvoice(ctx, bookingID, false)
}

func (s *billingService) FinalizeForBooking(ctx context.Context, bookingID string) (*model.Invoice, error) {
	return s.buildInvoice(ctx, bookingID, true)
}

func (s *billingService) buildInvoice(ctx context.Context, bookingID string, finalize bool) (*model.Invoice, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	existing, err := s.invoices.FindByBookingID(ctx, bookingID)
	if err != nil && !errors.Is(err, billingerrors.ErrInvoiceNotFound) {
		return nil, apperrors.Internal("Failed to look up invoice", err)
	}
	if existing != nil && existing.Finalized() {
		return existing, nil
	}

	booking, err := s.sources.FindBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, billingerrors.ErrBookingNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", bookingID)
		}
		if errors.Is(err, billingerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to read booking", err)
	}

	roomType, err := s.sources.FindRoomType(ctx, booking.RoomTypeID)
	if err != nil {
		if errors.Is(err, billingerrors.ErrRoomTypeNotFound) {
			return nil, apperrors.NotFoundWithID("Room type", booking.RoomTypeID)
		}
		return nil, apperrors.Internal("Failed to read room type", err)
	}

	stay, err := s.sources.FindStay(ctx, bookingID)
	if err != nil {
		return nil, apperrors.Internal("Failed to read stay", err)
	}

	invoice := s.compose(booking, stay, roomType)
	if existing != nil {
		invoice.ID = existing.ID
		invoice.Number = existing.Number
		invoice.Status = existing.Status
	}
	if finalize {
		now := time.Now().UTC().Truncate(time.Millisecond)
		invoice.FinalizedAt = &now
	}

	if err := s.invoices.Upsert(ctx, invoice); err != nil {
		s.cfg.Log.Error("Failed to persist invoice", "booking_id", bookingID, "error", err)
		return nil, apperrors.Internal("Failed to persist invoice", err)
	}

	s.cfg.Log.Info("Invoice built",
		"invoice_id", invoice.ID,
		"booking_id", bookingID,
		"total", invoice.Total,
		"finalized", finalize,
	)
	return invoice, nil
}

// compose derives the invoice lines and totals. One room-charge line at the
// configured default tax rate, then one line per charged service at that
// service's rate, booking extras first, stay charges after. Totals round
// half-up to cents once per aggregate, never per line, so repeated builds
// from the same inputs cannot drift.
func (s *billingService) compose(booking *model.Booking, stay *model.Stay, roomType *model.RoomType) *model.Invoice {
	nights := booking.Nights()
	lines := []model.LineItem{
		{
			Description: fmt.Sprintf("%s, %d night(s)", roomType.Name, nights),
			Quantity:    nights,
			UnitPrice:   roomType.BasePrice,
			TaxRate:     s.cfg.RoomTaxRate,
		},
	}

	serviceLines := booking.Extras
	if stay != nil {
		serviceLines = append(append([]model.ServiceLine{}, booking.Extras...), stay.Extras...)
	}
	lines = append(lines, mergeServiceLines(serviceLines)...)

	var subtotal, tax float64
	for _, line := range lines {
		lineAmount := float64(line.Quantity) * line.UnitPrice
		subtotal += lineAmount
		tax += lineAmount * line.TaxRate
	}
	subtotal = roundHalfUp(subtotal)
	tax = roundHalfUp(tax)

	invoice := &model.Invoice{
		Number:    newInvoiceNumber(),
		BookingID: booking.ID,
		Lines:     lines,
		Subtotal:  subtotal,
		Tax:       tax,
		Total:     roundHalfUp(subtotal + tax),
		Currency:  booking.Currency,
		Status:    model.InvoiceUnpaid,
	}
	if stay != nil {
		invoice.StayID = stay.ID
	}
	return invoice
}

func (s *billingService) GetInvoice(ctx context.Context, id string) (*model.Invoice, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Invoice ID cannot be empty")
	}

	invoice, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, billingerrors.ErrInvoiceNotFound) {
			return nil, apperrors.NotFoundWithID("Invoice", id)
		}
		if errors.Is(err, billingerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid invoice ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve invoice", err)
	}

	return invoice, nil
}

func (s *billingService) GetInvoiceByBooking(ctx context.Context, bookingID string) (*model.Invoice, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	invoice, err := s.invoices.FindByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, billingerrors.ErrInvoiceNotFound) {
			return nil, apperrors.NotFoundWithID("Invoice for booking", bookingID)
		}
		return nil, apperrors.Internal("Failed to retrieve invoice", err)
	}

	return invoice, nil
}

// mergeServiceLines folds repeated consumptions of the same service into a
// single invoice line. Lines only merge when their snapshotted price and
// rate match; a price change between captures keeps the charges separate.
func mergeServiceLines(extras []model.ServiceLine) []model.LineItem {
	type lineKey struct {
		serviceID string
		unitPrice float64
		taxRate   float64
	}

	var lines []model.LineItem
	index := make(map[lineKey]int)
	for _, extra := range extras {
		key := lineKey{extra.ServiceID, extra.UnitPrice, extra.TaxRate}
		if i, ok := index[key]; ok {
			lines[i].Quantity += extra.Quantity
			continue
		}
		index[key] = len(lines)
		lines = append(lines, model.LineItem{
			Description: extra.Label,
			ServiceID:   extra.ServiceID,
			Quantity:    extra.Quantity,
			UnitPrice:   extra.UnitPrice,
			TaxRate:     extra.TaxRate,
		})
	}
	return lines
}

func roundHalfUp(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

func newInvoiceNumber() string {
	return "INV-" + strings.ToUpper(uuid.NewString()[:8])
}
