package service

import (
	"context"

	apperrors "innkeeper/pkg/errors"
	"innkeeper/pkg/events"
	"innkeeper/pkg/model"

	"github.com/google/uuid"
)

// RecordPayment appends a transaction to the ledger. The invoice total is
// never touched; reconciliation happens on read in Summary. A succeeded
// payment that covers the total flips the invoice status to paid.
func (s *billingService) RecordPayment(ctx context.Context, txn *model.Transaction) error {
	if txn.Amount <= 0 {
		return apperrors.InvalidAmount("Payment amount must be positive")
	}
	if txn.Status == "" {
		txn.Status = model.TxnSucceeded
	}
	if txn.ProviderTxnID == "" {
		txn.ProviderTxnID = uuid.NewString()
	}
	if err := s.validator.Validate(txn); err != nil {
		s.cfg.Log.Warn("Payment validation failed", "error", err)
		return apperrors.Validation("Payment validation failed", map[string]any{"error": err.Error()})
	}

	invoice, err := s.GetInvoice(ctx, txn.InvoiceID)
	if err != nil {
		return err
	}

	if err := s.ledger.Append(ctx, txn); err != nil {
		s.cfg.Log.Error("Failed to record payment", "invoice_id", txn.InvoiceID, "error", err)
		return apperrors.Internal("Failed to record payment", err)
	}

	s.cfg.Log.Info("Payment recorded",
		"transaction_id", txn.ID,
		"invoice_id", txn.InvoiceID,
		"amount", txn.Amount,
		"status", txn.Status,
	)
	s.emitter.Emit(events.PaymentRecorded, txn.ID)

	if txn.Status != model.TxnSucceeded || invoice.Status != model.InvoiceUnpaid {
		return nil
	}

	summary, err := s.Summary(ctx, txn.InvoiceID)
	if err != nil {
		return err
	}
	if summary.IsFullyPaid {
		if err := s.invoices.SetStatus(ctx, invoice.ID, model.InvoicePaid); err != nil {
			s.cfg.Log.Error("Failed to mark invoice paid", "invoice_id", invoice.ID, "error", err)
			return apperrors.Internal("Failed to mark invoice paid", err)
		}
	}
	return nil
}

// Summary reconciles the succeeded ledger entries against the invoice
// total. Over-payment keeps the balance at zero but is visible through
// TotalPaid.
func (s *billingService) Summary(ctx context.Context, invoiceID string) (*model.PaymentSummary, error) {
	invoice, err := s.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	totalPaid, err := s.ledger.SumSucceeded(ctx, invoiceID)
	if err != nil {
		return nil, apperrors.Internal("Failed to sum payments", err)
	}
	totalPaid = roundHalfUp(totalPaid)

	balance := roundHalfUp(invoice.Total - totalPaid)
	if balance < 0 {
		balance = 0
	}

	return &model.PaymentSummary{
		InvoiceID:   invoiceID,
		TotalPaid:   totalPaid,
		BalanceDue:  balance,
		IsFullyPaid: totalPaid >= invoice.Total,
	}, nil
}

func (s *billingService) ListPayments(ctx context.Context, invoiceID string) ([]*model.Transaction, error) {
	if invoiceID == "" {
		return nil, apperrors.InvalidInput("Invoice ID cannot be empty")
	}

	txns, err := s.ledger.FindByInvoiceID(ctx, invoiceID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list payments", err)
	}
	return txns, nil
}
