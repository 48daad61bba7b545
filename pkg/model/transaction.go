package model

import "time"

// Payment transaction status values.
const (
	TxnSucceeded = "succeeded"
	TxnFailed    = "failed"
	TxnPending   = "pending"
)

// Transaction is one entry of the append-only payment ledger. Entries are
// never mutated after insert; the paid total of an invoice is always the
// sum of its succeeded entries at read time.
type Transaction struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty"`
	InvoiceID     string    `json:"invoice_id" bson:"invoice_id" validate:"required,mongodb"`
	Provider      string    `json:"provider" bson:"provider" validate:"required,min=2,max=50"`
	ProviderTxnID string    `json:"provider_txn_id" bson:"provider_txn_id"`
	Amount        float64   `json:"amount" bson:"amount" validate:"required,gt=0"`
	Status        string    `json:"status" bson:"status" validate:"required,oneof=succeeded failed pending"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// PaymentSummary reconciles the ledger against an invoice total on read.
type PaymentSummary struct {
	InvoiceID   string  `json:"invoice_id"`
	TotalPaid   float64 `json:"total_paid"`
	BalanceDue  float64 `json:"balance_due"`
	IsFullyPaid bool    `json:"is_fully_paid"`
}
