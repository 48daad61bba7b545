package model

import "time"

// Invoice status values.
const (
	InvoiceUnpaid   = "unpaid"
	InvoicePaid     = "paid"
	InvoiceRefunded = "refunded"
)

// LineItem is one priced row of an invoice. ServiceID is empty for the
// room-charge line.
type LineItem struct {
	Description string  `json:"description" bson:"description"`
	ServiceID   string  `json:"service_id,omitempty" bson:"service_id,omitempty"`
	Quantity    int     `json:"quantity" bson:"quantity"`
	UnitPrice   float64 `json:"unit_price" bson:"unit_price"`
	TaxRate     float64 `json:"tax_rate" bson:"tax_rate"`
}

// Invoice is a recomputable projection of booking and stay charges, one
// per booking. Totals are derived from the lines, never edited directly.
// Once FinalizedAt is set (at check-out) the invoice is frozen and rebuilds
// return it unchanged.
type Invoice struct {
	ID          string     `json:"id,omitempty" bson:"_id,omitempty"`
	Number      string     `json:"number" bson:"number"`
	BookingID   string     `json:"booking_id" bson:"booking_id"`
	StayID      string     `json:"stay_id,omitempty" bson:"stay_id,omitempty"`
	Lines       []LineItem `json:"lines" bson:"lines"`
	Subtotal    float64    `json:"subtotal" bson:"subtotal"`
	Tax         float64    `json:"tax" bson:"tax"`
	Total       float64    `json:"total" bson:"total"`
	Currency    string     `json:"currency" bson:"currency"`
	Status      string     `json:"status" bson:"status"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty" bson:"finalized_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}

// Finalized reports whether the invoice is frozen against recomputation.
func (i *Invoice) Finalized() bool {
	return i.FinalizedAt != nil
}
