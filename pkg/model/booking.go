package model

import "time"

// Booking lifecycle states. Transitions are monotonic except cancellation,
// which is reachable from any pre-check-in state.
const (
	BookingRequested  = "requested"
	BookingApproved   = "approved"
	BookingConfirmed  = "confirmed"
	BookingCheckedIn  = "checked_in"
	BookingCheckedOut = "checked_out"
	BookingCancelled  = "cancelled"
)

// CommittedStatuses are the states that consume room-type capacity in
// overlap counts. A plain "requested" booking is a soft hold and does not.
var CommittedStatuses = []string{BookingApproved, BookingConfirmed, BookingCheckedIn}

// ServiceLine is a priced extra-service snapshot. UnitPrice is captured at
// request time so later catalog price changes never alter an existing
// booking's charges.
type ServiceLine struct {
	ServiceID string  `json:"service_id" bson:"service_id" validate:"required,mongodb"`
	Label     string  `json:"label" bson:"label" validate:"omitempty,max=100"`
	Quantity  int     `json:"quantity" bson:"quantity" validate:"required,min=1,max=100"`
	UnitPrice float64 `json:"unit_price" bson:"unit_price" validate:"omitempty,gte=0"`
	TaxRate   float64 `json:"tax_rate" bson:"tax_rate" validate:"omitempty,gte=0,lt=1"`
}

// Booking holds a half-open [check_in, check_out) date range. RoomID is
// empty until check-in binds the booking to a physical room. Version backs
// compare-and-swap serialization of concurrent lifecycle transitions.
type Booking struct {
	ID          string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	GuestID     string        `json:"guest_id" bson:"guest_id" validate:"required,mongodb"`
	GuestName   string        `json:"guest_name" bson:"guest_name" validate:"required,min=2,max=100"`
	RoomTypeID  string        `json:"room_type_id" bson:"room_type_id" validate:"required,mongodb"`
	RoomID      string        `json:"room_id,omitempty" bson:"room_id,omitempty" validate:"omitempty,mongodb"`
	CheckIn     time.Time     `json:"check_in" bson:"check_in" validate:"required,whole_night"`
	CheckOut    time.Time     `json:"check_out" bson:"check_out" validate:"required,gtfield=CheckIn,whole_night"`
	Guests      int           `json:"guests" bson:"guests" validate:"required,min=1,max=20"`
	Extras      []ServiceLine `json:"extras" bson:"extras" validate:"omitempty,dive"`
	TotalAmount float64       `json:"total_amount" bson:"total_amount" validate:"omitempty,gte=0"`
	Currency    string        `json:"currency" bson:"currency" validate:"required,len=3"`
	Status      string        `json:"status" bson:"status" validate:"required,oneof=requested approved confirmed checked_in checked_out cancelled"`
	Version     int64         `json:"version" bson:"version" validate:"omitempty"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt   time.Time     `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// Nights returns the whole-night length of the booking's range. Any range
// shorter than 24 hours still counts as one night.
func (b *Booking) Nights() int {
	hours := b.CheckOut.Sub(b.CheckIn).Hours()
	nights := int(hours / 24)
	if hours > float64(nights)*24 {
		nights++
	}
	if nights < 1 {
		nights = 1
	}
	return nights
}

// Terminal reports whether no further lifecycle transition is possible.
func (b *Booking) Terminal() bool {
	return b.Status == BookingCheckedOut || b.Status == BookingCancelled
}
