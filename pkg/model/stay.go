package model

import "time"

// Stay status values.
const (
	StayActive    = "active"
	StayCompleted = "completed"
	StayDisputed  = "disputed"
)

// Stay binds a booking to the concrete room it occupies and the staff
// member who performed check-in. Created lazily at check-in, one per
// booking. Extras collects charges added during the stay; they feed the
// final invoice alongside the booking's own extras.
type Stay struct {
	ID             string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	BookingID      string        `json:"booking_id" bson:"booking_id" validate:"required,mongodb"`
	RoomID         string        `json:"room_id" bson:"room_id" validate:"required,mongodb"`
	StaffID        string        `json:"staff_id" bson:"staff_id" validate:"required,mongodb"`
	ActualCheckIn  time.Time     `json:"actual_check_in" bson:"actual_check_in" validate:"required"`
	ActualCheckOut *time.Time    `json:"actual_check_out,omitempty" bson:"actual_check_out,omitempty" validate:"omitempty"`
	Extras         []ServiceLine `json:"extras" bson:"extras" validate:"omitempty,dive"`
	Status         string        `json:"status" bson:"status" validate:"required,oneof=active completed disputed"`
	CreatedAt      time.Time     `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt      time.Time     `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}
