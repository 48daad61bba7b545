package model

import "time"

// Room physical status values.
const (
	RoomAvailable   = "available"
	RoomOccupied    = "occupied"
	RoomBlocked     = "blocked"
	RoomMaintenance = "maintenance"
)

// RoomType is admin-managed reference data. The total number of rooms of a
// type is derived by counting Room documents, never stored on the type.
type RoomType struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	BasePrice float64   `json:"base_price" bson:"base_price" validate:"required,gt=0"`
	Capacity  int       `json:"capacity" bson:"capacity" validate:"required,min=1,max=20"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type Room struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RoomTypeID string    `json:"room_type_id" bson:"room_type_id" validate:"required,mongodb"`
	Number     string    `json:"number" bson:"number" validate:"required,min=1,max=10"`
	Status     string    `json:"status" bson:"status" validate:"required,oneof=available occupied blocked maintenance"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}
