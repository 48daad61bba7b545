package model

import "time"

// Service is catalog reference data for add-on services (breakfast, spa,
// laundry). The engine only reads it; CRUD lives elsewhere.
type Service struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	UnitPrice float64   `json:"unit_price" bson:"unit_price" validate:"required,gt=0"`
	TaxRate   float64   `json:"tax_rate" bson:"tax_rate" validate:"gte=0,lte=1"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
