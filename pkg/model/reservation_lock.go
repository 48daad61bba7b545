package model

import "time"

// ReservationLock is an advisory lock preventing concurrent count-then-insert
// races on a room type. The _id encodes the lock scope; a duplicate key on
// insert means another request holds the lock. ExpiresAt backs a TTL index
// so crashed holders cannot wedge a room type.
type ReservationLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
