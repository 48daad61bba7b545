package repository

import (
	"context"
	"errors"
	"fmt"
	stayserrors "innkeeper/internal/stays/errors"
	"innkeeper/pkg/config"
	"innkeeper/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	BookingCollectionName = "Bookings"
)

// BookingStore is the slice of the bookings collection the stays service
// needs: reading a booking and moving it between check-in states.
type BookingStore interface {
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	CompareAndSwapStatus(ctx context.Context, id string, fromStatuses []string, toStatus string, version int64) error
	// SetRoom binds the allocated physical room onto the booking.
	SetRoom(ctx context.Context, id string, roomID string) error
}

type mongoBookingStore struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBookingStore(cfg *config.Config) BookingStore {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingStore{
		cfg:        cfg,
		collection: db.Collection(BookingCollectionName),
	}
}

func (r *mongoBookingStore) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingStore) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", stayserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, stayserrors.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingStore) CompareAndSwapStatus(ctx context.Context, id string, fromStatuses []string, toStatus string, version int64) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", stayserrors.ErrInvalidID, id)
	}

	filter := bson.M{
		"_id":     objectID,
		"status":  bson.M{"$in": fromStatuses},
		"version": version,
	}
	update := bson.M{
		"$set": bson.M{
			"status":     toStatus,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	if result.MatchedCount == 0 {
		return stayserrors.ErrVersionConflict
	}

	return nil
}

func (r *mongoBookingStore) SetRoom(ctx context.Context, id string, roomID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", stayserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"room_id":    roomID,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to bind room to booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return stayserrors.ErrBookingNotFound
	}
	return nil
}
