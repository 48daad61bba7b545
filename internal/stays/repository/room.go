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
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	RoomCollectionName = "Rooms"
)

type RoomRepository interface {
	// Claim atomically takes one available room of the type and marks it
	// occupied. A non-empty roomID restricts the claim to that room; an
	// empty one takes the lowest-numbered available room of the type.
	// Returns ErrNoRoomAvailable when no matching room is free.
	Claim(ctx context.Context, roomTypeID, roomID string) (*model.Room, error)
	// Release marks a room available again after checkout.
	Release(ctx context.Context, roomID string) error
}

type mongoRoomRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRoomRepository(cfg *config.Config) RoomRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomRepository{
		cfg:        cfg,
		collection: db.Collection(RoomCollectionName),
	}
}

func (r *mongoRoomRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoRoomRepository) Claim(ctx context.Context, roomTypeID, roomID string) (*model.Room, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"room_type_id": roomTypeID,
		"status":       model.RoomAvailable,
	}
	if roomID != "" {
		objectID, err := primitive.ObjectIDFromHex(roomID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", stayserrors.ErrInvalidID, roomID)
		}
		filter["_id"] = objectID
	}
	update := bson.M{"$set": bson.M{"status": model.RoomOccupied}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "number", Value: 1}}).
		SetReturnDocument(options.After)

	var room model.Room
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, stayserrors.ErrNoRoomAvailable
		}
		return nil, fmt.Errorf("failed to claim room: %w", err)
	}

	return &room, nil
}

func (r *mongoRoomRepository) Release(ctx context.Context, roomID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(roomID)
	if err != nil {
		return fmt.Errorf("%w: %s", stayserrors.ErrInvalidID, roomID)
	}

	filter := bson.M{"_id": objectID, "status": model.RoomOccupied}
	update := bson.M{"$set": bson.M{"status": model.RoomAvailable}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to release room: %w", err)
	}
	if result.MatchedCount == 0 {
		return stayserrors.ErrNotFound
	}
	return nil
}
