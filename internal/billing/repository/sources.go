package repository

import (
	"context"
	"errors"
	"fmt"
	billingerrors "innkeeper/internal/billing/errors"
	"innkeeper/pkg/config"
	"innkeeper/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	BookingCollectionName  = "Bookings"
	StayCollectionName     = "Stays"
	RoomTypeCollectionName = "Room_types"
)

// ChargeSources exposes the read side of the data an invoice is computed
// from. Invoices are a projection; pricing truth stays in these records.
type ChargeSources interface {
	FindBooking(ctx context.Context, id string) (*model.Booking, error)
	// FindStay returns the booking's stay, or nil when check-in has not
	// happened yet.
	FindStay(ctx context.Context, bookingID string) (*model.Stay, error)
	FindRoomType(ctx context.Context, id string) (*model.RoomType, error)
}

type mongoChargeSources struct {
	cfg       *config.Config
	bookings  *mongo.Collection
	stays     *mongo.Collection
	roomTypes *mongo.Collection
}

func NewMongoChargeSources(cfg *config.Config) ChargeSources {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoChargeSources{
		cfg:       cfg,
		bookings:  db.Collection(BookingCollectionName),
		stays:     db.Collection(StayCollectionName),
		roomTypes: db.Collection(RoomTypeCollectionName),
	}
}

func (r *mongoChargeSources) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.cfg.ReadTimeout)
}

func (r *mongoChargeSources) FindBooking(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", billingerrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.bookings.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, billingerrors.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoChargeSources) FindStay(ctx context.Context, bookingID string) (*model.Stay, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var stay model.Stay
	err := r.stays.FindOne(ctx, bson.M{"booking_id": bookingID}).Decode(&stay)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find stay: %w", err)
	}

	return &stay, nil
}

func (r *mongoChargeSources) FindRoomType(ctx context.Context, id string) (*model.RoomType, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", billingerrors.ErrInvalidID, id)
	}

	var roomType model.RoomType
	err = r.roomTypes.FindOne(ctx, bson.M{"_id": objectID}).Decode(&roomType)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, billingerrors.ErrRoomTypeNotFound
		}
		return nil, fmt.Errorf("failed to find room type: %w", err)
	}

	return &roomType, nil
}
