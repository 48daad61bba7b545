package repository

import (
	"context"
	"errors"
	"fmt"
	stayserrors "innkeeper/internal/stays/errors"
	"innkeeper/pkg/config"
	mongotx "innkeeper/pkg/db/mongo"
	"innkeeper/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	StayCollectionName = "Stays"
)

type StayRepository interface {
	Create(ctx context.Context, stay *model.Stay) error
	FindByID(ctx context.Context, id string) (*model.Stay, error)
	FindByBookingID(ctx context.Context, bookingID string) (*model.Stay, error)
	// Close sets the actual checkout timestamp and marks the stay completed.
	Close(ctx context.Context, id string, checkedOutAt time.Time) error
	// AppendCharge pushes an extra charge line onto an active stay.
	AppendCharge(ctx context.Context, id string, line model.ServiceLine) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoStayRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoStayRepository(cfg *config.Config) StayRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoStayRepository{
		cfg:        cfg,
		collection: db.Collection(StayCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoStayRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoStayRepository) Create(ctx context.Context, stay *model.Stay) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	stay.CreatedAt = now
	stay.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, stay)
	if err != nil {
		return fmt.Errorf("failed to create stay: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		stay.ID = oid.Hex()
	}
	return nil
}

func (r *mongoStayRepository) FindByID(ctx context.Context, id string) (*model.Stay, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", stayserrors.ErrInvalidID, id)
	}

	var stay model.Stay
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&stay)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, stayserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find stay: %w", err)
	}

	return &stay, nil
}

func (r *mongoStayRepository) FindByBookingID(ctx context.Context, bookingID string) (*model.Stay, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var stay model.Stay
	err := r.collection.FindOne(ctx, bson.M{"booking_id": bookingID}).Decode(&stay)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, stayserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find stay by booking: %w", err)
	}

	return &stay, nil
}

func (r *mongoStayRepository) Close(ctx context.Context, id string, checkedOutAt time.Time) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", stayserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "status": model.StayActive}
	update := bson.M{
		"$set": bson.M{
			"actual_check_out": checkedOutAt,
			"status":           model.StayCompleted,
			"updated_at":       time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to close stay: %w", err)
	}
	if result.MatchedCount == 0 {
		return stayserrors.ErrNotFound
	}
	return nil
}

func (r *mongoStayRepository) AppendCharge(ctx context.Context, id string, line model.ServiceLine) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", stayserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "status": model.StayActive}
	update := bson.M{
		"$push": bson.M{"extras": line},
		"$set":  bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to append stay charge: %w", err)
	}
	if result.MatchedCount == 0 {
		return stayserrors.ErrNotFound
	}
	return nil
}

func (r *mongoStayRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
