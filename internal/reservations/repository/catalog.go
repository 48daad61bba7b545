package repository

import (
	"context"
	"errors"
	"fmt"
	reserrors "innkeeper/internal/reservations/errors"
	"innkeeper/pkg/config"
	"innkeeper/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	RoomTypeCollectionName = "Room_types"
	RoomCollectionName     = "Rooms"
	ServiceCollectionName  = "Services"
)

// RoomTypeRepository reads inventory catalog reference data. The engine
// never writes it; room type CRUD belongs to the admin surface.
type RoomTypeRepository interface {
	FindByID(ctx context.Context, id string) (*model.RoomType, error)
	// CountRooms derives the total room count of a type from the rooms
	// collection. Counting all rooms, including blocked ones, keeps the
	// date-range capacity stable across short maintenance windows;
	// physical availability is resolved separately at check-in.
	CountRooms(ctx context.Context, roomTypeID string) (int64, error)
}

// ServiceCatalog reads add-on service reference data.
type ServiceCatalog interface {
	FindByID(ctx context.Context, id string) (*model.Service, error)
}

type mongoRoomTypeRepository struct {
	roomTypes *mongo.Collection
	rooms     *mongo.Collection
}

func NewRoomTypeRepository(cfg *config.Config) RoomTypeRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomTypeRepository{
		roomTypes: db.Collection(RoomTypeCollectionName),
		rooms:     db.Collection(RoomCollectionName),
	}
}

func (r *mongoRoomTypeRepository) FindByID(ctx context.Context, id string) (*model.RoomType, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reserrors.ErrInvalidID, id)
	}

	var roomType model.RoomType
	err = r.roomTypes.FindOne(ctx, bson.M{"_id": objectID}).Decode(&roomType)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reserrors.ErrRoomTypeNotFound
		}
		return nil, fmt.Errorf("failed to find room type: %w", err)
	}

	return &roomType, nil
}

func (r *mongoRoomTypeRepository) CountRooms(ctx context.Context, roomTypeID string) (int64, error) {
	count, err := r.rooms.CountDocuments(ctx, bson.M{"room_type_id": roomTypeID})
	if err != nil {
		return 0, fmt.Errorf("failed to count rooms: %w", err)
	}
	return count, nil
}

type mongoServiceCatalog struct {
	services *mongo.Collection
}

func NewServiceCatalog(cfg *config.Config) ServiceCatalog {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoServiceCatalog{
		services: db.Collection(ServiceCollectionName),
	}
}

func (r *mongoServiceCatalog) FindByID(ctx context.Context, id string) (*model.Service, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reserrors.ErrInvalidID, id)
	}

	var service model.Service
	err = r.services.FindOne(ctx, bson.M{"_id": objectID}).Decode(&service)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reserrors.ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to find service: %w", err)
	}

	return &service, nil
}
