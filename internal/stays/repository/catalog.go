package repository

import (
	"context"
	"errors"
	"fmt"
	stayserrors "innkeeper/internal/stays/errors"
	"innkeeper/pkg/config"
	"innkeeper/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	ServiceCollectionName = "Services"
)

// ServiceCatalog resolves service prices when charges are added during a
// stay. Prices are snapshotted onto the charge line at append time.
type ServiceCatalog interface {
	FindByID(ctx context.Context, id string) (*model.Service, error)
}

type mongoServiceCatalog struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewServiceCatalog(cfg *config.Config) ServiceCatalog {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoServiceCatalog{
		cfg:        cfg,
		collection: db.Collection(ServiceCollectionName),
	}
}

func (r *mongoServiceCatalog) FindByID(ctx context.Context, id string) (*model.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", stayserrors.ErrInvalidID, id)
	}

	var svc model.Service
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&svc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, stayserrors.ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to find service: %w", err)
	}

	return &svc, nil
}
