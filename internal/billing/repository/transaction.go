package repository

import (
	"context"
	"fmt"
	"innkeeper/pkg/config"
	"innkeeper/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	TransactionCollectionName = "Transactions"
)

// TransactionRepository is the append-only payment ledger. Entries are
// inserted once and never updated or deleted.
type TransactionRepository interface {
	Append(ctx context.Context, txn *model.Transaction) error
	FindByInvoiceID(ctx context.Context, invoiceID string) ([]*model.Transaction, error)
	// SumSucceeded totals the amounts of succeeded entries for an invoice.
	SumSucceeded(ctx context.Context, invoiceID string) (float64, error)
}

type mongoTransactionRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoTransactionRepository(cfg *config.Config) TransactionRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTransactionRepository{
		cfg:        cfg,
		collection: db.Collection(TransactionCollectionName),
	}
}

func (r *mongoTransactionRepository) Append(ctx context.Context, txn *model.Transaction) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	txn.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.InsertOne(ctx, txn)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		txn.ID = oid.Hex()
	}
	return nil
}

func (r *mongoTransactionRepository) FindByInvoiceID(ctx context.Context, invoiceID string) ([]*model.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"invoice_id": invoiceID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var txns []*model.Transaction
	if err = cursor.All(ctx, &txns); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}

	return txns, nil
}

func (r *mongoTransactionRepository) SumSucceeded(ctx context.Context, invoiceID string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"invoice_id": invoiceID,
			"status":     model.TxnSucceeded,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$amount"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to sum transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total float64 `bson:"total"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode transaction sum: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}

	return results[0].Total, nil
}
