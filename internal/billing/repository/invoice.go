package repository

import (
	"context"
	"errors"
	"fmt"
	billingerrors "innkeeper/internal/billing/errors"
	"innkeeper/pkg/config"
	mongotx "innkeeper/pkg/db/mongo"
	"innkeeper/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	InvoiceCollectionName = "Invoices"
)

type InvoiceRepository interface {
	FindByID(ctx context.Context, id string) (*model.Invoice, error)
	FindByBookingID(ctx context.Context, bookingID string) (*model.Invoice, error)
	// Upsert writes the recomputed invoice keyed by booking, preserving the
	// identity and creation time of an existing document.
	Upsert(ctx context.Context, invoice *model.Invoice) error
	SetStatus(ctx context.Context, id string, status string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoInvoiceRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoInvoiceRepository(cfg *config.Config) InvoiceRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoInvoiceRepository{
		cfg:        cfg,
		collection: db.Collection(InvoiceCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoInvoiceRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoInvoiceRepository) FindByID(ctx context.Context, id string) (*model.Invoice, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", billingerrors.ErrInvalidID, id)
	}

	var invoice model.Invoice
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&invoice)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, billingerrors.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to find invoice: %w", err)
	}

	return &invoice, nil
}

func (r *mongoInvoiceRepository) FindByBookingID(ctx context.Context, bookingID string) (*model.Invoice, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var invoice model.Invoice
	err := r.collection.FindOne(ctx, bson.M{"booking_id": bookingID}).Decode(&invoice)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, billingerrors.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to find invoice by booking: %w", err)
	}

	return &invoice, nil
}

func (r *mongoInvoiceRepository) Upsert(ctx context.Context, invoice *model.Invoice) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	invoice.UpdatedAt = now

	set := bson.M{
		"number":       invoice.Number,
		"booking_id":   invoice.BookingID,
		"lines":        invoice.Lines,
		"subtotal":     invoice.Subtotal,
		"tax":          invoice.Tax,
		"total":        invoice.Total,
		"currency":     invoice.Currency,
		"status":       invoice.Status,
		"updated_at":   invoice.UpdatedAt,
	}
	if invoice.StayID != "" {
		set["stay_id"] = invoice.StayID
	}
	if invoice.FinalizedAt != nil {
		set["finalized_at"] = invoice.FinalizedAt
	}

	filter := bson.M{"booking_id": invoice.BookingID}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored model.Invoice
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return fmt.Errorf("failed to upsert invoice: %w", err)
	}

	invoice.ID = stored.ID
	invoice.CreatedAt = stored.CreatedAt
	return nil
}

func (r *mongoInvoiceRepository) SetStatus(ctx context.Context, id string, status string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", billingerrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update invoice status: %w", err)
	}
	if result.MatchedCount == 0 {
		return billingerrors.ErrInvoiceNotFound
	}
	return nil
}

func (r *mongoInvoiceRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
