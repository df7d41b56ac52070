package notification

import (
	"context"
	"errors"
	"time"

	"FoodExpiryTracker/internal/apperr"
	"FoodExpiryTracker/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const duplicateKeyCode = 11000

// Ledger remembers which items were already notified for a window date.
type Ledger interface {
	Notified(ctx context.Context, dateKey string, itemIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error)
	Record(ctx context.Context, dateKey, recipient string, itemIDs []primitive.ObjectID) error
}

// NewLedger returns the Mongo ledger when NOTIFY_DEDUP is on and a no-op ledger
// otherwise, in which case every pass resends.
func NewLedger(cfg *config.NotifyConfig, repo *LedgerRepository) Ledger {
	if !cfg.Dedup {
		return nopLedger{}
	}
	return repo
}

type nopLedger struct{}

func (nopLedger) Notified(context.Context, string, []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	return nil, nil
}

func (nopLedger) Record(context.Context, string, string, []primitive.ObjectID) error {
	return nil
}

// LedgerRepository stores ledger entries in the notification_log collection.
type LedgerRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewLedgerRepository(db *mongo.Database) *LedgerRepository {
	return &LedgerRepository{collection: db.Collection("notification_log"), now: time.Now}
}

// EnsureIndexes makes (item_id, notify_date) unique.
func (r *LedgerRepository) EnsureIndexes(ctx context.Context, logger *zap.Logger) error {
	return config.EnsureIndex(ctx, r.collection, mongo.IndexModel{
		Keys:    bson.D{{Key: "item_id", Value: 1}, {Key: "notify_date", Value: 1}},
		Options: options.Index().SetUnique(true),
	}, logger)
}

func (r *LedgerRepository) Notified(ctx context.Context, dateKey string, itemIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	seen := make(map[primitive.ObjectID]bool)
	if len(itemIDs) == 0 {
		return seen, nil
	}
	filter := bson.M{"notify_date": dateKey, "item_id": bson.M{"$in": itemIDs}}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"item_id": 1}))
	if err != nil {
		return nil, apperr.StoreAccess("read notification log", err)
	}
	var entries []LedgerEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, apperr.StoreAccess("decode notification log", err)
	}
	for _, e := range entries {
		seen[e.ItemID] = true
	}
	return seen, nil
}

// Record inserts one entry per item. Entries that already exist are ignored.
func (r *LedgerRepository) Record(ctx context.Context, dateKey, recipient string, itemIDs []primitive.ObjectID) error {
	if len(itemIDs) == 0 {
		return nil
	}
	sentAt := r.now().UTC()
	docs := make([]interface{}, 0, len(itemIDs))
	for _, id := range itemIDs {
		docs = append(docs, LedgerEntry{ItemID: id, NotifyDate: dateKey, Recipient: recipient, SentAt: sentAt})
	}
	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil && !onlyDuplicates(err) {
		return apperr.StoreAccess("write notification log", err)
	}
	return nil
}

// onlyDuplicates reports whether err is a bulk write failure made up solely of
// duplicate key errors.
func onlyDuplicates(err error) bool {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) || bwe.WriteConcernError != nil || len(bwe.WriteErrors) == 0 {
		return false
	}
	for _, we := range bwe.WriteErrors {
		if we.Code != duplicateKeyCode {
			return false
		}
	}
	return true
}
