package food

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

const (
	CollectionName      = "fooditems"
	usersCollectionName = "users"
)

// Store is the owner-scoped item store used by the CRUD service.
type Store interface {
	Insert(ctx context.Context, item *FoodItem) error
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]FoodItem, error)
	FindByIDAndOwner(ctx context.Context, id, ownerID primitive.ObjectID) (*FoodItem, error)
	UpdateByIDAndOwner(ctx context.Context, id, ownerID primitive.ObjectID, fields ItemFields) (*FoodItem, error)
	DeleteByIDAndOwner(ctx context.Context, id, ownerID primitive.ObjectID) error
}

// Repository handles DB operations for food items.
type Repository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{collection: db.Collection(CollectionName), now: time.Now}
}

// EnsureIndexes creates the indexes backing owner listings and expiry range scans.
func (r *Repository) EnsureIndexes(ctx context.Context, logger *zap.Logger) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "expiryDate", Value: 1}}},
		{Keys: bson.D{{Key: "expiryDate", Value: 1}}},
	}
	for _, model := range models {
		if err := config.EnsureIndex(ctx, r.collection, model, logger); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) Insert(ctx context.Context, item *FoodItem) error {
	now := r.now().UTC()
	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	item.CreatedAt = now
	item.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, item); err != nil {
		return apperr.StoreAccess("insert food item", err)
	}
	return nil
}

func (r *Repository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]FoodItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "expiryDate", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": ownerID}, opts)
	if err != nil {
		return nil, apperr.StoreAccess("list food items", err)
	}
	items := []FoodItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, apperr.StoreAccess("decode food items", err)
	}
	return items, nil
}

func (r *Repository) FindByIDAndOwner(ctx context.Context, id, ownerID primitive.ObjectID) (*FoodItem, error) {
	var item FoodItem
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "userId": ownerID}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.StoreAccess("find food item", err)
	}
	return &item, nil
}

// UpdateByIDAndOwner replaces the editable fields of an item the owner holds.
func (r *Repository) UpdateByIDAndOwner(ctx context.Context, id, ownerID primitive.ObjectID, fields ItemFields) (*FoodItem, error) {
	set := bson.M{
		"name":       fields.Name,
		"quantity":   fields.Quantity,
		"expiryDate": fields.ExpiryDate,
		"updatedAt":  r.now().UTC(),
	}
	update := bson.M{"$set": set}
	if fields.ManufactureDate != nil {
		set["manufactureDate"] = *fields.ManufactureDate
	} else {
		update["$unset"] = bson.M{"manufactureDate": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var item FoodItem
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id, "userId": ownerID}, update, opts).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.StoreAccess("update food item", err)
	}
	return &item, nil
}

func (r *Repository) DeleteByIDAndOwner(ctx context.Context, id, ownerID primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": ownerID})
	if err != nil {
		return apperr.StoreAccess("delete food item", err)
	}
	if res.DeletedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// FindByExpiryRange returns every item whose expiry lies in [start, end], joined to
// its owner and ordered by expiry then name. Items whose owner is gone come back
// with a nil Owner.
func (r *Repository) FindByExpiryRange(ctx context.Context, start, end time.Time) ([]OwnedItem, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"expiryDate": bson.M{"$gte": start, "$lte": end}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         usersCollectionName,
			"localField":   "userId",
			"foreignField": "_id",
			"as":           "owner",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$owner", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{"owner.password_hash": 0}}},
		{{Key: "$sort", Value: bson.D{{Key: "expiryDate", Value: 1}, {Key: "name", Value: 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperr.StoreAccess("find expiring items", err)
	}
	items := []OwnedItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, apperr.StoreAccess("decode expiring items", err)
	}
	return items, nil
}
