package config

import (
	"context"
	"time"

	"FoodExpiryTracker/internal/apperr"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type MongoDBConfig struct {
	URI            string        `env:"MONGO_URI" env-required:"true"`
	Database       string        `env:"MONGO_DATABASE" env-default:"food_expiry_tracker"`
	ConnectTimeout time.Duration `env:"MONGO_CONNECT_TIMEOUT" env-default:"10s"`
}

// NewMongoDBConfig fails when MONGO_URI is missing; startup cannot continue without a store.
func NewMongoDBConfig() (*MongoDBConfig, error) {
	cfg := &MongoDBConfig{}
	if err := readEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *MongoDBConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URI, validation.Required),
		validation.Field(&c.Database, validation.Required),
		validation.Field(&c.ConnectTimeout, validation.Min(time.Second)),
	)
}

type MongoDBClient struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDBClient(lc fx.Lifecycle, config *MongoDBConfig, logger *zap.Logger) (*MongoDBClient, *mongo.Database, error) {
	clientOptions := options.Client().ApplyURI(config.URI)

	ctx, cancel := context.WithTimeout(context.Background(), config.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, apperr.StoreAccess("connect to MongoDB", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, apperr.StoreAccess("ping MongoDB", err)
	}

	logger.Info("connected to MongoDB", zap.String("database", config.Database))

	lc.Append(fx.Hook{
		OnStop: func(stopCtx context.Context) error {
			logger.Info("closing MongoDB connection")
			return client.Disconnect(stopCtx)
		},
	})
	db := client.Database(config.Database)
	return &MongoDBClient{Client: client, Database: db}, db, nil
}

// EnsureIndex creates an index and logs the outcome. Index creation failures are
// fatal for the collections that rely on uniqueness.
func EnsureIndex(ctx context.Context, collection *mongo.Collection, model mongo.IndexModel, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	name, err := collection.Indexes().CreateOne(ctx, model)
	if err != nil {
		return apperr.StoreAccess("create index on "+collection.Name(), err)
	}
	logger.Debug("index ensured", zap.String("collection", collection.Name()), zap.String("index", name))
	return nil
}

// Ping reports whether the server is reachable.
func (c *MongoDBClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx, nil); err != nil {
		return apperr.StoreAccess("ping MongoDB", err)
	}
	return nil
}
