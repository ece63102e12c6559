package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/aitwy/aitwy-server/internal/config"
)

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewConnection builds the client without touching the network. Call Ping to
// establish and verify the connection.
func NewConnection(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetAppName("aitwy-server").
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetServerSelectionTimeout(cfg.ServerSelectionTimeout).
		SetSocketTimeout(cfg.SocketTimeout)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	return &DB{
		Client:   client,
		Database: client.Database(cfg.Name),
	}, nil
}

func (db *DB) Ping(ctx context.Context) error {
	if err := db.Client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return nil
}

func (db *DB) Close(ctx context.Context) error {
	return db.Client.Disconnect(ctx)
}
