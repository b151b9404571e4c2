package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoConfig struct {
	URI         string
	Database    string
	AppName     string
	MaxPoolSize uint64
}

// Connect opens a client and checks the primary is reachable before handing
// back the database. The client is disconnected again if the check fails.
func Connect(ctx context.Context, cfg MongoConfig) (*mongo.Database, error) {
	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = 100
	}
	if cfg.AppName == "" {
		cfg.AppName = "cartify-storefront"
	}

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URI).
		SetAppName(cfg.AppName).
		SetConnectTimeout(10*time.Second).
		SetServerSelectionTimeout(5*time.Second).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(5).
		SetRetryWrites(true))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Printf("[cart] connected to mongo database %s", cfg.Database)
	return client.Database(cfg.Database), nil
}
