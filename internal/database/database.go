// internal/database/database.go
package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDB struct {
	Client   *mongo.Client
	Exposes  *mongo.Collection
	Comments *mongo.Collection
	Views    *mongo.Collection
	Articles *mongo.Collection
}

// compile-time check that MongoDB satisfies Store
var _ Store = (*MongoDB)(nil)

func NewMongoDB(uri, dbName string) (*MongoDB, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	// Ping the database to verify connection
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	log.Println("Successfully connected to MongoDB!")

	db := client.Database(dbName)
	return &MongoDB{
		Client:   client,
		Exposes:  db.Collection("exposes"),
		Comments: db.Collection("comments"),
		Views:    db.Collection("views"),
		Articles: db.Collection("articles"),
	}, nil
}

func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the application relies on:
//   - a unique compound index on (sessionId, exposeId) backing view dedup,
//   - TTL indexes on comments and views for store-level retention,
//   - an expiresAt index for the cleanup job's expiry predicate,
//   - a unique slug index plus a category/publishedAt index for articles.
func (m *MongoDB) EnsureIndexes(ctx context.Context, commentRetention, viewRetention time.Duration) error {
	_, err := m.Views.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "sessionId", Value: 1},
				{Key: "exposeId", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "viewedAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(viewRetention.Seconds())),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create view indexes: %v", err)
	}

	_, err = m.Comments.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "exposeId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(commentRetention.Seconds())),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create comment indexes: %v", err)
	}

	_, err = m.Exposes.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "expiresAt", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create expose indexes: %v", err)
	}

	_, err = m.Articles.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "publishedAt", Value: -1},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create article indexes: %v", err)
	}

	return nil
}
