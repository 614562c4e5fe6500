// internal/database/expose_repository.go
package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"captain-smart/internal/models"
	"captain-smart/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ExposeDocument represents the MongoDB schema for an expose.
type ExposeDocument struct {
	ID        string    `bson:"_id"`
	Title     string    `bson:"title"`
	Content   string    `bson:"content"`
	Hashtag   string    `bson:"hashtag,omitempty"`
	ImageURLs []string  `bson:"imageUrls"`
	AudioURL  string    `bson:"audioUrl,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
	ExpiresAt time.Time `bson:"expiresAt"`
	Views     int       `bson:"views"`
	Comments  int       `bson:"comments"`
	Upvotes   int       `bson:"upvotes"`
	Downvotes int       `bson:"downvotes"`
	Shares    int       `bson:"shares"`
}

func exposeToDocument(expose *models.Expose) *ExposeDocument {
	return &ExposeDocument{
		ID:        expose.ID,
		Title:     expose.Title,
		Content:   expose.Content,
		Hashtag:   expose.Hashtag,
		ImageURLs: expose.ImageURLs,
		AudioURL:  expose.AudioURL,
		CreatedAt: expose.CreatedAt,
		ExpiresAt: expose.ExpiresAt,
		Views:     expose.Views,
		Comments:  expose.Comments,
		Upvotes:   expose.Upvotes,
		Downvotes: expose.Downvotes,
		Shares:    expose.Shares,
	}
}

func exposeToModel(doc *ExposeDocument) *models.Expose {
	return &models.Expose{
		ID:        doc.ID,
		Title:     doc.Title,
		Content:   doc.Content,
		Hashtag:   doc.Hashtag,
		ImageURLs: doc.ImageURLs,
		AudioURL:  doc.AudioURL,
		CreatedAt: doc.CreatedAt,
		ExpiresAt: doc.ExpiresAt,
		Views:     doc.Views,
		Comments:  doc.Comments,
		Upvotes:   doc.Upvotes,
		Downvotes: doc.Downvotes,
		Shares:    doc.Shares,
	}
}

// SaveExpose creates or updates an expose in MongoDB.
func (m *MongoDB) SaveExpose(ctx context.Context, expose *models.Expose) error {
	doc := exposeToDocument(expose)

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": expose.ID}
	update := bson.M{"$set": doc}

	_, err := m.Exposes.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to save expose", err)
	}
	return nil
}

// GetExpose retrieves an expose by its ID.
func (m *MongoDB) GetExpose(ctx context.Context, id string) (*models.Expose, error) {
	var doc ExposeDocument

	err := m.Exposes.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewExposeNotFoundError(id)
	}
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to get expose", err)
	}

	return exposeToModel(&doc), nil
}

// GetRecentExposes retrieves the newest exposes that have not yet expired.
func (m *MongoDB) GetRecentExposes(ctx context.Context, now time.Time, limit int) ([]*models.Expose, error) {
	filter := bson.M{"expiresAt": bson.M{"$gt": now}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := m.Exposes.Find(ctx, filter, opts)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query recent exposes", err)
	}
	defer cursor.Close(ctx)

	var exposes []*models.Expose
	for cursor.Next(ctx) {
		var doc ExposeDocument
		if err := cursor.Decode(&doc); err != nil {
			log.Printf("Error decoding expose document: %v", err)
			continue
		}
		exposes = append(exposes, exposeToModel(&doc))
	}

	if err := cursor.Err(); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "cursor iteration failed", err)
	}

	return exposes, nil
}

// expiredFilter is the single expiry predicate shared by the find and delete
// halves of a cleanup pass.
func expiredFilter(now time.Time) bson.M {
	return bson.M{"expiresAt": bson.M{"$lte": now}}
}

// FindExpiredExposes retrieves every expose whose expiry has passed.
func (m *MongoDB) FindExpiredExposes(ctx context.Context, now time.Time) ([]*models.Expose, error) {
	cursor, err := m.Exposes.Find(ctx, expiredFilter(now))
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query expired exposes", err)
	}
	defer cursor.Close(ctx)

	var exposes []*models.Expose
	for cursor.Next(ctx) {
		var doc ExposeDocument
		if err := cursor.Decode(&doc); err != nil {
			log.Printf("Error decoding expose document: %v", err)
			continue
		}
		exposes = append(exposes, exposeToModel(&doc))
	}

	if err := cursor.Err(); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "cursor iteration failed", err)
	}

	return exposes, nil
}

// DeleteExpiredExposes bulk-deletes all exposes matching the expiry
// predicate and returns the number of records removed.
func (m *MongoDB) DeleteExpiredExposes(ctx context.Context, now time.Time) (int64, error) {
	result, err := m.Exposes.DeleteMany(ctx, expiredFilter(now))
	if err != nil {
		return 0, utils.NewAppError(utils.ErrDatabase, "failed to delete expired exposes", err)
	}
	return result.DeletedCount, nil
}

// IncrementVote atomically bumps the requested vote counter and returns the
// updated expose.
func (m *MongoDB) IncrementVote(ctx context.Context, id string, vote models.VoteType) (*models.Expose, error) {
	field := "upvotes"
	if vote == models.VoteDown {
		field = "downvotes"
	}

	return m.incrementAndReturn(ctx, id, bson.M{"$inc": bson.M{field: 1}})
}

// IncrementShares atomically bumps the share counter and returns the updated
// expose.
func (m *MongoDB) IncrementShares(ctx context.Context, id string) (*models.Expose, error) {
	return m.incrementAndReturn(ctx, id, bson.M{"$inc": bson.M{"shares": 1}})
}

func (m *MongoDB) incrementAndReturn(ctx context.Context, id string, update bson.M) (*models.Expose, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc ExposeDocument
	err := m.Exposes.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewExposeNotFoundError(id)
	}
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to update expose counters", err)
	}

	return exposeToModel(&doc), nil
}

// IncrementViews atomically bumps the view counter.
func (m *MongoDB) IncrementViews(ctx context.Context, id string) error {
	return m.incrementCounter(ctx, id, "views")
}

// IncrementComments atomically bumps the comment counter.
func (m *MongoDB) IncrementComments(ctx context.Context, id string) error {
	return m.incrementCounter(ctx, id, "comments")
}

func (m *MongoDB) incrementCounter(ctx context.Context, id, field string) error {
	result, err := m.Exposes.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{field: 1}})
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, fmt.Sprintf("failed to increment %s", field), err)
	}
	if result.MatchedCount == 0 {
		return utils.NewExposeNotFoundError(id)
	}
	return nil
}
