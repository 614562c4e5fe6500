// internal/database/comment_repository.go
package database

import (
	"context"
	"log"
	"time"

	"captain-smart/internal/models"
	"captain-smart/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommentDocument represents comment data in MongoDB.
type CommentDocument struct {
	ID        string    `bson:"_id"`
	ExposeID  string    `bson:"exposeId"`
	Text      string    `bson:"text"`
	AuthorID  string    `bson:"authorId"`
	HashedIP  string    `bson:"hashedIp"`
	UserAgent string    `bson:"userAgent"`
	CreatedAt time.Time `bson:"createdAt"`
}

func commentToModel(doc *CommentDocument) *models.Comment {
	return &models.Comment{
		ID:        doc.ID,
		ExposeID:  doc.ExposeID,
		Text:      doc.Text,
		AuthorID:  doc.AuthorID,
		HashedIP:  doc.HashedIP,
		UserAgent: doc.UserAgent,
		CreatedAt: doc.CreatedAt,
	}
}

// SaveComment inserts a comment. Comments are immutable once written; the
// TTL index on createdAt retires them independently of the parent expose.
func (m *MongoDB) SaveComment(ctx context.Context, comment *models.Comment) error {
	doc := CommentDocument{
		ID:        comment.ID,
		ExposeID:  comment.ExposeID,
		Text:      comment.Text,
		AuthorID:  comment.AuthorID,
		HashedIP:  comment.HashedIP,
		UserAgent: comment.UserAgent,
		CreatedAt: comment.CreatedAt,
	}

	_, err := m.Comments.InsertOne(ctx, doc)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to save comment", err)
	}
	return nil
}

// GetExposeComments retrieves all comments for an expose, newest first.
func (m *MongoDB) GetExposeComments(ctx context.Context, exposeID string) ([]*models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := m.Comments.Find(ctx, bson.M{"exposeId": exposeID}, opts)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to get expose comments", err)
	}
	defer cursor.Close(ctx)

	var comments []*models.Comment
	for cursor.Next(ctx) {
		var doc CommentDocument
		if err := cursor.Decode(&doc); err != nil {
			log.Printf("Error decoding comment document: %v", err)
			continue
		}
		comments = append(comments, commentToModel(&doc))
	}

	if err := cursor.Err(); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "cursor iteration failed", err)
	}

	return comments, nil
}
