// internal/database/view_repository.go
package database

import (
	"context"
	"time"

	"captain-smart/internal/models"
	"captain-smart/internal/utils"

	"go.mongodb.org/mongo-driver/mongo"
)

// ViewDocument represents a view-tracking record in MongoDB.
type ViewDocument struct {
	ID        string    `bson:"_id"`
	ExposeID  string    `bson:"exposeId"`
	SessionID string    `bson:"sessionId"`
	HashedIP  string    `bson:"hashedIp"`
	ViewedAt  time.Time `bson:"viewedAt"`
}

// InsertView inserts a view record for a (session, expose) pair. The unique
// compound index on (sessionId, exposeId) is the dedup authority: a rejected
// duplicate insert yields (false, nil) rather than an error, so callers get
// an explicit outcome instead of matching on a store error code.
func (m *MongoDB) InsertView(ctx context.Context, view *models.ViewRecord) (bool, error) {
	doc := ViewDocument{
		ID:        view.ID,
		ExposeID:  view.ExposeID,
		SessionID: view.SessionID,
		HashedIP:  view.HashedIP,
		ViewedAt:  view.ViewedAt,
	}

	_, err := m.Views.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, utils.NewAppError(utils.ErrDatabase, "failed to insert view record", err)
	}
	return true, nil
}
