// internal/database/store.go
package database

import (
	"context"
	"time"

	"captain-smart/internal/models"
)

// Store defines the common interface for database operations. Actors and
// handlers depend on it rather than on the MongoDB type so tests can swap in
// fakes.
type Store interface {
	// Connection
	Close(ctx context.Context) error

	// Expose methods
	SaveExpose(ctx context.Context, expose *models.Expose) error
	GetExpose(ctx context.Context, id string) (*models.Expose, error)
	GetRecentExposes(ctx context.Context, now time.Time, limit int) ([]*models.Expose, error)
	FindExpiredExposes(ctx context.Context, now time.Time) ([]*models.Expose, error)
	DeleteExpiredExposes(ctx context.Context, now time.Time) (int64, error)
	IncrementVote(ctx context.Context, id string, vote models.VoteType) (*models.Expose, error)
	IncrementShares(ctx context.Context, id string) (*models.Expose, error)
	IncrementViews(ctx context.Context, id string) error
	IncrementComments(ctx context.Context, id string) error

	// View methods. InsertView reports whether a new record was inserted;
	// a duplicate (session, expose) pair yields (false, nil), never an error.
	InsertView(ctx context.Context, view *models.ViewRecord) (bool, error)

	// Comment methods
	SaveComment(ctx context.Context, comment *models.Comment) error
	GetExposeComments(ctx context.Context, exposeID string) ([]*models.Comment, error)

	// Article methods
	SaveArticle(ctx context.Context, article *models.Article) error
	GetArticle(ctx context.Context, id string) (*models.Article, error)
	GetArticleBySlug(ctx context.Context, slug string) (*models.Article, error)
	GetArticlesByCategory(ctx context.Context, category string, limit int) ([]*models.Article, error)
	IncrementArticleViews(ctx context.Context, id string) error
}
