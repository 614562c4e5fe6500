// internal/database/article_repository.go
package database

import (
	"context"
	"log"
	"time"

	"captain-smart/internal/models"
	"captain-smart/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ArticleDocument represents a published news article in MongoDB.
type ArticleDocument struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Slug        string    `bson:"slug"`
	Category    string    `bson:"category"`
	Content     string    `bson:"content"`
	Author      string    `bson:"author"`
	ImageURL    string    `bson:"imageUrl,omitempty"`
	PublishedAt time.Time `bson:"publishedAt"`
	Views       int       `bson:"views"`
}

func articleToModel(doc *ArticleDocument) *models.Article {
	return &models.Article{
		ID:          doc.ID,
		Title:       doc.Title,
		Slug:        doc.Slug,
		Category:    doc.Category,
		Content:     doc.Content,
		Author:      doc.Author,
		ImageURL:    doc.ImageURL,
		PublishedAt: doc.PublishedAt,
		Views:       doc.Views,
	}
}

// SaveArticle creates or updates an article. A duplicate slug is surfaced as
// a DUPLICATE error since slugs are the public lookup key.
func (m *MongoDB) SaveArticle(ctx context.Context, article *models.Article) error {
	doc := ArticleDocument{
		ID:          article.ID,
		Title:       article.Title,
		Slug:        article.Slug,
		Category:    article.Category,
		Content:     article.Content,
		Author:      article.Author,
		ImageURL:    article.ImageURL,
		PublishedAt: article.PublishedAt,
		Views:       article.Views,
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": article.ID}
	update := bson.M{"$set": doc}

	_, err := m.Articles.UpdateOne(ctx, filter, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		return utils.NewAppError(utils.ErrDuplicate, "article slug already exists: "+article.Slug, err)
	}
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to save article", err)
	}
	return nil
}

// GetArticle retrieves an article by its ID.
func (m *MongoDB) GetArticle(ctx context.Context, id string) (*models.Article, error) {
	return m.findArticle(ctx, bson.M{"_id": id}, id)
}

// GetArticleBySlug retrieves an article by its slug.
func (m *MongoDB) GetArticleBySlug(ctx context.Context, slug string) (*models.Article, error) {
	return m.findArticle(ctx, bson.M{"slug": slug}, slug)
}

func (m *MongoDB) findArticle(ctx context.Context, filter bson.M, key string) (*models.Article, error) {
	var doc ArticleDocument

	err := m.Articles.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrNotFound, "Article not found: "+key, err)
	}
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to get article", err)
	}

	return articleToModel(&doc), nil
}

// GetArticlesByCategory retrieves articles for a category, newest first. An
// empty category returns the newest articles overall.
func (m *MongoDB) GetArticlesByCategory(ctx context.Context, category string, limit int) ([]*models.Article, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}

	opts := options.Find().SetSort(bson.D{{Key: "publishedAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := m.Articles.Find(ctx, filter, opts)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query articles", err)
	}
	defer cursor.Close(ctx)

	var articles []*models.Article
	for cursor.Next(ctx) {
		var doc ArticleDocument
		if err := cursor.Decode(&doc); err != nil {
			log.Printf("Error decoding article document: %v", err)
			continue
		}
		articles = append(articles, articleToModel(&doc))
	}

	if err := cursor.Err(); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "cursor iteration failed", err)
	}

	return articles, nil
}

// IncrementArticleViews atomically bumps an article's view counter.
func (m *MongoDB) IncrementArticleViews(ctx context.Context, id string) error {
	result, err := m.Articles.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to increment article views", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewAppError(utils.ErrNotFound, "Article not found: "+id, nil)
	}
	return nil
}
