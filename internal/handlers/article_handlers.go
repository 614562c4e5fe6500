package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"captain-smart/internal/models"
	"captain-smart/internal/utils"
)

const (
	maxArticleTitleLen   = 200
	maxArticleContentLen = 20000
	maxSlugLen           = 120
)

// CreateArticleRequest represents a request to publish a news article
type CreateArticleRequest struct {
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Category string `json:"category"`
	Content  string `json:"content"`
	Author   string `json:"author"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// HandleArticles handles article publishing and retrieval. Publishing is an
// admin operation; the route is registered behind the admin middleware.
// Articles never expire, so reads go straight to the store.
func (s *Server) HandleArticles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		switch r.Method {
		case http.MethodPost:
			s.handleCreateArticle(w, r)
		case http.MethodGet:
			s.handleGetArticles(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	var req CreateArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondAppError(w, utils.NewValidationError("body", "invalid JSON"))
		return
	}

	if appErr := validateArticleRequest(&req); appErr != nil {
		respondAppError(w, appErr)
		return
	}

	article := &models.Article{
		ID:          models.NewArticleID(),
		Title:       strings.TrimSpace(req.Title),
		Slug:        req.Slug,
		Category:    strings.ToLower(strings.TrimSpace(req.Category)),
		Content:     req.Content,
		Author:      strings.TrimSpace(req.Author),
		ImageURL:    req.ImageURL,
		PublishedAt: time.Now(),
	}

	if err := s.Store.SaveArticle(r.Context(), article); err != nil {
		s.Metrics.IncrementErrors()
		respondAppError(w, asAppError(err))
		return
	}

	respondData(w, article)
}

func (s *Server) handleGetArticles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if id := query.Get("id"); id != "" {
		if !models.ValidArticleID(id) {
			respondAppError(w, utils.NewValidationError("id", "malformed article ID"))
			return
		}
		s.respondSingleArticle(w, r, func() (*models.Article, error) {
			return s.Store.GetArticle(r.Context(), id)
		})
		return
	}

	if slug := query.Get("slug"); slug != "" {
		s.respondSingleArticle(w, r, func() (*models.Article, error) {
			return s.Store.GetArticleBySlug(r.Context(), slug)
		})
		return
	}

	category := query.Get("category")
	if category == "" {
		respondAppError(w, utils.NewValidationError("query", "id, slug, or category required"))
		return
	}

	limit := 20
	if limitStr := query.Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	articles, err := s.Store.GetArticlesByCategory(r.Context(), strings.ToLower(category), limit)
	if err != nil {
		s.Metrics.IncrementErrors()
		respondAppError(w, asAppError(err))
		return
	}
	respondData(w, articles)
}

// respondSingleArticle fetches one article and bumps its view counter. The
// counter bump is best-effort; a failure there never fails the read.
func (s *Server) respondSingleArticle(w http.ResponseWriter, r *http.Request, fetch func() (*models.Article, error)) {
	article, err := fetch()
	if err != nil {
		if !utils.IsErrorCode(err, utils.ErrNotFound) {
			s.Metrics.IncrementErrors()
		}
		respondAppError(w, asAppError(err))
		return
	}

	if err := s.Store.IncrementArticleViews(r.Context(), article.ID); err != nil {
		log.Printf("Failed to increment views for article %s: %v", article.ID, err)
	} else {
		article.Views++
	}

	respondData(w, article)
}

func validateArticleRequest(req *CreateArticleRequest) *utils.AppError {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return utils.NewValidationError("title", "cannot be empty")
	}
	if len(title) > maxArticleTitleLen {
		return utils.NewValidationError("title", "too long")
	}
	if req.Content == "" {
		return utils.NewValidationError("content", "cannot be empty")
	}
	if len(req.Content) > maxArticleContentLen {
		return utils.NewValidationError("content", "too long")
	}
	if strings.TrimSpace(req.Category) == "" {
		return utils.NewValidationError("category", "cannot be empty")
	}
	if !validSlug(req.Slug) {
		return utils.NewValidationError("slug", "must be lowercase letters, digits, and hyphens")
	}
	return nil
}

// validSlug accepts lowercase kebab-case slugs, e.g. "minister-audit-leak".
func validSlug(slug string) bool {
	if slug == "" || len(slug) > maxSlugLen {
		return false
	}
	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return false
	}
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-':
		default:
			return false
		}
	}
	return true
}

// asAppError passes tagged errors through and wraps anything else as a
// database error.
func asAppError(err error) *utils.AppError {
	if appErr, ok := err.(*utils.AppError); ok {
		return appErr
	}
	return utils.NewAppError(utils.ErrDatabase, "Database operation failed", err)
}
