package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"captain-smart/internal/engine/actors"
	"captain-smart/internal/utils"
)

// CreateExposeRequest represents a request to create a new expose
type CreateExposeRequest struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Hashtag   string   `json:"hashtag,omitempty"`
	ImageURLs []string `json:"imageUrls,omitempty"`
	AudioURL  string   `json:"audioUrl,omitempty"`
}

// HandleExposes handles expose creation and retrieval
func (s *Server) HandleExposes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		switch r.Method {
		case http.MethodPost:
			var req CreateExposeRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				respondAppError(w, utils.NewValidationError("body", "invalid JSON"))
				return
			}

			result, appErr := s.askActor(s.Engine.GetExposeActor(), &actors.CreateExposeMsg{
				Title:     req.Title,
				Content:   req.Content,
				Hashtag:   req.Hashtag,
				ImageURLs: req.ImageURLs,
				AudioURL:  req.AudioURL,
			})
			if appErr != nil {
				respondAppError(w, appErr)
				return
			}
			respondData(w, result)

		case http.MethodGet:
			if exposeID := r.URL.Query().Get("id"); exposeID != "" {
				result, appErr := s.askActor(s.Engine.GetExposeActor(), &actors.GetExposeMsg{
					ExposeID: exposeID,
				})
				if appErr != nil {
					respondAppError(w, appErr)
					return
				}
				respondData(w, result)
				return
			}

			limit := 20
			if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
				if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
					limit = parsed
				}
			}

			result, appErr := s.askActor(s.Engine.GetExposeActor(), &actors.GetRecentExposesMsg{
				Limit: limit,
			})
			if appErr != nil {
				respondAppError(w, appErr)
				return
			}
			respondData(w, result)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleHealth handles health check requests
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		requests, errors := s.Metrics.Counts()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":      "healthy",
			"uptime":      s.Metrics.Uptime().String(),
			"requests":    requests,
			"errors":      errors,
			"server_time": time.Now(),
		})
	}
}
