package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"captain-smart/internal/engine/actors"
	"captain-smart/internal/utils"
)

// CreateCommentRequest represents a request to comment on an expose
type CreateCommentRequest struct {
	ExposeID string `json:"exposeId"`
	Text     string `json:"text"`
	// CreatedAt is optional; offline-composed comments may carry their own
	// timestamp within the tolerance the actor enforces.
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// HandleComments handles comment creation and listing
func (s *Server) HandleComments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		switch r.Method {
		case http.MethodPost:
			var req CreateCommentRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				respondAppError(w, utils.NewValidationError("body", "invalid JSON"))
				return
			}

			msg := &actors.CreateCommentMsg{
				ExposeID:  req.ExposeID,
				Text:      req.Text,
				HashedIP:  utils.HashIP(clientIP(r)),
				UserAgent: r.UserAgent(),
			}
			if req.CreatedAt != nil {
				msg.CreatedAt = *req.CreatedAt
			}

			result, appErr := s.askActor(s.Engine.GetCommentActor(), msg)
			if appErr != nil {
				respondAppError(w, appErr)
				return
			}
			respondData(w, result)

		case http.MethodGet:
			exposeID := r.URL.Query().Get("exposeId")
			if exposeID == "" {
				respondAppError(w, utils.NewValidationError("exposeId", "query parameter required"))
				return
			}

			result, appErr := s.askActor(s.Engine.GetCommentActor(), &actors.GetExposeCommentsMsg{
				ExposeID: exposeID,
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
