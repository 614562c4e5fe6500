package handlers

import (
	"encoding/json"
	"net/http"

	"captain-smart/internal/engine/actors"
	"captain-smart/internal/models"
	"captain-smart/internal/utils"
)

// VoteRequest represents a request to vote on an expose
type VoteRequest struct {
	ExposeID string `json:"exposeId"`
	VoteType string `json:"voteType"`
}

// ViewRequest represents a request to record a view
type ViewRequest struct {
	ExposeID  string `json:"exposeId"`
	SessionID string `json:"sessionId"`
}

// ShareRequest represents a request to record a share
type ShareRequest struct {
	ExposeID string `json:"exposeId"`
}

// viewResponse carries the dedup outcome at the top level; a duplicate view
// is a success with newView false, not an error.
type viewResponse struct {
	Success bool `json:"success"`
	NewView bool `json:"newView"`
	Views   int  `json:"views"`
}

// HandleVote handles expose voting. Votes are not deduplicated; every
// accepted request increments a counter.
func (s *Server) HandleVote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req VoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondAppError(w, utils.NewValidationError("body", "invalid JSON"))
			return
		}

		result, appErr := s.askActor(s.Engine.GetExposeActor(), &actors.VoteExposeMsg{
			ExposeID: req.ExposeID,
			VoteType: models.VoteType(req.VoteType),
		})
		if appErr != nil {
			respondAppError(w, appErr)
			return
		}
		respondData(w, result)
	}
}

// HandleView handles view recording with per-session deduplication.
func (s *Server) HandleView() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req ViewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondAppError(w, utils.NewValidationError("body", "invalid JSON"))
			return
		}

		result, appErr := s.askActor(s.Engine.GetExposeActor(), &actors.RecordViewMsg{
			ExposeID:  req.ExposeID,
			SessionID: req.SessionID,
			HashedIP:  utils.HashIP(clientIP(r)),
		})
		if appErr != nil {
			respondAppError(w, appErr)
			return
		}

		view, ok := result.(*actors.ViewResult)
		if !ok {
			respondAppError(w, utils.NewAppError(utils.ErrDatabase, "unexpected view result", nil))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(viewResponse{
			Success: true,
			NewView: view.NewView,
			Views:   view.Views,
		})
	}
}

// HandleShare handles share recording.
func (s *Server) HandleShare() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req ShareRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondAppError(w, utils.NewValidationError("body", "invalid JSON"))
			return
		}

		result, appErr := s.askActor(s.Engine.GetExposeActor(), &actors.ShareExposeMsg{
			ExposeID: req.ExposeID,
		})
		if appErr != nil {
			respondAppError(w, appErr)
			return
		}
		respondData(w, result)
	}
}
