package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"captain-smart/internal/middleware"
	"captain-smart/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

// AdminLoginRequest carries the shared operator password.
type AdminLoginRequest struct {
	Password string `json:"password"`
}

// HandleAdminLogin exchanges the operator password for a bearer token.
func (s *Server) HandleAdminLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req AdminLoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondAppError(w, utils.NewValidationError("body", "invalid JSON"))
			return
		}
		if req.Password == "" {
			respondAppError(w, utils.NewValidationError("password", "cannot be empty"))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(s.AdminPassHash), []byte(req.Password)); err != nil {
			respondAppError(w, utils.NewAppError(utils.ErrUnauthorized, "Invalid credentials", nil))
			return
		}

		token, err := middleware.GenerateAdminToken(s.JWTSecret)
		if err != nil {
			s.Metrics.IncrementErrors()
			log.Printf("Failed to generate admin token: %v", err)
			respondAppError(w, utils.NewAppError(utils.ErrDatabase, "Failed to generate token", err))
			return
		}

		respondData(w, map[string]string{"token": token})
	}
}

// HandleCleanup triggers an on-demand cleanup pass. A pass already in flight
// yields a conflict rather than a second concurrent sweep.
func (s *Server) HandleCleanup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		result, err := s.Cleanup.Run(r.Context(), time.Now())
		if err != nil {
			if !utils.IsErrorCode(err, utils.ErrCleanupInProgress) {
				s.Metrics.IncrementErrors()
			}
			respondAppError(w, asAppError(err))
			return
		}

		respondData(w, result)
	}
}
