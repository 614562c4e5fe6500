package handlers

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"captain-smart/internal/cleanup"
	"captain-smart/internal/database"
	"captain-smart/internal/engine"
	"captain-smart/internal/media"
	"captain-smart/internal/utils"
	ws "captain-smart/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

// Server holds all server dependencies, including the actor system and engine
type Server struct {
	System         *actor.ActorSystem
	Context        *actor.RootContext
	Engine         *engine.Engine
	Metrics        *utils.MetricsCollector
	Store          database.Store
	Media          media.Store
	Cleanup        *cleanup.Service
	Hub            *ws.Hub
	JWTSecret      string
	AdminPassHash  string
	RequestTimeout time.Duration
}

// NewServer creates a new Server instance with the given components
func NewServer(
	system *actor.ActorSystem,
	eng *engine.Engine,
	metrics *utils.MetricsCollector,
	store database.Store,
	mediaStore media.Store,
	cleanupSvc *cleanup.Service,
	hub *ws.Hub,
	jwtSecret string,
	adminPassHash string,
) *Server {
	return &Server{
		System:         system,
		Context:        system.Root,
		Engine:         eng,
		Metrics:        metrics,
		Store:          store,
		Media:          mediaStore,
		Cleanup:        cleanupSvc,
		Hub:            hub,
		JWTSecret:      jwtSecret,
		AdminPassHash:  adminPassHash,
		RequestTimeout: 5 * time.Second, // Default timeout for actor requests
	}
}

type successResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// respondData writes the uniform success envelope.
func respondData(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(successResponse{Success: true, Data: data})
}

// respondAppError writes the uniform error envelope with the HTTP status
// derived from the error code.
func respondAppError(w http.ResponseWriter, appErr *utils.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(utils.AppErrorToHTTPStatus(appErr.Code))
	json.NewEncoder(w).Encode(errorResponse{
		Success: false,
		Error:   appErr.Message,
		Code:    appErr.Code,
	})
}

// askActor sends a message to an actor and waits for its reply. A timeout
// becomes a tagged actor error; a replied *utils.AppError is passed back as
// the error.
func (s *Server) askActor(pid *actor.PID, msg interface{}) (interface{}, *utils.AppError) {
	future := s.Context.RequestFuture(pid, msg, s.RequestTimeout)
	result, err := future.Result()
	if err != nil {
		s.Metrics.IncrementErrors()
		return nil, utils.NewActorTimeoutError("engine")
	}
	if appErr, ok := result.(*utils.AppError); ok {
		return nil, appErr
	}
	return result, nil
}

// clientIP extracts the origin IP, honoring the first X-Forwarded-For hop
// when the service sits behind a proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
