package actors

import (
	stdctx "context"
	"log"
	"strings"
	"time"

	"captain-smart/internal/database"
	"captain-smart/internal/expiry"
	"captain-smart/internal/models"
	"captain-smart/internal/utils"
	ws "captain-smart/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

// Message types for CommentActor
type (
	CreateCommentMsg struct {
		ExposeID  string
		Text      string
		HashedIP  string
		UserAgent string
		// CreatedAt is optional; a zero value means "now". Clients that
		// supply their own timestamp may not backdate it beyond the
		// tolerance window.
		CreatedAt time.Time
	}

	GetExposeCommentsMsg struct {
		ExposeID string
	}
)

const (
	maxCommentLen = 500

	// backdateTolerance bounds how far a client-supplied timestamp may
	// deviate from server time in either direction.
	backdateTolerance = 2 * time.Minute
)

// CommentActor manages anonymous comments on exposes.
type CommentActor struct {
	store  database.Store
	events EngagementPublisher
}

func NewCommentActor(store database.Store, events EngagementPublisher) actor.Actor {
	return &CommentActor{
		store:  store,
		events: events,
	}
}

func (a *CommentActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("CommentActor started with PID: %v", context.Self())

	case *CreateCommentMsg:
		a.handleCreateComment(context, msg)

	case *GetExposeCommentsMsg:
		a.handleGetExposeComments(context, msg)

	default:
		log.Printf("CommentActor: Unknown message type %T", msg)
	}
}

func (a *CommentActor) handleCreateComment(context actor.Context, msg *CreateCommentMsg) {
	if !models.ValidExposeID(msg.ExposeID) {
		context.Respond(utils.NewValidationError("exposeId", "must be expose_ prefixed"))
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" || len(text) > maxCommentLen {
		context.Respond(utils.NewValidationError("text", "must be 1-500 characters and not blank"))
		return
	}

	if !utils.ValidHashedIP(msg.HashedIP) {
		context.Respond(utils.NewValidationError("hashedIp", "must be a sha256 hex digest"))
		return
	}

	now := time.Now()
	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	if now.Sub(createdAt) > backdateTolerance {
		context.Respond(utils.NewValidationError("createdAt", "timestamp backdated beyond tolerance"))
		return
	}
	if createdAt.Sub(now) > backdateTolerance {
		context.Respond(utils.NewValidationError("createdAt", "timestamp in the future"))
		return
	}

	expose, err := a.store.GetExpose(stdctx.Background(), msg.ExposeID)
	if err != nil {
		context.Respond(asAppError(err))
		return
	}
	if expiry.IsExpired(expose.ExpiresAt, now) {
		context.Respond(utils.NewExposeExpiredError(msg.ExposeID))
		return
	}

	comment := &models.Comment{
		ID:        models.NewCommentID(),
		ExposeID:  msg.ExposeID,
		Text:      text,
		AuthorID:  utils.AnonymousID(msg.HashedIP, msg.UserAgent),
		HashedIP:  msg.HashedIP,
		UserAgent: msg.UserAgent,
		CreatedAt: createdAt,
	}

	if err := a.store.SaveComment(stdctx.Background(), comment); err != nil {
		context.Respond(asAppError(err))
		return
	}

	if err := a.store.IncrementComments(stdctx.Background(), msg.ExposeID); err != nil {
		// The comment is saved; a failed counter bump is logged, not fatal.
		log.Printf("CommentActor: failed to bump comment count for %s: %v", msg.ExposeID, err)
	}

	if a.events != nil {
		a.events.PublishEngagement(msg.ExposeID, ws.EventComment, expose.Comments+1)
	}

	context.Respond(comment)
}

func (a *CommentActor) handleGetExposeComments(context actor.Context, msg *GetExposeCommentsMsg) {
	if !models.ValidExposeID(msg.ExposeID) {
		context.Respond(utils.NewValidationError("exposeId", "must be expose_ prefixed"))
		return
	}

	comments, err := a.store.GetExposeComments(stdctx.Background(), msg.ExposeID)
	if err != nil {
		context.Respond(asAppError(err))
		return
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	context.Respond(comments)
}
