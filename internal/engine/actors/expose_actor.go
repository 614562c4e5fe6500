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

// EngagementPublisher receives counter changes for the live feed. The
// websocket hub implements it; actors tolerate a nil publisher.
type EngagementPublisher interface {
	PublishEngagement(exposeID, kind string, value int)
}

// Message types for Expose operations
type (
	CreateExposeMsg struct {
		Title     string
		Content   string
		Hashtag   string
		ImageURLs []string
		AudioURL  string
	}

	GetExposeMsg struct {
		ExposeID string
	}

	GetRecentExposesMsg struct {
		Limit int
	}

	VoteExposeMsg struct {
		ExposeID string
		VoteType models.VoteType
	}

	ShareExposeMsg struct {
		ExposeID string
	}

	RecordViewMsg struct {
		ExposeID  string
		SessionID string
		HashedIP  string
	}
)

// Result types returned to handlers
type (
	VoteResult struct {
		Upvotes   int `json:"upvotes"`
		Downvotes int `json:"downvotes"`
		NetVotes  int `json:"netVotes"`
	}

	ShareResult struct {
		Shares int `json:"shares"`
	}

	ViewResult struct {
		NewView bool `json:"newView"`
		Views   int  `json:"views"`
	}
)

const (
	maxTitleLen   = 200
	maxContentLen = 2000
	maxHashtagLen = 50
	maxImages     = 5
)

// ExposeActor handles expose lifecycle and engagement counters. All durable
// state lives in the store; the actor adds validation, expiry checks and
// event publication around atomic store operations.
type ExposeActor struct {
	store         database.Store
	events        EngagementPublisher
	metrics       *utils.MetricsCollector
	fatigueWindow time.Duration
}

func NewExposeActor(store database.Store, events EngagementPublisher, metrics *utils.MetricsCollector, fatigueWindow time.Duration) actor.Actor {
	return &ExposeActor{
		store:         store,
		events:        events,
		metrics:       metrics,
		fatigueWindow: fatigueWindow,
	}
}

func (a *ExposeActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("ExposeActor started")

	case *actor.Stopping:
		log.Printf("ExposeActor stopping")

	case *CreateExposeMsg:
		a.handleCreateExpose(context, msg)
	case *GetExposeMsg:
		a.handleGetExpose(context, msg)
	case *GetRecentExposesMsg:
		a.handleGetRecent(context, msg)
	case *VoteExposeMsg:
		a.handleVote(context, msg)
	case *ShareExposeMsg:
		a.handleShare(context, msg)
	case *RecordViewMsg:
		a.handleRecordView(context, msg)
	default:
		log.Printf("ExposeActor: Unknown message type: %T", msg)
	}
}

func (a *ExposeActor) publish(exposeID, kind string, value int) {
	if a.events != nil {
		a.events.PublishEngagement(exposeID, kind, value)
	}
}

func (a *ExposeActor) handleCreateExpose(context actor.Context, msg *CreateExposeMsg) {
	startTime := time.Now()

	title := strings.TrimSpace(msg.Title)
	if title == "" || len(title) > maxTitleLen {
		context.Respond(utils.NewValidationError("title", "must be 1-200 characters"))
		return
	}

	content := strings.TrimSpace(msg.Content)
	if content == "" || len(content) > maxContentLen {
		context.Respond(utils.NewValidationError("content", "must be 1-2000 characters"))
		return
	}

	hashtag := strings.TrimSpace(msg.Hashtag)
	if hashtag != "" {
		if !strings.HasPrefix(hashtag, "#") || len(hashtag) > maxHashtagLen || strings.ContainsAny(hashtag, " \t\n") {
			context.Respond(utils.NewValidationError("hashtag", "must start with # and contain no whitespace"))
			return
		}
	}

	if len(msg.ImageURLs) > maxImages {
		context.Respond(utils.NewValidationError("images", "at most 5 images per expose"))
		return
	}

	now := time.Now()
	newExpose := &models.Expose{
		ID:        models.NewExposeID(),
		Title:     title,
		Content:   content,
		Hashtag:   hashtag,
		ImageURLs: msg.ImageURLs,
		AudioURL:  msg.AudioURL,
		CreatedAt: now,
		ExpiresAt: expiry.ComputeExpiry(now, a.fatigueWindow),
	}

	log.Printf("ExposeActor: Creating expose %s, expires at %s", newExpose.ID, newExpose.ExpiresAt)

	if err := a.store.SaveExpose(stdctx.Background(), newExpose); err != nil {
		context.Respond(asAppError(err))
		return
	}

	a.metrics.AddOperationLatency("create_expose", time.Since(startTime))
	context.Respond(newExpose)
}

// loadLiveExpose fetches an expose and applies the expiry policy; callers
// receive nil plus a responded error when the expose is missing or expired.
func (a *ExposeActor) loadLiveExpose(context actor.Context, exposeID string) *models.Expose {
	expose, err := a.store.GetExpose(stdctx.Background(), exposeID)
	if err != nil {
		context.Respond(asAppError(err))
		return nil
	}
	if expiry.IsExpired(expose.ExpiresAt, time.Now()) {
		context.Respond(utils.NewExposeExpiredError(exposeID))
		return nil
	}
	return expose
}

func (a *ExposeActor) handleGetExpose(context actor.Context, msg *GetExposeMsg) {
	if !models.ValidExposeID(msg.ExposeID) {
		context.Respond(utils.NewValidationError("exposeId", "must be expose_ prefixed"))
		return
	}

	if expose := a.loadLiveExpose(context, msg.ExposeID); expose != nil {
		context.Respond(expose)
	}
}

func (a *ExposeActor) handleGetRecent(context actor.Context, msg *GetRecentExposesMsg) {
	limit := msg.Limit
	if limit <= 0 {
		limit = 20
	}

	exposes, err := a.store.GetRecentExposes(stdctx.Background(), time.Now(), limit)
	if err != nil {
		context.Respond(asAppError(err))
		return
	}
	context.Respond(exposes)
}

func (a *ExposeActor) handleVote(context actor.Context, msg *VoteExposeMsg) {
	startTime := time.Now()

	if !models.ValidExposeID(msg.ExposeID) {
		context.Respond(utils.NewValidationError("exposeId", "must be expose_ prefixed"))
		return
	}
	if !msg.VoteType.Valid() {
		context.Respond(utils.NewValidationError("voteType", "must be upvote or downvote"))
		return
	}

	if a.loadLiveExpose(context, msg.ExposeID) == nil {
		return
	}

	updated, err := a.store.IncrementVote(stdctx.Background(), msg.ExposeID, msg.VoteType)
	if err != nil {
		context.Respond(asAppError(err))
		return
	}

	if msg.VoteType == models.VoteUp {
		a.publish(msg.ExposeID, ws.EventUpvote, updated.Upvotes)
	} else {
		a.publish(msg.ExposeID, ws.EventDownvote, updated.Downvotes)
	}

	a.metrics.AddOperationLatency("vote_expose", time.Since(startTime))
	context.Respond(&VoteResult{
		Upvotes:   updated.Upvotes,
		Downvotes: updated.Downvotes,
		NetVotes:  updated.NetVotes(),
	})
}

func (a *ExposeActor) handleShare(context actor.Context, msg *ShareExposeMsg) {
	startTime := time.Now()

	if !models.ValidExposeID(msg.ExposeID) {
		context.Respond(utils.NewValidationError("exposeId", "must be expose_ prefixed"))
		return
	}

	if a.loadLiveExpose(context, msg.ExposeID) == nil {
		return
	}

	updated, err := a.store.IncrementShares(stdctx.Background(), msg.ExposeID)
	if err != nil {
		context.Respond(asAppError(err))
		return
	}

	a.publish(msg.ExposeID, ws.EventShare, updated.Shares)

	a.metrics.AddOperationLatency("share_expose", time.Since(startTime))
	context.Respond(&ShareResult{Shares: updated.Shares})
}

func (a *ExposeActor) handleRecordView(context actor.Context, msg *RecordViewMsg) {
	startTime := time.Now()

	if !models.ValidExposeID(msg.ExposeID) {
		context.Respond(utils.NewValidationError("exposeId", "must be expose_ prefixed"))
		return
	}
	if !models.ValidSessionID(msg.SessionID) {
		context.Respond(utils.NewValidationError("sessionId", "must be session_ prefixed"))
		return
	}

	expose := a.loadLiveExpose(context, msg.ExposeID)
	if expose == nil {
		return
	}

	record := &models.ViewRecord{
		ID:        models.NewViewID(),
		ExposeID:  msg.ExposeID,
		SessionID: msg.SessionID,
		HashedIP:  msg.HashedIP,
		ViewedAt:  time.Now(),
	}

	inserted, err := a.store.InsertView(stdctx.Background(), record)
	if err != nil {
		context.Respond(asAppError(err))
		return
	}

	if !inserted {
		// Duplicate view from the same session: a normal response, and no
		// counter change.
		context.Respond(&ViewResult{NewView: false, Views: expose.Views})
		return
	}

	if err := a.store.IncrementViews(stdctx.Background(), msg.ExposeID); err != nil {
		context.Respond(asAppError(err))
		return
	}

	a.publish(msg.ExposeID, ws.EventView, expose.Views+1)

	a.metrics.AddOperationLatency("record_view", time.Since(startTime))
	context.Respond(&ViewResult{NewView: true, Views: expose.Views + 1})
}

// asAppError keeps actor responses uniformly tagged; an untagged store error
// is reported as a database failure.
func asAppError(err error) *utils.AppError {
	if appErr, ok := err.(*utils.AppError); ok {
		return appErr
	}
	return utils.NewAppError(utils.ErrDatabase, "store operation failed", err)
}
