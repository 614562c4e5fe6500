package engine

import (
	"time"

	"captain-smart/internal/database"
	"captain-smart/internal/engine/actors"
	"captain-smart/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

// Engine owns the domain actors and hands their PIDs to the HTTP layer.
type Engine struct {
	exposeActor  *actor.PID
	commentActor *actor.PID
}

func NewEngine(
	system *actor.ActorSystem,
	store database.Store,
	events actors.EngagementPublisher,
	metrics *utils.MetricsCollector,
	fatigueWindow time.Duration,
) *Engine {
	context := system.Root

	exposeProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewExposeActor(store, events, metrics, fatigueWindow)
	})
	exposePID := context.Spawn(exposeProps)

	commentProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewCommentActor(store, events)
	})
	commentPID := context.Spawn(commentProps)

	return &Engine{
		exposeActor:  exposePID,
		commentActor: commentPID,
	}
}

// GetExposeActor returns the PID of the expose actor
func (e *Engine) GetExposeActor() *actor.PID {
	return e.exposeActor
}

// GetCommentActor returns the PID of the comment actor
func (e *Engine) GetCommentActor() *actor.PID {
	return e.commentActor
}
