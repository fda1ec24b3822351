package workflow

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Subject is what the engine needs from a routed request. Domain payloads
// (dates, items, reasons) stay opaque; resolvers type-assert to their own
// entity for anything beyond this.
type Subject interface {
	SubjectID() primitive.ObjectID
	WorkflowState() State
}

// ApproverResolver maps (request, stage) to the concrete user authorized to
// act at that stage. Implementations are domain-specific and must be
// deterministic for a given request+stage.
type ApproverResolver interface {
	Resolve(ctx context.Context, subject Subject, stage string) (primitive.ObjectID, error)
}

// StateStore persists a state transition as an atomic compare-and-swap keyed
// on the (stage, status) pair read at authorization time. A swap that matches
// no document must return ErrStaleState.
type StateStore interface {
	SwapState(ctx context.Context, id primitive.ObjectID, prev, next State) error
}

// TrailEntry is one record of the append-only approval trail.
type TrailEntry struct {
	Kind      Kind               `bson:"kind" json:"kind"`
	RequestID primitive.ObjectID `bson:"request_id" json:"request_id"`
	Stage     string             `bson:"stage" json:"stage"`
	ActorID   primitive.ObjectID `bson:"actor_id" json:"actor_id"`
	Decision  Decision           `bson:"decision" json:"decision"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

type TrailRecorder interface {
	Record(ctx context.Context, entry TrailEntry) error
}

// Transition describes an applied state change, handed to listeners after the
// write commits. Listeners must not mutate workflow state.
type Transition struct {
	Subject  Subject
	Actor    Actor
	Decision Decision
	From     State
	To       State
}

type Listener interface {
	TransitionApplied(ctx context.Context, tr Transition)
}

// Engine is the single code path through which workflow state changes. One
// engine is built per workflow kind; domain packages supply the definition,
// store and resolver, never transition logic.
type Engine struct {
	def      *Definition
	store    StateStore
	resolver ApproverResolver
	trail    TrailRecorder
	listener Listener
	log      *zap.Logger
}

type Option func(*Engine)

// WithTrail enables the append-only approval trail.
func WithTrail(r TrailRecorder) Option {
	return func(e *Engine) { e.trail = r }
}

// WithListener attaches an observer notified after each applied transition.
func WithListener(l Listener) Option {
	return func(e *Engine) { e.listener = l }
}

func NewEngine(def *Definition, store StateStore, resolver ApproverResolver, log *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		def:      def,
		store:    store,
		resolver: resolver,
		log:      log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Definition() *Definition {
	return e.def
}

// Initialize returns the state a newly created request starts in: first stage,
// pending, approver resolved for the first stage. The caller persists the
// request with this state in its insert; nothing is written here. Resolution
// failure aborts creation with ErrNoApprover.
func (e *Engine) Initialize(ctx context.Context, subject Subject) (State, error) {
	first := e.def.FirstStage()
	approver, err := e.resolver.Resolve(ctx, subject, first)
	if err != nil {
		return State{}, err
	}
	return State{
		Kind:       e.def.kind,
		Stage:      first,
		Status:     StatusPending,
		ApproverID: &approver,
	}, nil
}

// Approve advances the request to its next stage, or finalizes it as approved
// when the current stage is the last one.
func (e *Engine) Approve(ctx context.Context, subject Subject, actor Actor) (State, error) {
	return e.act(ctx, subject, actor, DecisionApproved)
}

// Decline finalizes the request as declined regardless of how many stages
// remained. It never routes to another stage.
func (e *Engine) Decline(ctx context.Context, subject Subject, actor Actor) (State, error) {
	return e.act(ctx, subject, actor, DecisionDeclined)
}

func (e *Engine) act(ctx context.Context, subject Subject, actor Actor, decision Decision) (State, error) {
	prev := subject.WorkflowState()

	if prev.Terminal() {
		return State{}, ErrAlreadyFinalized
	}

	role, err := e.def.RoleFor(prev.Stage)
	if err != nil {
		return State{}, err
	}
	// Both checks are required: matching the role is not enough, the actor
	// must be the specific user the resolver picked for this stage.
	if prev.ApproverID == nil || actor.ID != *prev.ApproverID || actor.Role != role {
		return State{}, ErrNotAuthorized
	}

	next := State{Kind: e.def.kind}
	switch decision {
	case DecisionDeclined:
		next.Stage = e.def.terminal
		next.Status = StatusDeclined
	case DecisionApproved:
		stage, err := e.def.NextStage(prev.Stage)
		if err != nil {
			return State{}, err
		}
		if stage == e.def.terminal {
			next.Stage = stage
			next.Status = StatusApproved
		} else {
			approver, err := e.resolver.Resolve(ctx, subject, stage)
			if err != nil {
				return State{}, err
			}
			next.Stage = stage
			next.Status = StatusPending
			next.ApproverID = &approver
		}
	}

	if err := e.store.SwapState(ctx, subject.SubjectID(), prev, next); err != nil {
		return State{}, err
	}

	e.log.Info("workflow transition applied",
		zap.String("kind", string(e.def.kind)),
		zap.String("request_id", subject.SubjectID().Hex()),
		zap.String("decision", string(decision)),
		zap.String("from_stage", prev.Stage),
		zap.String("to_stage", next.Stage),
		zap.String("status", string(next.Status)),
	)

	if e.trail != nil {
		entry := TrailEntry{
			Kind:      e.def.kind,
			RequestID: subject.SubjectID(),
			Stage:     prev.Stage,
			ActorID:   actor.ID,
			Decision:  decision,
			Timestamp: time.Now(),
		}
		// Trail failures must not roll back an applied transition.
		if err := e.trail.Record(ctx, entry); err != nil {
			e.log.Warn("failed to record approval trail entry",
				zap.String("request_id", subject.SubjectID().Hex()),
				zap.Error(err),
			)
		}
	}

	if e.listener != nil {
		e.listener.TransitionApplied(ctx, Transition{
			Subject:  subject,
			Actor:    actor,
			Decision: decision,
			From:     prev,
			To:       next,
		})
	}

	return next, nil
}
