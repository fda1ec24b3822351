package workflow

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// fakeRequest is a minimal Subject for engine tests.
type fakeRequest struct {
	id    primitive.ObjectID
	state State
}

func (r *fakeRequest) SubjectID() primitive.ObjectID { return r.id }
func (r *fakeRequest) WorkflowState() State          { return r.state }

// memStore applies swaps against an in-memory request and can be forced to
// report a concurrent modification.
type memStore struct {
	req      *fakeRequest
	stale    bool
	swapped  int
	lastPrev State
	lastNext State
}

func (s *memStore) SwapState(ctx context.Context, id primitive.ObjectID, prev, next State) error {
	if s.stale {
		return ErrStaleState
	}
	if id != s.req.id || s.req.state.Stage != prev.Stage || s.req.state.Status != prev.Status {
		return ErrStaleState
	}
	s.req.state = next
	s.swapped++
	s.lastPrev = prev
	s.lastNext = next
	return nil
}

// mapResolver resolves each stage to a fixed user.
type mapResolver struct {
	users map[string]primitive.ObjectID
}

func (r *mapResolver) Resolve(ctx context.Context, subject Subject, stage string) (primitive.ObjectID, error) {
	id, ok := r.users[stage]
	if !ok {
		return primitive.NilObjectID, ErrNoApprover
	}
	return id, nil
}

type capturingTrail struct {
	entries []TrailEntry
	fail    bool
}

func (t *capturingTrail) Record(ctx context.Context, entry TrailEntry) error {
	if t.fail {
		return errors.New("trail store down")
	}
	t.entries = append(t.entries, entry)
	return nil
}

type capturingListener struct {
	transitions []Transition
}

func (l *capturingListener) TransitionApplied(ctx context.Context, tr Transition) {
	l.transitions = append(l.transitions, tr)
}

type fixture struct {
	engine   *Engine
	req      *fakeRequest
	store    *memStore
	trail    *capturingTrail
	listener *capturingListener
	hod      Actor
	hr       Actor
	cd       Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	def := threeStageDef(t)

	hod := Actor{ID: primitive.NewObjectID(), Role: RoleHOD}
	hr := Actor{ID: primitive.NewObjectID(), Role: RoleHR}
	cd := Actor{ID: primitive.NewObjectID(), Role: RoleCD}

	resolver := &mapResolver{users: map[string]primitive.ObjectID{
		"hod": hod.ID,
		"hr":  hr.ID,
		"cd":  cd.ID,
	}}

	req := &fakeRequest{id: primitive.NewObjectID()}
	store := &memStore{req: req}
	trail := &capturingTrail{}
	listener := &capturingListener{}

	engine := NewEngine(def, store, resolver, zap.NewNop(),
		WithTrail(trail), WithListener(listener))

	state, err := engine.Initialize(context.Background(), req)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	req.state = state

	return &fixture{
		engine: engine, req: req, store: store,
		trail: trail, listener: listener,
		hod: hod, hr: hr, cd: cd,
	}
}

func TestInitialize(t *testing.T) {
	f := newFixture(t)

	if f.req.state.Stage != "hod" {
		t.Errorf("initial stage = %q, want %q", f.req.state.Stage, "hod")
	}
	if f.req.state.Status != StatusPending {
		t.Errorf("initial status = %q, want pending", f.req.state.Status)
	}
	if f.req.state.ApproverID == nil || *f.req.state.ApproverID != f.hod.ID {
		t.Error("initial approver should be the hod user")
	}
}

func TestInitializeNoApprover(t *testing.T) {
	def := threeStageDef(t)
	req := &fakeRequest{id: primitive.NewObjectID()}
	engine := NewEngine(def, &memStore{req: req}, &mapResolver{users: nil}, zap.NewNop())

	_, err := engine.Initialize(context.Background(), req)
	if !errors.Is(err, ErrNoApprover) {
		t.Fatalf("expected ErrNoApprover, got %v", err)
	}
}

func TestApproveFullChain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// hod -> hr
	state, err := f.engine.Approve(ctx, f.req, f.hod)
	if err != nil {
		t.Fatalf("hod approve: %v", err)
	}
	if state.Stage != "hr" || state.Status != StatusPending {
		t.Fatalf("after hod approve: stage=%q status=%q", state.Stage, state.Status)
	}
	if state.ApproverID == nil || *state.ApproverID != f.hr.ID {
		t.Fatal("approver after hod approve should be the hr user")
	}

	// hr -> cd
	state, err = f.engine.Approve(ctx, f.req, f.hr)
	if err != nil {
		t.Fatalf("hr approve: %v", err)
	}
	if state.Stage != "cd" || state.ApproverID == nil || *state.ApproverID != f.cd.ID {
		t.Fatalf("after hr approve: stage=%q", state.Stage)
	}

	// cd -> terminal
	state, err = f.engine.Approve(ctx, f.req, f.cd)
	if err != nil {
		t.Fatalf("cd approve: %v", err)
	}
	if state.Stage != "complete" || state.Status != StatusApproved {
		t.Fatalf("final state: stage=%q status=%q", state.Stage, state.Status)
	}
	if state.ApproverID != nil {
		t.Error("terminal state must clear the approver")
	}

	if len(f.trail.entries) != 3 {
		t.Fatalf("trail entries = %d, want 3", len(f.trail.entries))
	}
	wantStages := []string{"hod", "hr", "cd"}
	for i, entry := range f.trail.entries {
		if entry.Stage != wantStages[i] {
			t.Errorf("trail[%d].Stage = %q, want %q", i, entry.Stage, wantStages[i])
		}
		if entry.Decision != DecisionApproved {
			t.Errorf("trail[%d].Decision = %q", i, entry.Decision)
		}
	}
	if len(f.listener.transitions) != 3 {
		t.Errorf("listener transitions = %d, want 3", len(f.listener.transitions))
	}
}

func TestApproveWrongActor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// hr holds a role valid at a later stage, but is not the hod approver.
	if _, err := f.engine.Approve(ctx, f.req, f.hr); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("hr acting at hod stage: got %v, want ErrNotAuthorized", err)
	}

	// Same identity as the approver but wrong role must also fail.
	impostor := Actor{ID: f.hod.ID, Role: RoleHR}
	if _, err := f.engine.Approve(ctx, f.req, impostor); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("identity match with wrong role: got %v, want ErrNotAuthorized", err)
	}

	// Right role, different user (two users sharing a role).
	otherHOD := Actor{ID: primitive.NewObjectID(), Role: RoleHOD}
	if _, err := f.engine.Approve(ctx, f.req, otherHOD); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("role match with wrong identity: got %v, want ErrNotAuthorized", err)
	}

	if f.store.swapped != 0 {
		t.Error("failed authorization must not write state")
	}
	if f.req.state.Stage != "hod" || f.req.state.Status != StatusPending {
		t.Error("request state must be unchanged after rejected calls")
	}
}

func TestDeclineShortCircuits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	state, err := f.engine.Decline(ctx, f.req, f.hod)
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if state.Stage != "complete" || state.Status != StatusDeclined {
		t.Fatalf("decline result: stage=%q status=%q", state.Stage, state.Status)
	}
	if state.ApproverID != nil {
		t.Error("declined request must have no approver")
	}
	if len(f.trail.entries) != 1 || f.trail.entries[0].Decision != DecisionDeclined {
		t.Error("decline should append one declined trail entry")
	}
}

func TestDeclineOnlyByCurrentApprover(t *testing.T) {
	f := newFixture(t)

	// A later-stage approver cannot decline out of turn.
	if _, err := f.engine.Decline(context.Background(), f.req, f.cd); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("cd declining at hod stage: got %v, want ErrNotAuthorized", err)
	}
}

func TestTerminalIsFrozen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, actor := range []Actor{f.hod, f.hr, f.cd} {
		if _, err := f.engine.Approve(ctx, f.req, actor); err != nil {
			t.Fatalf("approve by %s: %v", actor.Role, err)
		}
	}
	final := f.req.state

	if _, err := f.engine.Approve(ctx, f.req, f.cd); !errors.Is(err, ErrAlreadyFinalized) {
		t.Fatalf("approve after terminal: got %v, want ErrAlreadyFinalized", err)
	}
	if _, err := f.engine.Decline(ctx, f.req, f.cd); !errors.Is(err, ErrAlreadyFinalized) {
		t.Fatalf("decline after terminal: got %v, want ErrAlreadyFinalized", err)
	}
	if f.req.state != final {
		t.Error("terminal state must be immutable")
	}
}

func TestSingleStageDefinition(t *testing.T) {
	def, err := NewDefinition(KindProcurement, "complete",
		StageDef{Key: "hod", Role: RoleHOD},
	)
	if err != nil {
		t.Fatalf("NewDefinition: %v", err)
	}

	hod := Actor{ID: primitive.NewObjectID(), Role: RoleHOD}
	resolver := &mapResolver{users: map[string]primitive.ObjectID{"hod": hod.ID}}
	req := &fakeRequest{id: primitive.NewObjectID()}
	store := &memStore{req: req}
	engine := NewEngine(def, store, resolver, zap.NewNop())

	ctx := context.Background()
	state, err := engine.Initialize(ctx, req)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	req.state = state

	state, err = engine.Approve(ctx, req, hod)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if state.Stage != "complete" || state.Status != StatusApproved {
		t.Fatalf("single-stage approve must finalize, got stage=%q status=%q", state.Stage, state.Status)
	}
}

func TestAdvanceBlockedWhenNextApproverMissing(t *testing.T) {
	f := newFixture(t)

	// Remove the hr user so advancing out of hod cannot resolve an approver.
	resolver := f.engine.resolver.(*mapResolver)
	delete(resolver.users, "hr")

	_, err := f.engine.Approve(context.Background(), f.req, f.hod)
	if !errors.Is(err, ErrNoApprover) {
		t.Fatalf("got %v, want ErrNoApprover", err)
	}
	if f.store.swapped != 0 {
		t.Error("resolution failure must not apply a partial transition")
	}
	if f.req.state.Stage != "hod" || f.req.state.Status != StatusPending {
		t.Error("request must stay pending on its current stage")
	}
}

func TestConcurrentSwapRejected(t *testing.T) {
	f := newFixture(t)
	f.store.stale = true

	_, err := f.engine.Approve(context.Background(), f.req, f.hod)
	if !errors.Is(err, ErrStaleState) {
		t.Fatalf("got %v, want ErrStaleState", err)
	}
	if len(f.trail.entries) != 0 || len(f.listener.transitions) != 0 {
		t.Error("stale swap must not record trail or notify listeners")
	}
}

func TestTrailFailureDoesNotFailTransition(t *testing.T) {
	f := newFixture(t)
	f.trail.fail = true

	state, err := f.engine.Approve(context.Background(), f.req, f.hod)
	if err != nil {
		t.Fatalf("approve with failing trail: %v", err)
	}
	if state.Stage != "hr" {
		t.Errorf("stage = %q, want hr", state.Stage)
	}
}

func TestMonotonicProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seen := map[string]bool{f.req.state.Stage: true}
	order := []string{f.req.state.Stage}
	for _, actor := range []Actor{f.hod, f.hr, f.cd} {
		state, err := f.engine.Approve(ctx, f.req, actor)
		if err != nil {
			t.Fatalf("approve: %v", err)
		}
		if seen[state.Stage] {
			t.Fatalf("stage %q repeated", state.Stage)
		}
		seen[state.Stage] = true
		order = append(order, state.Stage)
	}

	want := []string{"hod", "hr", "cd", "complete"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("stage order %v, want %v", order, want)
		}
	}
}
