package leave

import (
	"context"
	"errors"
	"testing"
	"time"

	common_models "go-erp/internal/common/models"
	"go-erp/internal/features/notification"
	"go-erp/internal/workflow"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type fakeLeaveRepo struct {
	requests map[primitive.ObjectID]*LeaveRequest
}

func newFakeLeaveRepo() *fakeLeaveRepo {
	return &fakeLeaveRepo{requests: make(map[primitive.ObjectID]*LeaveRequest)}
}

func (f *fakeLeaveRepo) Create(ctx context.Context, req *LeaveRequest) error {
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	f.requests[req.ID] = req
	return nil
}

func (f *fakeLeaveRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*LeaveRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *req
	return &cp, nil
}

func (f *fakeLeaveRepo) List(ctx context.Context, filter map[string]interface{}, limit, offset int64) ([]LeaveRequest, int64, error) {
	out := make([]LeaveRequest, 0, len(f.requests))
	for _, req := range f.requests {
		out = append(out, *req)
	}
	return out, int64(len(out)), nil
}

func (f *fakeLeaveRepo) SwapState(ctx context.Context, id primitive.ObjectID, prev, next workflow.State) error {
	req, ok := f.requests[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if req.Workflow.Stage != prev.Stage || req.Workflow.Status != prev.Status {
		return workflow.ErrStaleState
	}
	req.Workflow = next
	return nil
}

func (f *fakeLeaveRepo) PendingApprovals(ctx context.Context) ([]notification.PendingApproval, error) {
	return nil, nil
}

type fakeAudit struct {
	trail []workflow.TrailEntry
	logs  []common_models.AuditAction
}

func (f *fakeAudit) Record(ctx context.Context, entry workflow.TrailEntry) error {
	f.trail = append(f.trail, entry)
	return nil
}

func (f *fakeAudit) Trail(ctx context.Context, kind workflow.Kind, requestID string) ([]workflow.TrailEntry, error) {
	return f.trail, nil
}

func (f *fakeAudit) LogChange(ctx context.Context, actorID string, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	f.logs = append(f.logs, action)
	return nil
}

func (f *fakeAudit) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

type fakeNotifier struct {
	delivered []notification.Notification
}

func (f *fakeNotifier) TransitionApplied(ctx context.Context, tr workflow.Transition) {}

func (f *fakeNotifier) NotifySubmitted(ctx context.Context, subject workflow.Subject) {
	state := subject.WorkflowState()
	if state.ApproverID != nil {
		f.delivered = append(f.delivered, notification.Notification{UserID: *state.ApproverID})
	}
}

func (f *fakeNotifier) Deliver(ctx context.Context, n *notification.Notification) {
	f.delivered = append(f.delivered, *n)
}

func (f *fakeNotifier) ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int64) ([]notification.Notification, error) {
	return nil, nil
}

func (f *fakeNotifier) MarkRead(ctx context.Context, id, userID string) error { return nil }
func (f *fakeNotifier) MarkAllRead(ctx context.Context, userID string) error  { return nil }

type serviceFixture struct {
	service      LeaveService
	repo         *fakeLeaveRepo
	audit        *fakeAudit
	notifier     *fakeNotifier
	employeeID   primitive.ObjectID
	deptID       primitive.ObjectID
	supervisorID primitive.ObjectID
	hrID         primitive.ObjectID
	cdID         primitive.ObjectID
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	env := &serviceFixture{
		repo:         newFakeLeaveRepo(),
		audit:        &fakeAudit{},
		notifier:     &fakeNotifier{},
		employeeID:   primitive.NewObjectID(),
		deptID:       primitive.NewObjectID(),
		supervisorID: primitive.NewObjectID(),
		hrID:         primitive.NewObjectID(),
		cdID:         primitive.NewObjectID(),
	}

	users := &fakeUserRepo{
		byRole: map[workflow.Role]*common_models.User{
			workflow.RoleHR: {ID: env.hrID, Role: workflow.RoleHR},
			workflow.RoleCD: {ID: env.cdID, Role: workflow.RoleCD},
		},
	}
	departments := &fakeDeptRepo{depts: map[primitive.ObjectID]*common_models.Department{
		env.deptID: {ID: env.deptID, Name: "Engineering", SupervisorID: &env.supervisorID},
	}}

	env.service = NewLeaveService(env.repo, users, departments, env.audit, env.notifier, zap.NewNop())
	return env
}

func (env *serviceFixture) create(t *testing.T) *LeaveRequest {
	t.Helper()
	req, err := env.service.CreateLeave(context.Background(), env.employeeID.Hex(), env.deptID.Hex(), CreateLeaveInput{
		Type:      LeaveTypeAnnual,
		StartDate: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC),
		Reason:    "family visit",
	})
	if err != nil {
		t.Fatalf("CreateLeave: %v", err)
	}
	return req
}

func TestCreateLeaveStartsAtFirstStage(t *testing.T) {
	env := newServiceFixture(t)
	req := env.create(t)

	if req.Days != 5 {
		t.Errorf("Days = %d, want 5", req.Days)
	}
	if req.Workflow.Stage != stageHOD {
		t.Errorf("Stage = %q, want %q", req.Workflow.Stage, stageHOD)
	}
	if req.Workflow.Status != workflow.StatusPending {
		t.Errorf("Status = %q, want pending", req.Workflow.Status)
	}
	if req.Workflow.ApproverID == nil || *req.Workflow.ApproverID != env.supervisorID {
		t.Errorf("ApproverID = %v, want supervisor %s", req.Workflow.ApproverID, env.supervisorID.Hex())
	}
	if len(env.notifier.delivered) != 1 {
		t.Errorf("delivered %d notifications, want 1", len(env.notifier.delivered))
	}
}

func TestCreateLeaveRejectsInvertedDates(t *testing.T) {
	env := newServiceFixture(t)
	_, err := env.service.CreateLeave(context.Background(), env.employeeID.Hex(), env.deptID.Hex(), CreateLeaveInput{
		Type:      LeaveTypeSick,
		StartDate: time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
	})
	if err == nil {
		t.Fatal("expected error for inverted dates")
	}
}

func TestCreateLeaveDepartmentErrors(t *testing.T) {
	env := newServiceFixture(t)
	input := CreateLeaveInput{
		Type:      LeaveTypeAnnual,
		StartDate: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC),
	}

	_, err := env.service.CreateLeave(context.Background(), env.employeeID.Hex(), "", input)
	if err == nil || err.Error() != "employee has no department assigned" {
		t.Errorf("empty department err = %v, want missing assignment error", err)
	}

	_, err = env.service.CreateLeave(context.Background(), env.employeeID.Hex(), "not-a-hex-id", input)
	if err == nil || err.Error() != "invalid department id" {
		t.Errorf("malformed department err = %v, want invalid id error", err)
	}
}

func TestApproveAdvancesToNextStage(t *testing.T) {
	env := newServiceFixture(t)
	req := env.create(t)

	state, err := env.service.Approve(context.Background(), req.ID.Hex(), workflow.Actor{ID: env.supervisorID, Role: workflow.RoleHOD})
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if state.Stage != stageHR {
		t.Errorf("Stage = %q, want %q", state.Stage, stageHR)
	}
	if state.ApproverID == nil || *state.ApproverID != env.hrID {
		t.Errorf("ApproverID = %v, want hr %s", state.ApproverID, env.hrID.Hex())
	}

	if len(env.audit.trail) != 1 {
		t.Fatalf("trail has %d entries, want 1", len(env.audit.trail))
	}
	if env.audit.trail[0].Decision != workflow.DecisionApproved {
		t.Errorf("trail decision = %q, want approved", env.audit.trail[0].Decision)
	}

	stored, _ := env.repo.FindByID(context.Background(), req.ID)
	if stored.Workflow.Stage != stageHR {
		t.Errorf("persisted stage = %q, want %q", stored.Workflow.Stage, stageHR)
	}
}

func TestApproveByWrongUserFails(t *testing.T) {
	env := newServiceFixture(t)
	req := env.create(t)

	_, err := env.service.Approve(context.Background(), req.ID.Hex(), workflow.Actor{ID: env.hrID, Role: workflow.RoleHR})
	if !errors.Is(err, workflow.ErrNotAuthorized) {
		t.Errorf("err = %v, want ErrNotAuthorized", err)
	}
}

func TestDeclineFinalizesImmediately(t *testing.T) {
	env := newServiceFixture(t)
	req := env.create(t)

	state, err := env.service.Decline(context.Background(), req.ID.Hex(), workflow.Actor{ID: env.supervisorID, Role: workflow.RoleHOD})
	if err != nil {
		t.Fatalf("Decline: %v", err)
	}
	if state.Stage != "complete" || state.Status != workflow.StatusDeclined {
		t.Errorf("state = %+v, want complete/declined", state)
	}

	// A finalized request takes no further action
	_, err = env.service.Approve(context.Background(), req.ID.Hex(), workflow.Actor{ID: env.hrID, Role: workflow.RoleHR})
	if !errors.Is(err, workflow.ErrAlreadyFinalized) {
		t.Errorf("err = %v, want ErrAlreadyFinalized", err)
	}
}

func TestFullApprovalChain(t *testing.T) {
	env := newServiceFixture(t)
	req := env.create(t)

	steps := []workflow.Actor{
		{ID: env.supervisorID, Role: workflow.RoleHOD},
		{ID: env.hrID, Role: workflow.RoleHR},
		{ID: env.cdID, Role: workflow.RoleCD},
	}
	var state workflow.State
	var err error
	for _, actor := range steps {
		state, err = env.service.Approve(context.Background(), req.ID.Hex(), actor)
		if err != nil {
			t.Fatalf("Approve as %s: %v", actor.Role, err)
		}
	}

	if state.Stage != "complete" || state.Status != workflow.StatusApproved {
		t.Errorf("final state = %+v, want complete/approved", state)
	}
	if len(env.audit.trail) != 3 {
		t.Errorf("trail has %d entries, want 3", len(env.audit.trail))
	}
}
