package procurement

import (
	"context"
	"errors"
	"testing"

	common_models "go-erp/internal/common/models"
	"go-erp/internal/features/notification"
	"go-erp/internal/workflow"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type fakeProcRepo struct {
	requests map[primitive.ObjectID]*ProcurementRequest
}

func newFakeProcRepo() *fakeProcRepo {
	return &fakeProcRepo{requests: make(map[primitive.ObjectID]*ProcurementRequest)}
}

func (f *fakeProcRepo) Create(ctx context.Context, req *ProcurementRequest) error {
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	f.requests[req.ID] = req
	return nil
}

func (f *fakeProcRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*ProcurementRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *req
	return &cp, nil
}

func (f *fakeProcRepo) List(ctx context.Context, filter map[string]interface{}, limit, offset int64) ([]ProcurementRequest, int64, error) {
	out := make([]ProcurementRequest, 0, len(f.requests))
	for _, req := range f.requests {
		out = append(out, *req)
	}
	return out, int64(len(out)), nil
}

func (f *fakeProcRepo) ListAll(ctx context.Context, filter map[string]interface{}) ([]ProcurementRequest, error) {
	out := make([]ProcurementRequest, 0, len(f.requests))
	for _, req := range f.requests {
		out = append(out, *req)
	}
	return out, nil
}

func (f *fakeProcRepo) SwapState(ctx context.Context, id primitive.ObjectID, prev, next workflow.State) error {
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

func (f *fakeProcRepo) PendingApprovals(ctx context.Context) ([]notification.PendingApproval, error) {
	return nil, nil
}

type fakeUserRepo struct {
	byRole map[workflow.Role]*common_models.User
}

func (f *fakeUserRepo) Create(ctx context.Context, u *common_models.User) error { return nil }

func (f *fakeUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*common_models.User, error) {
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) FindByIDs(ctx context.Context, ids []string) ([]common_models.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) FindFirstByRole(ctx context.Context, role workflow.Role) (*common_models.User, error) {
	if u, ok := f.byRole[role]; ok {
		return u, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) List(ctx context.Context, filter map[string]interface{}, limit, offset int64) ([]common_models.User, int64, error) {
	return nil, 0, nil
}

type fakeDeptRepo struct {
	depts map[primitive.ObjectID]*common_models.Department
}

func (f *fakeDeptRepo) Create(ctx context.Context, d *common_models.Department) error { return nil }

func (f *fakeDeptRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*common_models.Department, error) {
	if d, ok := f.depts[id]; ok {
		return d, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeDeptRepo) List(ctx context.Context) ([]common_models.Department, error) { return nil, nil }

type fakeAudit struct {
	trail []workflow.TrailEntry
}

func (f *fakeAudit) Record(ctx context.Context, entry workflow.TrailEntry) error {
	f.trail = append(f.trail, entry)
	return nil
}

func (f *fakeAudit) Trail(ctx context.Context, kind workflow.Kind, requestID string) ([]workflow.TrailEntry, error) {
	return f.trail, nil
}

func (f *fakeAudit) LogChange(ctx context.Context, actorID string, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	return nil
}

func (f *fakeAudit) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

type fakeNotifier struct{}

func (f *fakeNotifier) TransitionApplied(ctx context.Context, tr workflow.Transition) {}
func (f *fakeNotifier) NotifySubmitted(ctx context.Context, subject workflow.Subject) {}
func (f *fakeNotifier) Deliver(ctx context.Context, n *notification.Notification)     {}
func (f *fakeNotifier) MarkRead(ctx context.Context, id, userID string) error         { return nil }
func (f *fakeNotifier) MarkAllRead(ctx context.Context, userID string) error          { return nil }
func (f *fakeNotifier) ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int64) ([]notification.Notification, error) {
	return nil, nil
}

type procFixture struct {
	service      ProcurementService
	repo         *fakeProcRepo
	requesterID  primitive.ObjectID
	deptID       primitive.ObjectID
	supervisorID primitive.ObjectID
	cdID         primitive.ObjectID
}

func newProcFixture(t *testing.T) *procFixture {
	t.Helper()

	env := &procFixture{
		repo:         newFakeProcRepo(),
		requesterID:  primitive.NewObjectID(),
		deptID:       primitive.NewObjectID(),
		supervisorID: primitive.NewObjectID(),
		cdID:         primitive.NewObjectID(),
	}

	users := &fakeUserRepo{byRole: map[workflow.Role]*common_models.User{
		workflow.RoleCD: {ID: env.cdID, Role: workflow.RoleCD},
	}}
	departments := &fakeDeptRepo{depts: map[primitive.ObjectID]*common_models.Department{
		env.deptID: {ID: env.deptID, Name: "Engineering", SupervisorID: &env.supervisorID},
	}}

	env.service = NewProcurementService(env.repo, users, departments, &fakeAudit{}, &fakeNotifier{}, zap.NewNop())
	return env
}

func TestCreateRequestTotalsItems(t *testing.T) {
	env := newProcFixture(t)

	req, err := env.service.CreateRequest(context.Background(), env.requesterID.Hex(), env.deptID.Hex(), CreateProcurementInput{
		Items: []ProcurementItem{
			{Name: "Laptop", Quantity: 2, UnitCost: 1200},
			{Name: "Monitor", Quantity: 4, UnitCost: 250},
		},
		Justification: "new hires",
	})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	if req.TotalCost != 3400 {
		t.Errorf("TotalCost = %v, want 3400", req.TotalCost)
	}
	if req.Workflow.Stage != stageHOD {
		t.Errorf("Stage = %q, want %q", req.Workflow.Stage, stageHOD)
	}
	if req.Workflow.ApproverID == nil || *req.Workflow.ApproverID != env.supervisorID {
		t.Errorf("ApproverID = %v, want supervisor", req.Workflow.ApproverID)
	}
}

func TestCreateRequestValidatesItems(t *testing.T) {
	env := newProcFixture(t)

	tests := []struct {
		name  string
		items []ProcurementItem
	}{
		{"no items", nil},
		{"unnamed item", []ProcurementItem{{Quantity: 1, UnitCost: 10}}},
		{"zero quantity", []ProcurementItem{{Name: "Desk", Quantity: 0, UnitCost: 10}}},
		{"negative cost", []ProcurementItem{{Name: "Desk", Quantity: 1, UnitCost: -5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.service.CreateRequest(context.Background(), env.requesterID.Hex(), env.deptID.Hex(), CreateProcurementInput{Items: tt.items})
			if err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCreateRequestDepartmentErrors(t *testing.T) {
	env := newProcFixture(t)
	input := CreateProcurementInput{
		Items: []ProcurementItem{{Name: "Desk", Quantity: 1, UnitCost: 150}},
	}

	_, err := env.service.CreateRequest(context.Background(), env.requesterID.Hex(), "", input)
	if err == nil || err.Error() != "requester has no department assigned" {
		t.Errorf("empty department err = %v, want missing assignment error", err)
	}

	_, err = env.service.CreateRequest(context.Background(), env.requesterID.Hex(), "not-a-hex-id", input)
	if err == nil || err.Error() != "invalid department id" {
		t.Errorf("malformed department err = %v, want invalid id error", err)
	}
}

func TestTwoStageChainSkipsHR(t *testing.T) {
	env := newProcFixture(t)

	req, err := env.service.CreateRequest(context.Background(), env.requesterID.Hex(), env.deptID.Hex(), CreateProcurementInput{
		Items: []ProcurementItem{{Name: "Chair", Quantity: 1, UnitCost: 300}},
	})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	state, err := env.service.Approve(context.Background(), req.ID.Hex(), workflow.Actor{ID: env.supervisorID, Role: workflow.RoleHOD})
	if err != nil {
		t.Fatalf("Approve as hod: %v", err)
	}
	if state.Stage != stageCD {
		t.Errorf("Stage after hod = %q, want %q", state.Stage, stageCD)
	}

	state, err = env.service.Approve(context.Background(), req.ID.Hex(), workflow.Actor{ID: env.cdID, Role: workflow.RoleCD})
	if err != nil {
		t.Fatalf("Approve as cd: %v", err)
	}
	if state.Stage != "complete" || state.Status != workflow.StatusApproved {
		t.Errorf("final state = %+v, want complete/approved", state)
	}
}

func TestDeclineAtDirectorStage(t *testing.T) {
	env := newProcFixture(t)

	req, err := env.service.CreateRequest(context.Background(), env.requesterID.Hex(), env.deptID.Hex(), CreateProcurementInput{
		Items: []ProcurementItem{{Name: "Server", Quantity: 1, UnitCost: 9000}},
	})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	if _, err := env.service.Approve(context.Background(), req.ID.Hex(), workflow.Actor{ID: env.supervisorID, Role: workflow.RoleHOD}); err != nil {
		t.Fatalf("Approve as hod: %v", err)
	}

	state, err := env.service.Decline(context.Background(), req.ID.Hex(), workflow.Actor{ID: env.cdID, Role: workflow.RoleCD})
	if err != nil {
		t.Fatalf("Decline as cd: %v", err)
	}
	if state.Status != workflow.StatusDeclined {
		t.Errorf("Status = %q, want declined", state.Status)
	}

	_, err = env.service.Approve(context.Background(), req.ID.Hex(), workflow.Actor{ID: env.cdID, Role: workflow.RoleCD})
	if !errors.Is(err, workflow.ErrAlreadyFinalized) {
		t.Errorf("err = %v, want ErrAlreadyFinalized", err)
	}
}
