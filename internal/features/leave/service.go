package leave

import (
	"context"
	"errors"

	common_models "go-erp/internal/common/models"
	"go-erp/internal/features/audit"
	"go-erp/internal/features/department"
	"go-erp/internal/features/notification"
	"go-erp/internal/features/user"
	"go-erp/internal/workflow"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	stageHOD = "hod"
	stageHR  = "hr"
	stageCD  = "cd"
)

var leaveDefinition = workflow.MustDefinition(workflow.KindLeave, "complete",
	workflow.StageDef{Key: stageHOD, Role: workflow.RoleHOD},
	workflow.StageDef{Key: stageHR, Role: workflow.RoleHR},
	workflow.StageDef{Key: stageCD, Role: workflow.RoleCD},
)

type LeaveService interface {
	CreateLeave(ctx context.Context, employeeID, departmentID string, input CreateLeaveInput) (*LeaveRequest, error)
	GetLeave(ctx context.Context, id string) (*LeaveRequest, error)
	ListLeaves(ctx context.Context, filter map[string]interface{}, page, limit int64) ([]LeaveRequest, int64, error)
	Approve(ctx context.Context, id string, actor workflow.Actor) (workflow.State, error)
	Decline(ctx context.Context, id string, actor workflow.Actor) (workflow.State, error)
}

type LeaveServiceImpl struct {
	Repo         LeaveRepository
	Engine       *workflow.Engine
	AuditService audit.AuditService
	Notifier     notification.NotificationService
}

func NewLeaveService(
	repo LeaveRepository,
	users user.UserRepository,
	departments department.DepartmentRepository,
	auditService audit.AuditService,
	notifier notification.NotificationService,
	log *zap.Logger,
) LeaveService {
	resolver := &approverResolver{users: users, departments: departments}
	engine := workflow.NewEngine(leaveDefinition, repo, resolver, log,
		workflow.WithTrail(auditService),
		workflow.WithListener(notifier),
	)
	return &LeaveServiceImpl{
		Repo:         repo,
		Engine:       engine,
		AuditService: auditService,
		Notifier:     notifier,
	}
}

func (s *LeaveServiceImpl) CreateLeave(ctx context.Context, employeeID, departmentID string, input CreateLeaveInput) (*LeaveRequest, error) {
	empID, err := primitive.ObjectIDFromHex(employeeID)
	if err != nil {
		return nil, err
	}
	if departmentID == "" {
		return nil, errors.New("employee has no department assigned")
	}
	deptID, err := primitive.ObjectIDFromHex(departmentID)
	if err != nil {
		return nil, errors.New("invalid department id")
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, errors.New("end date must not precede start date")
	}

	req := &LeaveRequest{
		EmployeeID:   empID,
		DepartmentID: deptID,
		Type:         input.Type,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		Days:         int(input.EndDate.Sub(input.StartDate).Hours()/24) + 1,
		Reason:       input.Reason,
	}

	state, err := s.Engine.Initialize(ctx, req)
	if err != nil {
		return nil, err
	}
	req.Workflow = state

	if err := s.Repo.Create(ctx, req); err != nil {
		return nil, err
	}

	s.Notifier.NotifySubmitted(ctx, req)
	_ = s.AuditService.LogChange(ctx, employeeID, common_models.AuditActionCreate, "leave_requests", req.ID.Hex(), nil)

	return req, nil
}

func (s *LeaveServiceImpl) GetLeave(ctx context.Context, id string) (*LeaveRequest, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	return s.Repo.FindByID(ctx, oid)
}

func (s *LeaveServiceImpl) ListLeaves(ctx context.Context, filter map[string]interface{}, page, limit int64) ([]LeaveRequest, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit
	return s.Repo.List(ctx, filter, limit, offset)
}

func (s *LeaveServiceImpl) Approve(ctx context.Context, id string, actor workflow.Actor) (workflow.State, error) {
	return s.act(ctx, id, actor, workflow.DecisionApproved)
}

func (s *LeaveServiceImpl) Decline(ctx context.Context, id string, actor workflow.Actor) (workflow.State, error) {
	return s.act(ctx, id, actor, workflow.DecisionDeclined)
}

func (s *LeaveServiceImpl) act(ctx context.Context, id string, actor workflow.Actor, decision workflow.Decision) (workflow.State, error) {
	req, err := s.GetLeave(ctx, id)
	if err != nil {
		return workflow.State{}, err
	}

	prev := req.Workflow
	var state workflow.State
	if decision == workflow.DecisionApproved {
		state, err = s.Engine.Approve(ctx, req, actor)
	} else {
		state, err = s.Engine.Decline(ctx, req, actor)
	}
	if err != nil {
		return workflow.State{}, err
	}

	_ = s.AuditService.LogChange(ctx, actor.ID.Hex(), common_models.AuditActionApproval, "leave_requests", id, map[string]common_models.Change{
		"stage":  {Old: prev.Stage, New: state.Stage},
		"status": {Old: prev.Status, New: state.Status},
	})

	return state, nil
}
