package procurement

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

// Procurement skips the hr stage: spend approval is a line-management and
// director concern.
const (
	stageHOD = "hod"
	stageCD  = "cd"
)

var procurementDefinition = workflow.MustDefinition(workflow.KindProcurement, "complete",
	workflow.StageDef{Key: stageHOD, Role: workflow.RoleHOD},
	workflow.StageDef{Key: stageCD, Role: workflow.RoleCD},
)

type ProcurementService interface {
	CreateRequest(ctx context.Context, requesterID, departmentID string, input CreateProcurementInput) (*ProcurementRequest, error)
	GetRequest(ctx context.Context, id string) (*ProcurementRequest, error)
	ListRequests(ctx context.Context, filter map[string]interface{}, page, limit int64) ([]ProcurementRequest, int64, error)
	Approve(ctx context.Context, id string, actor workflow.Actor) (workflow.State, error)
	Decline(ctx context.Context, id string, actor workflow.Actor) (workflow.State, error)
	Export(ctx context.Context, filter map[string]interface{}) ([]byte, error)
}

type ProcurementServiceImpl struct {
	Repo         ProcurementRepository
	Engine       *workflow.Engine
	AuditService audit.AuditService
	Notifier     notification.NotificationService
}

func NewProcurementService(
	repo ProcurementRepository,
	users user.UserRepository,
	departments department.DepartmentRepository,
	auditService audit.AuditService,
	notifier notification.NotificationService,
	log *zap.Logger,
) ProcurementService {
	resolver := &approverResolver{users: users, departments: departments}
	engine := workflow.NewEngine(procurementDefinition, repo, resolver, log,
		workflow.WithTrail(auditService),
		workflow.WithListener(notifier),
	)
	return &ProcurementServiceImpl{
		Repo:         repo,
		Engine:       engine,
		AuditService: auditService,
		Notifier:     notifier,
	}
}

func (s *ProcurementServiceImpl) CreateRequest(ctx context.Context, requesterID, departmentID string, input CreateProcurementInput) (*ProcurementRequest, error) {
	raisedBy, err := primitive.ObjectIDFromHex(requesterID)
	if err != nil {
		return nil, err
	}
	if departmentID == "" {
		return nil, errors.New("requester has no department assigned")
	}
	deptID, err := primitive.ObjectIDFromHex(departmentID)
	if err != nil {
		return nil, errors.New("invalid department id")
	}
	if len(input.Items) == 0 {
		return nil, errors.New("at least one item is required")
	}

	var total float64
	for _, item := range input.Items {
		if item.Name == "" {
			return nil, errors.New("item name is required")
		}
		if item.Quantity < 1 {
			return nil, errors.New("item quantity must be positive")
		}
		if item.UnitCost < 0 {
			return nil, errors.New("item unit cost must not be negative")
		}
		total += float64(item.Quantity) * item.UnitCost
	}

	req := &ProcurementRequest{
		RaisedBy:      raisedBy,
		DepartmentID:  deptID,
		Items:         input.Items,
		Justification: input.Justification,
		TotalCost:     total,
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
	_ = s.AuditService.LogChange(ctx, requesterID, common_models.AuditActionCreate, "procurement_requests", req.ID.Hex(), nil)

	return req, nil
}

func (s *ProcurementServiceImpl) GetRequest(ctx context.Context, id string) (*ProcurementRequest, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	return s.Repo.FindByID(ctx, oid)
}

func (s *ProcurementServiceImpl) ListRequests(ctx context.Context, filter map[string]interface{}, page, limit int64) ([]ProcurementRequest, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit
	return s.Repo.List(ctx, filter, limit, offset)
}

func (s *ProcurementServiceImpl) Approve(ctx context.Context, id string, actor workflow.Actor) (workflow.State, error) {
	return s.act(ctx, id, actor, workflow.DecisionApproved)
}

func (s *ProcurementServiceImpl) Decline(ctx context.Context, id string, actor workflow.Actor) (workflow.State, error) {
	return s.act(ctx, id, actor, workflow.DecisionDeclined)
}

func (s *ProcurementServiceImpl) act(ctx context.Context, id string, actor workflow.Actor, decision workflow.Decision) (workflow.State, error) {
	req, err := s.GetRequest(ctx, id)
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

	_ = s.AuditService.LogChange(ctx, actor.ID.Hex(), common_models.AuditActionApproval, "procurement_requests", id, map[string]common_models.Change{
		"stage":  {Old: prev.Stage, New: state.Stage},
		"status": {Old: prev.Status, New: state.Status},
	})

	return state, nil
}

func (s *ProcurementServiceImpl) Export(ctx context.Context, filter map[string]interface{}) ([]byte, error) {
	requests, err := s.Repo.ListAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return buildExportWorkbook(requests)
}
