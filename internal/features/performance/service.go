package performance

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

var reviewDefinition = workflow.MustDefinition(workflow.KindPerformance, "complete",
	workflow.StageDef{Key: stageHOD, Role: workflow.RoleHOD},
	workflow.StageDef{Key: stageHR, Role: workflow.RoleHR},
	workflow.StageDef{Key: stageCD, Role: workflow.RoleCD},
)

type ReviewService interface {
	CreateReview(ctx context.Context, submittedBy string, input CreateReviewInput) (*Review, error)
	GetReview(ctx context.Context, id string) (*Review, error)
	ListReviews(ctx context.Context, filter map[string]interface{}, page, limit int64) ([]Review, int64, error)
	Approve(ctx context.Context, id string, actor workflow.Actor) (workflow.State, error)
	Decline(ctx context.Context, id string, actor workflow.Actor) (workflow.State, error)
}

type ReviewServiceImpl struct {
	Repo         ReviewRepository
	Users        user.UserRepository
	Engine       *workflow.Engine
	AuditService audit.AuditService
	Notifier     notification.NotificationService
}

func NewReviewService(
	repo ReviewRepository,
	users user.UserRepository,
	departments department.DepartmentRepository,
	auditService audit.AuditService,
	notifier notification.NotificationService,
	log *zap.Logger,
) ReviewService {
	resolver := &approverResolver{users: users, departments: departments}
	engine := workflow.NewEngine(reviewDefinition, repo, resolver, log,
		workflow.WithTrail(auditService),
		workflow.WithListener(notifier),
	)
	return &ReviewServiceImpl{
		Repo:         repo,
		Users:        users,
		Engine:       engine,
		AuditService: auditService,
		Notifier:     notifier,
	}
}

func (s *ReviewServiceImpl) CreateReview(ctx context.Context, submittedBy string, input CreateReviewInput) (*Review, error) {
	submitter, err := primitive.ObjectIDFromHex(submittedBy)
	if err != nil {
		return nil, err
	}
	employeeID, err := primitive.ObjectIDFromHex(input.EmployeeID)
	if err != nil {
		return nil, errors.New("invalid employee id")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, errors.New("rating must be between 1 and 5")
	}
	if input.Period == "" {
		return nil, errors.New("review period is required")
	}

	// The review routes through the rated employee's department
	employee, err := s.Users.FindByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if employee.DepartmentID == nil {
		return nil, errors.New("employee has no department assigned")
	}

	review := &Review{
		EmployeeID:   employeeID,
		DepartmentID: *employee.DepartmentID,
		SubmittedBy:  submitter,
		Period:       input.Period,
		Rating:       input.Rating,
		Strengths:    input.Strengths,
		Improvements: input.Improvements,
		Goals:        input.Goals,
	}

	state, err := s.Engine.Initialize(ctx, review)
	if err != nil {
		return nil, err
	}
	review.Workflow = state

	if err := s.Repo.Create(ctx, review); err != nil {
		return nil, err
	}

	s.Notifier.NotifySubmitted(ctx, review)
	_ = s.AuditService.LogChange(ctx, submittedBy, common_models.AuditActionCreate, "performance_reviews", review.ID.Hex(), nil)

	return review, nil
}

func (s *ReviewServiceImpl) GetReview(ctx context.Context, id string) (*Review, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	return s.Repo.FindByID(ctx, oid)
}

func (s *ReviewServiceImpl) ListReviews(ctx context.Context, filter map[string]interface{}, page, limit int64) ([]Review, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit
	return s.Repo.List(ctx, filter, limit, offset)
}

func (s *ReviewServiceImpl) Approve(ctx context.Context, id string, actor workflow.Actor) (workflow.State, error) {
	return s.act(ctx, id, actor, workflow.DecisionApproved)
}

func (s *ReviewServiceImpl) Decline(ctx context.Context, id string, actor workflow.Actor) (workflow.State, error) {
	return s.act(ctx, id, actor, workflow.DecisionDeclined)
}

func (s *ReviewServiceImpl) act(ctx context.Context, id string, actor workflow.Actor, decision workflow.Decision) (workflow.State, error) {
	review, err := s.GetReview(ctx, id)
	if err != nil {
		return workflow.State{}, err
	}

	prev := review.Workflow
	var state workflow.State
	if decision == workflow.DecisionApproved {
		state, err = s.Engine.Approve(ctx, review, actor)
	} else {
		state, err = s.Engine.Decline(ctx, review, actor)
	}
	if err != nil {
		return workflow.State{}, err
	}

	_ = s.AuditService.LogChange(ctx, actor.ID.Hex(), common_models.AuditActionApproval, "performance_reviews", id, map[string]common_models.Change{
		"stage":  {Old: prev.Stage, New: state.Stage},
		"status": {Old: prev.Status, New: state.Status},
	})

	return state, nil
}
