package department

import (
	"context"
	"errors"
	"time"

	"go-erp/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateDepartmentInput struct {
	Name         string `json:"name"`
	Code         string `json:"code"`
	SupervisorID string `json:"supervisor_id"`
}

type DepartmentService interface {
	CreateDepartment(ctx context.Context, input CreateDepartmentInput) (*models.Department, error)
	GetDepartment(ctx context.Context, id string) (*models.Department, error)
	ListDepartments(ctx context.Context) ([]models.Department, error)
}

type DepartmentServiceImpl struct {
	Repo DepartmentRepository
}

func NewDepartmentService(repo DepartmentRepository) DepartmentService {
	return &DepartmentServiceImpl{Repo: repo}
}

func (s *DepartmentServiceImpl) CreateDepartment(ctx context.Context, input CreateDepartmentInput) (*models.Department, error) {
	if input.Name == "" {
		return nil, errors.New("department name is required")
	}

	dept := &models.Department{
		ID:        primitive.NewObjectID(),
		Name:      input.Name,
		Code:      input.Code,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if input.SupervisorID != "" {
		supervisorID, err := primitive.ObjectIDFromHex(input.SupervisorID)
		if err != nil {
			return nil, errors.New("invalid supervisor id")
		}
		dept.SupervisorID = &supervisorID
	}

	if err := s.Repo.Create(ctx, dept); err != nil {
		return nil, err
	}
	return dept, nil
}

func (s *DepartmentServiceImpl) GetDepartment(ctx context.Context, id string) (*models.Department, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	return s.Repo.FindByID(ctx, oid)
}

func (s *DepartmentServiceImpl) ListDepartments(ctx context.Context) ([]models.Department, error) {
	return s.Repo.List(ctx)
}
