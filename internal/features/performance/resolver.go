package performance

import (
	"context"
	"errors"
	"fmt"

	"go-erp/internal/features/department"
	"go-erp/internal/features/user"
	"go-erp/internal/workflow"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// approverResolver resolves review stages the same way leave does: department
// supervisor for hod, fixed role lookup for hr and cd. The department is the
// rated employee's, not the submitter's.
type approverResolver struct {
	users       user.UserRepository
	departments department.DepartmentRepository
}

func (r *approverResolver) Resolve(ctx context.Context, subject workflow.Subject, stage string) (primitive.ObjectID, error) {
	review, ok := subject.(*Review)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("performance resolver: unexpected subject type %T", subject)
	}

	switch stage {
	case stageHOD:
		dept, err := r.departments.FindByID(ctx, review.DepartmentID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return primitive.NilObjectID, fmt.Errorf("%w: department %s not found", workflow.ErrNoApprover, review.DepartmentID.Hex())
			}
			return primitive.NilObjectID, err
		}
		if dept.SupervisorID == nil {
			return primitive.NilObjectID, fmt.Errorf("%w: department %s has no supervisor", workflow.ErrNoApprover, dept.Name)
		}
		return *dept.SupervisorID, nil
	case stageHR:
		return r.firstByRole(ctx, workflow.RoleHR)
	case stageCD:
		return r.firstByRole(ctx, workflow.RoleCD)
	default:
		return primitive.NilObjectID, &workflow.UnknownStageError{Kind: workflow.KindPerformance, Stage: stage}
	}
}

func (r *approverResolver) firstByRole(ctx context.Context, role workflow.Role) (primitive.ObjectID, error) {
	u, err := r.users.FindFirstByRole(ctx, role)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return primitive.NilObjectID, fmt.Errorf("%w: no active user holds role %s", workflow.ErrNoApprover, role)
		}
		return primitive.NilObjectID, err
	}
	return u.ID, nil
}
