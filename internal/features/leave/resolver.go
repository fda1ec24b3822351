package leave

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

// approverResolver maps leave stages to concrete users: the hod stage goes to
// the supervisor of the employee's department, hr and cd go to the lowest-id
// active holder of the role.
type approverResolver struct {
	users       user.UserRepository
	departments department.DepartmentRepository
}

func (r *approverResolver) Resolve(ctx context.Context, subject workflow.Subject, stage string) (primitive.ObjectID, error) {
	req, ok := subject.(*LeaveRequest)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("leave resolver: unexpected subject type %T", subject)
	}

	switch stage {
	case stageHOD:
		dept, err := r.departments.FindByID(ctx, req.DepartmentID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return primitive.NilObjectID, fmt.Errorf("%w: department %s not found", workflow.ErrNoApprover, req.DepartmentID.Hex())
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
		return primitive.NilObjectID, &workflow.UnknownStageError{Kind: workflow.KindLeave, Stage: stage}
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
