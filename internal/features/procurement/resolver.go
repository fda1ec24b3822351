package procurement

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

type approverResolver struct {
	users       user.UserRepository
	departments department.DepartmentRepository
}

func (r *approverResolver) Resolve(ctx context.Context, subject workflow.Subject, stage string) (primitive.ObjectID, error) {
	req, ok := subject.(*ProcurementRequest)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("procurement resolver: unexpected subject type %T", subject)
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
	case stageCD:
		u, err := r.users.FindFirstByRole(ctx, workflow.RoleCD)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return primitive.NilObjectID, fmt.Errorf("%w: no active user holds role %s", workflow.ErrNoApprover, workflow.RoleCD)
			}
			return primitive.NilObjectID, err
		}
		return u.ID, nil
	default:
		return primitive.NilObjectID, &workflow.UnknownStageError{Kind: workflow.KindProcurement, Stage: stage}
	}
}
