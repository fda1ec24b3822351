package leave

import (
	"time"

	"go-erp/internal/workflow"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LeaveType string

const (
	LeaveTypeAnnual    LeaveType = "annual"
	LeaveTypeSick      LeaveType = "sick"
	LeaveTypeCasual    LeaveType = "casual"
	LeaveTypeMaternity LeaveType = "maternity"
	LeaveTypeUnpaid    LeaveType = "unpaid"
)

// LeaveRequest routes through hod -> hr -> cd. The workflow state is mutated
// only by the approval engine; everything else is payload.
type LeaveRequest struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EmployeeID   primitive.ObjectID `bson:"employee_id" json:"employee_id"`
	DepartmentID primitive.ObjectID `bson:"department_id" json:"department_id"`
	Type         LeaveType          `bson:"type" json:"type"`
	StartDate    time.Time          `bson:"start_date" json:"start_date"`
	EndDate      time.Time          `bson:"end_date" json:"end_date"`
	Days         int                `bson:"days" json:"days"`
	Reason       string             `bson:"reason" json:"reason"`
	Workflow     workflow.State     `bson:"workflow" json:"workflow"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

func (r *LeaveRequest) SubjectID() primitive.ObjectID   { return r.ID }
func (r *LeaveRequest) WorkflowState() workflow.State   { return r.Workflow }
func (r *LeaveRequest) RequesterID() primitive.ObjectID { return r.EmployeeID }

type CreateLeaveInput struct {
	Type      LeaveType `json:"type"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Reason    string    `json:"reason"`
}
