package performance

import (
	"time"

	"go-erp/internal/workflow"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a performance appraisal routed through the same hod -> hr -> cd
// chain as leave requests. The rated employee fills in the self sections; the
// scores become official only when the workflow finalizes as approved.
type Review struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EmployeeID   primitive.ObjectID `bson:"employee_id" json:"employee_id"`
	DepartmentID primitive.ObjectID `bson:"department_id" json:"department_id"`
	SubmittedBy  primitive.ObjectID `bson:"submitted_by" json:"submitted_by"`
	Period       string             `bson:"period" json:"period"` // e.g. "2026-H1"
	Rating       int                `bson:"rating" json:"rating"` // 1..5
	Strengths    string             `bson:"strengths,omitempty" json:"strengths,omitempty"`
	Improvements string             `bson:"improvements,omitempty" json:"improvements,omitempty"`
	Goals        string             `bson:"goals,omitempty" json:"goals,omitempty"`
	Workflow     workflow.State     `bson:"workflow" json:"workflow"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

func (r *Review) SubjectID() primitive.ObjectID   { return r.ID }
func (r *Review) WorkflowState() workflow.State   { return r.Workflow }
func (r *Review) RequesterID() primitive.ObjectID { return r.SubmittedBy }

type CreateReviewInput struct {
	EmployeeID   string `json:"employee_id"`
	Period       string `json:"period"`
	Rating       int    `json:"rating"`
	Strengths    string `json:"strengths"`
	Improvements string `json:"improvements"`
	Goals        string `json:"goals"`
}
