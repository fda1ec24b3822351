package procurement

import (
	"time"

	"go-erp/internal/workflow"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProcurementItem is a single line of a purchase request.
type ProcurementItem struct {
	Name     string  `bson:"name" json:"name"`
	Quantity int     `bson:"quantity" json:"quantity"`
	UnitCost float64 `bson:"unit_cost" json:"unit_cost"`
}

// ProcurementRequest routes through a shorter chain than HR paperwork:
// department head then company director, no hr stage.
type ProcurementRequest struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RaisedBy      primitive.ObjectID `bson:"requester_id" json:"requester_id"`
	DepartmentID  primitive.ObjectID `bson:"department_id" json:"department_id"`
	Items         []ProcurementItem  `bson:"items" json:"items"`
	Justification string             `bson:"justification" json:"justification"`
	TotalCost     float64            `bson:"total_cost" json:"total_cost"`
	Workflow      workflow.State     `bson:"workflow" json:"workflow"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

func (p *ProcurementRequest) SubjectID() primitive.ObjectID   { return p.ID }
func (p *ProcurementRequest) WorkflowState() workflow.State   { return p.Workflow }
func (p *ProcurementRequest) RequesterID() primitive.ObjectID { return p.RaisedBy }

type CreateProcurementInput struct {
	Items         []ProcurementItem `json:"items"`
	Justification string            `json:"justification"`
}
