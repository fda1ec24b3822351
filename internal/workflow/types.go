package workflow

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind identifies which stage definition applies to a request
type Kind string

const (
	KindLeave       Kind = "leave"
	KindPerformance Kind = "performance"
	KindProcurement Kind = "procurement"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
)

// Role is the typed approver role checked at each stage.
// Roles are assigned to users at creation; they are never probed dynamically.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleHOD      Role = "hod"
	RoleHR       Role = "hr"
	RoleCD       Role = "cd"
)

type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionDeclined Decision = "declined"
)

// State is the workflow portion of a request document. It is embedded in each
// domain entity (leave request, performance review, procurement request) and
// mutated only by the Engine.
type State struct {
	Kind       Kind                `bson:"kind" json:"kind"`
	Stage      string              `bson:"stage" json:"current_stage"`
	Status     Status              `bson:"status" json:"status"`
	ApproverID *primitive.ObjectID `bson:"approver_id,omitempty" json:"approver,omitempty"`
}

// Terminal reports whether the request has reached a final disposition.
func (s State) Terminal() bool {
	return s.Status != StatusPending
}

// Actor is the authenticated principal attempting an approve/decline.
type Actor struct {
	ID   primitive.ObjectID
	Role Role
}
