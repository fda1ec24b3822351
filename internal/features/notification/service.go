package notification

import (
	"context"
	"fmt"

	"go-erp/internal/workflow"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Requester is implemented by request entities that expose who raised them,
// so terminal dispositions can be reported back to the submitter.
type Requester interface {
	RequesterID() primitive.ObjectID
}

type NotificationService interface {
	workflow.Listener

	// NotifySubmitted tells the first approver a new request awaits them.
	NotifySubmitted(ctx context.Context, subject workflow.Subject)

	// Deliver persists a notification and pushes it to live connections.
	Deliver(ctx context.Context, n *Notification)

	ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int64) ([]Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

type NotificationServiceImpl struct {
	Repo NotificationRepository
	Hub  *Hub
	Log  *zap.Logger
}

func NewNotificationService(repo NotificationRepository, hub *Hub, log *zap.Logger) NotificationService {
	return &NotificationServiceImpl{
		Repo: repo,
		Hub:  hub,
		Log:  log,
	}
}

func (s *NotificationServiceImpl) NotifySubmitted(ctx context.Context, subject workflow.Subject) {
	state := subject.WorkflowState()
	if state.ApproverID == nil {
		return
	}
	s.Deliver(ctx, &Notification{
		UserID:  *state.ApproverID,
		Title:   "Approval required",
		Message: fmt.Sprintf("A %s request is awaiting your approval at the %s stage.", state.Kind, state.Stage),
		Type:    NotificationTypeApproval,
		Link:    requestLink(state.Kind, subject.SubjectID()),
	})
}

// TransitionApplied implements workflow.Listener. Advancing a request notifies
// the newly resolved approver; reaching a terminal state notifies the
// requester when the entity exposes one.
func (s *NotificationServiceImpl) TransitionApplied(ctx context.Context, tr workflow.Transition) {
	if tr.To.Status == workflow.StatusPending && tr.To.ApproverID != nil {
		s.Deliver(ctx, &Notification{
			UserID:  *tr.To.ApproverID,
			Title:   "Approval required",
			Message: fmt.Sprintf("A %s request is awaiting your approval at the %s stage.", tr.To.Kind, tr.To.Stage),
			Type:    NotificationTypeApproval,
			Link:    requestLink(tr.To.Kind, tr.Subject.SubjectID()),
		})
		return
	}

	requester, ok := tr.Subject.(Requester)
	if !ok {
		return
	}
	s.Deliver(ctx, &Notification{
		UserID:  requester.RequesterID(),
		Title:   fmt.Sprintf("Request %s", tr.To.Status),
		Message: fmt.Sprintf("Your %s request has been %s.", tr.To.Kind, tr.To.Status),
		Type:    NotificationTypeApproval,
		Link:    requestLink(tr.To.Kind, tr.Subject.SubjectID()),
	})
}

func (s *NotificationServiceImpl) Deliver(ctx context.Context, n *Notification) {
	if err := s.Repo.Create(ctx, n); err != nil {
		s.Log.Warn("failed to persist notification",
			zap.String("user_id", n.UserID.Hex()),
			zap.Error(err),
		)
		return
	}
	s.Hub.Push(n.UserID.Hex(), n)
}

func (s *NotificationServiceImpl) ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int64) ([]Notification, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 50
	}
	return s.Repo.ListByUser(ctx, oid, unreadOnly, limit)
}

func (s *NotificationServiceImpl) MarkRead(ctx context.Context, id, userID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return err
	}
	return s.Repo.MarkRead(ctx, oid, uid)
}

func (s *NotificationServiceImpl) MarkAllRead(ctx context.Context, userID string) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return err
	}
	return s.Repo.MarkAllRead(ctx, uid)
}

func requestLink(kind workflow.Kind, id primitive.ObjectID) string {
	return fmt.Sprintf("/%s/%s", kind, id.Hex())
}
