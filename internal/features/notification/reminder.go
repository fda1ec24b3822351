package notification

import (
	"context"
	"fmt"

	"go-erp/internal/workflow"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// PendingApproval is one request awaiting action, as reported by a domain
// repository.
type PendingApproval struct {
	Kind       workflow.Kind
	RequestID  primitive.ObjectID
	Stage      string
	ApproverID primitive.ObjectID
}

// PendingSource is implemented by each domain repository so the reminder job
// can enumerate open approvals without knowing the domain schemas.
type PendingSource interface {
	PendingApprovals(ctx context.Context) ([]PendingApproval, error)
}

// ReminderScheduler periodically nudges approvers who have requests sitting in
// their queue. This is a convenience digest, not an SLA escalation: nothing is
// reassigned or auto-actioned.
type ReminderScheduler struct {
	sources []PendingSource
	service NotificationService
	log     *zap.Logger
	cron    *cron.Cron
}

func NewReminderScheduler(sources []PendingSource, service NotificationService, log *zap.Logger) *ReminderScheduler {
	return &ReminderScheduler{
		sources: sources,
		service: service,
		log:     log,
	}
}

// Start schedules the reminder run. Spec uses the standard 5-field cron format.
func (r *ReminderScheduler) Start(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, r.run); err != nil {
		return err
	}
	c.Start()
	r.cron = c
	return nil
}

func (r *ReminderScheduler) Stop() {
	if r.cron != nil {
		r.cron.Stop()
	}
}

func (r *ReminderScheduler) run() {
	ctx := context.Background()

	// Group open requests per approver across all domains
	counts := make(map[primitive.ObjectID]int)
	for _, source := range r.sources {
		pending, err := source.PendingApprovals(ctx)
		if err != nil {
			r.log.Warn("reminder: failed to list pending approvals", zap.Error(err))
			continue
		}
		for _, p := range pending {
			counts[p.ApproverID]++
		}
	}

	for approver, count := range counts {
		r.service.Deliver(ctx, &Notification{
			UserID:  approver,
			Title:   "Pending approvals",
			Message: fmt.Sprintf("You have %d request(s) awaiting your approval.", count),
			Type:    NotificationTypeReminder,
			Link:    "/approvals/pending",
		})
	}

	r.log.Info("reminder run completed", zap.Int("approvers", len(counts)))
}
