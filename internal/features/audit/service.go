package audit

import (
	"context"
	"time"

	common_models "go-erp/internal/common/models"
	"go-erp/internal/workflow"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserFinder interface {
	FindByIDs(ctx context.Context, ids []string) ([]common_models.User, error)
}

type AuditService interface {
	// Record implements workflow.TrailRecorder; the engine calls it after every
	// applied transition.
	Record(ctx context.Context, entry workflow.TrailEntry) error
	Trail(ctx context.Context, kind workflow.Kind, requestID string) ([]workflow.TrailEntry, error)

	LogChange(ctx context.Context, actorID string, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error
	ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error)
}

type AuditServiceImpl struct {
	Repo      AuditRepository
	TrailRepo TrailRepository
	UserRepo  UserFinder
}

func NewAuditService(repo AuditRepository, trailRepo TrailRepository, userRepo UserFinder) AuditService {
	return &AuditServiceImpl{
		Repo:      repo,
		TrailRepo: trailRepo,
		UserRepo:  userRepo,
	}
}

func (s *AuditServiceImpl) Record(ctx context.Context, entry workflow.TrailEntry) error {
	return s.TrailRepo.Append(ctx, entry)
}

func (s *AuditServiceImpl) Trail(ctx context.Context, kind workflow.Kind, requestID string) ([]workflow.TrailEntry, error) {
	oid, err := primitive.ObjectIDFromHex(requestID)
	if err != nil {
		return nil, err
	}
	return s.TrailRepo.ListByRequest(ctx, kind, oid)
}

func (s *AuditServiceImpl) LogChange(ctx context.Context, actorID string, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	if actorID == "" {
		actorID = "system"
	}

	log := common_models.AuditLog{
		ID:        primitive.NewObjectID(),
		Action:    action,
		Module:    module,
		RecordID:  recordID,
		ActorID:   actorID,
		Changes:   changes,
		Timestamp: time.Now(),
	}

	return s.Repo.Create(ctx, log)
}

func (s *AuditServiceImpl) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit
	logs, err := s.Repo.List(ctx, filters, limit, offset)
	if err != nil {
		return nil, err
	}

	// Collect Actor IDs
	actorIDs := make([]string, 0)
	uniqueIDs := make(map[string]bool)
	for _, log := range logs {
		if log.ActorID != "system" && log.ActorID != "" {
			if !uniqueIDs[log.ActorID] {
				uniqueIDs[log.ActorID] = true
				actorIDs = append(actorIDs, log.ActorID)
			}
		}
	}

	// Batch Fetch Users
	userMap := make(map[string]string)
	if len(actorIDs) > 0 {
		users, err := s.UserRepo.FindByIDs(ctx, actorIDs)
		if err == nil {
			for _, user := range users {
				userMap[user.ID.Hex()] = user.Username
			}
		}
	}

	// Populate Actor Names
	for i, log := range logs {
		if log.ActorID == "system" || log.ActorID == "" {
			logs[i].ActorName = "System"
		} else {
			if name, ok := userMap[log.ActorID]; ok {
				logs[i].ActorName = name
			} else {
				logs[i].ActorName = "Unknown User"
			}
		}
	}

	return logs, nil
}
