package audit

import (
	"context"

	common_models "go-erp/internal/common/models"
	"go-erp/internal/database"
	"go-erp/internal/workflow"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AuditRepository interface {
	Create(ctx context.Context, log common_models.AuditLog) error
	List(ctx context.Context, filters map[string]interface{}, limit, offset int64) ([]common_models.AuditLog, error)
}

type AuditRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewAuditRepository(mongodb *database.MongodbDB) AuditRepository {
	return &AuditRepositoryImpl{
		Collection: mongodb.DB.Collection("audit_logs"),
	}
}

func (r *AuditRepositoryImpl) Create(ctx context.Context, log common_models.AuditLog) error {
	_, err := r.Collection.InsertOne(ctx, log)
	return err
}

func (r *AuditRepositoryImpl) List(ctx context.Context, filters map[string]interface{}, limit, offset int64) ([]common_models.AuditLog, error) {
	query := bson.M{}
	for k, v := range filters {
		query[k] = v
	}

	opts := options.Find().
		SetLimit(limit).
		SetSkip(offset).
		SetSort(bson.D{{Key: "timestamp", Value: -1}})

	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []common_models.AuditLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// TrailRepository persists the append-only approval trail. Entries are never
// updated or deleted.
type TrailRepository interface {
	Append(ctx context.Context, entry workflow.TrailEntry) error
	ListByRequest(ctx context.Context, kind workflow.Kind, requestID primitive.ObjectID) ([]workflow.TrailEntry, error)
}

type TrailRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewTrailRepository(mongodb *database.MongodbDB) TrailRepository {
	return &TrailRepositoryImpl{
		Collection: mongodb.DB.Collection("approval_trail"),
	}
}

func (r *TrailRepositoryImpl) Append(ctx context.Context, entry workflow.TrailEntry) error {
	_, err := r.Collection.InsertOne(ctx, entry)
	return err
}

func (r *TrailRepositoryImpl) ListByRequest(ctx context.Context, kind workflow.Kind, requestID primitive.ObjectID) ([]workflow.TrailEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})

	cursor, err := r.Collection.Find(ctx, bson.M{"kind": kind, "request_id": requestID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []workflow.TrailEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
